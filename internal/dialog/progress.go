package dialog

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ZoeBambery/cyberduck/internal/fileops"
	"github.com/ZoeBambery/cyberduck/internal/theme"
)

const (
	progressBarWidth = 30
	progressWidth    = 44
)

// ProgressDialog shows the file being copied, a bar, byte counters and
// the transfer rate, with an Abort button.
type ProgressDialog struct {
	*tview.Flex
	text *tview.TextView

	// rate is measured per file
	file    string
	started time.Time
	now     func() time.Time
}

// NewProgressDialog creates a progress dialog titled e.g. "Downloading".
// onAbort runs on the Abort button and on Esc.
func NewProgressDialog(title string, onAbort func()) *ProgressDialog {
	d := &ProgressDialog{now: time.Now}
	d.started = d.now()

	abort := func() {
		if onAbort != nil {
			onAbort()
		}
	}

	d.text = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	d.text.SetBackgroundColor(theme.ColorDialogBg)
	d.text.SetTextColor(theme.ColorDialogFg)

	button := tview.NewButton("Abort").SetSelectedFunc(abort)
	button.SetBackgroundColor(theme.ColorButtonBg)
	button.SetLabelColor(theme.ColorButtonFg)

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.text, 6, 0, false).
		AddItem(centered(button, 10), 1, 0, true)
	body.SetBackgroundColor(theme.ColorDialogBg)
	body.SetBorder(true).
		SetBorderColor(theme.ColorDialogBorder).
		SetTitle(" " + title + " ").
		SetTitleColor(theme.ColorDialogFg)
	body.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			abort()
			return nil
		}
		return event
	})

	d.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(centered(body, progressWidth), 10, 0, true).
		AddItem(nil, 0, 1, false)

	d.Update(fileops.Progress{})
	return d
}

// centered pads p horizontally to the given width.
func centered(p tview.Primitive, width int) *tview.Flex {
	row := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(p, width, 0, true).
		AddItem(nil, 0, 1, false)
	row.SetBackgroundColor(theme.ColorDialogBg)
	return row
}

// Update refreshes the dialog with new progress data.
func (d *ProgressDialog) Update(p fileops.Progress) {
	d.text.SetText(d.render(p))
}

func (d *ProgressDialog) render(p fileops.Progress) string {
	if key := fmt.Sprintf("%d:%s", p.FileIndex, p.FileName); key != d.file {
		d.file = key
		d.started = d.now()
	}

	name := p.FileName
	if name == "" {
		name = "..."
	}
	if p.FileCount > 0 {
		name = fmt.Sprintf("%s (%d/%d)", name, p.FileIndex, p.FileCount)
	}

	pct := p.Percent()
	counters := fmt.Sprintf("%s of %s", formatSize(p.Done), formatSize(p.Total))
	if p.Offset > 0 {
		counters += ", resumed at " + formatSize(p.Offset)
	}

	lines := []string{
		"",
		name,
		fmt.Sprintf("%s %3d%%", progressBar(pct, progressBarWidth), pct),
		counters,
	}
	elapsed := d.now().Sub(d.started).Seconds()
	if moved := p.Transferred(); elapsed >= 1 && moved > 0 {
		lines = append(lines, formatSize(int64(float64(moved)/elapsed))+"/s")
	}
	return strings.Join(lines, "\n")
}

// progressBar renders pct as a bar of the given width.
func progressBar(pct, width int) string {
	pct = max(0, min(pct, 100))
	filled := width * pct / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
