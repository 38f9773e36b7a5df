package dialog

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ZoeBambery/cyberduck/internal/prompt"
	"github.com/ZoeBambery/cyberduck/internal/theme"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

// promptKeys maps the prompt's letter keys to actions.
var promptKeys = map[rune]transfer.Action{
	'o': transfer.Overwrite,
	'r': transfer.Resume,
	'n': transfer.Rename,
	'e': transfer.RenameExisting,
	's': transfer.Skip,
	'c': transfer.Callback,
}

func keyAction(r rune) (transfer.Action, bool) {
	a, ok := promptKeys[unicode.ToLower(r)]
	return a, ok
}

// ShowTransferPrompt lists items that already exist at the destination and
// asks which action to apply. Space toggles an item; Cancel and Esc
// report transfer.Callback.
func ShowTransferPrompt(pages *tview.Pages, title string, rows []prompt.Row, onChoice func(transfer.Action)) {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBackgroundColor(theme.ColorListBg)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(theme.ColorCursorFg).Background(theme.ColorCursorBg))

	for col, h := range []string{"", "Name", "Size", ""} {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(theme.ColorHeaderFg).
			SetBackgroundColor(theme.ColorHeaderBg).
			SetSelectable(false))
	}
	for i, r := range rows {
		setPromptRow(table, i+1, r)
	}
	if len(rows) > 0 {
		table.Select(1, 0)
	}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			onChoice(transfer.Callback)
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ' ':
				row, _ := table.GetSelection()
				if row >= 1 && row <= len(rows) {
					p := rows[row-1].Path
					p.Skipped = !p.Skipped
					setPromptRow(table, row, rows[row-1])
				}
				return nil
			}
			if a, ok := keyAction(event.Rune()); ok {
				onChoice(a)
				return nil
			}
		}
		return event
	})

	frame := tview.NewFrame(table).SetBorders(0, 0, 0, 0, 0, 0)
	frame.SetBorder(true)
	frame.SetBorderColor(theme.ColorDialogBorder)
	frame.SetBackgroundColor(theme.ColorListBg)
	frame.SetTitle(" " + title + " ")
	frame.SetTitleColor(theme.ColorHeaderFg)
	frame.AddText(" O-Overwrite  R-Resume  N-Rename  E-Rename existing ", false, tview.AlignCenter, theme.ColorHintFg)
	frame.AddText(" S-Skip  Space-Toggle  C-Cancel ", false, tview.AlignCenter, theme.ColorHintFg)

	dialogHeight := len(rows) + 7
	if dialogHeight < 10 {
		dialogHeight = 10
	}
	if dialogHeight > 24 {
		dialogHeight = 24
	}

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(frame, 72, 0, true).
			AddItem(nil, 0, 1, false),
			dialogHeight, 0, true).
		AddItem(nil, 0, 1, false)

	pages.AddPage("transfer_prompt", flex, true, true)
}

func setPromptRow(table *tview.Table, row int, r prompt.Row) {
	mark := "[x]"
	color := theme.ColorFile
	name := strings.Repeat("  ", r.Depth) + r.Path.Name()
	if r.Path.Attributes().IsDir() {
		color = theme.ColorDirectory
		name += "/"
	}
	if r.Path.Skipped {
		mark = "[ ]"
		color = theme.ColorSkipped
	}

	warn := ""
	if r.Warning {
		warn = "!"
	}

	table.SetCell(row, 0, tview.NewTableCell(mark).SetTextColor(color))
	table.SetCell(row, 1, tview.NewTableCell(name).SetTextColor(color).SetExpansion(1))
	table.SetCell(row, 2, tview.NewTableCell(sizeText(r)).SetTextColor(color).SetAlign(tview.AlignRight))
	table.SetCell(row, 3, tview.NewTableCell(warn).SetTextColor(theme.ColorWarning))
}

func sizeText(r prompt.Row) string {
	if r.Path.Attributes().IsDir() {
		return ""
	}
	return formatSize(r.Size)
}

// formatSize formats bytes into a human-readable string.
func formatSize(b int64) string {
	if b < 0 {
		return "--"
	}
	return humanize.IBytes(uint64(b))
}
