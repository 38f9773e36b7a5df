package dialog

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ZoeBambery/cyberduck/internal/theme"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// ShowError reports err in a modal. Enter, Esc and OK all close it.
func ShowError(pages *tview.Pages, err error, onClose func()) {
	showMessage(pages, "error", "Error", errorText(err), onClose)
}

// ShowInfo displays a message with a single OK button.
func ShowInfo(pages *tview.Pages, title, message string, onClose func()) {
	showMessage(pages, "info", title, message, onClose)
}

// errorText prefixes the error chain with a hint for failures the user
// can act on.
func errorText(err error) string {
	switch {
	case err == nil:
		return "Unknown error"
	case errors.Is(err, vfs.ErrNotSupported):
		return fmt.Sprintf("Not supported by this server.\n\n%v", err)
	case vfs.IsNotExist(err):
		return fmt.Sprintf("File not found.\n\n%v", err)
	}
	return err.Error()
}

func showMessage(pages *tview.Pages, name, title, message string, onClose func()) {
	done := func() {
		if onClose != nil {
			onClose()
		}
	}

	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { done() })
	modal.SetBackgroundColor(theme.ColorDialogBg).
		SetTitle(" " + title + " ").
		SetBorder(true).
		SetBorderColor(theme.ColorDialogBorder)
	modal.SetTextColor(theme.ColorDialogFg).
		SetButtonBackgroundColor(theme.ColorButtonBg).
		SetButtonTextColor(theme.ColorButtonFg)
	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			done()
			return nil
		}
		return event
	})

	pages.AddPage(name, modal, true, true)
}
