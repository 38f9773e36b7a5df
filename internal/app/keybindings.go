package app

import (
	"github.com/gdamore/tcell/v2"
)

// SetupKeyBindings configures global key handling for the application.
func (a *App) SetupKeyBindings() {
	a.TviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			// Cancel first; the job reports back and closes the UI.
			a.Cancel()
			if !a.ModalOpen {
				a.TviewApp.Stop()
			}
			return nil
		}

		// an open modal gets every key
		if a.ModalOpen {
			return event
		}

		if event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q') {
			a.Cancel()
			a.TviewApp.Stop()
			return nil
		}
		return event
	})
}
