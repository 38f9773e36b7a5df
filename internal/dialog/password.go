package dialog

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ZoeBambery/cyberduck/internal/theme"
)

// ShowPasswordDialog asks for the password of a server whose login was
// refused. An empty password is not accepted.
func ShowPasswordDialog(pages *tview.Pages, server, user string, callback func(password string), onCancel func()) {
	form := tview.NewForm()
	form.SetBackgroundColor(theme.ColorDialogBg)
	form.SetFieldBackgroundColor(theme.ColorListBg)
	form.SetFieldTextColor(tcell.ColorWhite)
	form.SetLabelColor(theme.ColorDialogFg)
	form.SetButtonBackgroundColor(theme.ColorButtonBg)
	form.SetButtonTextColor(theme.ColorButtonFg)
	form.SetBorderColor(theme.ColorDialogBorder)
	form.SetTitle(" " + passwordTitle(server, user) + " ")
	form.SetTitleColor(theme.ColorHeaderFg)
	form.SetBorder(true)

	form.AddPasswordField("Password:", "", 30, '*', nil)

	errText := tview.NewTextView()
	errText.SetBackgroundColor(theme.ColorDialogBg)
	errText.SetTextColor(tcell.ColorRed)
	errText.SetTextAlign(tview.AlignCenter)

	submit := func() {
		pw := form.GetFormItem(0).(*tview.InputField).GetText()
		if pw == "" {
			errText.SetText("Password cannot be empty")
			return
		}
		callback(pw)
	}

	form.AddButton("OK", submit)
	form.AddButton("Cancel", onCancel)

	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			onCancel()
			return nil
		}
		return event
	})

	const (
		dialogWidth  = 50
		dialogHeight = 7
	)
	inner := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, dialogHeight-1, 0, true).
		AddItem(errText, 1, 0, false)

	frame := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(centered(inner, dialogWidth), dialogHeight, 0, true).
		AddItem(nil, 0, 1, false)

	pages.AddPage("password", frame, true, true)
}

func passwordTitle(server, user string) string {
	if user == "" {
		return "Login to " + server
	}
	return "Login to " + user + "@" + server
}
