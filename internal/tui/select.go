package tui

import (
	"errors"

	"github.com/rivo/tview"
)

// ErrSelectionAborted is returned when the operator cancels the selection
// screen without starting a backup.
var ErrSelectionAborted = errors.New("selection aborted")

// SelectTargets shows a checkbox form with one entry per profile and
// returns the names the operator ticked. All profiles start checked.
// Esc or the Cancel button aborts with ErrSelectionAborted.
func SelectTargets(profiles []string) ([]string, error) {
	if len(profiles) == 0 {
		return nil, nil
	}

	app := NewApp()

	checked := make([]bool, len(profiles))
	for i := range checked {
		checked[i] = true
	}

	var aborted bool

	form := tview.NewForm()
	form.SetItemPadding(0)
	form.SetFieldBackgroundColor(FieldGray)
	form.SetButtonBackgroundColor(FieldGray)
	form.SetButtonTextColor(SuccessGreen)
	form.SetCancelFunc(func() {
		aborted = true
		app.Stop()
	})

	for i, name := range profiles {
		i := i
		form.AddCheckbox(name, true, func(state bool) {
			checked[i] = state
		})
	}

	form.AddButton("Start backup", func() {
		app.Stop()
	})
	form.AddButton("Cancel", func() {
		aborted = true
		app.Stop()
	})

	app.SetRootWithTitle(form, "Select profiles to back up")
	if err := app.Run(); err != nil {
		return nil, err
	}
	if aborted {
		return nil, ErrSelectionAborted
	}

	var selected []string
	for i, name := range profiles {
		if checked[i] {
			selected = append(selected, name)
		}
	}
	return selected, nil
}
