package window

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/baustella/light-control/internal/config"
)

// ============ BINDINGS TAB ============

func (mw *MainWindow) createBindingsTab() fyne.CanvasObject {
	header := widget.NewLabel("Bindings")
	header.TextStyle = fyne.TextStyle{Bold: true}

	subtitle := widget.NewLabel("Remote and serial codes that always send a MIDI note")

	headerCode := widget.NewLabel("Code")
	headerCode.TextStyle = fyne.TextStyle{Bold: true}
	headerNote := widget.NewLabel("Note")
	headerNote.TextStyle = fyne.TextStyle{Bold: true}

	columnHeaders := container.NewGridWithColumns(3, headerCode, headerNote, widget.NewLabel(""))

	mw.bindingList = widget.NewList(
		func() int {
			return mw.cfg.Bindings.Len()
		},
		func() fyne.CanvasObject {
			return mw.createBindingListItem()
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			mw.updateBindingListItem(id, obj)
		},
	)

	addBtn := widget.NewButtonWithIcon("Add Binding", theme.ContentAddIcon(), func() {
		mw.showAddBinding("")
	})

	saveBtn := widget.NewButtonWithIcon("Save Bindings", theme.DocumentSaveIcon(), func() {
		mw.saveBindings()
	})
	saveBtn.Importance = widget.HighImportance

	return container.NewBorder(
		container.NewVBox(header, subtitle, widget.NewSeparator(), container.NewHBox(addBtn), columnHeaders),
		container.NewVBox(widget.NewSeparator(), container.NewHBox(saveBtn)),
		nil, nil,
		mw.bindingList,
	)
}

func noteOptions() []string {
	return config.NoteNames[:]
}

func (mw *MainWindow) createBindingListItem() fyne.CanvasObject {
	codeLabel := widget.NewLabel("")

	noteSelect := widget.NewSelect(noteOptions(), nil)
	noteSelect.PlaceHolder = "Note"

	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)

	return container.NewGridWithColumns(3, codeLabel, noteSelect, deleteBtn)
}

func (mw *MainWindow) updateBindingListItem(id widget.ListItemID, obj fyne.CanvasObject) {
	bindings := mw.cfg.Bindings.List()
	if id >= len(bindings) {
		return
	}

	binding := bindings[id]
	row := obj.(*fyne.Container)

	codeLabel := row.Objects[0].(*widget.Label)
	noteSelect := row.Objects[1].(*widget.Select)
	deleteBtn := row.Objects[2].(*widget.Button)

	codeLabel.SetText(binding.Code)

	// Clear the handler first so SetSelected doesn't write back.
	noteSelect.OnChanged = nil
	noteSelect.SetSelected(config.NoteName(binding.Note))
	noteSelect.OnChanged = func(s string) {
		if note, ok := config.ParseNoteName(s); ok {
			mw.bridge.Bind(binding.Code, note)
		}
	}

	deleteBtn.OnTapped = func() {
		mw.deleteBinding(binding.Code)
	}
}

// showAddBinding asks for a code and note, prefilled with code.
func (mw *MainWindow) showAddBinding(code string) {
	codeEntry := widget.NewEntry()
	codeEntry.SetText(code)
	codeEntry.SetPlaceHolder("1234567")
	codeEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty code")
		}
		return nil
	}

	noteSelect := widget.NewSelect(noteOptions(), nil)
	noteSelect.SetSelectedIndex(0)

	items := []*widget.FormItem{
		widget.NewFormItem("Code", codeEntry),
		widget.NewFormItem("Note", noteSelect),
	}
	dialog.ShowForm("Add Binding", "Add", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		note, valid := config.ParseNoteName(noteSelect.Selected)
		if !valid {
			return
		}
		mw.bridge.Bind(strings.TrimSpace(codeEntry.Text), note)
		mw.bindingList.Refresh()
	}, mw.window)
}

func (mw *MainWindow) deleteBinding(code string) {
	dialog.ShowConfirm("Delete Binding", "Are you sure you want to delete '"+code+"'?",
		func(confirm bool) {
			if confirm {
				mw.cfg.Bindings.Remove(code)
				mw.bindingList.Refresh()
			}
		}, mw.window)
}

func (mw *MainWindow) saveBindings() {
	if err := mw.cfg.Save(); err != nil {
		mw.log.Error("failed to save bindings", "err", err)
		dialog.ShowError(err, mw.window)
	} else {
		dialog.ShowInformation("Saved", "Bindings saved successfully.", mw.window)
	}
}
