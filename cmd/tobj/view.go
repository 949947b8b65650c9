package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/technichron/telda/pkg/obj"
)

// run builds and drives the tview application: a section list on the
// left, the selected section's rows on the right, q/Escape to quit.
func run(object *obj.Object, path string) error {
	b := newBrowser(object)
	app := tview.NewApplication()

	sections := tview.NewList().ShowSecondaryText(false)
	rows := tview.NewList().ShowSecondaryText(false)

	sections.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", path))
	rows.SetBorder(true).SetTitle(" Details ")

	populate := func(section string) {
		rows.Clear()
		for _, row := range b.rowsFor(section) {
			rows.AddItem(row, "", 0, nil)
		}
	}

	for _, name := range b.sectionNames() {
		name := name
		sections.AddItem(name, "", 0, func() {
			populate(name)
			app.SetFocus(rows)
		})
	}
	populate(b.sectionNames()[0])

	flex := tview.NewFlex().
		AddItem(sections, 28, 0, true).
		AddItem(rows, 0, 1, false)

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		}
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(flex, true).SetFocus(sections).Run()
}
