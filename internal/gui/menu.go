// Main menu with camera actions
package gui

import (
	"fyne.io/fyne/v2"
)

func (a *Application) mainMenu() *fyne.MainMenu {
	cameraMenu := fyne.NewMenu("Camera",
		fyne.NewMenuItem("Pause", a.coordinator.Pause),
		fyne.NewMenuItem("Resume", a.coordinator.Resume),
		fyne.NewMenuItem("Reload effect", func() {
			a.coordinator.Reload(a.coordinator.Snapshot().Config)
		}),
		fyne.NewMenuItem("Save snapshot", a.saveSnapshot),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Forget camera permission", a.permission.Revoke),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Toggle gallery", a.sheet.Toggle),
	)

	return fyne.NewMainMenu(cameraMenu, viewMenu)
}
