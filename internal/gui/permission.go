package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"
)

const permissionKey = "camera.permission.granted"

// CameraPermission asks once for camera access and remembers the answer in
// the app preferences
type CameraPermission struct {
	prefs  fyne.Preferences
	window fyne.Window
	logger logrus.FieldLogger
}

func NewCameraPermission(prefs fyne.Preferences, window fyne.Window, logger logrus.FieldLogger) *CameraPermission {
	return &CameraPermission{
		prefs:  prefs,
		window: window,
		logger: logger.WithField("component", "permission"),
	}
}

func (p *CameraPermission) IsGranted() bool {
	return p.prefs.Bool(permissionKey)
}

// Request shows the consent dialog; onResult runs on the UI thread
func (p *CameraPermission) Request(onResult func(granted bool)) {
	fyne.Do(func() {
		d := dialog.NewConfirm(
			"Camera access",
			"Live Hair Tint needs your camera to preview colors.",
			func(granted bool) {
				if granted {
					p.prefs.SetBool(permissionKey, true)
				}
				p.logger.WithField("granted", granted).Info("PERMISSION: Camera access answered")
				onResult(granted)
			},
			p.window,
		)
		d.SetConfirmText("Allow")
		d.SetDismissText("Deny")
		d.Show()
	})
}

// Revoke forgets a previous grant
func (p *CameraPermission) Revoke() {
	p.prefs.RemoveValue(permissionKey)
	p.logger.Info("PERMISSION: Camera access revoked")
}
