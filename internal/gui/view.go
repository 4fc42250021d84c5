package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"live-hair-tint/internal/pipeline"
)

// NoticeDismiss is the button text of informational notices
const NoticeDismiss = "Got it"

// View hosts the render surface and shows notices. Implements pipeline.View.
type View struct {
	window  fyne.Window
	stack   *fyne.Container
	current *Surface
}

func NewView(window fyne.Window) *View {
	return &View{
		window: window,
		stack:  container.NewStack(),
	}
}

// Content is the container the surface is installed into
func (v *View) Content() fyne.CanvasObject { return v.stack }

func (v *View) NewSurface(listener pipeline.SurfaceListener) pipeline.RenderSurface {
	return NewSurface(listener)
}

// InstallSurface replaces the current surface, destroying it
func (v *View) InstallSurface(rs pipeline.RenderSurface) {
	s, ok := rs.(*Surface)
	if !ok {
		return
	}
	if v.current != nil && v.current != s {
		v.current.Destroy()
	}
	v.current = s
	v.stack.Objects = []fyne.CanvasObject{s}
	v.stack.Refresh()
}

// LastFrame is the most recent frame presented on the current surface
func (v *View) LastFrame() image.Image {
	if v.current == nil {
		return nil
	}
	return v.current.presented
}

func (v *View) ShowNotice(title, message string) {
	d := dialog.NewInformation(title, message, v.window)
	d.SetDismissText(NoticeDismiss)
	d.Show()
}
