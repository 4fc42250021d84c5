// Render surface widget the engine presents frames into
package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"live-hair-tint/internal/pipeline"
)

// Surface is a custom widget that reports its lifecycle to a
// pipeline.SurfaceListener. All methods run on the UI thread.
type Surface struct {
	widget.BaseWidget

	listener pipeline.SurfaceListener
	handle   *surfaceHandle
	image    *canvas.Image

	created   bool
	destroyed bool
	pixels    pipeline.Size
	presented image.Image
}

type surfaceHandle struct {
	s *Surface
}

// Present may be called from any goroutine
func (h *surfaceHandle) Present(frame image.Image) {
	fyne.Do(func() {
		if h.s.destroyed {
			return
		}
		h.s.presented = frame
		h.s.image.Image = frame
		h.s.image.Refresh()
	})
}

func NewSurface(listener pipeline.SurfaceListener) *Surface {
	s := &Surface{listener: listener}
	s.handle = &surfaceHandle{s: s}

	s.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	s.image.FillMode = canvas.ImageFillContain
	s.image.ScaleMode = canvas.ImageScaleFastest
	s.image.Hide()

	s.ExtendBaseWidget(s)
	return s
}

func (s *Surface) Handle() pipeline.SurfaceHandle { return s.handle }

// SetVisible shows or hides the presented frames
func (s *Surface) SetVisible(visible bool) {
	if visible {
		s.image.Show()
	} else {
		s.image.Hide()
	}
}

// Destroy reports the surface gone. Only the first call has an effect.
func (s *Surface) Destroy() {
	if !s.created || s.destroyed {
		return
	}
	s.destroyed = true
	s.listener.OnDestroyed(s.handle)
}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{surface: s}
}

func (s *Surface) laidOut(size fyne.Size) {
	if s.destroyed {
		return
	}
	if !s.created {
		s.created = true
		s.listener.OnCreated(s.handle)
	}

	px := pixelSize(s, size)
	if px == s.pixels {
		return
	}
	s.pixels = px
	s.listener.OnResized(s.handle, px.Width, px.Height)
}

func pixelSize(obj fyne.CanvasObject, size fyne.Size) pipeline.Size {
	scale := float32(1)
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(obj); c != nil {
			scale = c.Scale()
		}
	}
	return pipeline.Size{
		Width:  int(size.Width * scale),
		Height: int(size.Height * scale),
	}
}

type surfaceRenderer struct {
	surface *Surface
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.surface.image.Resize(size)
	r.surface.image.Move(fyne.NewPos(0, 0))
	r.surface.laidOut(size)
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *surfaceRenderer) Refresh() {
	r.surface.image.Refresh()
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.surface.image}
}

func (r *surfaceRenderer) Destroy() {
	r.surface.Destroy()
}
