// Bottom sheet with the color gallery
package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"live-hair-tint/internal/gallery"
)

// expandedRows is how many swatch rows the expanded sheet shows
const expandedRows = 3

// GallerySheet is a collapsible grid of swatches. Collapsed it shows the
// peek height, set once the window is first laid out.
type GallerySheet struct {
	model  *gallery.Model
	swatch fyne.Size

	grid    *widget.GridWrap
	scroll  *container.Scroll
	chevron *widget.Button
	content *fyne.Container

	expanded bool
	peek     float32
}

func NewGallerySheet(model *gallery.Model, swatchSize float32) *GallerySheet {
	gs := &GallerySheet{
		model:  model,
		swatch: fyne.NewSquareSize(swatchSize),
	}

	gs.grid = widget.NewGridWrap(
		model.Count,
		func() fyne.CanvasObject { return newSwatch(gs.swatch) },
		gs.updateItem,
	)
	gs.grid.OnSelected = func(id widget.GridWrapItemID) {
		gs.grid.UnselectAll()
		gs.model.Select(id)
	}

	gs.chevron = widget.NewButtonWithIcon("", theme.MenuDropUpIcon(), gs.Toggle)
	gs.chevron.Importance = widget.LowImportance

	gs.scroll = container.NewVScroll(gs.grid)
	gs.peek = swatchSize + 2*theme.Padding()
	gs.applyHeight()

	gs.content = container.NewBorder(container.NewCenter(gs.chevron), nil, nil, nil, gs.scroll)
	return gs
}

func (gs *GallerySheet) Content() fyne.CanvasObject { return gs.content }

// SetPeekHeight sets the collapsed height from the measured header and row
func (gs *GallerySheet) SetPeekHeight(h float32) {
	if h <= 0 {
		return
	}
	gs.peek = h
	gs.applyHeight()
}

// PeekHeight measures one swatch row plus the chevron header
func (gs *GallerySheet) PeekHeight() float32 {
	return gs.chevron.MinSize().Height + gs.swatch.Height + 2*theme.Padding()
}

func (gs *GallerySheet) Expanded() bool { return gs.expanded }

func (gs *GallerySheet) Toggle() {
	gs.expanded = !gs.expanded
	if gs.expanded {
		gs.chevron.SetIcon(theme.MenuDropDownIcon())
	} else {
		gs.chevron.SetIcon(theme.MenuDropUpIcon())
	}
	gs.applyHeight()
}

func (gs *GallerySheet) applyHeight() {
	h := gs.peek
	if gs.expanded {
		h = gs.peek + float32(expandedRows-1)*(gs.swatch.Height+theme.Padding())
	}
	gs.scroll.SetMinSize(fyne.NewSize(0, h))
	if gs.content != nil {
		gs.content.Refresh()
	}
}

func (gs *GallerySheet) updateItem(id widget.GridWrapItemID, obj fyne.CanvasObject) {
	sw := obj.(*swatch)
	if entry, ok := gs.model.Entry(id); ok {
		sw.set(entry.Color, gs.model.Elevation(id, 1), false)
		return
	}
	sw.set(color.Transparent, 0, gs.model.IsSentinel(id))
}

// swatch is one gallery cell: a shadow, the color and the "more" icon
type swatch struct {
	widget.BaseWidget

	size   fyne.Size
	shadow *canvas.Rectangle
	fill   *canvas.Rectangle
	more   *widget.Icon
	elev   float32
}

func newSwatch(size fyne.Size) *swatch {
	sw := &swatch{
		size:   size,
		shadow: canvas.NewRectangle(theme.Color(theme.ColorNameShadow)),
		fill:   canvas.NewRectangle(color.Transparent),
		more:   widget.NewIcon(theme.MoreHorizontalIcon()),
	}
	sw.shadow.CornerRadius = theme.InputRadiusSize()
	sw.fill.CornerRadius = theme.InputRadiusSize()
	sw.ExtendBaseWidget(sw)
	return sw
}

func (sw *swatch) set(c color.Color, elevation float32, sentinel bool) {
	sw.fill.FillColor = c
	sw.elev = elevation
	if sentinel {
		sw.fill.StrokeColor = theme.Color(theme.ColorNameForeground)
		sw.fill.StrokeWidth = 1
		sw.more.Show()
	} else {
		sw.fill.StrokeWidth = 0
		sw.more.Hide()
	}
	if elevation > 0 {
		sw.shadow.Show()
	} else {
		sw.shadow.Hide()
	}
	sw.Refresh()
}

func (sw *swatch) CreateRenderer() fyne.WidgetRenderer {
	return &swatchRenderer{sw: sw}
}

type swatchRenderer struct {
	sw *swatch
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	e := r.sw.elev
	inner := fyne.NewSize(size.Width-e, size.Height-e)

	r.sw.shadow.Move(fyne.NewPos(e, e))
	r.sw.shadow.Resize(inner)
	r.sw.fill.Move(fyne.NewPos(0, 0))
	r.sw.fill.Resize(inner)

	iconSize := inner.Width / 2
	r.sw.more.Resize(fyne.NewSquareSize(iconSize))
	r.sw.more.Move(fyne.NewPos((inner.Width-iconSize)/2, (inner.Height-iconSize)/2))
}

func (r *swatchRenderer) MinSize() fyne.Size { return r.sw.size }

func (r *swatchRenderer) Refresh() {
	r.Layout(r.sw.Size())
	r.sw.shadow.Refresh()
	r.sw.fill.Refresh()
	r.sw.more.Refresh()
}

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.sw.shadow, r.sw.fill, r.sw.more}
}

func (r *swatchRenderer) Destroy() {}
