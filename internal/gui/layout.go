package gui

import (
	"sync"

	"fyne.io/fyne/v2"
)

// firstLayout stacks its objects and calls onFirst once, the first time it
// is laid out at a non-empty size
type firstLayout struct {
	once    sync.Once
	onFirst func(size fyne.Size)
}

func (l *firstLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(size)
	}
	if size.Width > 0 && size.Height > 0 && l.onFirst != nil {
		l.once.Do(func() { l.onFirst(size) })
	}
}

func (l *firstLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	size := fyne.NewSize(0, 0)
	for _, o := range objects {
		size = size.Max(o.MinSize())
	}
	return size
}
