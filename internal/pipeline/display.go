package pipeline

import "math"

// FitDisplaySize scales frame so that it covers view while keeping the frame
// aspect ratio. Parts of the result may fall outside the view. An unknown
// frame size yields the view size.
func FitDisplaySize(frame, view Size) Size {
	if view.Empty() {
		return Size{}
	}
	if frame.Empty() {
		return view
	}

	frameAspect := float64(frame.Width) / float64(frame.Height)
	viewAspect := float64(view.Width) / float64(view.Height)

	if frameAspect < viewAspect {
		return Size{
			Width:  view.Width,
			Height: int(math.Round(float64(view.Width) / frameAspect)),
		}
	}
	return Size{
		Width:  int(math.Round(float64(view.Height) * frameAspect)),
		Height: view.Height,
	}
}
