package pipeline

import "errors"

var (
	// ErrPermissionDenied is recoverable; the next selection asks again
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrResourceBuild wraps a failure constructing context, engine or converter
	ErrResourceBuild = errors.New("pipeline resource build failed")

	// ErrSelectionOutOfRange is informational; no rebuild happens
	ErrSelectionOutOfRange = errors.New("selection out of range")

	// ErrAlreadyStarted is returned by a second call to Run
	ErrAlreadyStarted = errors.New("coordinator already started")
)

// Notice text shown for a selection beyond the configured entries
const (
	NoticeTitle   = "To Be Continued"
	NoticeMessage = "More color or custom color is coming."
)
