package gui

import "fyne.io/fyne/v2"

// Dispatcher runs coordinator UI work on the fyne main goroutine
type Dispatcher struct{}

func (Dispatcher) Do(fn func())        { fyne.Do(fn) }
func (Dispatcher) DoAndWait(fn func()) { fyne.DoAndWait(fn) }
