package gui

import (
	"image"
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-hair-tint/internal/gallery"
	"live-hair-tint/internal/metrics"
	"live-hair-tint/internal/pipeline"
)

type listener struct {
	created   int
	resized   []pipeline.Size
	destroyed int
}

func (l *listener) OnCreated(pipeline.SurfaceHandle) { l.created++ }
func (l *listener) OnResized(_ pipeline.SurfaceHandle, w, h int) {
	l.resized = append(l.resized, pipeline.Size{Width: w, Height: h})
}
func (l *listener) OnDestroyed(pipeline.SurfaceHandle) { l.destroyed++ }

func TestSurfaceLifecycle(t *testing.T) {
	test.NewTempApp(t)

	l := &listener{}
	s := NewSurface(l)
	w := test.NewWindow(s)
	defer w.Close()
	w.SetPadded(false)
	w.Resize(fyne.NewSize(320, 240))

	assert.Equal(t, 1, l.created)
	require.NotEmpty(t, l.resized)
	last := l.resized[len(l.resized)-1]
	assert.Positive(t, last.Width)
	assert.Positive(t, last.Height)

	// same size again reports nothing new
	n := len(l.resized)
	s.Resize(s.Size())
	assert.Len(t, l.resized, n)

	s.Destroy()
	s.Destroy()
	assert.Equal(t, 1, l.destroyed)

	s.Resize(fyne.NewSize(10, 10))
	assert.Len(t, l.resized, n, "no events after destroy")
}

func TestSurfaceDestroyBeforeLayoutIsSilent(t *testing.T) {
	l := &listener{}
	s := NewSurface(l)
	s.Destroy()
	assert.Zero(t, l.destroyed)
}

func TestSurfacePresentAndVisibility(t *testing.T) {
	test.NewTempApp(t)

	s := NewSurface(&listener{})
	assert.False(t, s.image.Visible())

	s.SetVisible(true)
	assert.True(t, s.image.Visible())

	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s.Handle().Present(frame)
	assert.Eventually(t, func() bool { return s.image.Image == frame }, time.Second, 5*time.Millisecond)

	s.SetVisible(false)
	assert.False(t, s.image.Visible())
}

func TestViewInstallReplacesSurface(t *testing.T) {
	test.NewTempApp(t)

	w := test.NewWindow(nil)
	defer w.Close()
	v := NewView(w)
	w.SetContent(v.Content())
	w.Resize(fyne.NewSize(200, 200))

	first := &listener{}
	s1 := v.NewSurface(first)
	v.InstallSurface(s1)
	s1.(*Surface).Resize(fyne.NewSize(200, 200))
	require.Equal(t, 1, first.created)

	second := &listener{}
	s2 := v.NewSurface(second)
	v.InstallSurface(s2)

	assert.Equal(t, 1, first.destroyed)
	assert.Len(t, v.stack.Objects, 1)
	assert.Same(t, s2.(*Surface), v.stack.Objects[0])

	v.InstallSurface(s2)
	assert.Zero(t, second.destroyed)

	assert.Nil(t, v.LastFrame())
	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s2.(*Surface).Handle().Present(frame)
	assert.Eventually(t, func() bool { return v.LastFrame() == image.Image(frame) }, time.Second, 5*time.Millisecond)
}

func TestFirstLayoutRunsOnce(t *testing.T) {
	calls := 0
	l := &firstLayout{onFirst: func(fyne.Size) { calls++ }}
	c := container.New(l, container.NewStack())

	c.Resize(fyne.NewSize(0, 100))
	assert.Zero(t, calls)
	c.Resize(fyne.NewSize(100, 100))
	c.Resize(fyne.NewSize(200, 100))
	assert.Equal(t, 1, calls)
}

func TestGallerySheetSelectsAndToggles(t *testing.T) {
	test.NewTempApp(t)

	model, err := gallery.NewModel([]string{"0000FF", "58C9B9"})
	require.NoError(t, err)

	var selected []int
	model.SetOnSelect(func(i int) { selected = append(selected, i) })

	gs := NewGallerySheet(model, 40)
	w := test.NewWindow(gs.Content())
	defer w.Close()
	w.Resize(fyne.NewSize(300, 300))

	gs.grid.Select(1)
	gs.grid.Select(1)
	gs.grid.Select(2)
	assert.Equal(t, []int{1, 1, 2}, selected)

	collapsed := gs.scroll.MinSize().Height
	gs.Toggle()
	assert.True(t, gs.Expanded())
	assert.Greater(t, gs.scroll.MinSize().Height, collapsed)
	gs.Toggle()
	assert.Equal(t, collapsed, gs.scroll.MinSize().Height)

	gs.SetPeekHeight(0)
	assert.Equal(t, collapsed, gs.scroll.MinSize().Height)
	gs.SetPeekHeight(gs.PeekHeight())
	assert.Equal(t, gs.PeekHeight(), gs.scroll.MinSize().Height)
}

func TestSwatchSentinel(t *testing.T) {
	test.NewTempApp(t)

	sw := newSwatch(fyne.NewSquareSize(40))
	sw.set(color.NRGBA{R: 0xFF, A: 0xFF}, 5, false)
	assert.False(t, sw.more.Visible())
	assert.True(t, sw.shadow.Visible())

	sw.set(color.Transparent, 0, true)
	assert.True(t, sw.more.Visible())
	assert.False(t, sw.shadow.Visible())
}

func TestCameraPermissionPreferences(t *testing.T) {
	a := test.NewTempApp(t)
	logger, _ := logtest.NewNullLogger()

	p := NewCameraPermission(a.Preferences(), test.NewWindow(nil), logger)
	assert.False(t, p.IsGranted())

	a.Preferences().SetBool(permissionKey, true)
	assert.True(t, p.IsGranted())

	p.Revoke()
	assert.False(t, p.IsGranted())
}

func TestFormatStatus(t *testing.T) {
	stats := func() (metrics.Stats, bool) {
		return metrics.Stats{FPS: 29.96, MeanLatency: 12 * time.Millisecond, Dropped: 3}, true
	}

	active := pipeline.Snapshot{State: pipeline.StateActive, Config: "58C9B9", InstanceID: "0123456789abcdef"}
	assert.Equal(t, "active · #58C9B9 · 30.0 fps · 12 ms · 3 dropped · instance 01234567", formatStatus(active, stats))

	idle := pipeline.Snapshot{State: pipeline.StateIdle, Config: "0000FF"}
	assert.Equal(t, "idle · #0000FF", formatStatus(idle, stats))

	assert.Equal(t, "uninitialized", formatStatus(pipeline.Snapshot{}, nil))
}

func TestStatusBarUpdate(t *testing.T) {
	test.NewTempApp(t)

	sb := NewStatusBar(nil)
	sb.Update(pipeline.Snapshot{State: pipeline.StatePaused, Config: "FFD700"})
	assert.Equal(t, "paused · #FFD700", sb.label.Text)
}
