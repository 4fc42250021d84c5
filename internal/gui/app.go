// Main application window: camera preview, color gallery and status line
package gui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"live-hair-tint/internal/config"
	"live-hair-tint/internal/effects"
	"live-hair-tint/internal/gallery"
	"live-hair-tint/internal/pipeline"
	"live-hair-tint/internal/snapshot"
	"live-hair-tint/internal/video"
)

const statusInterval = time.Second

// Application wires the coordinator to the fyne window
type Application struct {
	app       fyne.App
	window    fyne.Window
	cfg       *config.Config
	logger    *logrus.Logger
	debugMode bool

	// Core components
	model       *gallery.Model
	library     *effects.Library
	camera      *video.Camera
	factory     *video.Factory
	coordinator *pipeline.Coordinator
	snapshots   *snapshot.Writer

	// GUI components
	permission *CameraPermission
	view       *View
	sheet      *GallerySheet
	status     *StatusBar

	cancel context.CancelFunc
	done   chan struct{}
}

func NewApplication(app fyne.App, cfg *config.Config, logger *logrus.Logger, debugMode bool) (*Application, error) {
	window := app.NewWindow(cfg.UI.Title)
	window.Resize(fyne.NewSize(cfg.UI.Width, cfg.UI.Height))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		cfg:       cfg,
		logger:    logger,
		debugMode: debugMode,
		done:      make(chan struct{}),
	}

	if err := a.initializeCore(); err != nil {
		return nil, err
	}
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a, nil
}

func (a *Application) initializeCore() error {
	model, err := gallery.NewModel(a.cfg.Gallery.Palette)
	if err != nil {
		return fmt.Errorf("gallery: %w", err)
	}
	a.model = model

	a.library = effects.NewLibrary(a.cfg.Effects.Dir, a.cfg.Effects.Ext, a.cfg.Effects.DefaultStrength)
	a.camera = video.NewCamera(video.CameraOptions{
		FrontDevice: a.cfg.Camera.Device,
		BackDevice:  a.cfg.Camera.BackDevice,
		Width:       a.cfg.Camera.Width,
		Height:      a.cfg.Camera.Height,
		FPS:         a.cfg.Camera.FPS,
	}, a.logger)
	a.factory = video.NewFactory(a.library, a.logger)
	a.snapshots, err = snapshot.NewWriter(a.cfg.UI.SnapshotDir, a.cfg.UI.SnapshotFormat, a.logger)
	if err != nil {
		return fmt.Errorf("snapshots: %w", err)
	}
	a.permission = NewCameraPermission(a.app.Preferences(), a.window, a.logger)
	a.view = NewView(a.window)

	ids := model.ConfigIDs()
	configs := make([]pipeline.ConfigID, len(ids))
	initial := 0
	for i, id := range ids {
		configs[i] = pipeline.ConfigID(id)
		if a.cfg.Gallery.Initial != "" && id == a.cfg.Gallery.Initial {
			initial = i
		}
	}

	a.coordinator, err = pipeline.New(pipeline.Deps{
		Permission: a.permission,
		Camera:     a.camera,
		Factory:    a.factory,
		View:       a.view,
		Dispatcher: Dispatcher{},
		Logger:     a.logger,
	}, pipeline.Options{
		Configs:      configs,
		Initial:      initial,
		Facing:       pipeline.Facing(a.cfg.Camera.Facing),
		FlipY:        a.cfg.Pipeline.FlipY,
		InputStream:  a.cfg.Pipeline.InputStream,
		OutputStream: a.cfg.Pipeline.OutputStream,
		QueueSize:    a.cfg.Pipeline.QueueSize,
	})
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	return nil
}

func (a *Application) initializeGUI() {
	a.sheet = NewGallerySheet(a.model, a.cfg.UI.SwatchSize)
	a.status = NewStatusBar(a.factory.Stats)
}

func (a *Application) setupLayout() {
	bottom := container.NewVBox(
		widget.NewSeparator(),
		a.sheet.Content(),
		a.status.label,
	)
	content := container.NewBorder(nil, bottom, nil, nil, a.view.Content())

	// The first pass fixes the sheet's peek height, then the pipeline may build
	root := container.New(&firstLayout{onFirst: func(size fyne.Size) {
		a.sheet.SetPeekHeight(a.sheet.PeekHeight())
		a.logger.WithFields(logrus.Fields{
			"width":  size.Width,
			"height": size.Height,
		}).Debug("GUI: first layout")
		a.coordinator.LayoutReady()
	}}, content)

	a.window.SetMainMenu(a.mainMenu())
	a.window.SetContent(root)
}

func (a *Application) setupCallbacks() {
	a.model.SetOnSelect(a.coordinator.Select)
	a.coordinator.OnStateChange(a.status.Update)

	lifecycle := a.app.Lifecycle()
	lifecycle.SetOnExitedForeground(a.coordinator.Pause)
	lifecycle.SetOnEnteredForeground(a.coordinator.Resume)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go func() {
		defer close(a.done)
		if err := a.coordinator.Run(ctx); err != nil {
			a.logger.WithError(err).Error("PIPELINE: Coordinator stopped")
		}
	}()
	if a.cfg.Effects.Watch {
		go a.watchEffects(ctx)
	}
	go a.refreshStatus(ctx)

	a.window.SetCloseIntercept(a.shutdown)
	a.window.ShowAndRun()
}

// shutdown stops the coordinator off the UI thread, since a build in
// progress may still need it, then quits
func (a *Application) shutdown() {
	a.logger.Info("Cleaning up application resources")
	a.cancel()
	go func() {
		<-a.done
		fyne.Do(a.app.Quit)
	}()
}

func (a *Application) watchEffects(ctx context.Context) {
	w := effects.NewWatcher(a.library, a.logger)
	err := w.Run(ctx, func(id string) {
		a.coordinator.Reload(pipeline.ConfigID(id))
	})
	if err != nil {
		a.logger.WithError(err).Warn("EFFECTS: definitions are not watched")
	}
}

func (a *Application) refreshStatus(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fyne.Do(a.status.Tick)
		}
	}
}

func (a *Application) saveSnapshot() {
	path, err := a.snapshots.Save(a.view.LastFrame(), string(a.coordinator.Snapshot().Config))
	if err != nil {
		a.showError("Snapshot failed", err)
		return
	}
	a.showInfo("Snapshot saved", path)
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
}

func (a *Application) showInfo(title, message string) {
	a.logger.WithField("message", message).Info(title)
	dialog.ShowInformation(title, message, a.window)
}
