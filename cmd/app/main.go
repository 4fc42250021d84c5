// Live Hair Tint - camera preview with real-time hair color effects

package main

import (
	"flag"
	"io"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"live-hair-tint/internal/config"
	"live-hair-tint/internal/gui"
)

const (
	AppName    = "Live Hair Tint"
	AppID      = "com.livehairtint.app"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Path to a TOML, YAML or JSON settings file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).WithField("path", *configPath).Fatal("Failed to load configuration")
	}

	logger, closeLog := initLogger(*debugMode, cfg.Logging)
	defer closeLog()

	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
		"effects":    cfg.Effects.Dir,
	}).Info("Starting Live Hair Tint")

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.MediaVideoIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp, err := gui.NewApplication(myApp, cfg, logger, *debugMode)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create application")
	}
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
}

// initLogger builds the logger; -debug overrides the configured level
func initLogger(debugMode bool, cfg config.LoggingConfig) (*logrus.Logger, func()) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	closeFn := func() {}

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.WithError(err).Warn("Log file unavailable, logging to stdout only")
		} else {
			logger.SetOutput(io.MultiWriter(os.Stdout, f))
			closeFn = func() { _ = f.Close() }
		}
	}

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger, closeFn
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger, closeFn
}
