package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-hair-tint/internal/config"
)

func TestInitLoggerLevels(t *testing.T) {
	logger, closeLog := initLogger(false, config.LoggingConfig{Level: "warn"})
	defer closeLog()
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, closeLog = initLogger(false, config.LoggingConfig{Level: "bogus"})
	defer closeLog()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger, closeLog = initLogger(true, config.LoggingConfig{Level: "error"})
	defer closeLog()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestInitLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tint.log")
	logger, closeLog := initLogger(false, config.LoggingConfig{Level: "info", FilePath: path})
	logger.Info("hello")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
