// Saving preview frames to image files
package snapshot

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// Writer stores frames under Dir with a timestamped name
type Writer struct {
	Dir    string
	Ext    string
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewWriter(dir, ext string, logger logrus.FieldLogger) (*Writer, error) {
	if ext == "" {
		ext = ".png"
	}
	if !isSupportedImageFormat(ext) {
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	return &Writer{
		Dir:    dir,
		Ext:    strings.ToLower(ext),
		logger: logger.WithField("component", "snapshot"),
		now:    time.Now,
	}, nil
}

// Save writes frame, tagged with the configuration it was rendered with,
// and returns the file path
func (w *Writer) Save(frame image.Image, config string) (string, error) {
	if frame == nil || frame.Bounds().Empty() {
		return "", fmt.Errorf("no frame to save")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return "", fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	name := fmt.Sprintf("tint-%s-%s%s", config, w.now().Format("20060102-150405.000"), w.Ext)
	path := filepath.Join(w.Dir, name)

	if ok := gocv.IMWrite(path, mat); !ok {
		return "", fmt.Errorf("failed to save image: %s", path)
	}

	w.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Info("SNAPSHOT: Frame saved")
	return path, nil
}

func isSupportedImageFormat(ext string) bool {
	ext = strings.ToLower(ext)
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
