package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// CaptureFileName names the PNG written for a frame.
func CaptureFileName(suffix string, timestamp time.Time) string {
	return fmt.Sprintf("globe-%s-%s.png", timestamp.Format("20060102-150405"), suffix)
}

func (g *Game) captureFrame(img *ebiten.Image, suffix string, timestamp time.Time) {
	if g.cfg.FrameCaptureDir == "" {
		return
	}

	if err := os.MkdirAll(g.cfg.FrameCaptureDir, 0o755); err != nil {
		zap.S().Warnw("creating capture directory", "dir", g.cfg.FrameCaptureDir, "error", err)
		return
	}
	path := filepath.Join(g.cfg.FrameCaptureDir, CaptureFileName(suffix, timestamp))

	// ReadPixels copies, so encoding can run after Draw returns.
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			zap.S().Warnw("capturing frame", "path", path, "error", err)
			return
		}
		zap.S().Infow("captured frame", "path", path)
	}()
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close capture file: %w", cerr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return nil
}
