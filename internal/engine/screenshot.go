package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/logger"
)

// captureFailure saves a screenshot of the page when enabled and supported
func (e *Engine) captureFailure(ctx context.Context, log logger.Logger) {
	if !e.Config.Browser.Screenshot {
		return
	}
	shooter, ok := e.page.(dom.Screenshotter)
	if !ok {
		return
	}

	path, err := SaveScreenshot(context.WithoutCancel(ctx), shooter, e.Config.Browser.ScreenshotDir, e.reporter.RunID())
	if err != nil {
		log.Warn("Could not save failure screenshot", logger.Error(err))
		return
	}
	log.Info("Saved failure screenshot", logger.String("path", path))
}

// SaveScreenshot writes a PNG of page into dir as <name>.png and returns its path
func SaveScreenshot(ctx context.Context, page dom.Screenshotter, dir, name string) (string, error) {
	buf, err := page.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	path := filepath.Join(dir, name+".png")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}
