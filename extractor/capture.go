package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"time"

	"github.com/use-agent/sitemodel/models"
)

// CaptureAll takes one full-page screenshot per viewport, in order. The
// viewport is left at the last entry; callers restore it when later steps
// measure geometry. Any failure aborts the whole set.
func CaptureAll(ctx context.Context, v Viewporter, viewports []models.ViewportSpec, settle time.Duration) ([]models.ScreenshotArtifact, error) {
	out := make([]models.ScreenshotArtifact, 0, len(viewports))
	for _, vp := range viewports {
		art, err := captureOne(ctx, v, vp, settle)
		if err != nil {
			return nil, &models.CaptureError{Viewport: vp.Name, Err: err}
		}
		out = append(out, art)
	}
	return out, nil
}

func captureOne(ctx context.Context, v Viewporter, vp models.ViewportSpec, settle time.Duration) (models.ScreenshotArtifact, error) {
	if err := v.SetViewport(ctx, vp); err != nil {
		return models.ScreenshotArtifact{}, err
	}
	if err := Sleep(ctx, settle); err != nil {
		return models.ScreenshotArtifact{}, err
	}
	img, err := v.Screenshot(ctx)
	if err != nil {
		return models.ScreenshotArtifact{}, err
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return models.ScreenshotArtifact{}, err
	}
	return models.ScreenshotArtifact{
		Viewport:     vp.Name,
		EncodedImage: base64.StdEncoding.EncodeToString(img),
		Width:        cfg.Width,
		Height:       cfg.Height,
	}, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
