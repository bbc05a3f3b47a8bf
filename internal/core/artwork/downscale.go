package artwork

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"
)

// resizeSem bounds concurrent decode/resize work so a wide album rip
// cannot stack up arbitrarily many full-size decodes in memory.
var resizeSem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

// Downscale resizes the image at path in place so its longer side is at
// most maxDim pixels, preserving aspect ratio. Images already within
// bounds are left untouched, byte for byte. A maxDim of zero or below
// disables the bound.
func Downscale(ctx context.Context, path string, maxDim int) error {
	if maxDim <= 0 {
		return nil
	}

	if err := resizeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer resizeSem.Release(1)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return nil
	}

	f, err = os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Scale the longer side to maxDim, truncating the other.
	var newWidth, newHeight int
	if width > height {
		newWidth = maxDim
		newHeight = int(float64(height) * (float64(maxDim) / float64(width)))
	} else {
		newHeight = maxDim
		newWidth = int(float64(width) * (float64(maxDim) / float64(height)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to rewrite image %s: %w", path, err)
	}
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: 90}); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}
	return out.Close()
}
