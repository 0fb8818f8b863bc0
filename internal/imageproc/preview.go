package imageproc

import (
	"fmt"
	"image"
	"math"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	xdraw "golang.org/x/image/draw"
)

// ScaleToFit resamples src so that its limiting dimension equals maxDim, keeping aspect ratio.
// Smaller sources are upscaled.
func ScaleToFit(src image.Image, maxDim int) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image provided to ScaleToFit", model.ErrInvalidInput)
	}
	if maxDim <= 0 {
		return nil, fmt.Errorf("%w: preview bound must be positive, got %d", model.ErrIncorrectParams, maxDim)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d", model.ErrDegenerateGeometry, w, h)
	}

	nw, nh := FitDimensions(w, h, maxDim)
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)

	return dst, nil
}

// FitDimensions - output size of ScaleToFit
func FitDimensions(w, h, maxDim int) (int, int) {
	scale := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))

	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
