package imageproc

import (
	"image"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/disintegration/imaging"
)

// Composite draws base at origin and the logo scaled to rect with uniform opacity (percent).
// Opacity multiplies the logo's own alpha. Parts of rect outside the base are clipped.
// Neither input is modified.
func Composite(base, logo image.Image, rect model.LogoRect, opacityPct float64) *image.NRGBA {
	// копия основы с началом координат в (0,0) - rect задан относительно левого верхнего угла
	dst := imaging.Clone(base)

	target := rect.Bounds()
	if logo == nil || target.Dx() <= 0 || target.Dy() <= 0 {
		return dst
	}
	if target.Intersect(dst.Bounds()).Empty() {
		return dst
	}

	scaled := imaging.Resize(logo, target.Dx(), target.Dy(), imaging.Lanczos)
	opacity := model.ClampRange(opacityPct, 0, 100) / 100

	return imaging.Overlay(dst, scaled, target.Min, opacity)
}
