// Package geometry resolves where the logo is drawn on the base image.
package geometry

import (
	"fmt"
	"math"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
)

// Resolve maps base size, logo natural size, size% and margin onto the logo draw rect
// for one of the 9 anchor presets. The logo aspect ratio is always preserved.
func Resolve(preset model.Preset, baseW, baseH, logoW, logoH int, sizePercentage, margin float64) (model.LogoRect, error) {
	anchors, ok := model.PresetAnchors[preset]
	if !ok {
		return model.LogoRect{}, fmt.Errorf("%w: %q", model.ErrIncorrectPreset, preset)
	}

	w, h, err := logoSize(baseW, baseH, logoW, logoH, sizePercentage)
	if err != nil {
		return model.LogoRect{}, err
	}

	x := anchorOffset(anchors[1], float64(baseW), w, margin)
	y := anchorOffset(anchors[0], float64(baseH), h, margin)

	return model.LogoRect{
		X:      clamp(x, float64(baseW)-w),
		Y:      clamp(y, float64(baseH)-h),
		Width:  w,
		Height: h,
	}, nil
}

// ResolveOffset sizes the logo the same way as Resolve but places it at an explicit top-left offset
func ResolveOffset(offset model.Point, baseW, baseH, logoW, logoH int, sizePercentage float64) (model.LogoRect, error) {
	w, h, err := logoSize(baseW, baseH, logoW, logoH, sizePercentage)
	if err != nil {
		return model.LogoRect{}, err
	}

	return model.LogoRect{
		X:      clamp(offset.X, float64(baseW)-w),
		Y:      clamp(offset.Y, float64(baseH)-h),
		Width:  w,
		Height: h,
	}, nil
}

func logoSize(baseW, baseH, logoW, logoH int, sizePercentage float64) (float64, float64, error) {
	if baseW <= 0 || baseH <= 0 {
		return 0, 0, fmt.Errorf("%w: base %dx%d", model.ErrDegenerateGeometry, baseW, baseH)
	}
	if logoW <= 0 || logoH <= 0 {
		return 0, 0, fmt.Errorf("%w: logo %dx%d", model.ErrDegenerateGeometry, logoW, logoH)
	}

	w := float64(baseW) * sizePercentage / 100
	h := float64(logoH) * w / float64(logoW)
	return w, h, nil
}

func anchorOffset(a model.Anchor, total, size, margin float64) float64 {
	switch a {
	case model.AnchorStart:
		return margin
	case model.AnchorCenter:
		return (total - size) / 2
	default:
		return total - size - margin
	}
}

// upper may be negative when the logo is larger than the base: the low bound wins.
// NaN collapses to 0, infinities to the nearest bound.
func clamp(v, upper float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, upper))
}
