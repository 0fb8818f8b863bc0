package model

import (
	"image"
	"math"
)

type Preset string

// first letter - vertical anchor (T/C/B), second - horizontal (L/C/R), "C" alone - full center
const (
	PresetTL     Preset = "TL"
	PresetTC     Preset = "TC"
	PresetTR     Preset = "TR"
	PresetCL     Preset = "CL"
	PresetC      Preset = "C"
	PresetCR     Preset = "CR"
	PresetBL     Preset = "BL"
	PresetBC     Preset = "BC"
	PresetBR     Preset = "BR"
	PresetCustom Preset = "custom"
)

// AllPresets - the 9 anchor presets, custom excluded
var AllPresets = []Preset{
	PresetTL, PresetTC, PresetTR,
	PresetCL, PresetC, PresetCR,
	PresetBL, PresetBC, PresetBR,
}

// Anchor - position of the logo along one axis
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorCenter
	AnchorEnd
)

// PresetAnchors - vertical and horizontal anchors of every preset
var PresetAnchors = map[Preset][2]Anchor{
	PresetTL: {AnchorStart, AnchorStart},
	PresetTC: {AnchorStart, AnchorCenter},
	PresetTR: {AnchorStart, AnchorEnd},
	PresetCL: {AnchorCenter, AnchorStart},
	PresetC:  {AnchorCenter, AnchorCenter},
	PresetCR: {AnchorCenter, AnchorEnd},
	PresetBL: {AnchorEnd, AnchorStart},
	PresetBC: {AnchorEnd, AnchorCenter},
	PresetBR: {AnchorEnd, AnchorEnd},
}

func (p Preset) IsAnchor() bool {
	_, ok := PresetAnchors[p]
	return ok
}

//---------------------

const (
	MinSizePercentage = 5
	MaxSizePercentage = 50
	MinMargin         = 0
	MaxMargin         = 100
	MinOpacity        = 10
	MaxOpacity        = 100
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlacementParams - user-selected settings of the single logo
type PlacementParams struct {
	SizePercentage float64 `json:"size_percentage"`
	Margin         float64 `json:"margin"`
	Opacity        float64 `json:"opacity"`
	Position       Preset  `json:"position"`
	Anchor         Preset  `json:"anchor"`           // last non-custom preset, used to re-snap
	Offset         *Point  `json:"offset,omitempty"` // set by drag, only with Position == custom
}

func DefaultParams() PlacementParams {
	return PlacementParams{
		SizePercentage: 15,
		Margin:         20,
		Opacity:        100,
		Position:       PresetTR,
		Anchor:         PresetTR,
	}
}

// Clamp forces every numeric field into its allowed range
func (p PlacementParams) Clamp() PlacementParams {
	p.SizePercentage = ClampRange(p.SizePercentage, MinSizePercentage, MaxSizePercentage)
	p.Margin = ClampRange(p.Margin, MinMargin, MaxMargin)
	p.Opacity = ClampRange(p.Opacity, MinOpacity, MaxOpacity)
	return p
}

func ClampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

//---------------------

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func SizeOf(img image.Image) Size {
	if img == nil {
		return Size{}
	}
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// LogoRect - logo draw rectangle in base-image pixel space
type LogoRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds rounds the rect to whole pixels for rendering
func (r LogoRect) Bounds() image.Rectangle {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	return image.Rect(x, y, x+int(math.Round(r.Width)), y+int(math.Round(r.Height)))
}

//---------------------

// Slot - which of the two document images an upload or clear targets
type Slot string

const (
	SlotBase Slot = "base"
	SlotLogo Slot = "logo"
)

// PlacementUpdate - partial update of placement params, nil fields are left as is
type PlacementUpdate struct {
	SizePercentage *float64 `json:"size_percentage"`
	Margin         *float64 `json:"margin"`
	Opacity        *float64 `json:"opacity"`
	Preset         *Preset  `json:"preset"`
}

func (u PlacementUpdate) IsEmpty() bool {
	return u.SizePercentage == nil && u.Margin == nil && u.Opacity == nil && u.Preset == nil
}
