// Package placement holds the editable branding document and the transition rules
// that keep the logo rectangle in sync with user changes.
package placement

import (
	"fmt"
	"image"

	"github.com/UnendingLoop/BrandingStudio/internal/geometry"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
)

type State int

const (
	StateEmpty State = iota
	StatePartialUpload
	StateReady
	StateAdjusted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartialUpload:
		return "partial_upload"
	case StateReady:
		return "ready"
	case StateAdjusted:
		return "adjusted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Document - one base image, one logo and the placement of the logo on the base.
// Images are never modified, so copying a Document is cheap and safe.
type Document struct {
	base   image.Image
	logo   image.Image
	params model.PlacementParams
	state  State
}

func NewDocument() Document {
	return Document{params: model.DefaultParams(), state: StateEmpty}
}

func (d Document) State() State                  { return d.state }
func (d Document) Params() model.PlacementParams { return d.params }
func (d Document) Base() image.Image             { return d.base }
func (d Document) Logo() image.Image             { return d.logo }
func (d Document) BaseSize() model.Size          { return model.SizeOf(d.base) }
func (d Document) LogoSize() model.Size          { return model.SizeOf(d.logo) }

// HasBoth reports whether both slots are filled
func (d Document) HasBoth() bool {
	return d.base != nil && d.logo != nil
}

// Rect derives the logo rectangle from the current params and image sizes
func (d Document) Rect() (model.LogoRect, error) {
	if !d.HasBoth() {
		return model.LogoRect{}, model.ErrDocumentNotReady
	}

	b, l := d.BaseSize(), d.LogoSize()
	p := d.params

	if p.Position == model.PresetCustom && p.Offset != nil {
		return geometry.ResolveOffset(*p.Offset, b.Width, b.Height, l.Width, l.Height, p.SizePercentage)
	}

	preset := p.Position
	if !preset.IsAnchor() {
		preset = p.Anchor
	}
	return geometry.Resolve(preset, b.Width, b.Height, l.Width, l.Height, p.SizePercentage, p.Margin)
}
