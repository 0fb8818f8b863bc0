package placement

import (
	"fmt"
	"image"
	"math"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
)

type EventKind int

const (
	EventBaseLoaded EventKind = iota
	EventLogoLoaded
	EventBaseCleared
	EventLogoCleared
	EventPresetSelected
	EventSizeChanged
	EventMarginChanged
	EventOpacityChanged
	EventDragged
	EventReset
)

var eventNames = map[EventKind]string{
	EventBaseLoaded:     "base_loaded",
	EventLogoLoaded:     "logo_loaded",
	EventBaseCleared:    "base_cleared",
	EventLogoCleared:    "logo_cleared",
	EventPresetSelected: "preset_selected",
	EventSizeChanged:    "size_changed",
	EventMarginChanged:  "margin_changed",
	EventOpacityChanged: "opacity_changed",
	EventDragged:        "dragged",
	EventReset:          "reset",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event - a discrete user action on the document
type Event struct {
	Kind   EventKind
	Image  image.Image
	Preset model.Preset
	Value  float64
	Offset model.Point
}

func BaseLoaded(img image.Image) Event    { return Event{Kind: EventBaseLoaded, Image: img} }
func LogoLoaded(img image.Image) Event    { return Event{Kind: EventLogoLoaded, Image: img} }
func BaseCleared() Event                  { return Event{Kind: EventBaseCleared} }
func LogoCleared() Event                  { return Event{Kind: EventLogoCleared} }
func PresetSelected(p model.Preset) Event { return Event{Kind: EventPresetSelected, Preset: p} }
func SizeChanged(pct float64) Event       { return Event{Kind: EventSizeChanged, Value: pct} }
func MarginChanged(px float64) Event      { return Event{Kind: EventMarginChanged, Value: px} }
func OpacityChanged(pct float64) Event    { return Event{Kind: EventOpacityChanged, Value: pct} }
func Dragged(x, y float64) Event          { return Event{Kind: EventDragged, Offset: model.Point{X: x, Y: y}} }
func Reset() Event                        { return Event{Kind: EventReset} }

// Apply returns the document after ev. On error the input document is returned unchanged.
func Apply(doc Document, ev Event) (Document, error) {
	next, err := apply(doc, ev)
	if err != nil {
		return doc, err
	}

	// прямоугольник обязан вычисляться для любого готового документа
	if next.HasBoth() {
		if _, err := next.Rect(); err != nil {
			return doc, err
		}
	}
	return next, nil
}

func apply(doc Document, ev Event) (Document, error) {
	next := doc

	switch ev.Kind {
	case EventBaseLoaded, EventLogoLoaded:
		if err := validateUpload(ev.Image); err != nil {
			return doc, err
		}
		wasReady := doc.HasBoth()
		if ev.Kind == EventBaseLoaded {
			next.base = ev.Image
		} else {
			next.logo = ev.Image
		}
		next.state = uploadState(next)
		// параметры создаются с дефолтами в момент когда оба изображения впервые на месте
		if next.HasBoth() && !wasReady {
			next.params = model.DefaultParams()
		}

	case EventBaseCleared, EventLogoCleared:
		if ev.Kind == EventBaseCleared {
			next.base = nil
		} else {
			next.logo = nil
		}
		next.state = uploadState(next)

	case EventPresetSelected:
		if !doc.HasBoth() {
			return doc, model.ErrDocumentNotReady
		}
		if !ev.Preset.IsAnchor() {
			return doc, fmt.Errorf("%w: %q", model.ErrIncorrectPreset, ev.Preset)
		}
		next.params = snapTo(next.params, ev.Preset)
		next.state = StateAdjusted

	case EventReset:
		if !doc.HasBoth() {
			return doc, model.ErrDocumentNotReady
		}
		next.params = snapTo(next.params, model.PresetTR)
		next.state = StateAdjusted

	case EventSizeChanged, EventMarginChanged:
		if !doc.HasBoth() {
			return doc, model.ErrDocumentNotReady
		}
		if ev.Kind == EventSizeChanged {
			next.params.SizePercentage = ev.Value
		} else {
			next.params.Margin = ev.Value
		}
		// ручное смещение не сохраняется - всегда возвращаемся к формуле активного пресета
		next.params = snapTo(next.params.Clamp(), next.params.Anchor)
		next.state = StateAdjusted

	case EventOpacityChanged:
		if !doc.HasBoth() {
			return doc, model.ErrDocumentNotReady
		}
		next.params.Opacity = ev.Value
		next.params = next.params.Clamp()
		next.state = StateAdjusted

	case EventDragged:
		if !doc.HasBoth() {
			return doc, model.ErrDocumentNotReady
		}
		offset := ev.Offset
		if !finite(offset.X) || !finite(offset.Y) {
			return doc, fmt.Errorf("%w: drag offset (%v, %v)", model.ErrIncorrectParams, offset.X, offset.Y)
		}
		next.params.Position = model.PresetCustom
		next.params.Offset = &offset
		next.state = StateAdjusted

	default:
		return doc, fmt.Errorf("%w: unknown event %s", model.ErrIncorrectParams, ev.Kind)
	}

	return next, nil
}

func snapTo(p model.PlacementParams, preset model.Preset) model.PlacementParams {
	if !preset.IsAnchor() {
		preset = model.PresetTR
	}
	p.Position = preset
	p.Anchor = preset
	p.Offset = nil
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func uploadState(d Document) State {
	switch {
	case d.HasBoth():
		return StateReady
	case d.base != nil || d.logo != nil:
		return StatePartialUpload
	default:
		return StateEmpty
	}
}

func validateUpload(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: no image provided", model.ErrInvalidInput)
	}
	s := model.SizeOf(img)
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: image %dx%d", model.ErrDegenerateGeometry, s.Width, s.Height)
	}
	return nil
}
