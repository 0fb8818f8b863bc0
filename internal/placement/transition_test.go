package placement

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/stretchr/testify/require"
)

func img(w, h int) image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = 120, 60, 30, 255
	}
	return m
}

func mustApply(t *testing.T, d Document, evs ...Event) Document {
	t.Helper()
	for _, ev := range evs {
		var err error
		d, err = Apply(d, ev)
		require.NoError(t, err, "event %s", ev.Kind)
	}
	return d
}

func readyDoc(t *testing.T) Document {
	t.Helper()
	return mustApply(t, NewDocument(), BaseLoaded(img(1000, 800)), LogoLoaded(img(200, 100)))
}

func mustRect(t *testing.T, d Document) model.LogoRect {
	t.Helper()
	r, err := d.Rect()
	require.NoError(t, err)
	return r
}

func TestApply_UploadStates(t *testing.T) {
	d := NewDocument()
	require.Equal(t, StateEmpty, d.State())

	d = mustApply(t, d, LogoLoaded(img(200, 100)))
	require.Equal(t, StatePartialUpload, d.State())
	_, err := d.Rect()
	require.ErrorIs(t, err, model.ErrDocumentNotReady)

	d = mustApply(t, d, BaseLoaded(img(1000, 800)))
	require.Equal(t, StateReady, d.State())
	require.Equal(t, model.DefaultParams(), d.Params())
	require.Equal(t, model.LogoRect{X: 830, Y: 20, Width: 150, Height: 75}, mustRect(t, d))

	d = mustApply(t, d, BaseCleared())
	require.Equal(t, StatePartialUpload, d.State())

	d = mustApply(t, d, LogoCleared())
	require.Equal(t, StateEmpty, d.State())
}

func TestApply_ReplaceImageKeepsParamsAndReResolves(t *testing.T) {
	d := mustApply(t, readyDoc(t), SizeChanged(20), PresetSelected(model.PresetBL))
	require.Equal(t, StateAdjusted, d.State())

	d = mustApply(t, d, BaseLoaded(img(500, 500)))
	require.Equal(t, StateReady, d.State())
	require.Equal(t, 20.0, d.Params().SizePercentage)
	require.Equal(t, model.LogoRect{X: 20, Y: 500 - 50 - 20, Width: 100, Height: 50}, mustRect(t, d))
}

func TestApply_PresetSnap(t *testing.T) {
	d := mustApply(t, readyDoc(t), PresetSelected(model.PresetC))
	require.Equal(t, StateAdjusted, d.State())
	require.Equal(t, model.PresetC, d.Params().Position)
	require.Equal(t, model.LogoRect{X: 425, Y: 362.5, Width: 150, Height: 75}, mustRect(t, d))
}

func TestApply_MarginChangeAfterDragResnaps(t *testing.T) {
	d := mustApply(t, readyDoc(t), PresetSelected(model.PresetBR), Dragged(100, 100))
	require.Equal(t, model.PresetCustom, d.Params().Position)
	require.Equal(t, model.LogoRect{X: 100, Y: 100, Width: 150, Height: 75}, mustRect(t, d))

	d = mustApply(t, d, MarginChanged(40))
	require.Equal(t, model.PresetBR, d.Params().Position)
	require.Nil(t, d.Params().Offset)
	require.Equal(t, model.LogoRect{X: 1000 - 150 - 40, Y: 800 - 75 - 40, Width: 150, Height: 75}, mustRect(t, d))
}

func TestApply_SizeChangeUsesActivePreset(t *testing.T) {
	d := mustApply(t, readyDoc(t), PresetSelected(model.PresetTL), Dragged(300, 300), SizeChanged(30))
	require.Equal(t, model.PresetTL, d.Params().Position)
	require.Equal(t, model.LogoRect{X: 20, Y: 20, Width: 300, Height: 150}, mustRect(t, d))
}

func TestApply_OpacityDoesNotMoveLogo(t *testing.T) {
	d := mustApply(t, readyDoc(t), Dragged(10, 10))
	before := mustRect(t, d)

	d = mustApply(t, d, OpacityChanged(40))
	require.Equal(t, before, mustRect(t, d))
	require.Equal(t, 40.0, d.Params().Opacity)
	require.Equal(t, model.PresetCustom, d.Params().Position)
}

func TestApply_ResetEqualsTopRight(t *testing.T) {
	d := mustApply(t, readyDoc(t), SizeChanged(25), PresetSelected(model.PresetBC))
	reset := mustApply(t, d, Reset())
	pressed := mustApply(t, d, PresetSelected(model.PresetTR))

	require.Equal(t, pressed.Params(), reset.Params())
	require.Equal(t, mustRect(t, pressed), mustRect(t, reset))
}

func TestApply_ClampsParams(t *testing.T) {
	d := mustApply(t, readyDoc(t), SizeChanged(90), MarginChanged(-5), OpacityChanged(0))
	p := d.Params()
	require.Equal(t, float64(model.MaxSizePercentage), p.SizePercentage)
	require.Equal(t, float64(model.MinMargin), p.Margin)
	require.Equal(t, float64(model.MinOpacity), p.Opacity)
}

func TestApply_Errors(t *testing.T) {
	ready := readyDoc(t)

	tests := []struct {
		name    string
		doc     Document
		ev      Event
		wantErr error
	}{
		{"zero width logo", ready, LogoLoaded(image.NewNRGBA(image.Rect(0, 0, 0, 10))), model.ErrDegenerateGeometry},
		{"nil base", ready, BaseLoaded(nil), model.ErrInvalidInput},
		{"preset before ready", NewDocument(), PresetSelected(model.PresetTL), model.ErrDocumentNotReady},
		{"size before ready", NewDocument(), SizeChanged(10), model.ErrDocumentNotReady},
		{"custom preset button", ready, PresetSelected(model.PresetCustom), model.ErrIncorrectPreset},
		{"unknown preset", ready, PresetSelected("XL"), model.ErrIncorrectPreset},
		{"NaN drag", ready, Dragged(math.NaN(), 10), model.ErrIncorrectParams},
		{"infinite drag", ready, Dragged(10, math.Inf(1)), model.ErrIncorrectParams},
		{"unknown event", ready, Event{Kind: EventKind(99)}, model.ErrIncorrectParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.doc, tt.ev)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.doc, got)
		})
	}
}

func TestApply_DegenerateLogoRetainsPreviousLogo(t *testing.T) {
	d := readyDoc(t)
	prevLogo := d.Logo()

	got, err := Apply(d, LogoLoaded(image.NewNRGBA(image.Rect(0, 0, 0, 0))))
	require.ErrorIs(t, err, model.ErrDegenerateGeometry)
	require.Equal(t, model.KindOf(err), model.DegenerateGeometryKind)
	require.Same(t, prevLogo.(*image.NRGBA), got.Logo().(*image.NRGBA))
	require.Equal(t, color.NRGBA{R: 120, G: 60, B: 30, A: 255}, got.Logo().(*image.NRGBA).NRGBAAt(0, 0))
}
