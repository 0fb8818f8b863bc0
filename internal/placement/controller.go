package placement

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/UnendingLoop/BrandingStudio/internal/imageproc"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/worker"
)

// Renderer - контракт для пула рендеринга
type Renderer interface {
	Render(ctx context.Context, job worker.RenderJob) (worker.RenderResult, error)
}

// Snapshot - consistent view of the document after an update
type Snapshot struct {
	State             string                `json:"state"`
	Params            model.PlacementParams `json:"params"`
	Rect              *model.LogoRect       `json:"rect,omitempty"`
	Base              model.Size            `json:"base"`
	Logo              model.Size            `json:"logo"`
	Generation        uint64                `json:"generation"`
	PreviewGeneration uint64                `json:"preview_generation"`
	Exporting         bool                  `json:"exporting"`
}

// Flattened - encoded full-resolution export
type Flattened struct {
	Data   []byte
	Width  int
	Height int
}

// Controller owns a single Document. Every accepted change bumps the generation counter;
// a render result is applied only if no newer change happened while it was running.
type Controller struct {
	mu            sync.Mutex
	doc           Document
	generation    uint64
	preview       *image.NRGBA
	previewGen    uint64
	renderer      Renderer
	previewMaxDim int

	exporting atomic.Bool
	encode    func(image.Image) ([]byte, error)
}

func NewController(r Renderer, previewMaxDim int) *Controller {
	return &Controller{
		doc:           NewDocument(),
		renderer:      r,
		previewMaxDim: previewMaxDim,
		encode:        imageproc.EncodePNG,
	}
}

// ErrRenderFailed - the event was applied, only its preview could not be built
var ErrRenderFailed = errors.New("preview render failed")

// Dispatch applies ev and, when the document is ready, renders and applies a fresh preview
// before returning. The document and generation are committed before rendering: an error
// wrapping ErrRenderFailed means the edit is kept and the preview stays at an older
// generation (Snapshot.PreviewGeneration < Snapshot.Generation).
func (c *Controller) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	c.mu.Lock()
	next, err := Apply(c.doc, ev)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.doc = next
	c.generation++
	gen := c.generation

	job, ok := c.renderJobLocked(gen)
	if !ok {
		// превью без обоих изображений не существует
		c.preview = nil
		c.previewGen = gen
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	res, err := c.renderer.Render(ctx, job)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		return c.snapshotLocked(), fmt.Errorf("%w: generation %d: %w", ErrRenderFailed, gen, err)
	}
	// устаревший результат отбрасываем - last-writer-wins по счетчику поколений
	if res.Generation == c.generation {
		c.preview = res.Preview
		c.previewGen = res.Generation
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) renderJobLocked(gen uint64) (worker.RenderJob, bool) {
	rect, err := c.doc.Rect()
	if err != nil {
		return worker.RenderJob{}, false
	}
	return worker.RenderJob{
		Generation:    gen,
		Base:          c.doc.Base(),
		Logo:          c.doc.Logo(),
		Rect:          rect,
		Opacity:       c.doc.Params().Opacity,
		PreviewMaxDim: c.previewMaxDim,
	}, true
}

// Snapshot returns the current state without changing it
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:             c.doc.State().String(),
		Params:            c.doc.Params(),
		Base:              c.doc.BaseSize(),
		Logo:              c.doc.LogoSize(),
		Generation:        c.generation,
		PreviewGeneration: c.previewGen,
		Exporting:         c.exporting.Load(),
	}
	if rect, err := c.doc.Rect(); err == nil {
		snap.Rect = &rect
	}
	return snap
}

// Preview returns the last applied preview and the generation it was rendered for
func (c *Controller) Preview() (*image.NRGBA, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.preview == nil {
		return nil, c.previewGen, model.ErrDocumentNotReady
	}
	return c.preview, c.previewGen, nil
}

// Export flattens the document at full resolution. Only one export runs at a time;
// a concurrent call fails with ErrExportBusy instead of waiting.
func (c *Controller) Export(ctx context.Context) (*Flattened, error) {
	if !c.exporting.CompareAndSwap(false, true) {
		return nil, model.ErrExportBusy
	}
	defer c.exporting.Store(false)

	c.mu.Lock()
	doc := c.doc
	c.mu.Unlock()

	rect, err := doc.Rect()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := imageproc.Composite(doc.Base(), doc.Logo(), rect, doc.Params().Opacity)

	data, err := c.encode(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrExportFailure, err)
	}

	size := model.SizeOf(full)
	return &Flattened{Data: data, Width: size.Width, Height: size.Height}, nil
}
