package worker

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/UnendingLoop/BrandingStudio/internal/imageproc"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/wb-go/wbf/zlog"
)

var ErrPoolStopped = errors.New("render pool is stopped")

// RenderJob - one composite+preview pass for a given parameter generation
type RenderJob struct {
	Generation    uint64
	Base          image.Image
	Logo          image.Image
	Rect          model.LogoRect
	Opacity       float64
	PreviewMaxDim int

	reply chan RenderResult
}

type RenderResult struct {
	Generation uint64
	FullSize   model.Size
	Preview    *image.NRGBA
	Err        error
}

// RenderPool runs composite+preview jobs off the caller's goroutine
type RenderPool struct {
	jobs    chan RenderJob
	workers int
	done    <-chan struct{}
}

func NewRenderPool(workers, queueSize int) *RenderPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &RenderPool{jobs: make(chan RenderJob, queueSize), workers: workers}
}

// StartWorkers launches the workers; they stop when ctx is cancelled
func (p *RenderPool) StartWorkers(ctx context.Context) {
	p.done = ctx.Done()
	for i := range p.workers {
		go p.loop(ctx, i)
	}
}

func (p *RenderPool) loop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			job.reply <- p.process(job, id)
		}
	}
}

func (p *RenderPool) process(job RenderJob, id int) (res RenderResult) {
	res.Generation = job.Generation

	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Int("worker", id).Uint64("generation", job.Generation).Msg(fmt.Sprint("render panic: ", r))
			res.Err = fmt.Errorf("%w: render panic: %v", model.ErrCommon500, r)
		}
	}()

	full := imageproc.Composite(job.Base, job.Logo, job.Rect, job.Opacity)
	res.FullSize = model.SizeOf(full)

	preview, err := imageproc.ScaleToFit(full, job.PreviewMaxDim)
	if err != nil {
		res.Err = fmt.Errorf("scale preview: %w", err)
		return res
	}
	res.Preview = preview
	return res
}

// Render submits the job and waits for its result
func (p *RenderPool) Render(ctx context.Context, job RenderJob) (RenderResult, error) {
	if p.done == nil {
		return RenderResult{}, ErrPoolStopped
	}

	job.reply = make(chan RenderResult, 1)

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return RenderResult{}, ctx.Err()
	case <-p.done:
		return RenderResult{}, ErrPoolStopped
	}

	select {
	case res := <-job.reply:
		return res, res.Err
	case <-ctx.Done():
		return RenderResult{}, ctx.Err()
	case <-p.done:
		return RenderResult{}, ErrPoolStopped
	}
}
