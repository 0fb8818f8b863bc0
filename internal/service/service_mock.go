package service

import (
	"context"
	"io"

	"github.com/UnendingLoop/BrandingStudio/internal/imageproc"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/UnendingLoop/BrandingStudio/internal/worker"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

// MOCK RESPOSITORY

type mockRepo struct {
	createFn       func(ctx context.Context, e *model.Export) error
	getFn          func(ctx context.Context, id string) (*model.Export, error)
	getListFn      func(ctx context.Context, req *model.ListRequest) ([]model.Export, error)
	deleteFn       func(ctx context.Context, id string) error
	updateStatusFn func(ctx context.Context, id string, st model.Status) error
	saveResultFn   func(ctx context.Context, e *model.Export) error
	fetchOrphansFn func(ctx context.Context, limit int) ([]string, error)
}

func (m *mockRepo) Create(ctx context.Context, e *model.Export) error {
	return m.createFn(ctx, e)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*model.Export, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error) {
	return m.getListFn(ctx, req)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateStatusFn(ctx, id, st)
}

func (m *mockRepo) SaveResult(ctx context.Context, e *model.Export) error {
	return m.saveResultFn(ctx, e)
}

func (m *mockRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	return m.fetchOrphansFn(ctx, limit)
}

// MOCK STORAGE

type mockStorage struct {
	putFn    func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	getFn    func(ctx context.Context, key string) (io.ReadCloser, string, error)
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}

// MOCK FLATTENER

type mockFlattener struct {
	flattenFn func(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error)
}

func (m *mockFlattener) Flatten(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error) {
	return m.flattenFn(ctx, id)
}

// синхронный рендер вместо пула
type inlineRenderer struct{}

func (inlineRenderer) Render(_ context.Context, job worker.RenderJob) (worker.RenderResult, error) {
	full := imageproc.Composite(job.Base, job.Logo, job.Rect, job.Opacity)
	preview, err := imageproc.ScaleToFit(full, job.PreviewMaxDim)
	return worker.RenderResult{Generation: job.Generation, FullSize: model.SizeOf(full), Preview: preview, Err: err}, err
}

// рендер, который всегда падает - как пул во время остановки
type failingRenderer struct{ err error }

func (r failingRenderer) Render(_ context.Context, job worker.RenderJob) (worker.RenderResult, error) {
	return worker.RenderResult{Generation: job.Generation}, r.err
}
