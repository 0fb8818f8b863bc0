package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/google/uuid"
)

type mockDocumentService struct {
	createFn          func(ctx context.Context) (uuid.UUID, placement.Snapshot)
	getFn             func(ctx context.Context, id string) (placement.Snapshot, error)
	deleteFn          func(ctx context.Context, id string) error
	uploadFn          func(ctx context.Context, id string, slot model.Slot, r io.Reader) (placement.Snapshot, error)
	clearFn           func(ctx context.Context, id string, slot model.Slot) (placement.Snapshot, error)
	updatePlacementFn func(ctx context.Context, id string, upd *model.PlacementUpdate) (placement.Snapshot, error)
	dragFn            func(ctx context.Context, id string, p model.Point) (placement.Snapshot, error)
	resetFn           func(ctx context.Context, id string) (placement.Snapshot, error)
	previewFn         func(ctx context.Context, id string) ([]byte, uint64, error)
}

func (m *mockDocumentService) Create(ctx context.Context) (uuid.UUID, placement.Snapshot) {
	return m.createFn(ctx)
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (placement.Snapshot, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentService) Upload(ctx context.Context, id string, slot model.Slot, r io.Reader) (placement.Snapshot, error) {
	return m.uploadFn(ctx, id, slot, r)
}

func (m *mockDocumentService) Clear(ctx context.Context, id string, slot model.Slot) (placement.Snapshot, error) {
	return m.clearFn(ctx, id, slot)
}

func (m *mockDocumentService) UpdatePlacement(ctx context.Context, id string, upd *model.PlacementUpdate) (placement.Snapshot, error) {
	return m.updatePlacementFn(ctx, id, upd)
}

func (m *mockDocumentService) Drag(ctx context.Context, id string, p model.Point) (placement.Snapshot, error) {
	return m.dragFn(ctx, id, p)
}

func (m *mockDocumentService) Reset(ctx context.Context, id string) (placement.Snapshot, error) {
	return m.resetFn(ctx, id)
}

func (m *mockDocumentService) Preview(ctx context.Context, id string) ([]byte, uint64, error) {
	return m.previewFn(ctx, id)
}

//----------------------------------

type mockExportService struct {
	exportFn        func(ctx context.Context, docID string) (*model.ExportResult, error)
	getListFn       func(ctx context.Context, req *model.ListRequest) ([]model.Export, error)
	loadExportFn    func(ctx context.Context, id string) (io.ReadCloser, *model.Export, error)
	loadThumbnailFn func(ctx context.Context, id string) (io.ReadCloser, string, error)
	deleteFn        func(ctx context.Context, id string) error
}

func (m *mockExportService) Export(ctx context.Context, docID string) (*model.ExportResult, error) {
	return m.exportFn(ctx, docID)
}

func (m *mockExportService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error) {
	return m.getListFn(ctx, req)
}

func (m *mockExportService) LoadExport(ctx context.Context, id string) (io.ReadCloser, *model.Export, error) {
	return m.loadExportFn(ctx, id)
}

func (m *mockExportService) LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadThumbnailFn(ctx, id)
}

func (m *mockExportService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
