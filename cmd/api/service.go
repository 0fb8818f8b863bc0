package main

import (
	"context"
	"io"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
)

type ExportAPIService interface {
	Export(ctx context.Context, docID string) (*model.ExportResult, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error)
	LoadExport(ctx context.Context, id string) (io.ReadCloser, *model.Export, error)
	LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
	ReviveOrphans(ctx context.Context, limit int)
}
