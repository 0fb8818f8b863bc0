package main

import (
	"context"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/wb-go/wbf/retry"
)

type ExportWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, input *model.Export) error
	Get(ctx context.Context, id string) (*model.Export, error)
}

// NoopPublisher - ЗАГЛУШКА, воркер сам ничего в очередь не пишет
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}
