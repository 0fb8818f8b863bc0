// Package service provides business-logic for the app
package service

import (
	"context"
	"io"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ExportStorage - контракт для работы с хранилищем
type ExportStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Стратегия ретрая отправки в очередь
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// domainErr passes known domain errors through and hides everything else behind ErrCommon500
func domainErr(logger zlog.Zerolog, err error, msg string) error {
	if model.KindOf(err) != model.UnknownKind {
		return err
	}
	logger.Error().Err(err).Msg(msg)
	return model.ErrCommon500
}
