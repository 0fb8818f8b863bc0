// Package worker contains the render pool used by the API and the thumbnail worker fed from the export queue
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/UnendingLoop/BrandingStudio/internal/imageproc"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

type ExportWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Export) error
	Get(ctx context.Context, id string) (*model.Export, error)
}

type ExportStorage interface {
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Committer - часть kafka-консьюмера, нужная воркеру
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	storage     ExportStorage
	service     ExportWorkerService
	queue       <-chan kafkago.Message
	consumer    Committer
	thumbPrefix string
	thumbMaxDim int
}

func NewWorkerInstance(strg ExportStorage, svc ExportWorkerService, q <-chan kafkago.Message, cons Committer, thumbPrefix string, maxDim int) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, thumbPrefix: thumbPrefix, thumbMaxDim: maxDim}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				zlog.Logger.Info().Msg("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrExportNotFound) {
				zlog.Logger.Error().Err(err).Str("export_uid", id).Msg("Thumbnail task failed")
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				zlog.Logger.Error().Err(err).Str("export_uid", id).Msg("Failed to commit queue-message")
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("worker failed to fetch export %q from DB: %w", id, err)
	}

	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("export %q: thumbnail already in progress", id)
	}

	// превью уже лежит в хранилище, но статус не успели обновить
	if task.ThumbKey != "" && strings.HasPrefix(task.ThumbKey, w.thumbPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done export in DB: %w", err)
		}
		return nil
	}

	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of export %q to `in_progress` in DB: %w", id, err)
	}

	if pErr := w.processTask(ctx, task); pErr != nil {
		task.Status = model.StatusFailed
		task.ErrMsg = append(task.ErrMsg, pErr.Error())
		if uErr := w.service.SaveResult(ctx, task); uErr != nil {
			return fmt.Errorf("failed to set status of export %q to `failed` in DB: %w \nAFTER\n error while processing: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to build thumbnail for export %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Export) error {
	src, _, err := w.storage.Get(ctx, task.ObjectKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch export-image from storage: %w", err)
	}
	defer closeFileFlow(src)

	thumb, size, err := imageproc.Thumbnailer(src, w.thumbMaxDim)
	if err != nil {
		return fmt.Errorf("worker failed to generate thumbnail: %w", err)
	}

	thumbKey := w.thumbPrefix + task.UID.String() + model.GetImageFileExt[model.PNG]
	if err := w.storage.Put(ctx, thumbKey, size, model.PNG, thumb); err != nil {
		return fmt.Errorf("worker failed to put thumbnail to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ThumbKey = thumbKey

	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Worker failed to close fileflow")
	}
}
