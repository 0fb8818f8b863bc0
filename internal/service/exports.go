package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/mwlogger"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/UnendingLoop/BrandingStudio/internal/repository"
	"github.com/google/uuid"
)

// DocumentFlattener - источник готовых композитов для экспорта
type DocumentFlattener interface {
	Flatten(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error)
}

type ExportService struct {
	repo            repository.ExportRepo
	publisher       TaskPublisher
	storage         ExportStorage
	docs            DocumentFlattener
	brandPrefix     string
	exportKeyPrefix string
	now             func() time.Time
}

func NewExportService(repo repository.ExportRepo, pub TaskPublisher, strg ExportStorage, docs DocumentFlattener, brandPrefix, exportKeyPrefix string) *ExportService {
	return &ExportService{
		repo:            repo,
		publisher:       pub,
		storage:         strg,
		docs:            docs,
		brandPrefix:     brandPrefix,
		exportKeyPrefix: exportKeyPrefix,
		now:             time.Now,
	}
}

// Export flattens the document, stores the PNG and queues it for thumbnailing
func (s *ExportService) Export(ctx context.Context, docID string) (*model.ExportResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	flat, docUID, err := s.docs.Flatten(ctx, docID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	exp := &model.Export{
		UID:         uuid.New(),
		DocumentUID: docUID,
		FileName:    model.ExportFileName(s.brandPrefix, now),
		Width:       flat.Width,
		Height:      flat.Height,
		SizeBytes:   int64(len(flat.Data)),
		Status:      model.StatusCreated,
		CreatedAt:   &now,
	}
	exp.ObjectKey = s.exportKeyPrefix + exp.UID.String() + model.GetImageFileExt[model.PNG]

	// кладем в хранилище
	if err := s.storage.Put(ctx, exp.ObjectKey, exp.SizeBytes, model.PNG, bytes.NewReader(flat.Data)); err != nil {
		logger.Error().Err(err).Str("key", exp.ObjectKey).Msg("Failed to save export in Storage")
		return nil, fmt.Errorf("%w: storage unavailable", model.ErrExportFailure)
	}

	// шлем в базу
	if err := s.repo.Create(ctx, exp); err != nil {
		logger.Error().Err(err).Msg("Failed to create export in DB")
		if dErr := s.storage.Delete(ctx, exp.ObjectKey); dErr != nil {
			logger.Error().Err(dErr).Msg("Failed to remove unregistered export from Storage")
		}
		return nil, model.ErrCommon500
	}

	// кладем в очередь на превью; если не вышло - подберет ReviveOrphans
	if err := s.publisher.SendWithRetry(ctx, retryStrategy, []byte(exp.UID.String()), nil); err != nil {
		logger.Error().Err(err).Str("export_uid", exp.UID.String()).Msg("Failed to publish export to thumbnail-queue")
	}

	logger.Info().
		Str("export_uid", exp.UID.String()).
		Str("file_name", exp.FileName).
		Int64("size_bytes", exp.SizeBytes).
		Msg("Export stored")

	return &model.ExportResult{Export: exp, Data: flat.Data}, nil
}

func (s *ExportService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := s.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch exports list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (s *ExportService) Get(ctx context.Context, id string) (*model.Export, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrExportNotFound) {
			return nil, model.ErrExportNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch export %q from DB", id))
		return nil, model.ErrCommon500
	}

	return res, nil
}

// LoadExport returns the stored full-size PNG
func (s *ExportService) LoadExport(ctx context.Context, id string) (io.ReadCloser, *model.Export, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	exp, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, _, err := s.storage.Get(ctx, exp.ObjectKey)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch export %q from Storage", id))
		return nil, nil, model.ErrCommon500
	}
	return data, exp, nil
}

func (s *ExportService) LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	exp, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if exp.Status != model.StatusDone {
		return nil, "", model.ErrResultNotReady
	}

	data, cType, err := s.storage.Get(ctx, exp.ThumbKey)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch thumbnail %q from Storage", id))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

func (s *ExportService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	exp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrExportNotFound) {
			return model.ErrExportNotFound
		}
		logger.Error().Err(err).Msg("Failed to delete export from DB")
		return model.ErrCommon500
	}

	// удаляем из хранилища экспорт и превью(если есть)
	if err := s.storage.Delete(ctx, exp.ObjectKey); err != nil {
		logger.Error().Err(err).Msg("Failed to delete export from Storage")
		return model.ErrCommon500
	}
	if exp.ThumbKey != "" {
		if err := s.storage.Delete(ctx, exp.ThumbKey); err != nil {
			logger.Error().Err(err).Msg("Failed to delete thumbnail from Storage")
			return model.ErrCommon500
		}
	}

	return nil
}

func (s *ExportService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}
	if !model.StatusMap[newStat] {
		return fmt.Errorf("%w: status %q", model.ErrIncorrectParams, newStat)
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := s.repo.UpdateStatus(ctx, id, newStat); err != nil {
		if errors.Is(err, model.ErrExportNotFound) {
			return model.ErrExportNotFound // 404
		}
		logger.Error().Err(err).Msg("Failed to update export status in DB")
		return model.ErrCommon500 // 500
	}

	return nil
}

func (s *ExportService) SaveResult(ctx context.Context, input *model.Export) error {
	logger := mwlogger.LoggerFromContext(ctx)
	t := s.now().UTC()
	input.UpdatedAt = &t

	if err := s.repo.SaveResult(ctx, input); err != nil {
		if errors.Is(err, model.ErrExportNotFound) {
			return model.ErrExportNotFound // 404
		}
		logger.Error().Err(err).Msg("Failed to save thumbnail result in DB")
		return model.ErrCommon500 // 500
	}

	return nil
}

// ReviveOrphans republishes exports whose thumbnail never finished
func (s *ExportService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := s.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := s.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Str("export_uid", v).Msg("Failed to publish orphan to queue")
		}
	}
	if len(orphans) > 0 {
		logger.Info().Int("count", len(orphans)).Msg("Orphan exports republished")
	}
}
