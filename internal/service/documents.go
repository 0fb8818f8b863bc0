package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/UnendingLoop/BrandingStudio/internal/imageproc"
	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/mwlogger"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// DocumentService keeps editable documents in memory, one placement controller per document
type DocumentService struct {
	mu            sync.RWMutex
	docs          map[uuid.UUID]*placement.Controller
	renderer      placement.Renderer
	previewMaxDim int
}

func NewDocumentService(r placement.Renderer, previewMaxDim int) *DocumentService {
	return &DocumentService{
		docs:          make(map[uuid.UUID]*placement.Controller),
		renderer:      r,
		previewMaxDim: previewMaxDim,
	}
}

func (s *DocumentService) Create(ctx context.Context) (uuid.UUID, placement.Snapshot) {
	uid := uuid.New()
	ctrl := placement.NewController(s.renderer, s.previewMaxDim)

	s.mu.Lock()
	s.docs[uid] = ctrl
	s.mu.Unlock()

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("document_uid", uid.String()).Msg("Document created")
	return uid, ctrl.Snapshot()
}

func (s *DocumentService) Get(ctx context.Context, id string) (placement.Snapshot, error) {
	ctrl, _, err := s.controller(id)
	if err != nil {
		return placement.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return model.ErrIncorrectID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uid]; !ok {
		return model.ErrDocumentNotFound
	}
	delete(s.docs, uid)
	return nil
}

// Upload decodes r and puts the image into the slot
func (s *DocumentService) Upload(ctx context.Context, id string, slot model.Slot, r io.Reader) (placement.Snapshot, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	ctrl, _, err := s.controller(id)
	if err != nil {
		return placement.Snapshot{}, err
	}

	decoded, err := imageproc.Decode(r)
	if err != nil {
		logger.Warn().Err(err).Str("slot", string(slot)).Msg("Upload rejected")
		return ctrl.Snapshot(), domainErr(logger, err, "Failed to read upload")
	}

	var ev placement.Event
	switch slot {
	case model.SlotBase:
		ev = placement.BaseLoaded(decoded.Image)
	case model.SlotLogo:
		ev = placement.LogoLoaded(decoded.Image)
	default:
		return ctrl.Snapshot(), model.ErrIncorrectParams
	}

	return applyEvent(ctx, logger, ctrl, ev)
}

func (s *DocumentService) Clear(ctx context.Context, id string, slot model.Slot) (placement.Snapshot, error) {
	ev := placement.BaseCleared()
	switch slot {
	case model.SlotBase:
	case model.SlotLogo:
		ev = placement.LogoCleared()
	default:
		return placement.Snapshot{}, model.ErrIncorrectParams
	}
	return s.dispatch(ctx, id, ev)
}

// UpdatePlacement applies preset first so that size and margin are resolved against the new anchor
func (s *DocumentService) UpdatePlacement(ctx context.Context, id string, upd *model.PlacementUpdate) (placement.Snapshot, error) {
	events, err := placementEvents(upd)
	if err != nil {
		return placement.Snapshot{}, err
	}
	return s.dispatch(ctx, id, events...)
}

func (s *DocumentService) Drag(ctx context.Context, id string, p model.Point) (placement.Snapshot, error) {
	return s.dispatch(ctx, id, placement.Dragged(p.X, p.Y))
}

func (s *DocumentService) Reset(ctx context.Context, id string) (placement.Snapshot, error) {
	return s.dispatch(ctx, id, placement.Reset())
}

// Preview returns the latest preview encoded as PNG together with its generation
func (s *DocumentService) Preview(ctx context.Context, id string) ([]byte, uint64, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	ctrl, _, err := s.controller(id)
	if err != nil {
		return nil, 0, err
	}

	img, gen, err := ctrl.Preview()
	if err != nil {
		return nil, gen, err
	}

	data, err := imageproc.EncodePNG(img)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode preview")
		return nil, gen, model.ErrCommon500
	}
	return data, gen, nil
}

// Flatten renders the document at full resolution, used by ExportService
func (s *DocumentService) Flatten(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	ctrl, uid, err := s.controller(id)
	if err != nil {
		return nil, uid, err
	}

	flat, err := ctrl.Export(ctx)
	if err != nil {
		return nil, uid, domainErr(logger, err, "Failed to flatten document")
	}
	return flat, uid, nil
}

func (s *DocumentService) dispatch(ctx context.Context, id string, events ...placement.Event) (placement.Snapshot, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	ctrl, _, err := s.controller(id)
	if err != nil {
		return placement.Snapshot{}, err
	}

	var snap placement.Snapshot
	for _, ev := range events {
		snap, err = applyEvent(ctx, logger, ctrl, ev)
		if err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func applyEvent(ctx context.Context, logger zlog.Zerolog, ctrl *placement.Controller, ev placement.Event) (placement.Snapshot, error) {
	snap, err := ctrl.Dispatch(ctx, ev)
	if errors.Is(err, placement.ErrRenderFailed) {
		// правка принята, отстает только превью - клиент видит это по preview_generation
		logger.Warn().Err(err).Str("event", ev.Kind.String()).Msg("Preview is stale")
		return snap, nil
	}
	if err != nil {
		return snap, domainErr(logger, err, "Failed to apply "+ev.Kind.String())
	}
	return snap, nil
}

func (s *DocumentService) controller(id string) (*placement.Controller, uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, uuid.Nil, model.ErrIncorrectID
	}

	s.mu.RLock()
	ctrl, ok := s.docs[uid]
	s.mu.RUnlock()

	if !ok {
		return nil, uid, model.ErrDocumentNotFound
	}
	return ctrl, uid, nil
}
