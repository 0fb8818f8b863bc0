// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
)

type DocumentService interface {
	Create(ctx context.Context) (uuid.UUID, placement.Snapshot)
	Get(ctx context.Context, id string) (placement.Snapshot, error)
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, id string, slot model.Slot, r io.Reader) (placement.Snapshot, error)
	Clear(ctx context.Context, id string, slot model.Slot) (placement.Snapshot, error)
	UpdatePlacement(ctx context.Context, id string, upd *model.PlacementUpdate) (placement.Snapshot, error)
	Drag(ctx context.Context, id string, p model.Point) (placement.Snapshot, error)
	Reset(ctx context.Context, id string) (placement.Snapshot, error)
	Preview(ctx context.Context, id string) ([]byte, uint64, error)
}

type ExportService interface {
	Export(ctx context.Context, docID string) (*model.ExportResult, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error)
	LoadExport(ctx context.Context, id string) (io.ReadCloser, *model.Export, error)
	LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
}

type BrandingHandler struct {
	docs           DocumentService
	exports        ExportService
	maxUploadBytes int64
}

func NewBrandingHandler(docs DocumentService, exports ExportService, maxUploadBytes int64) *BrandingHandler {
	return &BrandingHandler{
		docs:           docs,
		exports:        exports,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h BrandingHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h BrandingHandler) CreateDocument(ctx *ginext.Context) {
	uid, snap := h.docs.Create(ctx.Request.Context())
	ctx.JSON(201, map[string]any{"uid": uid, "document": snap})
}

func (h BrandingHandler) GetDocument(ctx *ginext.Context) {
	snap, err := h.docs.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) DeleteDocument(ctx *ginext.Context) {
	if err := h.docs.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(204)
}

// UploadBase и UploadLogo принимают multipart-поле "image"
func (h BrandingHandler) UploadBase(ctx *ginext.Context) { h.upload(ctx, model.SlotBase) }
func (h BrandingHandler) UploadLogo(ctx *ginext.Context) { h.upload(ctx, model.SlotLogo) }

func (h BrandingHandler) upload(ctx *ginext.Context, slot model.Slot) {
	if h.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUploadBytes)
	}

	file, _, err := ctx.Request.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			ctx.JSON(413, map[string]string{"error": "image is too large"})
			return
		}
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return
	}
	defer closeFileFlow(file)

	snap, err := h.docs.Upload(ctx.Request.Context(), ctx.Param("id"), slot, file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) ClearBase(ctx *ginext.Context) { h.clear(ctx, model.SlotBase) }
func (h BrandingHandler) ClearLogo(ctx *ginext.Context) { h.clear(ctx, model.SlotLogo) }

func (h BrandingHandler) clear(ctx *ginext.Context, slot model.Slot) {
	snap, err := h.docs.Clear(ctx.Request.Context(), ctx.Param("id"), slot)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) UpdatePlacement(ctx *ginext.Context) {
	var upd model.PlacementUpdate
	if err := ctx.ShouldBindJSON(&upd); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse placement params"})
		return
	}

	snap, err := h.docs.UpdatePlacement(ctx.Request.Context(), ctx.Param("id"), &upd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) Drag(ctx *ginext.Context) {
	var p model.Point
	if err := ctx.ShouldBindJSON(&p); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse position"})
		return
	}

	snap, err := h.docs.Drag(ctx.Request.Context(), ctx.Param("id"), p)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) Reset(ctx *ginext.Context) {
	snap, err := h.docs.Reset(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, snap)
}

func (h BrandingHandler) Preview(ctx *ginext.Context) {
	data, gen, err := h.docs.Preview(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("X-Preview-Generation", strconv.FormatUint(gen, 10))
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(200, model.PNG, data)
}
