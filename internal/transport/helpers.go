package transport

import (
	"errors"
	"io"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrExportFailure):
		return 500
	case errors.Is(err, model.ErrDocumentNotFound),
		errors.Is(err, model.ErrExportNotFound),
		errors.Is(err, model.ErrResultNotReady):
		return 404
	case errors.Is(err, model.ErrExportBusy),
		errors.Is(err, model.ErrDocumentNotReady):
		return 409
	case errors.Is(err, model.ErrDegenerateGeometry),
		errors.Is(err, model.ErrDecodeFailure):
		return 422
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrIncorrectPreset),
		errors.Is(err, model.ErrIncorrectParams),
		errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID):
		return 400
	default:
		return 500
	}
}

// respondError пишет ошибку и ее категорию, если она известна
func respondError(ctx *ginext.Context, err error) {
	body := map[string]string{"error": err.Error()}
	if kind := model.KindOf(err); kind != model.UnknownKind {
		body["kind"] = string(kind)
	}
	ctx.JSON(errorCodeDefiner(err), body)
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Handler failed to close fileflow")
	}
}
