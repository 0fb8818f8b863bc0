package transport

import (
	"fmt"
	"io"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/mwlogger"
	"github.com/wb-go/wbf/ginext"
)

// Export flattens the document and sends the PNG back as attachment
func (h BrandingHandler) Export(ctx *ginext.Context) {
	res, err := h.exports.Export(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", attachment(res.Export.FileName))
	ctx.Header("X-Export-Id", res.Export.UID.String())
	ctx.Data(201, model.PNG, res.Data)
}

func (h BrandingHandler) GetAllExports(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.exports.GetList(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h BrandingHandler) LoadExport(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, exp, err := h.exports.LoadExport(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer closeFileFlow(res)

	ctx.Header("Content-Disposition", attachment(exp.FileName))
	streamFile(ctx, res, model.PNG, id)
}

func (h BrandingHandler) LoadThumbnail(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, cType, err := h.exports.LoadThumbnail(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer closeFileFlow(res)

	streamFile(ctx, res, cType, id)
}

func (h BrandingHandler) DeleteExport(ctx *ginext.Context) {
	if err := h.exports.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(204)
}

func streamFile(ctx *ginext.Context, r io.Reader, cType, id string) {
	if cType == "" {
		cType = model.PNG
	}
	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, r); err != nil {
		logger := mwlogger.LoggerFromContext(ctx.Request.Context())
		logger.Error().Err(err).Int64("written", n).Str("export_uid", id).Msg("Failed to write file to response")
	}
}

func attachment(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q", fileName)
}
