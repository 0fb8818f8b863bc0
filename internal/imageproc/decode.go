// Package imageproc provides raster operations for branding: decoding uploads, compositing the logo,
// preview scaling, thumbnails and PNG export encoding.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // webp-декодер для image.Decode
)

// Decoded - decoded upload with its sniffed content type
type Decoded struct {
	Image       image.Image
	ContentType string
}

// Decode reads an uploaded file, rejects non-image content and decodes it honoring EXIF orientation
func Decode(r io.Reader) (*Decoded, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil-reader provided", model.ErrInvalidInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", model.ErrDecodeFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", model.ErrInvalidInput)
	}

	// проверяем реальный тип содержимого, а не то что прислал клиент
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %q", model.ErrInvalidInput, mtype.String())
	}
	// векторные и экзотические форматы не поддерживаются
	if !model.SupportedUploads[mtype.String()] {
		return nil, fmt.Errorf("%w: %q is not supported", model.ErrInvalidInput, mtype.String())
	}

	// размеры из заголовка проверяем до выделения памяти под пиксели
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(model.ErrDecodeFailure, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > model.MaxUploadPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", model.ErrInvalidInput, cfg.Width, cfg.Height, model.MaxUploadPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Join(model.ErrDecodeFailure, err)
	}

	return &Decoded{Image: img, ContentType: mtype.String()}, nil
}
