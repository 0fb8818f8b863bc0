package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/disintegration/imaging"
)

// EncodePNG flattens img into PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image provided to encoder", model.ErrExportFailure)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Join(model.ErrExportFailure, err)
	}
	return buf.Bytes(), nil
}
