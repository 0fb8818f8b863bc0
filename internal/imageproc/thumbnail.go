package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Thumbnailer decodes an exported image and produces a PNG thumbnail bounded by maxDim
func Thumbnailer(r io.Reader, maxDim int) (io.Reader, int64, error) {
	if r == nil {
		return nil, -1, errors.New("nil-reader exportIMG provided to Thumbnailer")
	}

	src, err := Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to DEcode exportIMG in Thumbnailer: %w", err)
	}

	thumb, err := ScaleToFit(src.Image, maxDim)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scale exportIMG in Thumbnailer: %w", err)
	}

	data, err := EncodePNG(thumb)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to ENcode thumbnail in Thumbnailer: %w", err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
