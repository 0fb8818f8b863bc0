// Package model provides data-structs for internal app-usage
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

//---------------------

// Export - flattened composite stored in object storage. Status tracks thumbnail generation by worker.
type Export struct {
	UID         uuid.UUID   `json:"uid"`
	DocumentUID uuid.UUID   `json:"document_uid"`
	FileName    string      `json:"file_name"`
	ObjectKey   string      `json:"-"`
	ThumbKey    string      `json:"-"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	SizeBytes   int64       `json:"size_bytes"`
	Status      Status      `json:"status,omitempty"`
	ErrMsg      StringSlice `json:"error,omitempty"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// ExportResult - what the API hands back to the caller after flattening
type ExportResult struct {
	Export *Export
	Data   []byte
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
	BMP  = "image/bmp"
	TIFF = "image/tiff"
)

// MaxUploadPixels - pixel budget of a single decoded upload
const MaxUploadPixels int64 = 50_000_000

// SupportedUploads - raster types the decoder accepts, keyed by sniffed MIME
var SupportedUploads = map[string]bool{
	JPEG: true,
	PNG:  true,
	GIF:  true,
	WEBP: true,
	BMP:  true,
	TIFF: true,
}

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
	BMP:  ".bmp",
	TIFF: ".tiff",
}

// ExportFileName builds the download name: <brand-prefix>-branded-jewelry-<unix-ms>.png
func ExportFileName(brandPrefix string, t time.Time) string {
	if brandPrefix == "" {
		brandPrefix = DefaultBrandPrefix
	}
	return fmt.Sprintf("%s-branded-jewelry-%d.png", brandPrefix, t.UnixMilli())
}

const DefaultBrandPrefix = "brand"

//--------------------

type StringSlice []string

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for StringSlice")
	}

	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to []StringSlice: %w", err)
	}
	return nil
}

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 || s == nil {
		return []byte(`[]`), nil
	}
	res, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal []StringSlice to JSONB: %w", err)
	}

	return res, nil
}
