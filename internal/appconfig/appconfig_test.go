package appconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapConfig map[string]string

func (m mapConfig) GetString(key string) string { return m[key] }

func TestHelpers(t *testing.T) {
	cfg := mapConfig{
		"PREVIEW_MAX_DIM": "1024",
		"RENDER_WORKERS":  "abc",
		"MAX_UPLOAD_MB":   "-5",
		"BRAND_PREFIX":    "acme",
		"RECOVERY_EVERY":  "30s",
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int set", Int(cfg, "PREVIEW_MAX_DIM", 800), 1024},
		{"int not a number", Int(cfg, "RENDER_WORKERS", 4), 4},
		{"int negative", Int(cfg, "MAX_UPLOAD_MB", 20), 20},
		{"int missing", Int(cfg, "THUMB_MAX_DIM", 256), 256},
		{"string set", String(cfg, "BRAND_PREFIX", "brand"), "acme"},
		{"string missing", String(cfg, "EXPORT_KEY_PREFIX", "exports/"), "exports/"},
		{"duration set", Duration(cfg, "RECOVERY_EVERY", time.Minute), 30 * time.Second},
		{"duration missing", Duration(cfg, "NOPE", time.Minute), time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.got)
		})
	}
}
