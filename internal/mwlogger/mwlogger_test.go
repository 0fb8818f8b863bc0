package mwlogger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestNewMWLogger_RequestID(t *testing.T) {
	var gotCtx context.Context
	h := NewMWLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx = r.Context()
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"propagated", "req-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusTeapot, w.Code)
			id := w.Header().Get("X-Request-Id")
			require.NotEmpty(t, id)
			if tt.header != "" {
				require.Equal(t, tt.header, id)
			}
			_, ok := gotCtx.Value(loggerWithRequestID{}).(zlog.Zerolog)
			require.True(t, ok)
		})
	}
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	require.NotPanics(t, func() {
		l := LoggerFromContext(context.Background())
		l.Debug().Msg("fallback logger works")
	})
}
