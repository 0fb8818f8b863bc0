package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestWorker_initProcessor(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	tests := []struct {
		name       string
		export     *model.Export
		getErr     error
		updateErr  error
		wantErr    bool
		wantStatus model.Status
	}{
		{
			name:    "already done",
			export:  &model.Export{Status: model.StatusDone},
			wantErr: false,
		},
		{
			name:    "in progress",
			export:  &model.Export{Status: model.StatusInProgress},
			wantErr: true,
		},
		{
			name:    "export not found",
			getErr:  model.ErrExportNotFound,
			wantErr: true,
		},
		{
			name:       "thumbnail already stored",
			export:     &model.Export{Status: model.StatusCreated, ThumbKey: "thumbs/x.png"},
			wantStatus: model.StatusDone,
		},
		{
			name:       "update status error",
			export:     &model.Export{Status: model.StatusCreated},
			updateErr:  errors.New("db down"),
			wantErr:    true,
			wantStatus: model.StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotStatus model.Status
			svc := &mockWorkerService{
				getFn: func(ctx context.Context, _ string) (*model.Export, error) {
					return tt.export, tt.getErr
				},
				updateFn: func(ctx context.Context, _ string, st model.Status) error {
					gotStatus = st
					return tt.updateErr
				},
				saveResultFn: func(ctx context.Context, _ *model.Export) error {
					return nil
				},
			}

			w := &Worker{
				service:     svc,
				storage:     &mockStorage{},
				thumbPrefix: "thumbs/",
				thumbMaxDim: 64,
			}

			err := w.initProcessor(ctx, id)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantStatus, gotStatus)
		})
	}
}

func TestWorker_processTask_OK(t *testing.T) {
	ctx := context.Background()

	exp := &model.Export{
		UID:       uuid.New(),
		Status:    model.StatusInProgress,
		ObjectKey: "exports/src.png",
	}

	var putKey string
	var thumb image.Image
	storage := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			require.Equal(t, exp.ObjectKey, key)
			return io.NopCloser(bytes.NewReader(validPNG(400, 200))), model.PNG, nil
		},
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			putKey = key
			require.Equal(t, model.PNG, ct)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, int64(len(data)), size)
			thumb, err = png.Decode(bytes.NewReader(data))
			return err
		},
	}

	svc := &mockWorkerService{
		saveResultFn: func(ctx context.Context, e *model.Export) error {
			require.Equal(t, model.StatusDone, e.Status)
			require.Equal(t, putKey, e.ThumbKey)
			return nil
		},
	}

	w := &Worker{
		storage:     storage,
		service:     svc,
		thumbPrefix: "thumbs/",
		thumbMaxDim: 100,
	}

	require.NoError(t, w.processTask(ctx, exp))
	require.Equal(t, "thumbs/"+exp.UID.String()+".png", putKey)
	require.Equal(t, image.Rect(0, 0, 100, 50), thumb.Bounds())
}

func TestWorker_initProcessor_FailureSavesErrMsg(t *testing.T) {
	exp := &model.Export{UID: uuid.New(), Status: model.StatusCreated, ObjectKey: "exports/a.png"}

	var saved *model.Export
	w := &Worker{
		storage: &mockStorage{
			getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
				return io.NopCloser(bytes.NewReader([]byte("not-an-image"))), "", nil
			},
		},
		service: &mockWorkerService{
			getFn:    func(ctx context.Context, _ string) (*model.Export, error) { return exp, nil },
			updateFn: func(ctx context.Context, _ string, _ model.Status) error { return nil },
			saveResultFn: func(ctx context.Context, e *model.Export) error {
				saved = e
				return nil
			},
		},
		thumbPrefix: "thumbs/",
		thumbMaxDim: 64,
	}

	err := w.initProcessor(context.Background(), exp.UID.String())
	require.ErrorIs(t, err, model.ErrInvalidInput)
	require.NotNil(t, saved)
	require.Equal(t, model.StatusFailed, saved.Status)
	require.Len(t, saved.ErrMsg, 1)
}

func TestWorker_processTask_StorageError(t *testing.T) {
	w := &Worker{
		storage: &mockStorage{
			getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
				return nil, "", errors.New("storage down")
			},
		},
		thumbMaxDim: 64,
	}

	err := w.processTask(context.Background(), &model.Export{UID: uuid.New()})
	require.Error(t, err)
}

func TestWorker_StartWorker_Commits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	okID, missingID, brokenID := uuid.New(), uuid.New(), uuid.New()

	svc := &mockWorkerService{
		getFn: func(ctx context.Context, id string) (*model.Export, error) {
			switch id {
			case okID.String():
				return &model.Export{UID: okID, Status: model.StatusDone}, nil
			case missingID.String():
				return nil, model.ErrExportNotFound
			default:
				return nil, errors.New("db down")
			}
		},
	}

	committed := make(chan string, 3)
	cons := &mockCommitter{commitFn: func(ctx context.Context, msg kafkago.Message) error {
		committed <- string(msg.Key)
		return nil
	}}

	queue := make(chan kafkago.Message, 3)
	queue <- kafkago.Message{Key: []byte(brokenID.String())}
	queue <- kafkago.Message{Key: []byte(okID.String())}
	queue <- kafkago.Message{Key: []byte(missingID.String())}
	close(queue)

	done := make(chan struct{})
	go func() {
		NewWorkerInstance(&mockStorage{}, svc, queue, cons, "thumbs/", 64).StartWorker(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after queue was closed")
	}

	close(committed)
	var keys []string
	for k := range committed {
		keys = append(keys, k)
	}
	require.Equal(t, []string{okID.String(), missingID.String()}, keys)
}

func validPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
