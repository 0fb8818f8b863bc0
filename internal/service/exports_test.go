package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

func flattener(docUID uuid.UUID) *mockFlattener {
	return &mockFlattener{flattenFn: func(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error) {
		return &placement.Flattened{Data: []byte("png-bytes"), Width: 1000, Height: 800}, docUID, nil
	}}
}

// EXPORT - SUCCESS
func TestExportService_Export_OK(t *testing.T) {
	docUID := uuid.New()
	fixed := time.UnixMilli(1700000000123)

	var putKey string
	storage := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			putKey = key
			require.Equal(t, model.PNG, ct)
			require.Equal(t, int64(len("png-bytes")), size)
			return nil
		},
	}

	var created *model.Export
	repo := &mockRepo{
		createFn: func(ctx context.Context, e *model.Export) error {
			created = e
			return nil
		},
	}

	var published []byte
	pub := &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			published = key
			return nil
		},
	}

	svc := NewExportService(repo, pub, storage, flattener(docUID), "acme", "exports/")
	svc.now = func() time.Time { return fixed }

	res, err := svc.Export(context.Background(), docUID.String())
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), res.Data)
	require.Equal(t, "acme-branded-jewelry-1700000000123.png", res.Export.FileName)
	require.Equal(t, docUID, res.Export.DocumentUID)
	require.Equal(t, model.StatusCreated, created.Status)
	require.Equal(t, "exports/"+res.Export.UID.String()+".png", putKey)
	require.Equal(t, putKey, created.ObjectKey)
	require.Equal(t, res.Export.UID.String(), string(published))
}

// EXPORT - публикация не удалась, но экспорт сохранен
func TestExportService_Export_PublishFailureIsNotFatal(t *testing.T) {
	svc := NewExportService(
		&mockRepo{createFn: func(ctx context.Context, e *model.Export) error { return nil }},
		&mockPublisher{sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			return errors.New("kafka down")
		}},
		&mockStorage{putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error { return nil }},
		flattener(uuid.New()), "", "exports/")

	res, err := svc.Export(context.Background(), uuid.New().String())
	require.NoError(t, err)
	require.Contains(t, res.Export.FileName, model.DefaultBrandPrefix+"-branded-jewelry-")
}

func TestExportService_Export_Errors(t *testing.T) {
	tests := []struct {
		name      string
		flatErr   error
		putErr    error
		createErr error
		wantErr   error
		wantDel   bool
	}{
		{name: "document busy", flatErr: model.ErrExportBusy, wantErr: model.ErrExportBusy},
		{name: "document not ready", flatErr: model.ErrDocumentNotReady, wantErr: model.ErrDocumentNotReady},
		{name: "storage down", putErr: errors.New("minio down"), wantErr: model.ErrExportFailure},
		{name: "db down", createErr: errors.New("pg down"), wantErr: model.ErrCommon500, wantDel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			svc := NewExportService(
				&mockRepo{createFn: func(ctx context.Context, e *model.Export) error { return tt.createErr }},
				&mockPublisher{sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
					t.Fatal("must not publish on failure")
					return nil
				}},
				&mockStorage{
					putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error { return tt.putErr },
					deleteFn: func(ctx context.Context, key string) error {
						deleted = true
						return nil
					},
				},
				&mockFlattener{flattenFn: func(ctx context.Context, id string) (*placement.Flattened, uuid.UUID, error) {
					if tt.flatErr != nil {
						return nil, uuid.Nil, tt.flatErr
					}
					return &placement.Flattened{Data: []byte("x"), Width: 1, Height: 1}, uuid.New(), nil
				}},
				"acme", "exports/")

			_, err := svc.Export(context.Background(), uuid.New().String())
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantDel, deleted)
		})
	}
}

// GETLIST - SUCCESS
func TestExportService_GetList_OK(t *testing.T) {
	repo := &mockRepo{
		getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Export, error) {
			require.Equal(t, 1, req.Page)
			require.Equal(t, 30, req.Limit)
			require.Equal(t, "created_at", req.Sort)
			require.Equal(t, "DESC", req.Order)
			return []model.Export{{UID: uuid.New()}}, nil
		},
	}

	svc := ExportService{repo: repo}

	res, err := svc.GetList(context.Background(), &model.ListRequest{})
	require.NoError(t, err)
	require.Len(t, res, 1)
}

// GET - FAIL
func TestExportService_Get_Errors(t *testing.T) {
	svc := ExportService{repo: &mockRepo{getFn: func(ctx context.Context, id string) (*model.Export, error) {
		return nil, model.ErrExportNotFound
	}}}

	_, err := svc.Get(context.Background(), "bad-id")
	require.ErrorIs(t, err, model.ErrIncorrectID)

	_, err = svc.Get(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrExportNotFound)
}

// LOADEXPORT - SUCCESS
func TestExportService_LoadExport_OK(t *testing.T) {
	id := uuid.New()
	svc := ExportService{
		repo: &mockRepo{getFn: func(ctx context.Context, _ string) (*model.Export, error) {
			return &model.Export{UID: id, ObjectKey: "exports/a.png", FileName: "brand-branded-jewelry-1.png"}, nil
		}},
		storage: &mockStorage{getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			require.Equal(t, "exports/a.png", key)
			return io.NopCloser(bytes.NewReader([]byte("png"))), model.PNG, nil
		}},
	}

	rc, exp, err := svc.LoadExport(context.Background(), id.String())
	require.NoError(t, err)
	defer rc.Close()
	require.Equal(t, "brand-branded-jewelry-1.png", exp.FileName)
}

// LOADTHUMBNAIL - FAIL
func TestExportService_LoadThumbnail_NotReady(t *testing.T) {
	repo := &mockRepo{
		getFn: func(ctx context.Context, id string) (*model.Export, error) {
			return &model.Export{Status: model.StatusInProgress}, nil
		},
	}

	svc := ExportService{repo: repo}

	_, _, err := svc.LoadThumbnail(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrResultNotReady)
}

// DELETE - SUCCESS
func TestExportService_Delete_OK(t *testing.T) {
	var deleted []string
	svc := ExportService{
		repo: &mockRepo{
			getFn: func(ctx context.Context, id string) (*model.Export, error) {
				return &model.Export{ObjectKey: "exports/a.png", ThumbKey: "thumbs/a.png", Status: model.StatusDone}, nil
			},
			deleteFn: func(ctx context.Context, id string) error { return nil },
		},
		storage: &mockStorage{deleteFn: func(ctx context.Context, key string) error {
			deleted = append(deleted, key)
			return nil
		}},
	}

	require.NoError(t, svc.Delete(context.Background(), uuid.New().String()))
	require.Equal(t, []string{"exports/a.png", "thumbs/a.png"}, deleted)
}

// DELETE - FAIL - NOT FOUND
func TestExportService_Delete_NotFound(t *testing.T) {
	repo := &mockRepo{
		getFn: func(ctx context.Context, id string) (*model.Export, error) {
			return nil, model.ErrExportNotFound
		},
	}

	svc := ExportService{repo: repo}
	err := svc.Delete(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrExportNotFound)
}

// UPDATESTATUS
func TestExportService_UpdateStatus(t *testing.T) {
	repo := &mockRepo{
		updateStatusFn: func(ctx context.Context, id string, st model.Status) error {
			require.Equal(t, model.StatusDone, st)
			return nil
		},
	}

	svc := ExportService{repo: repo}
	require.NoError(t, svc.UpdateStatus(context.Background(), uuid.New().String(), model.StatusDone))
	require.ErrorIs(t, svc.UpdateStatus(context.Background(), uuid.New().String(), "lost"), model.ErrIncorrectParams)
	require.ErrorIs(t, svc.UpdateStatus(context.Background(), "nope", model.StatusDone), model.ErrIncorrectID)
}

// SAVERESULT - SUCCESS
func TestExportService_SaveResult_OK(t *testing.T) {
	repo := &mockRepo{
		saveResultFn: func(ctx context.Context, e *model.Export) error {
			require.NotNil(t, e.UpdatedAt)
			return nil
		},
	}

	svc := ExportService{repo: repo, now: time.Now}
	require.NoError(t, svc.SaveResult(context.Background(), &model.Export{}))
}

// REVIVEORPHANS - SUCCESS
func TestExportService_ReviveOrphans(t *testing.T) {
	called := 0

	repo := &mockRepo{
		fetchOrphansFn: func(ctx context.Context, limit int) ([]string, error) {
			return []string{"id1", "id2"}, nil
		},
	}

	pub := &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			called++
			return nil
		},
	}

	svc := ExportService{repo: repo, publisher: pub}
	svc.ReviveOrphans(context.Background(), 10)

	require.Equal(t, 2, called)
}
