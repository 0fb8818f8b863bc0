package exportpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

func (p PostgresRepo) Create(ctx context.Context, e *model.Export) error {
	query := `INSERT INTO exports (export_uid, document_uid, file_name, object_key, thumb_key, width, height, size_bytes, status, err_msg, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := p.DB.Master.ExecContext(ctx, query, e.UID, e.DocumentUID, e.FileName, e.ObjectKey, e.ThumbKey,
		e.Width, e.Height, e.SizeBytes, e.Status, e.ErrMsg, e.CreatedAt, e.CreatedAt)
	return err
}

func (p PostgresRepo) Get(ctx context.Context, id string) (*model.Export, error) {
	query := `SELECT export_uid, document_uid, file_name, object_key, thumb_key, width, height, size_bytes, status, err_msg, created_at, updated_at
	FROM exports
	WHERE export_uid = $1`
	var export model.Export

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&export.UID,
		&export.DocumentUID,
		&export.FileName,
		&export.ObjectKey,
		&export.ThumbKey,
		&export.Width,
		&export.Height,
		&export.SizeBytes,
		&export.Status,
		&export.ErrMsg,
		&export.CreatedAt,
		&export.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrExportNotFound
		default:
			return nil, err // 500
		}
	}
	return &export, nil
}

// GetList expects req.Sort and req.Order to be already validated by the service layer
func (p PostgresRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error) {
	query := fmt.Sprintf(`SELECT export_uid, document_uid, file_name, width, height, size_bytes, status, err_msg, created_at, updated_at
	FROM exports
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("Error while closing *sql.Rows after scanning")
		}
	}()

	exports := make([]model.Export, 0, req.Limit)
	for rows.Next() {
		var export model.Export
		if err := rows.Scan(&export.UID,
			&export.DocumentUID,
			&export.FileName,
			&export.Width,
			&export.Height,
			&export.SizeBytes,
			&export.Status,
			&export.ErrMsg,
			&export.CreatedAt,
			&export.UpdatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, export)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return exports, nil
}

func (p PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM exports
	WHERE export_uid = $1`

	res, err := p.DB.Master.ExecContext(ctx, query, id)
	if err != nil {
		return err // 500
	}
	return expectOneRow(res)
}

func (p PostgresRepo) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	query := `UPDATE exports SET status = $1, updated_at = now() WHERE export_uid = $2`

	res, err := p.DB.Master.ExecContext(ctx, query, newStat, id)
	if err != nil {
		return err // 500
	}
	return expectOneRow(res)
}

func (p PostgresRepo) SaveResult(ctx context.Context, e *model.Export) error {
	query := `UPDATE exports SET status = $1, updated_at = $2, thumb_key = $3, err_msg = $4 WHERE export_uid = $5`

	res, err := p.DB.Master.ExecContext(ctx, query, e.Status, e.UpdatedAt, e.ThumbKey, e.ErrMsg, e.UID)
	if err != nil {
		return err // 500
	}
	return expectOneRow(res)
}

// FetchOrphans returns exports whose thumbnail got stuck in the queue or in a dead worker
func (p PostgresRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT export_uid
	FROM exports
	WHERE status IN ($1, $2)
	AND updated_at < now() - interval '10 minutes'
	LIMIT $3`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusCreated, model.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("Error while closing *sql.Rows after scanning")
		}
	}()

	orphans := make([]string, 0, limit)
	for rows.Next() {
		uid := ""
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		orphans = append(orphans, uid)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orphans, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrExportNotFound // 404
	}
	return nil
}
