// Package repository provides methods to work with DB
package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/repository/exportpostgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type ExportRepo interface {
	Create(ctx context.Context, e *model.Export) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Export, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Export, error)
	SaveResult(ctx context.Context, e *model.Export) error
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	FetchOrphans(ctx context.Context, limit int) ([]string, error)
}

func NewPostgresExportRepo(dbconn *dbpg.DB) ExportRepo {
	return exportpostgres.PostgresRepo{DB: dbconn}
}

func ConnectWithRetries(appConfig *config.Config, retryCount int, idleTime time.Duration) *dbpg.DB {
	dbOptions := dbpg.Options{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
	}
	dsnLink := appConfig.GetString("POSTGRES_DSN")
	var dbConn *dbpg.DB
	var err error

	for range retryCount {
		dbConn, err = dbpg.New(dsnLink, nil, &dbOptions)
		if err == nil {
			break
		}
		zlog.Logger.Warn().Err(err).Dur("retry_in", idleTime).Msg("Failed to connect to PGDB")
		time.Sleep(idleTime)
	}

	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to connect to DB. Exiting the app...")
	}

	return dbConn
}

func MigrateWithRetries(db *sql.DB, migrationsPath string, retries int, idle time.Duration) {
	for i := 1; i <= retries; i++ {
		zlog.Logger.Info().Int("try", i).Msg("Running migrations...")
		err := runMigrate(db, migrationsPath)
		if err == nil {
			return
		}
		zlog.Logger.Warn().Err(err).Int("try", i).Dur("retry_in", idle).Msg("Migration try was unsuccessful")
		if i < retries {
			time.Sleep(idle)
		}
	}
	zlog.Logger.Fatal().Msg("Migrations: out of retries. Exiting...")
}

func runMigrate(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return err
	}

	sourceURL := "file://" + absPath
	zlog.Logger.Info().Str("source", sourceURL).Msg("Running migrations")

	m, err := migrate.NewWithDatabaseInstance(
		sourceURL,
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	zlog.Logger.Info().Msg("Database migrations applied successfully")
	return nil
}
