// Package storage connects the app to the object storage holding exports and thumbnails
package storage

import (
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

// NewExportStorage blocks until MinIO accepts the connection and the bucket exists
func NewExportStorage(cfg *config.Config, delay time.Duration) *miniostorage.MinioExportStorage {
	for {
		zlog.Logger.Info().Msg("Connecting to export-storage...")
		client, err := miniostorage.NewMinioClient(cfg)
		if err == nil {
			zlog.Logger.Info().Msg("Successfully connected export-storage!")
			return client
		}
		zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("Failed to init connection to export-storage")
		time.Sleep(delay)
	}
}
