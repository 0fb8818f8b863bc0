// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/appconfig"
	"github.com/UnendingLoop/BrandingStudio/internal/kafka"
	"github.com/UnendingLoop/BrandingStudio/internal/mwlogger"
	"github.com/UnendingLoop/BrandingStudio/internal/repository"
	"github.com/UnendingLoop/BrandingStudio/internal/service"
	"github.com/UnendingLoop/BrandingStudio/internal/storage"
	"github.com/UnendingLoop/BrandingStudio/internal/transport"
	"github.com/UnendingLoop/BrandingStudio/internal/worker"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := appconfig.Load("./.env")

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(appconfig.String(appConfig, "LOG_LEVEL", "info")); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewExportStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresExportRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	if err := kafka.WaitKafkaReady(ctx, broker, 3*time.Second); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Kafka is not reachable")
	}
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// пул рендера превью живет столько же, сколько приложение
	renderWorkers := appconfig.Int(appConfig, "RENDER_WORKERS", 4)
	pool := worker.NewRenderPool(renderWorkers, renderWorkers*2)
	pool.StartWorkers(ctx)

	// создаем экземпляры сервисов
	docs := service.NewDocumentService(pool, appconfig.Int(appConfig, "PREVIEW_MAX_DIM", 800))
	var exports ExportAPIService = service.NewExportService(
		repo, pub, strg, docs,
		appconfig.String(appConfig, "BRAND_PREFIX", "brand"),
		appconfig.String(appConfig, "EXPORT_KEY_PREFIX", "exports/"),
	)
	// cоздаем экземпляр хендлера HTTP
	maxUpload := int64(appconfig.Int(appConfig, "MAX_UPLOAD_MB", 20)) << 20
	handlers := transport.NewBrandingHandler(docs, exports, maxUpload)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)
	registerRoutes(engine, handlers)

	srv := &http.Server{
		Addr:              ":" + appconfig.String(appConfig, "APP_PORT", "8080"),
		Handler:           mwlogger.NewMWLogger(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server launch
	go func() {
		zlog.Logger.Info().Str("addr", srv.Addr).Msg("Server running")
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				zlog.Logger.Info().Msg("Server gracefully stopping...")
			default:
				zlog.Logger.Error().Err(err).Msg("Server stopped")
				stop()
			}
		}
	}()

	// запускаем фонового воркера для отслеживания подвисших задач
	go recoveryLoop(ctx, exports, appconfig.Duration(appConfig, "RECOVERY_INTERVAL", time.Minute))

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(srv, pub, dbConn)
	zlog.Logger.Info().Msg("Exiting api...")
}

func registerRoutes(engine *ginext.Engine, h *transport.BrandingHandler) {
	engine.GET("/ping", h.SimplePinger)

	engine.POST("/documents", h.CreateDocument)
	engine.GET("/documents/:id", h.GetDocument)
	engine.DELETE("/documents/:id", h.DeleteDocument)
	engine.PUT("/documents/:id/base", h.UploadBase)
	engine.PUT("/documents/:id/logo", h.UploadLogo)
	engine.DELETE("/documents/:id/base", h.ClearBase)
	engine.DELETE("/documents/:id/logo", h.ClearLogo)
	engine.PATCH("/documents/:id/placement", h.UpdatePlacement) // пресет, размер, отступ, прозрачность
	engine.POST("/documents/:id/position", h.Drag)
	engine.POST("/documents/:id/reset", h.Reset)
	engine.GET("/documents/:id/preview", h.Preview)
	engine.POST("/documents/:id/export", h.Export)

	engine.GET("/exports", h.GetAllExports) // получение списка экспортов с пагинацией и сортировкой
	engine.GET("/exports/:id", h.LoadExport)
	engine.GET("/exports/:id/thumbnail", h.LoadThumbnail)
	engine.DELETE("/exports/:id", h.DeleteExport)
}

func recoveryLoop(ctx context.Context, svc ExportAPIService, every time.Duration) {
	logger := zlog.Logger.With().Str("loop", "recovery").Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovery loop crashed")
		}
	}()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(mwlogger.WithLogger(context.Background(), logger), 20)
		}
	}
}

func shutdown(srv *http.Server, pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	zlog.Logger.Info().Msg("Interrupt received!!! Starting shutdown sequence...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to shutdown server")
	}

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka-writer")
	}
	zlog.Logger.Info().Msg("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close DB-conn correctly")
		return
	}
	zlog.Logger.Info().Msg("DBconn closed")
}
