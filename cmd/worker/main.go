package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BrandingStudio/internal/appconfig"
	"github.com/UnendingLoop/BrandingStudio/internal/kafka"
	"github.com/UnendingLoop/BrandingStudio/internal/repository"
	"github.com/UnendingLoop/BrandingStudio/internal/service"
	"github.com/UnendingLoop/BrandingStudio/internal/storage"
	"github.com/UnendingLoop/BrandingStudio/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := appconfig.Load("./.env")

	zlog.InitConsole()
	if err := zlog.SetLevel(appconfig.String(appConfig, "LOG_LEVEL", "info")); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// подкллючиться к хранилищу
	strg := storage.NewExportStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresExportRepo(dbConn)
	// создаем экземпляр сервиса; документы воркеру не нужны
	var svc ExportWorkerService = service.NewExportService(
		repo, NoopPublisher{}, strg, nil,
		appconfig.String(appConfig, "BRAND_PREFIX", "brand"),
		appconfig.String(appConfig, "EXPORT_KEY_PREFIX", "exports/"),
	)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	if err := kafka.WaitKafkaReady(ctx, broker, 3*time.Second); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Kafka is not reachable")
	}
	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	topic := appConfig.GetString("KAFKA_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)

	cons.StartConsuming(ctx, queue, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	thumbs := worker.NewWorkerInstance(
		strg, svc, queue, cons,
		appconfig.String(appConfig, "THUMB_KEY_PREFIX", "thumbs/"),
		appconfig.Int(appConfig, "THUMB_MAX_DIM", 256),
	)
	go thumbs.StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, dbConn)
	zlog.Logger.Info().Msg("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, dbConn *dbpg.DB) {
	zlog.Logger.Info().Msg("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka-reader")
	}
	zlog.Logger.Info().Msg("Kafka-consumer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close DB-conn correctly")
		return
	}
	zlog.Logger.Info().Msg("DBconn closed")
}
