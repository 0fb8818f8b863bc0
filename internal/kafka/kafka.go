// Package kafka prepares the export-thumbnail topic and probes broker readiness
package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// InitKafkaTopics - creates topics in kafka, already existing topics are fine
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}

	for _, t := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		if ctx.Err() != nil {
			zlog.Logger.Warn().Msg("InitKafkaTopics canceled or timed out")
			return
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("Failed to run topics creation request")
			sleepCtx(ctx, delay)
			continue
		}

		successT := 0
		for k, v := range resp.Errors {
			switch {
			case v == nil, errors.Is(v, kafkago.TopicAlreadyExists):
				successT++
			default:
				zlog.Logger.Error().Err(v).Str("topic", k).Msg("Topic creation error")
			}
		}

		if len(resp.Errors) == successT {
			zlog.Logger.Info().Strs("topics", topics).Msg("All topics are ready")
			return
		}
		sleepCtx(ctx, delay)
	}
}

// WaitKafkaReady blocks until the broker accepts TCP connections or ctx is done
func WaitKafkaReady(ctx context.Context, brokerAddr string, delay time.Duration) error {
	for {
		conn, err := kafkago.DialContext(ctx, "tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				zlog.Logger.Warn().Err(errConn).Msg("Failed to close connection after testing Kafka readiness")
			}
			zlog.Logger.Info().Str("broker", brokerAddr).Msg("Kafka is ready!")
			return nil
		}

		zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("Kafka not ready")
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
