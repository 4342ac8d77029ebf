// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
	"github.com/unclebandit/salesmail-backend/internal/content"
	"github.com/unclebandit/salesmail-backend/internal/db"
	"github.com/unclebandit/salesmail-backend/internal/logger"
	"github.com/unclebandit/salesmail-backend/internal/mailer"
	"github.com/unclebandit/salesmail-backend/internal/queue"
	"github.com/unclebandit/salesmail-backend/internal/repository"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

var errNoBroker = errors.New("amqp.url is required to run the worker")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

// brokerTopic returns where bulk-send jobs are consumed from.
func brokerTopic(cfg config.AMQPConfig) (url, topic string, err error) {
	if cfg.URL == "" {
		return "", "", errNoBroker
	}
	topic = cfg.Queue
	if topic == "" {
		topic = queue.DefaultBulkSendTopic
	}
	return cfg.URL, topic, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	url, topic, err := brokerTopic(cfg.AMQP)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	generator, err := content.New(ctx, cfg.Content, log)
	if err != nil {
		return err
	}
	m, err := mailer.New(ctx, cfg.Mailer, log)
	if err != nil {
		return err
	}

	q, err := queue.NewAMQPQueue(url, log)
	if err != nil {
		return err
	}
	defer q.Close()

	jobs := &queue.BulkSendJobs{
		Queue:  q,
		Jobs:   &repository.JobStatusRepository{Client: rdb, TTL: cfg.Redis.JobTTL},
		Sender: service.NewBulkSendService(generator, m, &repository.SendHistoryRepository{DB: conn}, cfg.BulkSend, log),
		Topic:  topic,
		Logger: log,
	}
	if err := jobs.Start(); err != nil {
		return err
	}

	log.Info("worker running, waiting for bulk send jobs", zap.String("queue", topic))
	<-ctx.Done()
	log.Info("worker stopping, letting the running job finish")
	return nil
}
