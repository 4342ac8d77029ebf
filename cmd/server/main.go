// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
	"github.com/unclebandit/salesmail-backend/internal/content"
	"github.com/unclebandit/salesmail-backend/internal/controller"
	"github.com/unclebandit/salesmail-backend/internal/db"
	"github.com/unclebandit/salesmail-backend/internal/handler"
	"github.com/unclebandit/salesmail-backend/internal/logger"
	"github.com/unclebandit/salesmail-backend/internal/mailer"
	"github.com/unclebandit/salesmail-backend/internal/preset"
	"github.com/unclebandit/salesmail-backend/internal/queue"
	"github.com/unclebandit/salesmail-backend/internal/repository"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
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

	customerRepo := &repository.CustomerRepository{DB: conn}
	industryRepo := &repository.IndustryRepository{DB: conn}
	batchRepo := &repository.ImportBatchRepository{DB: conn}
	historyRepo := &repository.SendHistoryRepository{DB: conn}
	jobRepo := &repository.JobStatusRepository{Client: rdb, TTL: cfg.Redis.JobTTL}

	generator, err := content.New(ctx, cfg.Content, log)
	if err != nil {
		return err
	}
	m, err := mailer.New(ctx, cfg.Mailer, log)
	if err != nil {
		return err
	}
	presets, err := preset.Builtin()
	if err != nil {
		return err
	}

	bulkSendService := service.NewBulkSendService(generator, m, historyRepo, cfg.BulkSend, log)

	// Without a broker the server runs queued jobs itself.
	var q queue.Queue
	if cfg.AMQP.URL != "" {
		aq, err := queue.NewAMQPQueue(cfg.AMQP.URL, log)
		if err != nil {
			return err
		}
		q = aq
	} else {
		q = queue.NewInMemoryQueue(log)
	}
	defer q.Close()

	jobs := &queue.BulkSendJobs{
		Queue:  q,
		Jobs:   jobRepo,
		Sender: bulkSendService,
		Topic:  cfg.AMQP.Queue,
		Logger: log,
	}
	if cfg.AMQP.URL == "" {
		if err := jobs.Start(); err != nil {
			return err
		}
	}

	controllers := handler.Controllers{
		Customers: &controller.CustomerController{
			CustomerService: &service.CustomerService{CustomerRepo: customerRepo, IndustryRepo: industryRepo},
			ImportService: &service.ImportService{
				CustomerRepo: customerRepo,
				IndustryRepo: industryRepo,
				BatchRepo:    batchRepo,
				ChunkSize:    cfg.Import.ChunkSize,
				Logger:       log,
			},
			MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
			Logger:         log,
		},
		History: &controller.HistoryController{
			HistoryService: &service.HistoryService{SendRepo: historyRepo, ImportRepo: batchRepo},
			Logger:         log,
		},
		Content: &controller.ContentController{
			Generator: generator,
			PersonalizeService: &service.PersonalizeService{
				Generator:   generator,
				Concurrency: cfg.Content.PersonalizeJobs,
				Logger:      log,
			},
			Logger: log,
		},
		Send: &controller.SendController{
			BulkSendService: bulkSendService,
			Jobs:            jobs,
			Presets:         presets,
			Logger:          log,
		},
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: handler.NewRouter(controllers, handler.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			DB:             conn,
			Logger:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
