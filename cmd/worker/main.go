package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/config"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/logx"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/postgres"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// The worker reconciles carts after catalog changes and records status
// change notifications.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logx.Init(cfg.ServiceName + "-worker")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	notifyRepo := &notify.Repo{DB: db}
	clamper := cart.NewClamper(&cart.RedisStore{RDB: rdb}, notifyRepo, logger)
	statusHandler := &notify.Handler{Notes: notifyRepo, Redis: rdb, Logger: logger}

	group := getenv("WORKER_GROUP", "grandprix-worker")
	workers := mustAtoi(os.Getenv("WORKER_WORKERS"), "4")
	itemCons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicItemUpdated, workers)
	statusCons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderStatusChanged, workers)

	go func() {
		logger.Info("item.updated consumer started", "group", group, "workers", workers)
		if err := itemCons.Start(ctx, clamper.HandleItemUpdated); err != nil {
			log.Printf("item consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		logger.Info("order.status_changed consumer started", "group", group, "workers", workers)
		if err := statusCons.Start(ctx, statusHandler.HandleStatusChanged); err != nil {
			log.Printf("status consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down worker")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
