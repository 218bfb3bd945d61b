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

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/config"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/logx"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/postgres"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// The notifier turns order.created events into in-app notifications and
// confirmation mails.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logx.Init(cfg.ServiceName + "-notifier")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	h := &notify.Handler{
		Notes:     &notify.Repo{DB: db},
		Profiles:  &auth.ProfileRepo{DB: db},
		Locations: &locations.Repo{DB: db},
		Mail: &notify.SMTPSender{
			Addr: cfg.SMTPAddr(),
			Host: cfg.SMTPHost,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.EmailFrom,
		},
		Redis:  rdb,
		Logger: logger,
	}

	group := getenv("NOTIFIER_GROUP", "grandprix-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderCreated, workers)

	go func() {
		logger.Info("order.created consumer started", "group", group, "workers", workers)
		if err := cons.Start(ctx, h.HandleOrderCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down notifier")
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
