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
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/boardsync"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/config"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/logx"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/postgres"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// The boardsync service mirrors new orders onto the external tracking
// board. The column binding is resolved against the live board before
// the consumer starts, so a misconfigured board kills the process at
// boot instead of failing on the first order.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logx.Init(cfg.ServiceName + "-boardsync")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.BoardAPIToken == "" || cfg.BoardID == "" {
		log.Fatal("BOARD_API_TOKEN and BOARD_ID are required")
	}

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	client := boardsync.NewClient(cfg.BoardAPIURL, cfg.BoardAPIToken)
	binding, err := boardsync.ResolveBinding(ctx, client, cfg.BoardID, boardsync.BindingTitles{
		Client: cfg.BoardClientTitle,
		Status: cfg.BoardStatusTitle,
		Amount: cfg.BoardAmountTitle,
	})
	if err != nil {
		log.Fatalf("board binding: %v", err)
	}
	logger.Info("board binding resolved", "board_id", cfg.BoardID,
		"client", binding.Client, "status", binding.Status, "amount", binding.Amount)

	h := &boardsync.Handler{
		Dispatcher: &boardsync.Dispatcher{
			API:      client,
			BoardID:  cfg.BoardID,
			GroupID:  cfg.BoardGroupID,
			Binding:  binding,
			Profiles: &auth.ProfileRepo{DB: db},
			Orders:   &orders.Repo{DB: db},
			Logger:   logger,
		},
		Redis:  rdb,
		Logger: logger,
	}

	group := getenv("BOARDSYNC_GROUP", "grandprix-boardsync")
	workers := mustAtoi(os.Getenv("BOARDSYNC_WORKERS"), "2")
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
	logger.Info("shutting down boardsync")
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
