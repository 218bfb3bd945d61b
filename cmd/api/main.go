package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/boardsync"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout"
	plsqlite "github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog/sqlite"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/config"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/httpx"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/logx"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/postgres"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logx.Init(cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Placement audit log
	plog, err := plsqlite.Open(cfg.PlacementLogPath)
	if err != nil {
		log.Fatalf("placement log: %v", err)
	}
	defer plog.Close()

	// Kafka producers, one per topic
	itemProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicItemUpdated, 1024)
	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatusChanged, 1024)
	itemProd.Start(ctx)
	orderProd.Start(ctx)
	statusProd.Start(ctx)
	emitter := &events.Emitter{
		Service:       cfg.ServiceName,
		ItemUpdates:   itemProd,
		OrderCreates:  orderProd,
		StatusChanges: statusProd,
	}

	// Repos & services
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	locationRepo := &locations.Repo{DB: db}
	notifyRepo := &notify.Repo{DB: db}
	cartStore := &cart.RedisStore{RDB: rdb}
	cartSvc := cart.NewService(cartStore, catalogRepo)
	placer := checkout.NewPlacer(orderRepo, catalogRepo, cartSvc, locationRepo, plog, emitter, logger)

	// Board sync is optional; without a token the admin endpoints report 503.
	var board *boardsync.Dispatcher
	if cfg.BoardAPIToken != "" && cfg.BoardID != "" {
		client := boardsync.NewClient(cfg.BoardAPIURL, cfg.BoardAPIToken)
		binding, err := boardsync.ResolveBinding(ctx, client, cfg.BoardID, boardsync.BindingTitles{
			Client: cfg.BoardClientTitle,
			Status: cfg.BoardStatusTitle,
			Amount: cfg.BoardAmountTitle,
		})
		if err != nil {
			log.Fatalf("board binding: %v", err)
		}
		board = &boardsync.Dispatcher{
			API:      client,
			BoardID:  cfg.BoardID,
			GroupID:  cfg.BoardGroupID,
			Binding:  binding,
			Profiles: &auth.ProfileRepo{DB: db},
			Orders:   orderRepo,
			Logger:   logger,
		}
	}

	// Router
	router := httpx.NewRouter()
	sessions := &auth.RedisStore{RDB: rdb}
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessions))
		(&httpx.CatalogHandler{Catalog: catalogRepo}).Register(r)
		(&httpx.CartHandler{Cart: cartSvc}).Register(r)
		(&httpx.CheckoutHandler{Placer: placer}).Register(r)
		(&httpx.OrdersHandler{Orders: orderRepo}).Register(r)
		(&httpx.NotificationsHandler{Notes: notifyRepo}).Register(r)
		(&httpx.LocationsHandler{Locations: locationRepo}).Register(r)
		r.Group(func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)
			(&httpx.AdminHandler{
				Catalog:    catalogRepo,
				Orders:     orderRepo,
				Events:     emitter,
				Board:      board,
				Placements: plog,
			}).Register(ar)
		})
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range []*kafkax.Producer{itemProd, orderProd, statusProd} {
		p.Close()
	}
	cancel()
	for _, p := range []*kafkax.Producer{itemProd, orderProd, statusProd} {
		p.WaitClosed()
	}
}
