package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/stuywashndry/washnd/pkg"
	"github.com/stuywashndry/washnd/pkg/mongodb"
	"github.com/stuywashndry/washnd/services/cart/internal/cart"
	"github.com/stuywashndry/washnd/services/cart/internal/mongo"
)

const (
	appNamespace = "CART"
	appName      = "cart"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongodb.NewBaseRepo(config, logger, "washnd_cart")
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	cartRepo := mongo.NewCartRepo(db, logger)
	registry := cart.NewRegistry(cartRepo, logger)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	// Catalog service client for resolving discount codes
	catalogURL := config.GetStringOrDef("services.catalog.url", "")
	if catalogURL == "" {
		log.Fatalf("%s(%s) cannot create catalog service client: services.catalog.url is required", appName, appVersion)
	}
	catalogClient := aqm.NewServiceClient(catalogURL)

	redisAddr := config.GetStringOrDef("redis.addr", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	discounts := cart.NewDiscountCache(rdb, cart.NewCatalogDiscountSource(catalogClient), logger)

	// Retire carts when the order service reports a checkout
	orderPlacedSub := cart.NewOrderPlacedSubscriber(sub, registry, logger)

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	redisLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	}

	hd := cart.HandlerDeps{
		Registry:  registry,
		Repo:      cartRepo,
		Discounts: discounts,
		Publisher: pub,
	}

	handler := cart.NewHandler(hd, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	stack = append(stack, middleware.InternalOnly())

	lifecycles := []interface{}{
		aqm.LifecycleHooks{OnStop: baseRepo.Stop},
		orderPlacedSub,
		publisherLifecycle,
		subLifecycle,
		redisLifecycle,
	}

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
