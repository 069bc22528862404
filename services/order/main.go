package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/stuywashndry/washnd/pkg"
	"github.com/stuywashndry/washnd/pkg/mongodb"
	"github.com/stuywashndry/washnd/services/order/internal/mongo"
	"github.com/stuywashndry/washnd/services/order/internal/order"
)

const (
	appNamespace = "ORDER"
	appName      = "order"
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

	baseRepo := mongodb.NewBaseRepo(config, logger, "washnd_order")
	orderRepo := mongo.NewOrderRepo(baseRepo, logger)
	deliveryRepo := mongo.NewDeliveryRepo(baseRepo, logger)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	// Cart service client for freezing carts at checkout
	cartURL := config.GetStringOrDef("services.cart.url", "")
	if cartURL == "" {
		log.Fatalf("%s(%s) cannot create cart service client: services.cart.url is required", appName, appVersion)
	}
	cartClient := aqm.NewServiceClient(cartURL)

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	hd := order.HandlerDeps{
		OrderRepo:    orderRepo,
		DeliveryRepo: deliveryRepo,
		Carts:        order.NewServiceCartFetcher(cartClient),
		Payments:     order.NoopPaymentProcessor{},
		Publisher:    pub,
	}

	handler := order.NewHandler(hd, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	stack = append(stack, middleware.InternalOnly())

	lifecycles := []interface{}{
		baseRepo,
		orderRepo,
		deliveryRepo,
		publisherLifecycle,
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
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
