package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/stuywashndry/washnd/pkg/mongodb"
	"github.com/stuywashndry/washnd/services/catalog/internal/catalog"
	"github.com/stuywashndry/washnd/services/catalog/internal/mongo"
)

const (
	appNamespace = "CATALOG"
	appName      = "catalog"
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

	baseRepo := mongodb.NewBaseRepo(config, logger, "washnd_catalog")
	menuRepo := mongo.NewMenuRepo(baseRepo, logger)
	discountRepo := mongo.NewDiscountRepo(baseRepo, logger)

	hd := catalog.HandlerDeps{
		MenuRepo:     menuRepo,
		DiscountRepo: discountRepo,
	}

	handler := catalog.NewHandler(hd, config, logger)

	seedHooks := aqm.LifecycleHooks{
		OnStart: catalog.SeedingFunc(appName, config, baseRepo.GetDatabase, logger),
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	stack = append(stack, middleware.InternalOnly())

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(baseRepo, menuRepo, discountRepo, seedHooks),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
