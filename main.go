package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/tableclub/reserva/internal/booking"
	"github.com/tableclub/reserva/internal/mongo"
	"github.com/tableclub/reserva/pkg"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "RESERVA"
	appName      = "reserva"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
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

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycleHooks := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	err = tableRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}

	db := tableRepo.GetDatabase()
	if db == nil {
		err := errors.New("cannot get table repo database")
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, err)
	}

	slotRepo := mongo.NewSlotRepo(db)
	reservationRepo := mongo.NewReservationRepo(db)
	orderRepo := mongo.NewOrderRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	}
	lifecycleHooks = append(lifecycleHooks, publisherLifecycle)

	subscriber, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	subscriberLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return subscriber.Close()
		},
	}
	lifecycleHooks = append(lifecycleHooks, subscriberLifecycle)

	engine := booking.NewEngine(tableRepo, slotRepo, reservationRepo, logger)

	lifecycle := booking.NewLifecycle(booking.LifecycleDeps{
		TableRepo:       tableRepo,
		SlotRepo:        slotRepo,
		ReservationRepo: reservationRepo,
		OrderRepo:       orderRepo,
		Engine:          engine,
		Publisher:       publisher,
	}, logger)

	hd := booking.HandlerDeps{
		TableRepo:       tableRepo,
		SlotRepo:        slotRepo,
		ReservationRepo: reservationRepo,
		Engine:          engine,
		Lifecycle:       lifecycle,
	}

	handler := booking.NewHandler(hd, config, logger)

	orderStatusSub := booking.NewOrderStatusSubscriber(subscriber, lifecycle, logger)
	lifecycleHooks = append(lifecycleHooks, orderStatusSub)

	seedHooks := aqm.LifecycleHooks{
		OnStart: booking.SeedingFunc(seedCtx, tableRepo, slotRepo, seedFS, logger),
		OnStop:  booking.StopFunc(cancelSeeds),
	}
	lifecycleHooks = append(lifecycleHooks, seedHooks)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycleHooks...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
