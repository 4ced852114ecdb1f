package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sobgamecoin/internal/cart"
	"sobgamecoin/internal/channel"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/config"
	"sobgamecoin/internal/infrastructure/kvstore"
	"sobgamecoin/internal/infrastructure/logger"
	"sobgamecoin/internal/order"
	"sobgamecoin/internal/promo"
	"sobgamecoin/internal/server"
	"sobgamecoin/internal/user"
	"sobgamecoin/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log, "sobgamecoin")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := kvstore.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("opening storage", zap.Error(err))
	}
	defer closeStore()

	promos, err := loadPromoTable(cfg.Promo.File)
	if err != nil {
		zapLogger.Fatal("loading promo codes", zap.Error(err))
	}
	zapLogger.Info("promo codes loaded", zap.Strings("codes", promos.Codes()))

	userModule := user.NewModule(store, cfg.Auth, zapLogger)
	cartModule := cart.NewModule(store, zapLogger)
	orderModule := order.NewModule(store, cfg, cartModule.Repository, promos, channel.NewWhatsApp(cfg.Operator.Phone), zapLogger)

	router := server.NewRouter(server.Handlers{
		Users:  userModule.Controller,
		Carts:  cartModule.Controller,
		Promos: promo.NewController(promos, cartModule.Repository, zapLogger),
		Orders: orderModule.Orders,
		Admin:  orderModule.Admin,
	}, userModule.Service, zapLogger)

	var workerDone <-chan struct{}
	if cfg.Worker.Enabled {
		w := worker.NewDeliveryWorker(orderModule.Repository, orderModule.State, zapLogger, cfg.Worker.Interval, cfg.Order.ProcessingDelay)
		workerDone = w.Start(ctx)
	}

	srv := server.New(cfg.Server, router, zapLogger)
	err = srv.Run(ctx)

	// The worker must finish its pass before the deferred closeStore runs.
	stop()
	if workerDone != nil {
		<-workerDone
	}

	if err != nil {
		zapLogger.Error("server error", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}

func loadPromoTable(path string) (*promo.Table, error) {
	if path == "" {
		return promo.DefaultTable(), nil
	}
	codes, err := commons.LoadPromoCodes(path)
	if err != nil {
		return nil, err
	}
	return promo.NewTable(codes)
}
