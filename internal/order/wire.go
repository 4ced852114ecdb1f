package order

import (
	"sobgamecoin/internal/config"
	"sobgamecoin/internal/order/controller"
	orderrepo "sobgamecoin/internal/order/repository"
	"sobgamecoin/internal/order/service"
	"sobgamecoin/internal/order/usecase"
	"sobgamecoin/internal/storage"

	"go.uber.org/zap"
)

type Module struct {
	Orders     *controller.OrderController
	Admin      *controller.AdminController
	// State is shared with the delivery worker so both go through the same
	// compare-and-swap transitions.
	State      *service.StateService
	Repository *orderrepo.KVOrderRepository
}

func NewModule(
	store storage.Store,
	cfg *config.Config,
	carts service.CartRepository,
	promos service.PromoTable,
	linker usecase.Linker,
	logger *zap.Logger,
) *Module {
	orderRepo := orderrepo.NewKVOrderRepository(store, logger)

	checkoutSvc := service.NewCheckoutService(
		orderRepo,
		carts,
		promos,
		logger,
		cfg.Order.IDPrefix,
		cfg.Order.DeliveryWindow,
	)
	stateSvc := service.NewStateService(orderRepo, logger, cfg.Order.MaxRetryAttempts)
	queueSvc := service.NewQueueService(orderRepo)

	orderUC := usecase.NewOrderUseCase(
		checkoutSvc,
		orderRepo,
		queueSvc,
		stateSvc,
		linker,
		logger,
		cfg.Order.MaxRetryAttempts,
	)
	adminUC := usecase.NewAdminUseCase(
		queueSvc,
		stateSvc,
		linker,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return &Module{
		Orders:     controller.NewOrderController(orderUC, logger),
		Admin:      controller.NewAdminController(adminUC, logger),
		State:      stateSvc,
		Repository: orderRepo,
	}
}
