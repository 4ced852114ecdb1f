package cart

import (
	"sobgamecoin/internal/storage"

	"go.uber.org/zap"
)

type Module struct {
	Controller *Controller
	// Repository is handed to checkout, which reads and clears the cart.
	Repository *KVRepository
}

func NewModule(store storage.Store, logger *zap.Logger) *Module {
	repo := NewKVRepository(store)
	svc := NewService(repo, logger)
	return &Module{
		Controller: NewController(svc, logger),
		Repository: repo,
	}
}
