package user

import (
	"sobgamecoin/internal/config"
	"sobgamecoin/internal/storage"

	"go.uber.org/zap"
)

type Module struct {
	Controller *Controller
	// Service resolves X-User-Id for the auth middleware.
	Service Service
}

func NewModule(store storage.Store, cfg config.AuthConfig, logger *zap.Logger) *Module {
	repo := NewKVRepository(store)
	svc := NewService(repo, logger, cfg.BootstrapSuperAdminEmail, cfg.BcryptCost)
	return &Module{
		Controller: NewController(svc, logger),
		Service:    svc,
	}
}
