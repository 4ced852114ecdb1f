package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/cart"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/order/controller"
	"sobgamecoin/internal/promo"
	"sobgamecoin/internal/user"
)

// Handlers groups the controllers mounted by NewRouter.
type Handlers struct {
	Users  *user.Controller
	Carts  *cart.Controller
	Promos *promo.Controller
	Orders *controller.OrderController
	Admin  *controller.AdminController
}

func NewRouter(h Handlers, users auth.UserFinder, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(users, logger))

		r.Post("/users/register", h.Users.HandleRegister)
		r.Post("/users/login", h.Users.HandleLogin)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Carts.HandleGet)
			r.Delete("/", h.Carts.HandleClear)
			r.Post("/items", h.Carts.HandleAddItem)
			r.Delete("/items/{productId}", h.Carts.HandleRemoveItem)
		})

		r.Post("/promo/quote", h.Promos.HandleQuote)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.PlaceOrder)
			r.Get("/{orderId}", h.Orders.GetOrder)
			r.Post("/{orderId}/verify", h.Orders.Verify)
			r.Get("/{orderId}/tracking", h.Orders.Track)
		})
		r.Get("/me/orders", h.Orders.MyOrders)
		r.Patch("/me", h.Users.HandleUpdateProfile)
		r.Post("/me/password", h.Users.HandleChangePassword)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.Admin.ListOrders)
			r.Get("/orders/stats", h.Admin.Stats)
			r.Post("/orders/{orderId}/approval-code", h.Admin.IssueApprovalCode)
			r.Post("/orders/{orderId}/approve", h.Admin.Approve)
			r.Post("/orders/{orderId}/reject", h.Admin.Reject)
			r.Post("/orders/{orderId}/process", h.Admin.StartProcessing)
			r.Post("/orders/{orderId}/deliver", h.Admin.Deliver)

			r.Get("/users", h.Users.HandleList)
			r.Patch("/users/{userId}/role", h.Users.HandleChangeRole)
			r.Delete("/users/{userId}", h.Users.HandleDelete)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
