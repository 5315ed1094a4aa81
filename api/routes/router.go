package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bazaar-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/bazaar-backend/api/controllers/orders"
	"github.com/angelmondragon/bazaar-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/bazaar-backend/internal/checkout"
	"github.com/angelmondragon/bazaar-backend/internal/ledger"
	"github.com/angelmondragon/bazaar-backend/internal/orders"
	products "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/internal/sellers"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/auth/session"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/redis"
)

type sessionManager interface {
	session.RevocationChecker
	session.Revoker
}

type redisStore interface {
	redis.Pinger
	redis.IdempotencyStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	sessionManager sessionManager,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTP,
	userService users.Service,
	productService products.Service,
	sellerService sellers.Service,
	ledgerService ledger.Service,
	ordersService orders.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	idempotency := middleware.Idempotency(redisClient, cfg.FeatureFlags.RequireIdempotencyKey, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.PublicListProducts(productService, logg))
		r.Get("/products/{productId}", controllers.PublicGetProduct(productService, logg))

		r.With(
			middleware.OptionalAuth(cfg.JWT, sessionManager, logg),
			idempotency,
		).Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(idempotency)

			r.Post("/auth/logout", controllers.AuthLogout(sessionManager, logg))
			r.Get("/users/me", controllers.UsersMe(userService, logg))
			r.Post("/products/{productId}/reviews", controllers.AddProductReview(productService, logg))
			r.Get("/orders/mine", ordercontrollers.Mine(ordersService, logg))

			r.Route("/seller", func(r chi.Router) {
				r.Post("/apply", controllers.SellerApply(sellerService, logg))
				r.Get("/me", controllers.SellerMe(sellerService, logg))
				r.Get("/referral", controllers.SellerReferral(sellerService, logg))

				r.Get("/orders", ordercontrollers.SellerOrders(ordersService, logg))
				r.Patch("/orders", ordercontrollers.SellerUpdateItemStatus(ordersService, logg))

				r.Get("/withdrawals", controllers.SellerWithdrawals(ledgerService, logg))
				r.Post("/withdrawals", controllers.SellerRequestWithdrawal(ledgerService, logg))

				r.Get("/products", controllers.SellerListProducts(productService, logg))
				r.Post("/products", controllers.SellerCreateProduct(productService, logg))
				r.Patch("/products/{productId}", controllers.SellerUpdateProduct(productService, logg))
				r.Delete("/products/{productId}", controllers.SellerDeleteProduct(productService, logg))
				r.Patch("/products/{productId}/status", controllers.SellerSetProductStatus(productService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

		r.Get("/sellers", controllers.AdminListSellers(sellerService, logg))
		r.Post("/sellers/approve", controllers.AdminDecideSeller(sellerService, logg))
		r.Patch("/withdrawals/{withdrawalId}", controllers.AdminDecideWithdrawal(ledgerService, logg))
		r.Patch("/commissions/{commissionId}/approve", controllers.AdminApproveCommission(ledgerService, logg))
	})

	return r
}
