package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopflow/shopflow-backend/api/controllers"
	"github.com/shopflow/shopflow-backend/api/middleware"
	"github.com/shopflow/shopflow-backend/internal/access"
	"github.com/shopflow/shopflow-backend/internal/discounts"
	"github.com/shopflow/shopflow-backend/internal/inventory"
	"github.com/shopflow/shopflow-backend/internal/keystore"
	"github.com/shopflow/shopflow-backend/internal/products"
	"github.com/shopflow/shopflow-backend/pkg/config"
	"github.com/shopflow/shopflow-backend/pkg/logger"
	"github.com/shopflow/shopflow-backend/pkg/metrics"
	mongopkg "github.com/shopflow/shopflow-backend/pkg/mongo"
	"github.com/shopflow/shopflow-backend/pkg/redis"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Mongo         mongopkg.Pinger
	Redis         *redis.Client
	KeyStore      keystore.Store
	AccessService access.Service
	Products      products.Service
	Discounts     discounts.Service
	Inventory     *inventory.Repository
	Metrics       *metrics.HTTPMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	authV2 := middleware.AuthV2(deps.KeyStore, tokens.Verify, logg)

	r.Get("/healthz", controllers.Healthz(cfg, deps.Mongo, deps.Redis))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/v1/api/shop", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/signup", controllers.SignUp(deps.AccessService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AccessService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authV2)
			r.Post("/logout", controllers.Logout(deps.AccessService, logg))
			r.Post("/handleRefreshToken", controllers.HandleRefreshToken(deps.AccessService, logg))
		})
	})

	r.Route("/v1/api/product", func(r chi.Router) {
		r.Get("/search/{keySearch}", controllers.SearchProducts(deps.Products, logg))
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(authV2)
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(deps.Products, logg))
			r.Post("/publish/{id}", controllers.PublishProduct(deps.Products, logg))
			r.Post("/unpublish/{id}", controllers.UnpublishProduct(deps.Products, logg))
			r.Get("/drafts/all", controllers.ListDraftProducts(deps.Products, logg))
			r.Get("/published/all", controllers.ListPublishedProducts(deps.Products, logg))
		})
	})

	r.Route("/v1/api/discount", func(r chi.Router) {
		r.Get("/list_product_code", controllers.ListProductsForDiscountCode(deps.Discounts, logg))
		r.Post("/amount", controllers.DiscountAmount(deps.Discounts, logg))

		r.Group(func(r chi.Router) {
			r.Use(authV2)
			r.Post("/", controllers.CreateDiscountCode(deps.Discounts, logg))
			r.Get("/", controllers.ListDiscountCodes(deps.Discounts, logg))
			r.Delete("/{code}", controllers.DeleteDiscountCode(deps.Discounts, logg))
			r.Post("/cancel", controllers.CancelDiscountCode(deps.Discounts, logg))
		})
	})

	r.Route("/v1/api/inventory", func(r chi.Router) {
		r.Use(authV2)
		r.Get("/{productId}", controllers.GetInventory(deps.Inventory, logg))
		r.Patch("/{productId}", controllers.AdjustInventory(deps.Inventory, logg))
	})

	return r
}
