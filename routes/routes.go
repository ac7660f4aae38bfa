package routes

import (
	"net/http"

	"github.com/devclub-nstru/tryyel-backend/auth"
	addressControllers "github.com/devclub-nstru/tryyel-backend/controllers/address"
	bannerController "github.com/devclub-nstru/tryyel-backend/controllers/banner"
	brandController "github.com/devclub-nstru/tryyel-backend/controllers/brand"
	cartControllers "github.com/devclub-nstru/tryyel-backend/controllers/cart"
	categoryController "github.com/devclub-nstru/tryyel-backend/controllers/category"
	collectionController "github.com/devclub-nstru/tryyel-backend/controllers/collection"
	orderControllers "github.com/devclub-nstru/tryyel-backend/controllers/order"
	paymentControllers "github.com/devclub-nstru/tryyel-backend/controllers/payment"
	productcontroller "github.com/devclub-nstru/tryyel-backend/controllers/product"
	reviewController "github.com/devclub-nstru/tryyel-backend/controllers/review"
	userControllers "github.com/devclub-nstru/tryyel-backend/controllers/user"
	wishlistController "github.com/devclub-nstru/tryyel-backend/controllers/wishlist"
	"github.com/devclub-nstru/tryyel-backend/events"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services holds everything the route groups hand to their handlers.
type Services struct {
	DB          *gorm.DB
	JWTSecret   string
	AdminAPIKey string
	Metrics     http.Handler

	Auth        *auth.Service
	Cart        *cartControllers.Service
	Orders      *orderControllers.Service
	Payments    *paymentControllers.Service
	Addresses   *addressControllers.Service
	Products    *productcontroller.Service
	Categories  *categoryController.Service
	Brands      *brandController.Service
	Collections *collectionController.Service
	Banners     *bannerController.Service
	Reviews     *reviewController.Service
	Wishlist    *wishlistController.Service
	Users       *userControllers.Service
	Hub         *events.Hub
}

// SetupRoutes is the single entry point that wires every route group under /api.
func SetupRoutes(r *gin.Engine, s *Services) {
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics))
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	// public
	SetupAuthRoutes(api, s)
	SetupCatalogRoutes(api, s)

	// JWT protected
	SetupUserRoutes(api, s)

	// API key protected
	SetupAdminRoutes(api, s)
}
