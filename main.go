package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/cache"
	"github.com/devclub-nstru/tryyel-backend/config"
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
	"github.com/devclub-nstru/tryyel-backend/database"
	"github.com/devclub-nstru/tryyel-backend/events"
	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/devclub-nstru/tryyel-backend/metrics"
	"github.com/devclub-nstru/tryyel-backend/middleware"
	"github.com/devclub-nstru/tryyel-backend/payment"
	"github.com/devclub-nstru/tryyel-backend/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Println("✅ Starting application...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	defer database.Close(db)

	// Auto-migrate all tables
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	var cartCache cartControllers.Cache
	if err := rdb.Ping(ctx).Err(); err != nil {
		logging.Warn("redis unreachable, cart cache disabled", logging.Fields{Error: err.Error(), Extra: gin.H{"addr": cfg.Redis.Addr}})
	} else {
		cartCache = cache.NewCartCache(rdb, cfg.Redis.CartCacheTTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)

	hub := events.NewHub()
	defer hub.Close()
	publisher := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kafkaPub.Close()
		publisher = append(publisher, kafkaPub)
	}

	var verifier auth.IDTokenVerifier
	if cfg.FirebaseEnabled() {
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Fatalf("❌ Firebase: %v", err)
		}
		verifier = fv
	}

	carts := cartControllers.NewService(db, cartCache)
	products := productcontroller.NewService(db)
	gateway := payment.NewRazorpayClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	services := &routes.Services{
		DB:          db,
		JWTSecret:   cfg.JWTSecret,
		AdminAPIKey: cfg.AdminAPIKey,
		Metrics:     metrics.Handler(reg),
		Auth: auth.NewService(db, cache.NewOTPStore(rdb, cfg.OTPTTL, cfg.OTPMaxAttempts), auth.LogSender{},
			verifier, cfg.JWTSecret, cfg.JWTTTL),
		Cart:   carts,
		Orders: orderControllers.NewService(db, publisher, serverMetrics, carts, cfg.Razorpay.Currency),
		Payments: paymentControllers.NewService(db, gateway, cfg.Razorpay.KeySecret, cfg.Razorpay.Currency,
			carts, publisher, serverMetrics),
		Addresses:   addressControllers.NewService(db),
		Products:    products,
		Categories:  categoryController.NewService(db),
		Brands:      brandController.NewService(db),
		Collections: collectionController.NewService(db, products),
		Banners:     bannerController.NewService(db),
		Reviews:     reviewController.NewService(db),
		Wishlist:    wishlistController.NewService(db, products),
		Users:       userControllers.NewService(db, carts),
		Hub:         hub,
	}

	// Gin setup
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID(), serverMetrics.Middleware(), middleware.Timeout(cfg.DB.QueryTimeout))

	// Setup routes
	routes.SetupRoutes(r, services)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⏳ Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Forced shutdown: %v", err)
	}
}
