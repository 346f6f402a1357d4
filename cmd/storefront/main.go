package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/transbarber/storefront/config"
	"github.com/transbarber/storefront/internal/auth"
	"github.com/transbarber/storefront/internal/cache"
	handler "github.com/transbarber/storefront/internal/handler/http"
	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/mail"
	"github.com/transbarber/storefront/internal/middleware"
	"github.com/transbarber/storefront/internal/payment"
	"github.com/transbarber/storefront/internal/repository"
	"github.com/transbarber/storefront/internal/repository/postgres"
	"github.com/transbarber/storefront/internal/service"
	"github.com/transbarber/storefront/internal/shipping"
	"github.com/transbarber/storefront/internal/worker"
)

const defaultTokenKey = "9c1185a5c5e9fc54612808977ee8f548"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	// product cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	productCache := cache.NewRedisCache(redisClient)

	keyHex := cfg.TokenKey
	if keyHex == "" {
		keyHex = defaultTokenKey
	}
	tokenKey, err := hex.DecodeString(keyHex)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// external clients
	paymentClient := payment.NewClient(cfg.PaymentAPIAddr, cfg.PaymentToken)
	carrierClient := shipping.NewClient(cfg.CarrierAPIAddr, cfg.CarrierToken)
	mailClient := mail.NewClient(cfg.MailAPIAddr, cfg.MailAPIKey, cfg.MailFrom, cfg.AdminEmail)

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userService := service.NewUserService(userRepo, profileRepo)
	userHandler := handler.NewUserHandler(userService, token)

	// profile
	profileService := service.NewProfileService(profileRepo)
	profileHandler := handler.NewProfileHandler(profileService)

	// product
	productRepo := repository.NewProductRepository(db)
	productService := service.NewProductService(productRepo, productCache)
	productHandler := handler.NewProductHandler(productService)

	// cart
	cartRepo := repository.NewCartRepository(db)
	cartService := service.NewCartService(cartRepo, productRepo)
	cartHandler := handler.NewCartHandler(cartService)

	// favorites
	favoriteRepo := repository.NewFavoriteRepository(db)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)

	// shipping
	shippingService := service.NewShippingService(carrierClient)
	shippingHandler := handler.NewShippingHandler(shippingService)

	// orders, checkout, reconciliation
	orderRepo := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, profileRepo,
		paymentClient, shippingService, mailClient, cfg.FrontendURL, cfg.WebhookURL, cfg.WebhookToken)
	orderHandler := handler.NewOrderHandler(orderService, userService)
	checkoutHandler := handler.NewCheckoutHandler(orderService)
	webhookHandler := handler.NewWebhookHandler(orderService, cfg.WebhookToken)

	// reconcile stale pending payments in background
	sweeper := worker.NewPaymentSweeper(orderService, cfg.SweepInterval)
	go sweeper.Run(ctx)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())

	router.Get("/api/products", productHandler.ListProducts())
	router.Get("/api/products/{id}", productHandler.GetProduct())
	router.Get("/api/shipping/quote", shippingHandler.Quote())

	router.Post("/api/webhooks/payment", webhookHandler.HandleNotification())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))

		group.Get("/api/user/profile", profileHandler.GetProfile())
		group.Put("/api/user/profile", profileHandler.UpdateProfile())

		group.Get("/api/cart", cartHandler.GetCart())
		group.Post("/api/cart/items", cartHandler.AddItem())
		group.Patch("/api/cart/items/{id}", cartHandler.UpdateItem())
		group.Delete("/api/cart/items/{id}", cartHandler.RemoveItem())

		group.Get("/api/favorites", favoriteHandler.ListFavorites())
		group.Post("/api/favorites/{id}", favoriteHandler.AddFavorite())
		group.Delete("/api/favorites/{id}", favoriteHandler.RemoveFavorite())

		group.Post("/api/checkout", checkoutHandler.Checkout())
		group.Post("/api/checkout/return", checkoutHandler.ConfirmReturn())

		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/{id}", orderHandler.GetOrder())

		// routes that require the admin role
		group.Group(func(admin chi.Router) {
			admin.Use(handler.AdminOnly(userService))

			admin.Post("/api/admin/products", productHandler.CreateProduct())
			admin.Put("/api/admin/products/{id}", productHandler.UpdateProduct())
			admin.Delete("/api/admin/products/{id}", productHandler.DeleteProduct())

			admin.Get("/api/admin/orders", orderHandler.ListAllOrders())
			admin.Post("/api/admin/orders/{id}/ship", orderHandler.ShipOrder())
			admin.Post("/api/admin/orders/{id}/delivered", orderHandler.MarkDelivered())
			admin.Delete("/api/admin/orders/{id}", orderHandler.DeleteOrder())
		})
	})

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
