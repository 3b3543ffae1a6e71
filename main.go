package main

import (
	"log"

	"marketplace-service/controllers"
	"marketplace-service/database"
	"marketplace-service/middleware"
	"marketplace-service/models"
	"marketplace-service/notifier"
	repositories "marketplace-service/repository"
	"marketplace-service/routes"
	"marketplace-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := LoadConfig()

	var logger *zap.Logger
	var err error
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := database.ConnectPostgres(logger,
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusChange{},
	)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	if err := database.EnsureAdminUser(db, logger, cfg.AdminEmail, cfg.AdminName); err != nil {
		logger.Fatal("Failed to seed admin user", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	productRepo := repositories.NewGormProductRepository(db)
	orderRepo := repositories.NewGormOrderRepository(db)
	cartRepo := repositories.NewRedisCartRepository(redisClient, cfg.CartTTL)

	var sender notifier.EmailSender
	sender, err = notifier.NewSMTPSender()
	if err != nil {
		logger.Warn("SMTP not configured, notifications will only be logged", zap.Error(err))
		sender = &notifier.LogSender{Logger: logger}
	}
	dispatcher := notifier.NewDispatcher(sender, logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	cartService := services.NewCartService(cartRepo, productRepo, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, dispatcher, logger)
	productService := services.NewProductService(productRepo, logger)

	cartController := controllers.NewCartController(cartService, orderService)
	orderController := controllers.NewOrderController(orderService)
	productController := controllers.NewProductController(productService)

	controllers.RegisterValidators()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimitMiddleware())

	routes.Register(r, cartController, orderController, productController)

	logger.Info("Starting marketplace service", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
