package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	"shop-core/internal/repository"
	"shop-core/internal/service"
	"shop-core/pkg/config"
	"shop-core/pkg/database"
	"shop-core/pkg/lock"
)

func main() {
	// Get configuration from environment variables
	mongoURI := config.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := config.GetEnv("MONGO_DB", "shop_core")
	redisAddr := config.GetEnv("REDIS_ADDR", "localhost:6379")
	redisDB := config.GetEnvInt("REDIS_DB", 0)
	port := config.GetEnv("PORT", "8080")

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoDB, err := database.Connect(ctx, mongoURI, dbName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoDB.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	log.Println("Connected to MongoDB successfully")

	// Connect to Redis for the discount redemption lock
	redisClient := rd.NewClient(&rd.Options{Addr: redisAddr, DB: redisDB})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}()

	log.Println("Connected to Redis successfully")

	// Initialize repositories
	discountRepo := repository.NewDiscountRepository(mongoDB.Database)
	usageRepo := repository.NewUsageRepository(mongoDB.Database)
	cartRepo := repository.NewCartRepository(mongoDB.Database)
	productRepo := repository.NewProductRepository(mongoDB.Database)

	// Initialize services
	availability := service.NewAvailability(productRepo)
	locker := lock.NewRedisLocker(redisClient)
	uow := database.NewUnitOfWork(mongoDB.Client)
	discountSvc := service.NewDiscountService(discountRepo, usageRepo, productRepo, availability, locker, uow)
	cartSvc := service.NewCartService(cartRepo, productRepo, availability)

	// Setup Gin router
	router := setupRouter(discountSvc, cartSvc)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupRouter(discountSvc *service.DiscountService, cartSvc *service.CartService) *gin.Engine {
	// Set Gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/discounts", createDiscountHandler(discountSvc))
		api.GET("/discounts", listDiscountsHandler(discountSvc))
		api.GET("/discounts/:id", getDiscountHandler(discountSvc))
		api.PATCH("/discounts/:id", updateDiscountHandler(discountSvc))
		api.DELETE("/discounts/:id", deleteDiscountHandler(discountSvc))
		api.POST("/discounts/:id/cancel", cancelDiscountHandler(discountSvc))
		api.GET("/discounts/:id/products", listDiscountProductsHandler(discountSvc))
		api.POST("/discounts/amount", computeAmountHandler(discountSvc))
		api.POST("/discounts/use", useDiscountHandler(discountSvc))

		api.POST("/cart", addToCartHandler(cartSvc))
		api.GET("/cart", getCartHandler(cartSvc))
		api.PATCH("/cart", updateCartHandler(cartSvc))
		api.POST("/cart/decrease", decreaseFromCartHandler(cartSvc))
		api.DELETE("/cart/item", deleteProductFromCartHandler(cartSvc))
		api.DELETE("/cart/items", deleteProductsFromCartHandler(cartSvc))
	}

	return router
}
