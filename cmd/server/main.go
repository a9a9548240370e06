package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/config"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/handler"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/middleware"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting retail store service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	hub := sse.NewHub(zapLogger)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, hub, cfg, zapLogger)
	handlers := handler.NewHandlers(services, hub, cfg)

	// The update worker runs for the lifetime of the process.
	updaterCtx, stopUpdater := context.WithCancel(context.Background())
	services.Updater.Start(updaterCtx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse/events"})))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	stopUpdater()
	services.Updater.Stop()

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Store{},
		&entity.Employee{},
		&entity.Ingredient{},
		&entity.StockTransaction{},
		&entity.Recipe{},
		&entity.RecipeIngredient{},
		&entity.Product{},
		&entity.ProductRecipe{},
		&entity.CompositeChild{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.CostHistory{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// login needs no token
		v1.POST("/auth/login", h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			employees := authorized.Group("/employees")
			employees.Use(middleware.RequireRole(entity.EmployeeRoleAdmin, entity.EmployeeRoleManager))
			{
				employees.GET("", h.Auth.ListEmployees)
				employees.POST("", h.Auth.CreateEmployee)
				employees.GET("/:id", h.Auth.GetEmployee)
				employees.PUT("/:id", h.Auth.UpdateEmployee)
				employees.DELETE("/:id", h.Auth.DeleteEmployee)
			}

			stores := authorized.Group("/stores")
			{
				stores.GET("", h.Store.List)
				stores.GET("/:id", h.Store.Get)
				stores.POST("", middleware.RequireRole(entity.EmployeeRoleAdmin), h.Store.Create)
				stores.PUT("/:id", middleware.RequireRole(entity.EmployeeRoleAdmin), h.Store.Update)
			}

			ingredients := authorized.Group("/ingredients")
			{
				ingredients.GET("", h.Ingredient.List)
				ingredients.POST("", h.Ingredient.Create)
				ingredients.GET("/:id", h.Ingredient.Get)
				ingredients.PUT("/:id", h.Ingredient.Update)
				ingredients.DELETE("/:id", h.Ingredient.Delete)
				ingredients.POST("/:id/stock-in", h.Ingredient.StockIn)
				ingredients.POST("/:id/stock-out", h.Ingredient.StockOut)
				ingredients.POST("/:id/stock-take", h.Ingredient.StockTake)
				ingredients.GET("/:id/transactions", h.Ingredient.Transactions)
			}

			recipes := authorized.Group("/recipes")
			{
				recipes.GET("", h.Recipe.List)
				recipes.POST("", h.Recipe.Create)
				recipes.GET("/:id", h.Recipe.Get)
				recipes.PUT("/:id", h.Recipe.Update)
				recipes.DELETE("/:id", h.Recipe.Delete)
				recipes.GET("/:id/cost", h.Recipe.Cost)
				recipes.GET("/:id/validate", h.Recipe.Validate)
			}

			products := authorized.Group("/products")
			{
				products.GET("", h.Product.List)
				products.POST("", h.Product.Create)
				products.GET("/:id", h.Product.Get)
				products.PUT("/:id", h.Product.Update)
				products.DELETE("/:id", h.Product.Delete)
				products.GET("/:id/cost", h.Product.Cost)
				products.GET("/:id/composite-cost", h.Product.CompositeCost)
				products.POST("/:id/sync-cost", h.Product.SyncCost)
				products.POST("/:id/prepare", h.Product.PrepareBatch)
				products.POST("/:id/serve", h.Product.Serve)
				products.POST("/:id/image", h.Product.UploadImage)
				products.GET("/:id/image-url", h.Product.ImageURL)
			}

			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Order.List)
				orders.POST("", h.Order.Create)
				orders.GET("/:id", h.Order.Get)
				orders.POST("/:id/complete", h.Order.Complete)
				orders.POST("/:id/cancel", h.Order.Cancel)
			}

			costs := authorized.Group("/costs")
			{
				costs.GET("/cache/stats", h.Cost.CacheStats)
				costs.POST("/cache/clear", h.Cost.ClearCache)
				costs.GET("/queue", h.Cost.QueueDepth)
				costs.POST("/recalculate", h.Cost.RecalculateAll)
				costs.GET("/trend/:type/:id", h.Cost.Trend)
				costs.GET("/history", h.Cost.RecentHistory)
				costs.GET("/profitability", h.Cost.Profitability)
				costs.GET("/impact/:ingredientId", h.Cost.Impact)
			}

			audit := authorized.Group("/audit")
			{
				audit.GET("/units", h.Audit.Run)
				audit.GET("/units/export", h.Audit.Export)
			}

			events := authorized.Group("/sse")
			{
				events.GET("/events", h.SSE.Stream)
				events.GET("/status", h.SSE.Status)
				events.POST("/subscriptions/:clientId/:storeId", h.SSE.Subscribe)
				events.DELETE("/subscriptions/:clientId/:storeId", h.SSE.Unsubscribe)
			}
		}
	}
}
