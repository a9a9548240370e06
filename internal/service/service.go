package service

import (
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/config"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/repository"
	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/sse"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services bundles the application services. The costing components (cache,
// calculator, update manager, auditor) are constructed once here and shared
// by reference; there is deliberately exactly one update queue per process.
type Services struct {
	Auth       *AuthService
	Store      *StoreService
	Ingredient *IngredientService
	Recipe     *RecipeService
	Product    *ProductService
	Order      *OrderService
	Cost       *CostService
	Audit      *AuditService

	Cache   *costing.CostCache
	Updater *costing.UpdateManager
}

// NewServices wires repositories, the costing pipeline and the SSE hub into
// the service set.
func NewServices(repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Services {
	cache := costing.NewCostCache(cfg.Costing.IngredientCacheTTL, cfg.Costing.RecipeCacheTTL)
	calc := costing.NewCalculator(repos.Ingredient, repos.Recipe, repos.Product, cache, logger)
	updater := costing.NewUpdateManager(
		calc,
		cache,
		repos.Recipe,
		repos.Product,
		repos.Recipe,
		repos.Product,
		repos.CostHistory,
		hub,
		cfg.Costing.UpdateTaskDelay,
		logger,
	)
	auditor := costing.NewUnitAuditor(repos.Recipe, repos.Ingredient, logger)

	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio unavailable, image upload disabled", zap.Error(err))
			minioClient = nil
		}
	}

	return &Services{
		Auth:       NewAuthService(repos.Employee, cfg, logger),
		Store:      NewStoreService(repos.Store, logger),
		Ingredient: NewIngredientService(repos.Ingredient, updater, rdb, logger),
		Recipe:     NewRecipeService(repos.Recipe, calc, updater, logger),
		Product:    NewProductService(repos.Product, calc, updater, rdb, minioClient, cfg.MinIO.Bucket, logger),
		Order:      NewOrderService(repos.Order, repos.Product, logger),
		Cost:       NewCostService(repos, calc, cache, updater, logger),
		Audit:      NewAuditService(auditor, logger),
		Cache:      cache,
		Updater:    updater,
	}
}

// newID returns a 32-char identifier, matching the entity key columns.
func newID() string {
	return uuid.New().String()[:32]
}
