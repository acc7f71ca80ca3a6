package router

import (
	"estate-import/internal/config"
	"estate-import/internal/handler"
	"estate-import/internal/repository"
	"estate-import/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	importRepo := repository.NewImportRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	// Initialize services
	excelService := service.NewExcelService()
	validationService := service.NewValidationService(importRepo)
	reconcileService := service.NewReconcileService(propertyRepo, importRepo)
	importService := service.NewImportService(excelService, validationService, reconcileService,
		importRepo, mappingRepo, cfg.PreviewRows)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	importHandler := handler.NewImportHandler(importRepo, mappingRepo, importService, asynqClient, cfg)
	mappingHandler := handler.NewMappingHandler(mappingRepo)
	propertyHandler := handler.NewPropertyHandler(propertyRepo)

	// Import runs
	imports := router.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Post("/preview", importHandler.Preview)
	imports.Get("/", importHandler.GetRuns)
	imports.Get("/:id", importHandler.GetRunDetail)
	imports.Get("/:id/logs", importHandler.GetRunLogs)
	imports.Post("/:id/process", importHandler.ProcessRun)

	// Field mappings
	mappings := router.Group("/mappings")
	mappings.Get("/", mappingHandler.GetMappings)
	mappings.Post("/", mappingHandler.CreateMapping)
	mappings.Get("/:id", mappingHandler.GetMapping)
	mappings.Put("/:id", mappingHandler.UpdateMapping)
	mappings.Post("/:id/default", mappingHandler.SetDefault)
	mappings.Delete("/:id", mappingHandler.DeleteMapping)

	// Properties
	router.Get("/properties", propertyHandler.GetProperties)
}
