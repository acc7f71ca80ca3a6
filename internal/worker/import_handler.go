package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"estate-import/internal/config"
	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/service"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type ImportTaskHandler struct {
	redis         *redis.Client
	cfg           *config.Config
	importRepo    *repository.ImportRepository
	importService *service.ImportService
}

func NewImportTaskHandler(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) *ImportTaskHandler {
	importRepo := repository.NewImportRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	excelService := service.NewExcelService()
	validator := service.NewValidationService(importRepo)
	reconciler := service.NewReconcileService(propertyRepo, importRepo)
	importService := service.NewImportService(excelService, validator, reconciler, importRepo, mappingRepo, cfg.PreviewRows)

	return &ImportTaskHandler{
		redis:         redisClient,
		cfg:           cfg,
		importRepo:    importRepo,
		importService: importService,
	}
}

type ImportTaskPayload struct {
	RunID   int    `json:"run_id"`
	RunCode string `json:"run_code"`
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Printf("Starting import run %s (ID: %d)", payload.RunCode, payload.RunID)

	run, err := h.importRepo.GetRunByID(payload.RunID)
	if err != nil {
		return fmt.Errorf("failed to get import run: %w", err)
	}

	// Runs already past uploaded are skipped, not retried
	if run.Status != models.RunStatusUploaded {
		log.Printf("Run %s is already %s, skipping", payload.RunCode, run.Status)
		return nil
	}

	progressKey := fmt.Sprintf("import:progress:%d", run.ID)
	h.redis.Set(ctx, progressKey, "0", 0)

	err = h.importService.ProcessRunWithProgress(run.ID, func(percent int) {
		h.redis.Set(ctx, progressKey, strconv.Itoa(percent), 0)
	})
	if err != nil {
		if errors.Is(err, repository.ErrRunAlreadyStarted) {
			log.Printf("Run %s was picked up concurrently, skipping", payload.RunCode)
			return nil
		}
		log.Printf("Run %s failed: %v", payload.RunCode, err)
		return err
	}

	log.Printf("Import run %s completed", payload.RunCode)
	return nil
}
