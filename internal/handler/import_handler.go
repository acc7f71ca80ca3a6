package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"estate-import/internal/config"
	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/service"
	"estate-import/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type ImportHandler struct {
	importRepo    *repository.ImportRepository
	mappingRepo   *repository.MappingRepository
	importService *service.ImportService
	asynqClient   *asynq.Client
	cfg           *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	mappingRepo *repository.MappingRepository,
	importService *service.ImportService,
	asynqClient *asynq.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:    importRepo,
		mappingRepo:   mappingRepo,
		importService: importService,
		asynqClient:   asynqClient,
		cfg:           cfg,
	}
}

// UploadFile accepts a workbook and creates an import run in the uploaded
// state. Nothing is parsed or persisted until the run is processed.
func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	kind := c.FormValue("kind", models.ImportKindCreateOrUpdate)
	if !models.ValidImportKind(kind) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"Kind must be one of: update, create_or_update, price_only", nil)
	}

	var mappingID *int64
	if raw := c.FormValue("mapping_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
		}
		if _, err := h.mappingRepo.GetByID(int(id)); err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Mapping not found", err)
		}
		mappingID = &id
	}

	userID, _ := strconv.Atoi(c.FormValue("user_id", "0"))

	runCode := fmt.Sprintf("IMP-%s", uuid.New().String()[:8])
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", runCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	run := &models.ImportRun{
		RunCode:   runCode,
		UserID:    userID,
		Filename:  file.Filename,
		FilePath:  filePath,
		Kind:      kind,
		MappingID: mappingID,
		Status:    models.RunStatusUploaded,
	}

	if err := h.importRepo.CreateRun(run); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import run", err)
	}

	return utils.SuccessResponse(c, "File uploaded successfully", run)
}

func (h *ImportHandler) GetRuns(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	runs, total, err := h.importRepo.GetRuns(params.Limit, offset, 0, params.OrderBy, params.OrderDir)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import runs", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Import runs retrieved successfully", fiber.Map{
		"runs": runs,
	}, pagination)
}

func (h *ImportHandler) GetRunDetail(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.importRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import run not found", err)
	}

	return utils.SuccessResponse(c, "Import run retrieved successfully", run)
}

func (h *ImportHandler) GetRunLogs(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	entries, total, err := h.importRepo.GetLogEntries(id, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve log entries", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Log entries retrieved successfully", fiber.Map{
		"logs": entries,
	}, pagination)
}

// ProcessRun queues an uploaded run for background processing and returns
// the task ID so callers can correlate; completion is observed through the
// run's status and counters.
func (h *ImportHandler) ProcessRun(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.importRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import run not found", err)
	}

	if run.Status != models.RunStatusUploaded {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("Run is already %s", run.Status), nil)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable,
			"Background job processing is not available (Redis not connected)", nil)
	}

	payload, _ := json.Marshal(fiber.Map{
		"run_id":   run.ID,
		"run_code": run.RunCode,
	})

	task := asynq.NewTask("import:process", payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Processing started", fiber.Map{
		"job_id": info.ID,
		"run":    run,
	})
}

// Preview parses and validates an uploaded workbook without creating a run
// or touching any entity.
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}

	var mapping *models.FieldMapping
	if raw := c.FormValue("mapping_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
		}
		mapping, err = h.mappingRepo.GetByID(id)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Mapping not found", err)
		}
	}

	tmpPath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("preview-%s%s", uuid.New().String()[:8], ext))
	if err := c.SaveFile(file, tmpPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}
	defer os.Remove(tmpPath)

	parseResult, validation, err := h.importService.DryRun(tmpPath, mapping)
	if err != nil {
		if errors.Is(err, service.ErrNoMapping) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "No field mapping configured", err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse file", err)
	}

	return utils.SuccessResponse(c, "Preview generated", fiber.Map{
		"total_rows":   parseResult.TotalRows,
		"headers":      parseResult.Headers,
		"valid_rows":   len(validation.ValidData),
		"total_errors": validation.TotalErrors,
		"errors":       validation.Errors,
	})
}
