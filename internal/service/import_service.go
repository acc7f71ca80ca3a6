package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/utils"
)

// ErrNoMapping is returned when a run names no mapping and no default is
// configured. The run stays in the uploaded state.
var ErrNoMapping = errors.New("no field mapping resolvable for this run")

type ImportService struct {
	excelService *ExcelService
	validator    *ValidationService
	reconciler   *ReconcileService
	importStore  repository.ImportStore
	mappingStore repository.MappingStore
	previewRows  int
}

func NewImportService(
	excelService *ExcelService,
	validator *ValidationService,
	reconciler *ReconcileService,
	importStore repository.ImportStore,
	mappingStore repository.MappingStore,
	previewRows int,
) *ImportService {
	if previewRows <= 0 {
		previewRows = 20
	}
	return &ImportService{
		excelService: excelService,
		validator:    validator,
		reconciler:   reconciler,
		importStore:  importStore,
		mappingStore: mappingStore,
		previewRows:  previewRows,
	}
}

// ProgressFunc receives completion percentages while a run is processed
type ProgressFunc func(percent int)

// ProcessRun drives one run through parse -> validate -> reconcile and
// finalizes its counters. Per-row problems become ledger entries; only
// whole-run setup failures (bad config, bad file) are returned to the
// caller. Re-triggering a run past the uploaded state is rejected by the
// StartRun guard.
func (s *ImportService) ProcessRun(runID int) error {
	return s.ProcessRunWithProgress(runID, nil)
}

// ProcessRunWithProgress is ProcessRun with completion percentages pushed to
// progress: a few fixed steps through parse and validation, then per-row
// through reconciliation, ending at 100 once the run is finalized.
func (s *ImportService) ProcessRunWithProgress(runID int, progress ProgressFunc) error {
	log := utils.GetLogger().WithField("run_id", runID)

	report := func(percent int) {
		if progress != nil {
			progress(percent)
		}
	}

	run, err := s.importStore.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to load import run: %w", err)
	}

	// Configuration failures surface before the run leaves uploaded
	mapping, err := s.resolveMapping(run)
	if err != nil {
		return err
	}

	if err := s.importStore.StartRun(run.ID); err != nil {
		return err
	}
	run.Status = models.RunStatusProcessing
	report(5)

	parseResult := s.excelService.ParseWithMapping(run.FilePath, mapping)
	if !parseResult.Success {
		message := strings.Join(parseResult.Errors, "; ")
		s.logRun(run, models.LogLevelError, fmt.Sprintf("Parse failed: %s", message))
		if err := s.importStore.FailRun(run.ID, message); err != nil {
			log.Errorf("failed to mark run failed: %v", err)
		}
		return fmt.Errorf("parse failed: %s", message)
	}

	preview, _ := json.Marshal(previewSample(parseResult.Data, s.previewRows))
	if err := s.importStore.SetParseStats(run.ID, parseResult.TotalRows, preview); err != nil {
		log.Warnf("failed to persist parse stats: %v", err)
	}
	s.logRun(run, models.LogLevelInfo, fmt.Sprintf("Parsed %d rows from %s", parseResult.TotalRows, run.Filename))
	report(15)

	validation := s.validator.Validate(run, mapping, parseResult.Data)
	report(25)

	reconcile := s.reconciler.reconcile(run, validation.ValidData, func(done, total int) {
		report(25 + 70*done/total)
	})

	processed := parseResult.TotalRows
	successful := reconcile.CreatedCount + reconcile.UpdatedCount
	failed := validation.TotalErrors + reconcile.ErrorCount

	if err := s.importStore.CompleteRun(run.ID, processed, successful, failed, validation.Errors); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	report(100)

	s.logRun(run, models.LogLevelInfo, fmt.Sprintf(
		"Import completed: %d created, %d updated, %d failed of %d rows",
		reconcile.CreatedCount, reconcile.UpdatedCount, failed, processed))

	log.WithFields(map[string]interface{}{
		"created": reconcile.CreatedCount,
		"updated": reconcile.UpdatedCount,
		"failed":  failed,
		"total":   processed,
	}).Info("import run completed")

	return nil
}

// DryRun parses and validates without persisting anything: no run mutation,
// no log entries, no entity writes.
func (s *ImportService) DryRun(filePath string, mapping *models.FieldMapping) (*models.ParseResult, *models.ValidationResult, error) {
	if mapping == nil {
		var err error
		mapping, err = s.mappingStore.GetDefault()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNoMapping
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve default mapping: %w", err)
		}
	}

	parseResult := s.excelService.ParseWithMapping(filePath, mapping)
	if !parseResult.Success {
		return parseResult, nil, fmt.Errorf("parse failed: %s", strings.Join(parseResult.Errors, "; "))
	}

	return parseResult, s.validator.Check(mapping, parseResult.Data), nil
}

func (s *ImportService) resolveMapping(run *models.ImportRun) (*models.FieldMapping, error) {
	if run.MappingID != nil {
		mapping, err := s.mappingStore.GetByID(int(*run.MappingID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMapping
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping %d: %w", *run.MappingID, err)
		}
		return mapping, nil
	}

	mapping, err := s.mappingStore.GetDefault()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoMapping
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load default mapping: %w", err)
	}
	return mapping, nil
}

func (s *ImportService) logRun(run *models.ImportRun, level, message string) {
	entry := &models.ImportLogEntry{
		RunID:   run.ID,
		Level:   level,
		Message: message,
	}
	if err := s.importStore.AddLogEntry(entry); err != nil {
		utils.GetLogger().WithField("run_id", run.ID).Warnf("failed to write log entry: %v", err)
	}
}

func previewSample(rows []models.ParsedRow, limit int) []models.ParsedRow {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
