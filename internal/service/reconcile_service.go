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

type ReconcileService struct {
	propertyStore repository.PropertyStore
	importStore   repository.ImportStore
}

func NewReconcileService(propertyStore repository.PropertyStore, importStore repository.ImportStore) *ReconcileService {
	return &ReconcileService{
		propertyStore: propertyStore,
		importStore:   importStore,
	}
}

// Reconcile persists each validated row against the property table. Rows are
// committed independently: one bad row is logged and counted but never
// aborts the rest of the batch. An update-only or price-only run never
// creates a property; create-or-update instantiates one when the legacy
// identifier is unmatched.
func (s *ReconcileService) Reconcile(run *models.ImportRun, rows []models.ParsedRow) *models.ReconcileResult {
	return s.reconcile(run, rows, nil)
}

// reconcile is the batch loop; onRow, when set, is called after each row with
// the running count so the caller can publish progress.
func (s *ReconcileService) reconcile(run *models.ImportRun, rows []models.ParsedRow, onRow func(done, total int)) *models.ReconcileResult {
	result := &models.ReconcileResult{}

	for _, row := range rows {
		result.TotalProcessed++
		s.reconcileRow(run, row, result)
		if onRow != nil {
			onRow(result.TotalProcessed, len(rows))
		}
	}

	return result
}

func (s *ReconcileService) reconcileRow(run *models.ImportRun, row models.ParsedRow, result *models.ReconcileResult) {
	legacyID := strings.TrimSpace(row.Values["legacy_id"].Text)

	property, err := s.propertyStore.GetByLegacyID(legacyID)
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if run.Kind != models.ImportKindCreateOrUpdate {
			s.logRowError(run, row, fmt.Sprintf("no property with legacy id %q", legacyID))
			result.ErrorCount++
			return
		}
		property = &models.Property{LegacyID: legacyID}
		created = true
	case err != nil:
		s.logRowError(run, row, fmt.Sprintf("lookup failed for legacy id %q: %v", legacyID, err))
		result.ErrorCount++
		return
	}

	if err := applyRow(property, row, run.Kind); err != nil {
		s.logRowError(run, row, err.Error())
		result.ErrorCount++
		return
	}

	if created {
		err = s.propertyStore.Create(property)
	} else {
		err = s.propertyStore.Update(property)
	}
	if err != nil {
		s.logRowError(run, row, fmt.Sprintf("failed to save property %q: %v", legacyID, err))
		result.ErrorCount++
		return
	}

	if created {
		result.CreatedCount++
		s.logRowSuccess(run, row, fmt.Sprintf("Created property %s", legacyID))
	} else {
		result.UpdatedCount++
		s.logRowSuccess(run, row, fmt.Sprintf("Updated property %s", legacyID))
	}
}

// applyRow merges the row onto the property through the field registry.
// Fields absent from the row stay untouched; a price-only run applies
// monetary fields only.
func applyRow(property *models.Property, row models.ParsedRow, kind string) error {
	for field, value := range row.Values {
		if field == "legacy_id" {
			continue
		}
		reg, ok := models.LookupPropertyField(field)
		if !ok {
			return fmt.Errorf("unknown field %q in row data", field)
		}
		if kind == models.ImportKindPriceOnly && !reg.Price {
			continue
		}
		reg.Set(property, value)
	}
	return nil
}

// logRowError records one error entry with the offending row attached for
// diagnosis.
func (s *ReconcileService) logRowError(run *models.ImportRun, row models.ParsedRow, message string) {
	detail, _ := json.Marshal(row)
	rowNum := int64(row.RowNumber)
	entry := &models.ImportLogEntry{
		RunID:     run.ID,
		Level:     models.LogLevelError,
		Message:   fmt.Sprintf("Row %d: %s", row.RowNumber, message),
		RowNumber: &rowNum,
		Detail:    detail,
	}
	if err := s.importStore.AddLogEntry(entry); err != nil {
		utils.GetLogger().WithField("run_id", run.ID).Warnf("failed to write error log entry: %v", err)
	}
}

func (s *ReconcileService) logRowSuccess(run *models.ImportRun, row models.ParsedRow, message string) {
	rowNum := int64(row.RowNumber)
	entry := &models.ImportLogEntry{
		RunID:     run.ID,
		Level:     models.LogLevelSuccess,
		Message:   message,
		RowNumber: &rowNum,
	}
	if err := s.importStore.AddLogEntry(entry); err != nil {
		utils.GetLogger().WithField("run_id", run.ID).Warnf("failed to write success log entry: %v", err)
	}
}
