package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/utils"
)

type ValidationService struct {
	importStore repository.ImportStore
}

func NewValidationService(importStore repository.ImportStore) *ValidationService {
	return &ValidationService{importStore: importStore}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Check applies the per-field domain rules without touching the ledger.
// Rows are validated independently and in parse order; a row with any field
// failure is excluded from ValidData entirely.
func (s *ValidationService) Check(mapping *models.FieldMapping, rows []models.ParsedRow) *models.ValidationResult {
	result := &models.ValidationResult{}

	for _, row := range rows {
		fieldErrors := validateRow(mapping, row)
		if len(fieldErrors) == 0 {
			result.ValidData = append(result.ValidData, row)
			continue
		}

		result.Errors = append(result.Errors, models.ValidationError{
			Row:     row.RowNumber,
			Field:   fieldErrors[0].Field,
			Message: joinFieldErrors(fieldErrors),
		})
		result.TotalErrors++
	}

	return result
}

// Validate runs Check and records every failing row on the run's ledger:
// one structured validation error and one error-level log entry per row,
// with the per-field breakdown in the log detail payload.
func (s *ValidationService) Validate(run *models.ImportRun, mapping *models.FieldMapping, rows []models.ParsedRow) *models.ValidationResult {
	result := &models.ValidationResult{}
	log := utils.GetLogger()

	for _, row := range rows {
		fieldErrors := validateRow(mapping, row)
		if len(fieldErrors) == 0 {
			result.ValidData = append(result.ValidData, row)
			continue
		}

		message := joinFieldErrors(fieldErrors)
		result.Errors = append(result.Errors, models.ValidationError{
			Row:     row.RowNumber,
			Field:   fieldErrors[0].Field,
			Message: message,
		})
		result.TotalErrors++

		detail, _ := json.Marshal(fieldErrors)
		rowNum := int64(row.RowNumber)
		entry := &models.ImportLogEntry{
			RunID:     run.ID,
			Level:     models.LogLevelError,
			Message:   fmt.Sprintf("Row %d failed validation: %s", row.RowNumber, message),
			RowNumber: &rowNum,
			Detail:    detail,
		}
		if err := s.importStore.AddLogEntry(entry); err != nil {
			log.WithField("run_id", run.ID).Warnf("failed to write validation log entry: %v", err)
		}
	}

	return result
}

// validateRow checks each mapped field independently, in mapping order so
// error reports are deterministic.
func validateRow(mapping *models.FieldMapping, row models.ParsedRow) []fieldError {
	var errs []fieldError

	for _, cm := range mapping.Columns {
		reg, ok := models.LookupPropertyField(cm.Field)
		if !ok {
			continue
		}

		value, present := row.Values[cm.Field]
		if !present {
			// Only the external identifier is required; everything else may
			// be omitted (partial update)
			if cm.Field == "legacy_id" {
				errs = append(errs, fieldError{Field: cm.Field, Message: "is required"})
			}
			continue
		}

		if reg.Rule != nil {
			if err := reg.Rule(value); err != nil {
				errs = append(errs, fieldError{Field: cm.Field, Message: err.Error()})
			}
			continue
		}

		// No explicit rule: the value must at least have coerced to the
		// declared kind (a fallback raw string means a bad cell)
		if value.Kind != reg.Kind {
			errs = append(errs, fieldError{
				Field:   cm.Field,
				Message: fmt.Sprintf("must be a valid %s, got %q", reg.Kind, value.String()),
			})
		}
	}

	return errs
}

func joinFieldErrors(errs []fieldError) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s %s", fe.Field, fe.Message))
	}
	return strings.Join(parts, "; ")
}
