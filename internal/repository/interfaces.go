package repository

import (
	"encoding/json"

	"estate-import/internal/models"
)

// Store interfaces consumed by the service layer. The sqlx repositories in
// this package implement them; tests substitute in-memory stubs.

// PropertyStore is the reconciler's only write surface
type PropertyStore interface {
	// GetByLegacyID returns sql.ErrNoRows when no property matches
	GetByLegacyID(legacyID string) (*models.Property, error)
	Create(p *models.Property) error
	Update(p *models.Property) error
}

// MappingStore resolves field mappings for a run
type MappingStore interface {
	// GetByID and GetDefault return sql.ErrNoRows when nothing matches
	GetByID(id int) (*models.FieldMapping, error)
	GetDefault() (*models.FieldMapping, error)
}

// ImportStore is the run ledger surface used by the pipeline
type ImportStore interface {
	GetRunByID(id int) (*models.ImportRun, error)
	// StartRun moves uploaded -> processing; returns ErrRunAlreadyStarted
	// when the run is past uploaded
	StartRun(id int) error
	FailRun(id int, message string) error
	SetParseStats(id int, totalRows int, preview json.RawMessage) error
	CompleteRun(id int, processed, successful, failed int, errs models.ValidationErrorList) error
	AddLogEntry(entry *models.ImportLogEntry) error
}
