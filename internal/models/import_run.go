package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Import run lifecycle. processing is entered at most once; completed and
// failed are terminal.
const (
	RunStatusUploaded   = "uploaded"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// Import kinds
const (
	ImportKindUpdate         = "update"
	ImportKindCreateOrUpdate = "create_or_update"
	ImportKindPriceOnly      = "price_only"
)

// ValidImportKind reports whether kind is one of the supported import kinds
func ValidImportKind(kind string) bool {
	switch kind {
	case ImportKindUpdate, ImportKindCreateOrUpdate, ImportKindPriceOnly:
		return true
	}
	return false
}

// Log entry severities
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelSuccess = "success"
)

// ValidationError is one structured validation failure on a run
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorList is stored as a JSON column on the run
type ValidationErrorList []ValidationError

func (l ValidationErrorList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ValidationErrorList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("cannot scan %T into ValidationErrorList", src)
	}
}

// ImportRun is the durable record of one import execution. It is owned by
// the operator who created it and mutated only by the pipeline during a
// single processing pass.
type ImportRun struct {
	ID        int    `db:"id" json:"id"`
	RunCode   string `db:"run_code" json:"run_code"`
	UserID    int    `db:"user_id" json:"user_id"`
	Filename  string `db:"filename" json:"filename"`
	FilePath  string `db:"file_path" json:"file_path"`
	Kind      string `db:"kind" json:"kind"`
	MappingID *int64 `db:"mapping_id" json:"mapping_id"`
	Status    string `db:"status" json:"status"`

	TotalRows      int `db:"total_rows" json:"total_rows"`
	ProcessedRows  int `db:"processed_rows" json:"processed_rows"`
	SuccessfulRows int `db:"successful_rows" json:"successful_rows"`
	FailedRows     int `db:"failed_rows" json:"failed_rows"`

	PreviewData      json.RawMessage     `db:"preview_data" json:"preview_data,omitempty"`
	ValidationErrors ValidationErrorList `db:"validation_errors" json:"validation_errors"`
	ErrorMessage     string              `db:"error_message" json:"error_message"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ImportLogEntry is one append-only audit record on a run. Entries are never
// updated or deleted once written.
type ImportLogEntry struct {
	ID        int64           `db:"id" json:"id"`
	RunID     int             `db:"run_id" json:"run_id"`
	Level     string          `db:"level" json:"level"`
	Message   string          `db:"message" json:"message"`
	RowNumber *int64          `db:"row_number" json:"row_number"`
	Detail    json.RawMessage `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
