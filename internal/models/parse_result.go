package models

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// FieldKind classifies an importable field for cell coercion
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldInteger FieldKind = "integer"
	FieldDecimal FieldKind = "decimal"
	FieldBoolean FieldKind = "boolean"
)

// FieldValue is one coerced cell value. Kind says which member carries the
// value. A field omitted from a row has no FieldValue at all, so downstream
// code can tell "empty" from "not provided".
type FieldValue struct {
	Kind FieldKind       `json:"kind"`
	Text string          `json:"text,omitempty"`
	Int  int64           `json:"int,omitempty"`
	Dec  decimal.Decimal `json:"dec,omitempty"`
	Bool bool            `json:"bool,omitempty"`
}

func TextValue(s string) FieldValue {
	return FieldValue{Kind: FieldText, Text: s}
}

func IntValue(i int64) FieldValue {
	return FieldValue{Kind: FieldInteger, Int: i}
}

func DecimalValue(d decimal.Decimal) FieldValue {
	return FieldValue{Kind: FieldDecimal, Dec: d}
}

func BoolValue(b bool) FieldValue {
	return FieldValue{Kind: FieldBoolean, Bool: b}
}

// String renders the value for error messages and log payloads
func (v FieldValue) String() string {
	switch v.Kind {
	case FieldInteger:
		return strconv.FormatInt(v.Int, 10)
	case FieldDecimal:
		return v.Dec.String()
	case FieldBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Text
	}
}

// MarshalJSON writes the scalar form so previews read naturally
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FieldInteger:
		return json.Marshal(v.Int)
	case FieldDecimal:
		return json.Marshal(v.Dec)
	case FieldBoolean:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Text)
	}
}

// ParsedRow is one data record extracted from the workbook, keyed by target
// field name and tagged with its 1-based source row number.
type ParsedRow struct {
	RowNumber int                   `json:"row_number"`
	Values    map[string]FieldValue `json:"values"`
}

// ParseResult is the parser contract output
type ParseResult struct {
	Success   bool        `json:"success"`
	Data      []ParsedRow `json:"data"`
	TotalRows int         `json:"total_rows"`
	Headers   []string    `json:"headers"`
	Errors    []string    `json:"errors,omitempty"`
}

// ValidationResult is the validator contract output
type ValidationResult struct {
	ValidData   []ParsedRow         `json:"valid_data"`
	TotalErrors int                 `json:"total_errors"`
	Errors      ValidationErrorList `json:"errors"`
}

// ReconcileResult is the reconciler contract output
type ReconcileResult struct {
	UpdatedCount   int `json:"updated_count"`
	CreatedCount   int `json:"created_count"`
	ErrorCount     int `json:"error_count"`
	TotalProcessed int `json:"total_processed"`
}
