package service

import (
	"fmt"
	"strings"

	"estate-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Tokens accepted as boolean values in spreadsheet cells. Anything outside
// both sets falls back to general truthiness (non-empty means true).
var (
	truthyTokens = []string{"true", "yes", "y", "1", "+", "да"}
	falsyTokens  = []string{"false", "no", "n", "0", "-", "нет"}
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

type mappedColumn struct {
	field    string
	kind     models.FieldKind
	position int
}

// ParseWithMapping reads the workbook at filePath using the given field
// mapping and returns a row-indexed intermediate representation. The parse
// is best-effort: cell coercion failures degrade to the raw string value and
// rejection is left to the validator. The method has no side effects and can
// be called repeatedly over the same file, e.g. for preview-then-commit.
func (s *ExcelService) ParseWithMapping(filePath string, mapping *models.FieldMapping) *models.ParseResult {
	result := &models.ParseResult{}

	if mapping == nil {
		result.Errors = append(result.Errors, "no field mapping configured")
		return result
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "no sheets found in Excel file")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read rows: %v", err))
		return result
	}

	if len(rows) < mapping.HeaderRow {
		result.Errors = append(result.Errors, fmt.Sprintf("header row %d not found in sheet", mapping.HeaderRow))
		return result
	}

	// Build label -> column position map from non-empty header cells
	header := rows[mapping.HeaderRow-1]
	columnIndex := make(map[string]int)
	for i, cell := range header {
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		if _, exists := columnIndex[label]; !exists {
			columnIndex[label] = i
			result.Headers = append(result.Headers, label)
		}
	}

	var mapped []mappedColumn
	for _, cm := range mapping.Columns {
		pos, ok := columnIndex[cm.Column]
		if !ok {
			// Column missing from this workbook: the field is simply absent
			// from every row, the validator flags required fields
			continue
		}
		field, known := models.LookupPropertyField(cm.Field)
		if !known {
			continue
		}
		mapped = append(mapped, mappedColumn{field: cm.Field, kind: field.Kind, position: pos})
	}

	for rowNum := mapping.DataStartRow; rowNum <= len(rows); rowNum++ {
		row := rows[rowNum-1]
		if rowIsEmpty(row) {
			continue
		}

		values := make(map[string]models.FieldValue)
		for _, mc := range mapped {
			raw := getCellValue(row, mc.position)
			if value, ok := coerceCell(raw, mc.kind); ok {
				values[mc.field] = value
			}
		}

		result.Data = append(result.Data, models.ParsedRow{
			RowNumber: rowNum,
			Values:    values,
		})
	}

	result.TotalRows = len(result.Data)
	result.Success = true
	return result
}

// coerceCell converts one raw cell string into a typed value per the field
// kind. The second return is false when the cell is empty, meaning the field
// is omitted from the row rather than set to a zero value.
func coerceCell(raw string, kind models.FieldKind) (models.FieldValue, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.FieldValue{}, false
	}

	switch kind {
	case models.FieldBoolean:
		lower := strings.ToLower(trimmed)
		for _, token := range truthyTokens {
			if lower == token {
				return models.BoolValue(true), true
			}
		}
		for _, token := range falsyTokens {
			if lower == token {
				return models.BoolValue(false), true
			}
		}
		return models.BoolValue(trimmed != ""), true

	case models.FieldDecimal:
		if d, err := decimal.NewFromString(normalizeNumber(trimmed)); err == nil {
			return models.DecimalValue(d), true
		}

	case models.FieldInteger:
		if d, err := decimal.NewFromString(normalizeNumber(trimmed)); err == nil {
			return models.IntValue(d.IntPart()), true
		}
	}

	// Text, or graceful fallback when a numeric cell does not parse
	return models.TextValue(trimmed), true
}

// normalizeNumber strips whitespace and normalizes decimal commas so both
// "1 234,50" and "1,234.50" parse to the same exact decimal.
func normalizeNumber(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	if strings.Contains(s, ".") {
		// Commas are thousand separators
		return strings.ReplaceAll(s, ",", "")
	}
	// A lone comma is a decimal comma
	return strings.ReplaceAll(s, ",", ".")
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}
