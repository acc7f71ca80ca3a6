package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ColumnMapping binds one spreadsheet column label to one Property field
type ColumnMapping struct {
	Column string `json:"column"`
	Field  string `json:"field"`
}

// ColumnMappings is stored as a JSON column; order is significant and is the
// order validation errors are reported in.
type ColumnMappings []ColumnMapping

func (m ColumnMappings) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ColumnMappings) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, m)
	case string:
		return json.Unmarshal([]byte(data), m)
	default:
		return fmt.Errorf("cannot scan %T into ColumnMappings", src)
	}
}

// FieldMapping is the declarative column-to-field configuration an import
// run parses with. Exactly one mapping may be the default at a time; the
// repository enforces that by clearing the flag on all others inside the
// same transaction.
type FieldMapping struct {
	ID           int            `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Columns      ColumnMappings `db:"columns" json:"columns"`
	HeaderRow    int            `db:"header_row" json:"header_row"`
	DataStartRow int            `db:"data_start_row" json:"data_start_row"`
	IsDefault    bool           `db:"is_default" json:"is_default"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Validate checks the mapping at configuration time, so bad field names are
// rejected when the operator saves the mapping rather than silently ignored
// mid-run.
func (m *FieldMapping) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("mapping name is required")
	}
	if m.HeaderRow < 1 {
		return fmt.Errorf("header row must be 1 or greater")
	}
	if m.DataStartRow <= m.HeaderRow {
		return fmt.Errorf("data start row must be after the header row")
	}
	if len(m.Columns) == 0 {
		return fmt.Errorf("mapping must bind at least one column")
	}

	seenColumns := make(map[string]bool)
	seenFields := make(map[string]bool)
	hasLegacyID := false
	for _, cm := range m.Columns {
		label := strings.TrimSpace(cm.Column)
		if label == "" {
			return fmt.Errorf("column label is required for field %q", cm.Field)
		}
		if seenColumns[label] {
			return fmt.Errorf("column %q is mapped twice", label)
		}
		seenColumns[label] = true

		if _, ok := LookupPropertyField(cm.Field); !ok {
			return fmt.Errorf("unknown target field %q for column %q", cm.Field, label)
		}
		if seenFields[cm.Field] {
			return fmt.Errorf("field %q is mapped twice", cm.Field)
		}
		seenFields[cm.Field] = true

		if cm.Field == "legacy_id" {
			hasLegacyID = true
		}
	}
	if !hasLegacyID {
		return fmt.Errorf("mapping must bind the legacy_id field")
	}
	return nil
}

// DefaultColumns is the column layout of the standard listing workbook. It
// seeds the initial mapping and drives the sample workbook generator.
func DefaultColumns() ColumnMappings {
	return ColumnMappings{
		{Column: "Legacy ID", Field: "legacy_id"},
		{Column: "Title", Field: "title"},
		{Column: "Description", Field: "description"},
		{Column: "Address", Field: "address"},
		{Column: "City", Field: "city"},
		{Column: "District", Field: "district"},
		{Column: "Status", Field: "status"},
		{Column: "Deal Type", Field: "deal_type"},
		{Column: "Sale Price USD", Field: "price_sale_usd"},
		{Column: "Rent Price USD", Field: "price_rent_usd"},
		{Column: "Total Area", Field: "area_total"},
		{Column: "Living Area", Field: "area_living"},
		{Column: "Rooms", Field: "rooms"},
		{Column: "Bedrooms", Field: "bedrooms"},
		{Column: "Bathrooms", Field: "bathrooms"},
		{Column: "Floor", Field: "floor"},
		{Column: "Floors Total", Field: "floors_total"},
		{Column: "Year Built", Field: "year_built"},
		{Column: "Latitude", Field: "latitude"},
		{Column: "Longitude", Field: "longitude"},
		{Column: "Furnished", Field: "is_furnished"},
		{Column: "Parking", Field: "has_parking"},
	}
}
