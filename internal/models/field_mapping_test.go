package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMapping() *FieldMapping {
	return &FieldMapping{
		Name:         "Standard listing sheet",
		Columns:      DefaultColumns(),
		HeaderRow:    1,
		DataStartRow: 2,
	}
}

func TestFieldMappingValidateAcceptsDefaultLayout(t *testing.T) {
	assert.NoError(t, validMapping().Validate())
}

func TestFieldMappingValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(m *FieldMapping)
		message string
	}{
		{
			"blank name",
			func(m *FieldMapping) { m.Name = "  " },
			"name is required",
		},
		{
			"header row below one",
			func(m *FieldMapping) { m.HeaderRow = 0 },
			"header row",
		},
		{
			"data start row above header",
			func(m *FieldMapping) { m.DataStartRow = 1 },
			"data start row",
		},
		{
			"no columns",
			func(m *FieldMapping) { m.Columns = nil },
			"at least one column",
		},
		{
			"blank column label",
			func(m *FieldMapping) { m.Columns[3].Column = "" },
			"column label is required",
		},
		{
			"duplicate column label",
			func(m *FieldMapping) { m.Columns[1].Column = m.Columns[0].Column },
			"mapped twice",
		},
		{
			"unknown target field",
			func(m *FieldMapping) { m.Columns[1].Field = "price_eur" },
			`unknown target field "price_eur"`,
		},
		{
			"duplicate target field",
			func(m *FieldMapping) { m.Columns[2].Field = m.Columns[1].Field },
			"mapped twice",
		},
		{
			"missing legacy_id binding",
			func(m *FieldMapping) { m.Columns = m.Columns[1:] },
			"legacy_id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMapping()
			tc.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestColumnMappingsRoundTrip(t *testing.T) {
	original := DefaultColumns()

	value, err := original.Value()
	require.NoError(t, err)

	var decoded ColumnMappings
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestColumnMappingsScanNil(t *testing.T) {
	decoded := ColumnMappings{{Column: "stale", Field: "title"}}
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}

func TestDefaultColumnsIsValidRegistry(t *testing.T) {
	for _, cm := range DefaultColumns() {
		_, ok := LookupPropertyField(cm.Field)
		assert.True(t, ok, "default layout binds unknown field %q", cm.Field)
	}
}
