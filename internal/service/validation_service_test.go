package service

import (
	"testing"

	"estate-import/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) models.FieldValue {
	return models.DecimalValue(decimal.RequireFromString(s))
}

func parsedRow(rowNumber int, values map[string]models.FieldValue) models.ParsedRow {
	if _, ok := values["legacy_id"]; !ok {
		values["legacy_id"] = models.TextValue("VS001")
	}
	return models.ParsedRow{RowNumber: rowNumber, Values: values}
}

func TestCheckAcceptsValidRows(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	result := svc.Check(testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{
			"price_sale_usd": dec("125000"),
			"area_total":     dec("74.5"),
			"rooms":          models.IntValue(3),
			"status":         models.TextValue("available"),
			"deal_type":      models.TextValue("sale"),
			"latitude":       dec("43.2141"),
			"longitude":      dec("27.9147"),
			"is_furnished":   models.BoolValue(true),
		}),
	})

	assert.Zero(t, result.TotalErrors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.ValidData, 1)
}

func TestCheckRejectsRuleViolations(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	cases := []struct {
		name   string
		values map[string]models.FieldValue
		field  string
	}{
		{"negative sale price", map[string]models.FieldValue{"price_sale_usd": dec("-500")}, "price_sale_usd"},
		{"zero total area", map[string]models.FieldValue{"area_total": dec("0")}, "area_total"},
		{"rooms out of range", map[string]models.FieldValue{"rooms": models.IntValue(25)}, "rooms"},
		{"latitude out of range", map[string]models.FieldValue{"latitude": dec("95")}, "latitude"},
		{"longitude out of range", map[string]models.FieldValue{"longitude": dec("-181")}, "longitude"},
		{"unknown status", map[string]models.FieldValue{"status": models.TextValue("pending")}, "status"},
		{"unknown deal type", map[string]models.FieldValue{"deal_type": models.TextValue("lease")}, "deal_type"},
		{"numeric cell left as text", map[string]models.FieldValue{"floor": models.TextValue("ground")}, "floor"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := svc.Check(testMapping(), []models.ParsedRow{parsedRow(2, tc.values)})

			require.Equal(t, 1, result.TotalErrors)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 2, result.Errors[0].Row)
			assert.Equal(t, tc.field, result.Errors[0].Field)
			assert.Empty(t, result.ValidData, "a row with any failing field is excluded entirely")
		})
	}
}

func TestCheckStatusIsCaseInsensitive(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	result := svc.Check(testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{
			"status":    models.TextValue("Available"),
			"deal_type": models.TextValue("SALE"),
		}),
	})

	assert.Zero(t, result.TotalErrors)
	assert.Len(t, result.ValidData, 1)
}

func TestCheckRequiresLegacyID(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	result := svc.Check(testMapping(), []models.ParsedRow{
		{RowNumber: 2, Values: map[string]models.FieldValue{
			"title": models.TextValue("No identifier"),
		}},
	})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "legacy_id", result.Errors[0].Field)
}

func TestCheckAggregatesFieldErrorsPerRow(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	result := svc.Check(testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{
			"status":         models.TextValue("pending"),
			"price_sale_usd": dec("-1"),
			"rooms":          models.IntValue(99),
		}),
	})

	require.Len(t, result.Errors, 1, "one error entry per failing row")
	err := result.Errors[0]
	// Fields are reported in mapping order, so status leads
	assert.Equal(t, "status", err.Field)
	assert.Contains(t, err.Message, "status")
	assert.Contains(t, err.Message, "price_sale_usd")
	assert.Contains(t, err.Message, "rooms")
}

func TestCheckKeepsParseOrder(t *testing.T) {
	svc := NewValidationService(newStubImportStore())

	result := svc.Check(testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{"status": models.TextValue("bad")}),
		parsedRow(3, map[string]models.FieldValue{"rooms": models.IntValue(1)}),
		parsedRow(4, map[string]models.FieldValue{"deal_type": models.TextValue("bad")}),
	})

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	require.Len(t, result.ValidData, 1)
	assert.Equal(t, 3, result.ValidData[0].RowNumber)
}

func TestCheckHasNoSideEffects(t *testing.T) {
	store := newStubImportStore()
	svc := NewValidationService(store)

	svc.Check(testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{"status": models.TextValue("bad")}),
	})

	assert.Empty(t, store.logs, "dry-run validation must not touch the ledger")
}

func TestValidateWritesOneLogEntryPerFailingRow(t *testing.T) {
	store := newStubImportStore()
	svc := NewValidationService(store)
	run := store.addRun(&models.ImportRun{RunCode: "IMP-test", Kind: models.ImportKindCreateOrUpdate})

	result := svc.Validate(run, testMapping(), []models.ParsedRow{
		parsedRow(2, map[string]models.FieldValue{"rooms": models.IntValue(2)}),
		parsedRow(3, map[string]models.FieldValue{"status": models.TextValue("bad"), "rooms": models.IntValue(50)}),
		parsedRow(4, map[string]models.FieldValue{"area_total": dec("-10")}),
	})

	assert.Equal(t, 2, result.TotalErrors)
	assert.Len(t, result.ValidData, 1)

	errorLogs := store.logsWithLevel(models.LogLevelError)
	require.Len(t, errorLogs, 2)
	for _, entry := range errorLogs {
		assert.Equal(t, run.ID, entry.RunID)
		require.NotNil(t, entry.RowNumber)
		assert.NotEmpty(t, entry.Detail, "per-field breakdown goes into the detail payload")
	}
	assert.Equal(t, int64(3), *errorLogs[0].RowNumber)
	assert.Equal(t, int64(4), *errorLogs[1].RowNumber)
}
