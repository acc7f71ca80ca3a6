package service

import (
	"encoding/json"
	"testing"

	"estate-import/internal/models"
	"estate-import/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPipeline struct {
	properties *stubPropertyStore
	mappings   *stubMappingStore
	store      *stubImportStore
	service    *ImportService
}

func newTestPipeline(previewRows int) *testPipeline {
	properties := newStubPropertyStore()
	mappings := newStubMappingStore()
	store := newStubImportStore()

	mapping := testMapping()
	mapping.IsDefault = true
	mappings.byID[mapping.ID] = mapping
	mappings.defaultMap = mapping

	excel := NewExcelService()
	validator := NewValidationService(store)
	reconciler := NewReconcileService(properties, store)
	svc := NewImportService(excel, validator, reconciler, store, mappings, previewRows)

	return &testPipeline{properties: properties, mappings: mappings, store: store, service: svc}
}

func (p *testPipeline) newRun(t *testing.T, filePath, kind string) *models.ImportRun {
	t.Helper()
	return p.store.addRun(&models.ImportRun{
		RunCode:  "IMP-test",
		Filename: "listings.xlsx",
		FilePath: filePath,
		Kind:     kind,
		Status:   models.RunStatusUploaded,
	})
}

func TestProcessRunMixedBatch(t *testing.T) {
	p := newTestPipeline(20)
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{
			"legacy_id": "VS001", "price_sale_usd": "-500", "status": "available",
		}),
		listingRow(map[string]interface{}{
			"legacy_id": "VS002", "price_sale_usd": "500000", "status": "available",
		}),
	})
	run := p.newRun(t, path, models.ImportKindCreateOrUpdate)

	require.NoError(t, p.service.ProcessRun(run.ID))

	final, err := p.store.GetRunByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, final.Status)
	assert.Equal(t, 2, final.TotalRows)
	assert.Equal(t, 2, final.ProcessedRows)
	assert.Equal(t, 1, final.SuccessfulRows)
	assert.Equal(t, 1, final.FailedRows)
	assert.Equal(t, final.ProcessedRows, final.SuccessfulRows+final.FailedRows)
	assert.NotNil(t, final.StartedAt)
	assert.NotNil(t, final.CompletedAt)

	require.Len(t, final.ValidationErrors, 1)
	assert.Equal(t, 2, final.ValidationErrors[0].Row)
	assert.Equal(t, "price_sale_usd", final.ValidationErrors[0].Field)

	// The invalid row is never persisted; the valid one is created
	_, err = p.properties.GetByLegacyID("VS001")
	assert.Error(t, err)
	created, err := p.properties.GetByLegacyID("VS002")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("500000").Equal(created.PriceSaleUSD.Decimal))
}

func TestProcessRunReportsProgress(t *testing.T) {
	p := newTestPipeline(20)
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001"}),
		listingRow(map[string]interface{}{"legacy_id": "VS002"}),
	})
	run := p.newRun(t, path, models.ImportKindCreateOrUpdate)

	var percents []int
	require.NoError(t, p.service.ProcessRunWithProgress(run.ID, func(percent int) {
		percents = append(percents, percent)
	}))

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress never goes backwards")
	}
	assert.Equal(t, 100, percents[len(percents)-1])

	// Both reconciled rows publish an intermediate step between validation
	// and completion
	assert.Contains(t, percents, 60)
	assert.Contains(t, percents, 95)
}

func TestProcessRunPreviewIsBounded(t *testing.T) {
	p := newTestPipeline(2)
	var rows [][]interface{}
	for i := 0; i < 5; i++ {
		rows = append(rows, listingRow(map[string]interface{}{
			"legacy_id": "VS00" + string(rune('1'+i)),
		}))
	}
	run := p.newRun(t, writeWorkbook(t, rows), models.ImportKindCreateOrUpdate)

	require.NoError(t, p.service.ProcessRun(run.ID))

	final, err := p.store.GetRunByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, final.TotalRows)

	// Field values are marshalled in scalar form, so inspect raw rows
	var preview []json.RawMessage
	require.NoError(t, json.Unmarshal(final.PreviewData, &preview))
	assert.Len(t, preview, 2)
}

func TestProcessRunRejectsRetrigger(t *testing.T) {
	p := newTestPipeline(20)
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001"}),
	})
	run := p.newRun(t, path, models.ImportKindCreateOrUpdate)

	require.NoError(t, p.service.ProcessRun(run.ID))
	err := p.service.ProcessRun(run.ID)

	require.ErrorIs(t, err, repository.ErrRunAlreadyStarted)

	final, _ := p.store.GetRunByID(run.ID)
	assert.Equal(t, models.RunStatusCompleted, final.Status, "a completed run is never reprocessed")
	assert.Len(t, p.properties.createdIDs, 1, "the property was written exactly once")
}

func TestProcessRunNoMappingLeavesRunUploaded(t *testing.T) {
	p := newTestPipeline(20)
	p.mappings.defaultMap = nil
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001"}),
	})
	run := p.newRun(t, path, models.ImportKindCreateOrUpdate)

	err := p.service.ProcessRun(run.ID)

	require.ErrorIs(t, err, ErrNoMapping)
	final, _ := p.store.GetRunByID(run.ID)
	assert.Equal(t, models.RunStatusUploaded, final.Status,
		"configuration failures surface before the run starts")
	assert.Nil(t, final.StartedAt)
}

func TestProcessRunExplicitMapping(t *testing.T) {
	p := newTestPipeline(20)
	p.mappings.defaultMap = nil // only resolvable by id
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001"}),
	})
	run := p.newRun(t, path, models.ImportKindCreateOrUpdate)
	mappingID := int64(1)
	run.MappingID = &mappingID

	require.NoError(t, p.service.ProcessRun(run.ID))

	final, _ := p.store.GetRunByID(run.ID)
	assert.Equal(t, models.RunStatusCompleted, final.Status)
}

func TestProcessRunUnreadableFileFailsRun(t *testing.T) {
	p := newTestPipeline(20)
	run := p.newRun(t, "/nonexistent/listings.xlsx", models.ImportKindCreateOrUpdate)

	err := p.service.ProcessRun(run.ID)

	require.Error(t, err)
	final, _ := p.store.GetRunByID(run.ID)
	assert.Equal(t, models.RunStatusFailed, final.Status)
	assert.NotEmpty(t, final.ErrorMessage)
	assert.NotNil(t, final.CompletedAt)
}

func TestProcessRunUpdateKindCountsMissingAsFailed(t *testing.T) {
	p := newTestPipeline(20)
	p.properties.byLegacyID["VS001"] = existingProperty("VS001")
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001", "title": "Updated"}),
		listingRow(map[string]interface{}{"legacy_id": "VS404", "title": "Unknown"}),
	})
	run := p.newRun(t, path, models.ImportKindUpdate)

	require.NoError(t, p.service.ProcessRun(run.ID))

	final, _ := p.store.GetRunByID(run.ID)
	assert.Equal(t, 1, final.SuccessfulRows)
	assert.Equal(t, 1, final.FailedRows)
	assert.Len(t, p.properties.updatedIDs, 1)
	assert.Empty(t, p.properties.createdIDs)
}

func TestDryRunPersistsNothing(t *testing.T) {
	p := newTestPipeline(20)
	path := writeWorkbook(t, [][]interface{}{
		listingRow(map[string]interface{}{"legacy_id": "VS001", "status": "available"}),
		listingRow(map[string]interface{}{"legacy_id": "VS002", "status": "pending"}),
	})

	parseResult, validation, err := p.service.DryRun(path, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, parseResult.TotalRows)
	assert.Len(t, validation.ValidData, 1)
	assert.Equal(t, 1, validation.TotalErrors)

	assert.Empty(t, p.store.logs, "dry run writes no log entries")
	assert.Empty(t, p.properties.createdIDs)
	assert.Empty(t, p.properties.updatedIDs)
}

func TestDryRunWithoutAnyMapping(t *testing.T) {
	p := newTestPipeline(20)
	p.mappings.defaultMap = nil
	path := writeWorkbook(t, nil)

	_, _, err := p.service.DryRun(path, nil)

	require.ErrorIs(t, err, ErrNoMapping)
}
