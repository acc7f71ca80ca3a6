package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"estate-import/internal/models"
	"estate-import/internal/repository"

	"github.com/xuri/excelize/v2"
)

// In-memory store stubs so the pipeline services can be tested without a
// database.

type stubPropertyStore struct {
	byLegacyID map[string]*models.Property
	nextID     int
	createErr  error
	updateErr  error
	createdIDs []string
	updatedIDs []string
}

func newStubPropertyStore() *stubPropertyStore {
	return &stubPropertyStore{byLegacyID: make(map[string]*models.Property), nextID: 1}
}

func (s *stubPropertyStore) GetByLegacyID(legacyID string) (*models.Property, error) {
	p, ok := s.byLegacyID[legacyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (s *stubPropertyStore) Create(p *models.Property) error {
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = s.nextID
	s.nextID++
	clone := *p
	s.byLegacyID[p.LegacyID] = &clone
	s.createdIDs = append(s.createdIDs, p.LegacyID)
	return nil
}

func (s *stubPropertyStore) Update(p *models.Property) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	clone := *p
	s.byLegacyID[p.LegacyID] = &clone
	s.updatedIDs = append(s.updatedIDs, p.LegacyID)
	return nil
}

type stubMappingStore struct {
	byID       map[int]*models.FieldMapping
	defaultMap *models.FieldMapping
}

func newStubMappingStore() *stubMappingStore {
	return &stubMappingStore{byID: make(map[int]*models.FieldMapping)}
}

func (s *stubMappingStore) GetByID(id int) (*models.FieldMapping, error) {
	m, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (s *stubMappingStore) GetDefault() (*models.FieldMapping, error) {
	if s.defaultMap == nil {
		return nil, sql.ErrNoRows
	}
	return s.defaultMap, nil
}

type stubImportStore struct {
	runs   map[int]*models.ImportRun
	logs   []*models.ImportLogEntry
	nextID int
}

func newStubImportStore() *stubImportStore {
	return &stubImportStore{runs: make(map[int]*models.ImportRun), nextID: 1}
}

func (s *stubImportStore) addRun(run *models.ImportRun) *models.ImportRun {
	run.ID = s.nextID
	s.nextID++
	if run.Status == "" {
		run.Status = models.RunStatusUploaded
	}
	run.CreatedAt = time.Now()
	s.runs[run.ID] = run
	return run
}

func (s *stubImportStore) GetRunByID(id int) (*models.ImportRun, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *run
	return &clone, nil
}

func (s *stubImportStore) StartRun(id int) error {
	run, ok := s.runs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if run.Status != models.RunStatusUploaded {
		return repository.ErrRunAlreadyStarted
	}
	now := time.Now()
	run.Status = models.RunStatusProcessing
	run.StartedAt = &now
	return nil
}

func (s *stubImportStore) FailRun(id int, message string) error {
	run, ok := s.runs[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	run.Status = models.RunStatusFailed
	run.ErrorMessage = message
	run.CompletedAt = &now
	return nil
}

func (s *stubImportStore) SetParseStats(id int, totalRows int, preview json.RawMessage) error {
	run, ok := s.runs[id]
	if !ok {
		return sql.ErrNoRows
	}
	run.TotalRows = totalRows
	run.PreviewData = preview
	return nil
}

func (s *stubImportStore) CompleteRun(id int, processed, successful, failed int, errs models.ValidationErrorList) error {
	run, ok := s.runs[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	run.Status = models.RunStatusCompleted
	run.ProcessedRows = processed
	run.SuccessfulRows = successful
	run.FailedRows = failed
	run.ValidationErrors = errs
	run.CompletedAt = &now
	return nil
}

func (s *stubImportStore) AddLogEntry(entry *models.ImportLogEntry) error {
	entry.ID = int64(len(s.logs) + 1)
	entry.CreatedAt = time.Now()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *stubImportStore) logsWithLevel(level string) []*models.ImportLogEntry {
	var out []*models.ImportLogEntry
	for _, e := range s.logs {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// testMapping returns the standard workbook layout: headers on row 1, data
// from row 2.
func testMapping() *models.FieldMapping {
	return &models.FieldMapping{
		ID:           1,
		Name:         "Standard listing sheet",
		Columns:      models.DefaultColumns(),
		HeaderRow:    1,
		DataStartRow: 2,
	}
}

// writeWorkbook builds a temp .xlsx with the default column headers and the
// given data rows. Each row is written in DefaultColumns order.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, cm := range models.DefaultColumns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			t.Fatalf("bad header coordinate: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, cm.Column); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				t.Fatalf("bad cell coordinate: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("failed to write cell: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), fmt.Sprintf("listings-%d.xlsx", time.Now().UnixNano()))
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// listingRow fills a DefaultColumns-shaped row from a field map, leaving
// unmentioned cells empty.
func listingRow(values map[string]interface{}) []interface{} {
	columns := models.DefaultColumns()
	row := make([]interface{}, len(columns))
	for i, cm := range columns {
		if v, ok := values[cm.Field]; ok {
			row[i] = v
		}
	}
	return row
}
