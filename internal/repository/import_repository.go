package repository

import (
	"encoding/json"
	"errors"

	"estate-import/internal/models"
	"estate-import/internal/utils"

	"github.com/jmoiron/sqlx"
)

// Columns the run list may be ordered by
var runOrderColumns = []string{"created_at", "status", "kind", "filename", "total_rows"}

// ErrRunAlreadyStarted is returned when a run past the uploaded state is
// triggered again.
var ErrRunAlreadyStarted = errors.New("import run has already been started")

type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) CreateRun(run *models.ImportRun) error {
	query := `INSERT INTO import_runs (run_code, user_id, filename, file_path, kind, mapping_id, status)
	          VALUES (:run_code, :user_id, :filename, :file_path, :kind, :mapping_id, :status)`
	result, err := r.db.NamedExec(query, run)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	run.ID = int(id)
	return nil
}

func (r *ImportRepository) GetRunByID(id int) (*models.ImportRun, error) {
	var run models.ImportRun
	query := "SELECT * FROM import_runs WHERE id = ? LIMIT 1"
	err := r.db.Get(&run, query, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *ImportRepository) GetRunByCode(code string) (*models.ImportRun, error) {
	var run models.ImportRun
	query := "SELECT * FROM import_runs WHERE run_code = ? LIMIT 1"
	err := r.db.Get(&run, query, code)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *ImportRepository) GetRuns(limit, offset int, userID int, orderBy, orderDir string) ([]models.ImportRun, int, error) {
	var runs []models.ImportRun
	var total int

	whereClause := ""
	args := []interface{}{}

	if userID > 0 {
		whereClause = "WHERE user_id = ?"
		args = append(args, userID)
	}

	countQuery := "SELECT COUNT(*) FROM import_runs " + whereClause
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	orderClause := utils.OrderClause(orderBy, orderDir, runOrderColumns, "created_at DESC")
	query := "SELECT * FROM import_runs " + whereClause + " " + orderClause + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	err = r.db.Select(&runs, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// StartRun moves a run from uploaded to processing. The conditional UPDATE
// is the at-most-once guard: a run past uploaded matches no row.
func (r *ImportRepository) StartRun(id int) error {
	query := `UPDATE import_runs SET status = ?, started_at = NOW()
	          WHERE id = ? AND status = ?`
	result, err := r.db.Exec(query, models.RunStatusProcessing, id, models.RunStatusUploaded)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunAlreadyStarted
	}
	return nil
}

func (r *ImportRepository) FailRun(id int, message string) error {
	query := `UPDATE import_runs SET status = ?, error_message = ?, completed_at = NOW()
	          WHERE id = ?`
	_, err := r.db.Exec(query, models.RunStatusFailed, message, id)
	return err
}

func (r *ImportRepository) SetParseStats(id int, totalRows int, preview json.RawMessage) error {
	query := `UPDATE import_runs SET total_rows = ?, preview_data = ? WHERE id = ?`
	_, err := r.db.Exec(query, totalRows, []byte(preview), id)
	return err
}

func (r *ImportRepository) CompleteRun(id int, processed, successful, failed int, errs models.ValidationErrorList) error {
	query := `UPDATE import_runs SET status = ?, processed_rows = ?, successful_rows = ?,
	          failed_rows = ?, validation_errors = ?, completed_at = NOW()
	          WHERE id = ?`
	_, err := r.db.Exec(query, models.RunStatusCompleted, processed, successful, failed, errs, id)
	return err
}

// AddLogEntry appends one audit record. Log rows are insert-only; nothing in
// this repository updates or deletes them.
func (r *ImportRepository) AddLogEntry(entry *models.ImportLogEntry) error {
	query := `INSERT INTO import_logs (run_id, level, message, row_number, detail)
	          VALUES (:run_id, :level, :message, :row_number, :detail)`
	result, err := r.db.NamedExec(query, entry)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	entry.ID = id
	return nil
}

func (r *ImportRepository) GetLogEntries(runID int, limit, offset int) ([]models.ImportLogEntry, int, error) {
	var entries []models.ImportLogEntry
	var total int

	countQuery := "SELECT COUNT(*) FROM import_logs WHERE run_id = ?"
	err := r.db.Get(&total, countQuery, runID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM import_logs WHERE run_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`
	err = r.db.Select(&entries, query, runID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
