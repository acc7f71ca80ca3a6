package repository

import (
	"database/sql"

	"estate-import/internal/models"

	"github.com/jmoiron/sqlx"
)

type MappingRepository struct {
	db *sqlx.DB
}

func NewMappingRepository(db *sqlx.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) Create(mapping *models.FieldMapping) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if mapping.IsDefault {
		if _, err := tx.Exec("UPDATE field_mappings SET is_default = FALSE WHERE is_default = TRUE"); err != nil {
			return err
		}
	}

	query := `INSERT INTO field_mappings (name, columns, header_row, data_start_row, is_default)
	          VALUES (:name, :columns, :header_row, :data_start_row, :is_default)`
	result, err := tx.NamedExec(query, mapping)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	mapping.ID = int(id)

	return tx.Commit()
}

func (r *MappingRepository) Update(mapping *models.FieldMapping) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if mapping.IsDefault {
		if _, err := tx.Exec("UPDATE field_mappings SET is_default = FALSE WHERE is_default = TRUE AND id != ?", mapping.ID); err != nil {
			return err
		}
	}

	query := `UPDATE field_mappings SET name = :name, columns = :columns,
	          header_row = :header_row, data_start_row = :data_start_row,
	          is_default = :is_default
	          WHERE id = :id`
	if _, err := tx.NamedExec(query, mapping); err != nil {
		return err
	}

	return tx.Commit()
}

// SetDefault makes one mapping the default, clearing the flag on all others
// inside the same transaction so the singleton invariant holds. When id
// matches no mapping the transaction rolls back, so the previous default
// survives a request that named a deleted mapping.
func (r *MappingRepository) SetDefault(id int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE field_mappings SET is_default = FALSE WHERE is_default = TRUE"); err != nil {
		return err
	}
	result, err := tx.Exec("UPDATE field_mappings SET is_default = TRUE WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *MappingRepository) GetByID(id int) (*models.FieldMapping, error) {
	var mapping models.FieldMapping
	query := "SELECT * FROM field_mappings WHERE id = ? LIMIT 1"
	err := r.db.Get(&mapping, query, id)
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *MappingRepository) GetDefault() (*models.FieldMapping, error) {
	var mapping models.FieldMapping
	query := "SELECT * FROM field_mappings WHERE is_default = TRUE LIMIT 1"
	err := r.db.Get(&mapping, query)
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *MappingRepository) FindAll() ([]models.FieldMapping, error) {
	var mappings []models.FieldMapping
	query := "SELECT * FROM field_mappings ORDER BY name"
	err := r.db.Select(&mappings, query)
	return mappings, err
}

// Delete removes a mapping; past runs keep their counters and logs, the
// foreign key nulls their mapping reference.
func (r *MappingRepository) Delete(id int) error {
	query := "DELETE FROM field_mappings WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
