package repository

import (
	"estate-import/internal/models"
	"estate-import/internal/utils"

	"github.com/jmoiron/sqlx"
)

// Columns the property list may be ordered by
var propertyOrderColumns = []string{
	"legacy_id", "city", "status", "deal_type",
	"price_sale_usd", "price_rent_usd", "area_total", "created_at",
}

type PropertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByLegacyID(legacyID string) (*models.Property, error) {
	var property models.Property
	query := "SELECT * FROM properties WHERE legacy_id = ? LIMIT 1"
	err := r.db.Get(&property, query, legacyID)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepository) Create(property *models.Property) error {
	query := `INSERT INTO properties (legacy_id, title, description, address, city, district,
	          status, deal_type, price_sale_usd, price_rent_usd, area_total, area_living,
	          rooms, bedrooms, bathrooms, floor, floors_total, year_built,
	          latitude, longitude, is_furnished, has_parking)
	          VALUES (:legacy_id, :title, :description, :address, :city, :district,
	          :status, :deal_type, :price_sale_usd, :price_rent_usd, :area_total, :area_living,
	          :rooms, :bedrooms, :bathrooms, :floor, :floors_total, :year_built,
	          :latitude, :longitude, :is_furnished, :has_parking)`
	result, err := r.db.NamedExec(query, property)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	property.ID = int(id)
	return nil
}

func (r *PropertyRepository) Update(property *models.Property) error {
	query := `UPDATE properties SET title = :title, description = :description,
	          address = :address, city = :city, district = :district,
	          status = :status, deal_type = :deal_type,
	          price_sale_usd = :price_sale_usd, price_rent_usd = :price_rent_usd,
	          area_total = :area_total, area_living = :area_living,
	          rooms = :rooms, bedrooms = :bedrooms, bathrooms = :bathrooms,
	          floor = :floor, floors_total = :floors_total, year_built = :year_built,
	          latitude = :latitude, longitude = :longitude,
	          is_furnished = :is_furnished, has_parking = :has_parking
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, property)
	return err
}

func (r *PropertyRepository) FindAll(limit, offset int, search, orderBy, orderDir string) ([]models.Property, int, error) {
	var properties []models.Property
	var total int

	whereClause := ""
	args := []interface{}{}

	if search != "" {
		whereClause = "WHERE legacy_id LIKE ? OR title LIKE ? OR address LIKE ?"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern, searchPattern)
	}

	countQuery := "SELECT COUNT(*) FROM properties " + whereClause
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	orderClause := utils.OrderClause(orderBy, orderDir, propertyOrderColumns, "legacy_id ASC")
	query := "SELECT * FROM properties " + whereClause + " " + orderClause + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	err = r.db.Select(&properties, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}
