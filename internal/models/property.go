package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is the target entity of an import run. All columns except the
// legacy identifier are nullable so a partial-update merge can leave fields
// the spreadsheet never mentioned untouched.
type Property struct {
	ID       int    `db:"id" json:"id"`
	LegacyID string `db:"legacy_id" json:"legacy_id"`

	Title       *string `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Address     *string `db:"address" json:"address"`
	City        *string `db:"city" json:"city"`
	District    *string `db:"district" json:"district"`

	Status   *string `db:"status" json:"status"`
	DealType *string `db:"deal_type" json:"deal_type"`

	PriceSaleUSD decimal.NullDecimal `db:"price_sale_usd" json:"price_sale_usd"`
	PriceRentUSD decimal.NullDecimal `db:"price_rent_usd" json:"price_rent_usd"`

	AreaTotal  decimal.NullDecimal `db:"area_total" json:"area_total"`
	AreaLiving decimal.NullDecimal `db:"area_living" json:"area_living"`

	Rooms       *int64 `db:"rooms" json:"rooms"`
	Bedrooms    *int64 `db:"bedrooms" json:"bedrooms"`
	Bathrooms   *int64 `db:"bathrooms" json:"bathrooms"`
	Floor       *int64 `db:"floor" json:"floor"`
	FloorsTotal *int64 `db:"floors_total" json:"floors_total"`
	YearBuilt   *int64 `db:"year_built" json:"year_built"`

	Latitude  decimal.NullDecimal `db:"latitude" json:"latitude"`
	Longitude decimal.NullDecimal `db:"longitude" json:"longitude"`

	IsFurnished *bool `db:"is_furnished" json:"is_furnished"`
	HasParking  *bool `db:"has_parking" json:"has_parking"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Valid listing statuses, stored lowercase
var PropertyStatuses = []string{"available", "reserved", "sold", "rented"}

// Valid deal types, stored lowercase
var DealTypes = []string{"sale", "rent"}
