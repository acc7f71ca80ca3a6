package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyField describes one importable field of Property: the value kind
// the parser coerces to, the typed setter the reconciler applies, and the
// domain rule the validator enforces. Mapping configuration is checked
// against this registry, so unknown field names are rejected before a run
// ever starts.
type PropertyField struct {
	Kind  FieldKind
	Price bool
	Set   func(p *Property, v FieldValue)
	Rule  func(v FieldValue) error
}

var roomRange = intRange(0, 20)

var propertyFields = map[string]PropertyField{
	"legacy_id": {Kind: FieldText, Rule: requiredText,
		Set: func(p *Property, v FieldValue) { p.LegacyID = v.Text }},

	"title": {Kind: FieldText,
		Set: func(p *Property, v FieldValue) { p.Title = &v.Text }},
	"description": {Kind: FieldText,
		Set: func(p *Property, v FieldValue) { p.Description = &v.Text }},
	"address": {Kind: FieldText,
		Set: func(p *Property, v FieldValue) { p.Address = &v.Text }},
	"city": {Kind: FieldText,
		Set: func(p *Property, v FieldValue) { p.City = &v.Text }},
	"district": {Kind: FieldText,
		Set: func(p *Property, v FieldValue) { p.District = &v.Text }},

	"status": {Kind: FieldText, Rule: oneOf("status", PropertyStatuses),
		Set: func(p *Property, v FieldValue) { s := strings.ToLower(v.Text); p.Status = &s }},
	"deal_type": {Kind: FieldText, Rule: oneOf("deal type", DealTypes),
		Set: func(p *Property, v FieldValue) { s := strings.ToLower(v.Text); p.DealType = &s }},

	"price_sale_usd": {Kind: FieldDecimal, Price: true, Rule: nonNegativeDecimal,
		Set: func(p *Property, v FieldValue) { p.PriceSaleUSD = nullDec(v.Dec) }},
	"price_rent_usd": {Kind: FieldDecimal, Price: true, Rule: nonNegativeDecimal,
		Set: func(p *Property, v FieldValue) { p.PriceRentUSD = nullDec(v.Dec) }},

	"area_total": {Kind: FieldDecimal, Rule: positiveDecimal,
		Set: func(p *Property, v FieldValue) { p.AreaTotal = nullDec(v.Dec) }},
	"area_living": {Kind: FieldDecimal, Rule: positiveDecimal,
		Set: func(p *Property, v FieldValue) { p.AreaLiving = nullDec(v.Dec) }},

	"rooms": {Kind: FieldInteger, Rule: roomRange,
		Set: func(p *Property, v FieldValue) { p.Rooms = &v.Int }},
	"bedrooms": {Kind: FieldInteger, Rule: roomRange,
		Set: func(p *Property, v FieldValue) { p.Bedrooms = &v.Int }},
	"bathrooms": {Kind: FieldInteger, Rule: roomRange,
		Set: func(p *Property, v FieldValue) { p.Bathrooms = &v.Int }},
	"floor": {Kind: FieldInteger,
		Set: func(p *Property, v FieldValue) { p.Floor = &v.Int }},
	"floors_total": {Kind: FieldInteger,
		Set: func(p *Property, v FieldValue) { p.FloorsTotal = &v.Int }},
	"year_built": {Kind: FieldInteger,
		Set: func(p *Property, v FieldValue) { p.YearBuilt = &v.Int }},

	"latitude": {Kind: FieldDecimal, Rule: decimalRange(-90, 90),
		Set: func(p *Property, v FieldValue) { p.Latitude = nullDec(v.Dec) }},
	"longitude": {Kind: FieldDecimal, Rule: decimalRange(-180, 180),
		Set: func(p *Property, v FieldValue) { p.Longitude = nullDec(v.Dec) }},

	"is_furnished": {Kind: FieldBoolean,
		Set: func(p *Property, v FieldValue) { p.IsFurnished = &v.Bool }},
	"has_parking": {Kind: FieldBoolean,
		Set: func(p *Property, v FieldValue) { p.HasParking = &v.Bool }},
}

// LookupPropertyField resolves a target field name against the registry
func LookupPropertyField(name string) (PropertyField, bool) {
	f, ok := propertyFields[name]
	return f, ok
}

func nullDec(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func requiredText(v FieldValue) error {
	if v.Kind != FieldText || strings.TrimSpace(v.Text) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

func nonNegativeDecimal(v FieldValue) error {
	if v.Kind != FieldDecimal {
		return fmt.Errorf("must be a number, got %q", v.String())
	}
	if v.Dec.IsNegative() {
		return fmt.Errorf("cannot be negative, got %s", v.Dec)
	}
	return nil
}

func positiveDecimal(v FieldValue) error {
	if v.Kind != FieldDecimal {
		return fmt.Errorf("must be a number, got %q", v.String())
	}
	if !v.Dec.IsPositive() {
		return fmt.Errorf("must be greater than zero, got %s", v.Dec)
	}
	return nil
}

func intRange(min, max int64) func(v FieldValue) error {
	return func(v FieldValue) error {
		if v.Kind != FieldInteger {
			return fmt.Errorf("must be a whole number, got %q", v.String())
		}
		if v.Int < min || v.Int > max {
			return fmt.Errorf("must be between %d and %d, got %d", min, max, v.Int)
		}
		return nil
	}
}

func decimalRange(min, max int64) func(v FieldValue) error {
	lo := decimal.NewFromInt(min)
	hi := decimal.NewFromInt(max)
	return func(v FieldValue) error {
		if v.Kind != FieldDecimal {
			return fmt.Errorf("must be a number, got %q", v.String())
		}
		if v.Dec.LessThan(lo) || v.Dec.GreaterThan(hi) {
			return fmt.Errorf("must be between %s and %s, got %s", lo, hi, v.Dec)
		}
		return nil
	}
}

func oneOf(label string, allowed []string) func(v FieldValue) error {
	return func(v FieldValue) error {
		if v.Kind != FieldText {
			return fmt.Errorf("invalid %s %q", label, v.String())
		}
		value := strings.ToLower(strings.TrimSpace(v.Text))
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of: %s", label, strings.Join(allowed, ", "))
	}
}
