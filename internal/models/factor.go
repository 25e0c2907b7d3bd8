package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmissionFactor is a standard (globally published) conversion coefficient.
// The tuple (activity_code, country, year, source) is unique.
type EmissionFactor struct {
	ID           int64               `db:"id" json:"id"`
	ActivityCode string              `db:"activity_code" json:"activity_code"`
	Name         string              `db:"name" json:"name"`
	Description  *string             `db:"description" json:"description,omitempty"`
	Source       string              `db:"source" json:"source"`
	Country      string              `db:"country" json:"country"`
	Year         int                 `db:"year" json:"year"`
	Unit         string              `db:"unit" json:"unit"`
	CO2Factor    decimal.Decimal     `db:"co2_factor" json:"co2_factor"`
	CH4Factor    decimal.NullDecimal `db:"ch4_factor" json:"ch4_factor,omitempty"`
	N2OFactor    decimal.NullDecimal `db:"n2o_factor" json:"n2o_factor,omitempty"`
	CO2eFactor   decimal.Decimal     `db:"co2e_factor" json:"co2e_factor"`
	Metadata     JSONMap             `db:"metadata" json:"metadata,omitempty"`
	IsActive     bool                `db:"is_active" json:"is_active"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// CustomEmissionFactor is an organization-authored override. It carries no
// year or source dimension; the newest active one wins outright.
type CustomEmissionFactor struct {
	ID             int64               `db:"id" json:"id"`
	OrganizationID string              `db:"organization_id" json:"organization_id"`
	ActivityCode   string              `db:"activity_code" json:"activity_code"`
	Name           string              `db:"name" json:"name"`
	Description    *string             `db:"description" json:"description,omitempty"`
	Unit           string              `db:"unit" json:"unit"`
	CO2Factor      decimal.Decimal     `db:"co2_factor" json:"co2_factor"`
	CH4Factor      decimal.NullDecimal `db:"ch4_factor" json:"ch4_factor,omitempty"`
	N2OFactor      decimal.NullDecimal `db:"n2o_factor" json:"n2o_factor,omitempty"`
	CO2eFactor     decimal.Decimal     `db:"co2e_factor" json:"co2e_factor"`
	Metadata       JSONMap             `db:"metadata" json:"metadata,omitempty"`
	IsActive       bool                `db:"is_active" json:"is_active"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// FactorKind discriminates the two factor tables.
type FactorKind string

const (
	FactorStandard FactorKind = "standard"
	FactorCustom   FactorKind = "custom"
)

// FactorRef is a tagged reference to exactly one factor row. Using a variant
// instead of two nullable foreign keys makes the both-null and both-set
// states unrepresentable.
type FactorRef struct {
	Kind FactorKind `json:"kind"`
	ID   int64      `json:"id"`
}

// StandardRef builds a reference to a standard factor.
func StandardRef(id int64) FactorRef {
	return FactorRef{Kind: FactorStandard, ID: id}
}

// CustomRef builds a reference to a custom factor.
func CustomRef(id int64) FactorRef {
	return FactorRef{Kind: FactorCustom, ID: id}
}

// Columns splits the reference into the two nullable foreign-key columns at
// the persistence edge.
func (r FactorRef) Columns() (standardID, customID *int64) {
	id := r.ID
	switch r.Kind {
	case FactorCustom:
		return nil, &id
	default:
		return &id, nil
	}
}

// ResolvedFactor is the outcome of factor resolution: which row won and the
// coefficient to multiply the activity quantity by.
type ResolvedFactor struct {
	Ref        FactorRef       `json:"ref"`
	CO2eFactor decimal.Decimal `json:"co2e_factor"`
	Unit       string          `json:"unit"`
	Source     string          `json:"source,omitempty"`
	Year       int             `json:"year,omitempty"`
}
