package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record period bounds (YYYYMM).
const (
	RecordPeriodMin = 190001
	RecordPeriodMax = 999912
)

// Record flag bits. Flags annotate computational anomalies without rejecting
// the record, so unusual-but-legitimate inputs stay auditable.
const (
	FlagZeroOrNegativeQuantity = 1 << 0
	FlagNegativeFactor         = 1 << 1
)

// Emission is a persisted activity record. calculated_co2e, the factor
// reference and calculation_version are written once at creation and never
// mutated; corrections create a new record.
type Emission struct {
	ID                 int64           `db:"id" json:"id"`
	ProductionID       string          `db:"production_id" json:"production_id"`
	RecordDate         time.Time       `db:"record_date" json:"record_date"`
	RecordPeriod       int             `db:"record_period" json:"record_period"`
	Department         *string         `db:"department" json:"department,omitempty"`
	ActivityCode       string          `db:"activity_code" json:"activity_code"`
	Scope              int             `db:"scope" json:"scope"`
	Country            string          `db:"country" json:"country"`
	EmissionFactorID   *int64          `db:"emission_factor_id" json:"emission_factor_id,omitempty"`
	CustomFactorID     *int64          `db:"custom_factor_id" json:"custom_factor_id,omitempty"`
	CalculationVersion string          `db:"calculation_version" json:"calculation_version"`
	CalculatedCO2e     decimal.Decimal `db:"calculated_co2e" json:"calculated_co2e"`
	RecordFlags        int             `db:"record_flags" json:"record_flags"`
	Data               JSONMap         `db:"data" json:"data"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// FactorRef reconstructs the tagged reference from the two storage columns.
func (e *Emission) FactorRef() FactorRef {
	if e.CustomFactorID != nil {
		return CustomRef(*e.CustomFactorID)
	}
	if e.EmissionFactorID != nil {
		return StandardRef(*e.EmissionFactorID)
	}
	return FactorRef{}
}

// SetFactorRef projects the tagged reference onto the storage columns.
func (e *Emission) SetFactorRef(ref FactorRef) {
	e.EmissionFactorID, e.CustomFactorID = ref.Columns()
}

// EmissionDraft is the caller-supplied input to the calculation pipeline.
// Scope is not accepted from the caller; it comes from the taxonomy node.
type EmissionDraft struct {
	ProductionID string    `json:"production_id" validate:"required"`
	RecordDate   time.Time `json:"record_date" validate:"required"`
	RecordPeriod int       `json:"record_period" validate:"required,min=190001,max=999912"`
	Department   *string   `json:"department,omitempty"`
	ActivityCode string    `json:"activity_code" validate:"required"`
	Country      string    `json:"country" validate:"required,len=2,uppercase"`
	Data         JSONMap   `json:"data"`
}

// EmissionFilter narrows emission listings.
type EmissionFilter struct {
	ProductionID string
	ActivityCode string
	Scope        int
	PeriodFrom   int
	PeriodTo     int
	Page         int
	PageSize     int
}
