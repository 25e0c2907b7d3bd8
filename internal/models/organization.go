package models

import "time"

// Organization owns productions and custom emission factors.
type Organization struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Production is one reporting exercise within an organization; emission
// records hang off it.
type Production struct {
	ID                   string     `db:"id" json:"id"`
	OrganizationID       string     `db:"organization_id" json:"organization_id"`
	Name                 string     `db:"name" json:"name"`
	Description          *string    `db:"description" json:"description,omitempty"`
	CalculationVersion   string     `db:"calculation_version" json:"calculation_version"`
	BaseYear             *time.Time `db:"base_year" json:"base_year,omitempty"`
	ReportingPeriodStart *time.Time `db:"reporting_period_start" json:"reporting_period_start,omitempty"`
	ReportingPeriodEnd   *time.Time `db:"reporting_period_end" json:"reporting_period_end,omitempty"`
	IsActive             bool       `db:"is_active" json:"is_active"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}
