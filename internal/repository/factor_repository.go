package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenledger/greenledger-api/internal/models"
)

const standardFactorColumns = `id, activity_code, name, description, source, country, year, unit, co2_factor, ch4_factor, n2o_factor, co2e_factor, metadata, is_active, created_at, updated_at`

const customFactorColumns = `id, organization_id, activity_code, name, description, unit, co2_factor, ch4_factor, n2o_factor, co2e_factor, metadata, is_active, created_at, updated_at`

// FactorRepository reads standard and custom emission factors. Each lookup is
// a single query so the resolver always sees one consistent factor set.
type FactorRepository struct {
	db *sqlx.DB
}

// NewFactorRepository creates a new repository instance.
func NewFactorRepository(db *sqlx.DB) *FactorRepository {
	return &FactorRepository{db: db}
}

// ListActiveStandard returns active standard factors for an activity and
// country, latest year first. Years are unique per (activity, country,
// source), so the first row is the resolver's pick.
func (r *FactorRepository) ListActiveStandard(ctx context.Context, activityCode, country string) ([]models.EmissionFactor, error) {
	query := fmt.Sprintf(`SELECT %s FROM emission_factors WHERE activity_code = $1 AND country = $2 AND is_active = TRUE ORDER BY year DESC, id`, standardFactorColumns)
	var factors []models.EmissionFactor
	if err := r.db.SelectContext(ctx, &factors, query, activityCode, country); err != nil {
		return nil, fmt.Errorf("list standard factors for %s/%s: %w", activityCode, country, err)
	}
	return factors, nil
}

// ListActiveCustom returns active organization overrides for an activity,
// newest creation first with lower id winning a timestamp tie.
func (r *FactorRepository) ListActiveCustom(ctx context.Context, organizationID, activityCode string) ([]models.CustomEmissionFactor, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_emission_factors WHERE organization_id = $1 AND activity_code = $2 AND is_active = TRUE ORDER BY created_at DESC, id ASC`, customFactorColumns)
	var factors []models.CustomEmissionFactor
	if err := r.db.SelectContext(ctx, &factors, query, organizationID, activityCode); err != nil {
		return nil, fmt.Errorf("list custom factors for org %s activity %s: %w", organizationID, activityCode, err)
	}
	return factors, nil
}

// FindStandardByID returns a standard factor row.
func (r *FactorRepository) FindStandardByID(ctx context.Context, id int64) (*models.EmissionFactor, error) {
	query := fmt.Sprintf(`SELECT %s FROM emission_factors WHERE id = $1`, standardFactorColumns)
	var factor models.EmissionFactor
	if err := r.db.GetContext(ctx, &factor, query, id); err != nil {
		return nil, err
	}
	return &factor, nil
}

// FindCustomByID returns a custom factor row.
func (r *FactorRepository) FindCustomByID(ctx context.Context, id int64) (*models.CustomEmissionFactor, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_emission_factors WHERE id = $1`, customFactorColumns)
	var factor models.CustomEmissionFactor
	if err := r.db.GetContext(ctx, &factor, query, id); err != nil {
		return nil, err
	}
	return &factor, nil
}

// InsertStandard persists a standard factor. Used by dataset seeding.
func (r *FactorRepository) InsertStandard(ctx context.Context, factor *models.EmissionFactor) error {
	const query = `
		INSERT INTO emission_factors (activity_code, name, description, source, country, year, unit, co2_factor, ch4_factor, n2o_factor, co2e_factor, metadata, is_active, created_at, updated_at)
		VALUES (:activity_code, :name, :description, :source, :country, :year, :unit, :co2_factor, :ch4_factor, :n2o_factor, :co2e_factor, :metadata, :is_active, NOW(), NOW())
		ON CONFLICT (activity_code, country, year, source) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, factor); err != nil {
		return fmt.Errorf("insert standard factor %s/%s/%d: %w", factor.ActivityCode, factor.Country, factor.Year, err)
	}
	return nil
}

// InsertCustom persists an organization override.
func (r *FactorRepository) InsertCustom(ctx context.Context, factor *models.CustomEmissionFactor) error {
	const query = `
		INSERT INTO custom_emission_factors (organization_id, activity_code, name, description, unit, co2_factor, ch4_factor, n2o_factor, co2e_factor, metadata, is_active, created_at, updated_at)
		VALUES (:organization_id, :activity_code, :name, :description, :unit, :co2_factor, :ch4_factor, :n2o_factor, :co2e_factor, :metadata, :is_active, NOW(), NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, factor); err != nil {
		return fmt.Errorf("insert custom factor for org %s activity %s: %w", factor.OrganizationID, factor.ActivityCode, err)
	}
	return nil
}
