package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/greenledger/greenledger-api/internal/models"
)

const emissionColumns = `id, production_id, record_date, record_period, department, activity_code, scope, country, emission_factor_id, custom_factor_id, calculation_version, calculated_co2e, record_flags, data, created_at, updated_at`

// EmissionRepository persists computed activity records.
type EmissionRepository struct {
	db *sqlx.DB
}

// NewEmissionRepository creates a new repository instance.
func NewEmissionRepository(db *sqlx.DB) *EmissionRepository {
	return &EmissionRepository{db: db}
}

const insertEmissionQuery = `
	INSERT INTO emissions (production_id, record_date, record_period, department, activity_code, scope, country, emission_factor_id, custom_factor_id, calculation_version, calculated_co2e, record_flags, data, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	RETURNING id, created_at, updated_at`

// Insert writes a single record and fills in its surrogate id and timestamps.
func (r *EmissionRepository) Insert(ctx context.Context, emission *models.Emission) error {
	row := r.db.QueryRowxContext(ctx, insertEmissionQuery,
		emission.ProductionID,
		emission.RecordDate,
		emission.RecordPeriod,
		emission.Department,
		emission.ActivityCode,
		emission.Scope,
		emission.Country,
		emission.EmissionFactorID,
		emission.CustomFactorID,
		emission.CalculationVersion,
		emission.CalculatedCO2e,
		emission.RecordFlags,
		emission.Data,
	)
	if err := row.Scan(&emission.ID, &emission.CreatedAt, &emission.UpdatedAt); err != nil {
		return fmt.Errorf("insert emission: %w", err)
	}
	return nil
}

// BulkInsert writes a batch of records in one transaction. Callers are
// expected to have validated and resolved every record first.
func (r *EmissionRepository) BulkInsert(ctx context.Context, emissions []models.Emission) error {
	if len(emissions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}

	const query = `
		INSERT INTO emissions (production_id, record_date, record_period, department, activity_code, scope, country, emission_factor_id, custom_factor_id, calculation_version, calculated_co2e, record_flags, data, created_at, updated_at)
		VALUES (:production_id, :record_date, :record_period, :department, :activity_code, :scope, :country, :emission_factor_id, :custom_factor_id, :calculation_version, :calculated_co2e, :record_flags, :data, NOW(), NOW())`

	for i := range emissions {
		if _, err := tx.NamedExecContext(ctx, query, &emissions[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk insert emission %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}
	return nil
}

// List returns emissions matching the filter with pagination metadata.
func (r *EmissionRepository) List(ctx context.Context, filter models.EmissionFilter) ([]models.Emission, int, error) {
	base := "FROM emissions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProductionID != "" {
		conditions = append(conditions, fmt.Sprintf("production_id = $%d", len(args)+1))
		args = append(args, filter.ProductionID)
	}
	if filter.ActivityCode != "" {
		conditions = append(conditions, fmt.Sprintf("activity_code = $%d", len(args)+1))
		args = append(args, filter.ActivityCode)
	}
	if filter.Scope != 0 {
		conditions = append(conditions, fmt.Sprintf("scope = $%d", len(args)+1))
		args = append(args, filter.Scope)
	}
	if filter.PeriodFrom != 0 {
		conditions = append(conditions, fmt.Sprintf("record_period >= $%d", len(args)+1))
		args = append(args, filter.PeriodFrom)
	}
	if filter.PeriodTo != 0 {
		conditions = append(conditions, fmt.Sprintf("record_period <= $%d", len(args)+1))
		args = append(args, filter.PeriodTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY record_date DESC, id DESC LIMIT %d OFFSET %d", emissionColumns, base, size, offset)
	var emissions []models.Emission
	if err := r.db.SelectContext(ctx, &emissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list emissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count emissions: %w", err)
	}

	return emissions, total, nil
}
