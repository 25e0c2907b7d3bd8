package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenledger/greenledger-api/internal/models"
)

// OrganizationRepository reads organizations and their productions.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new repository instance.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindByID returns an organization.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	const query = `SELECT id, name, slug, description, is_active, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		return nil, err
	}
	return &org, nil
}

// FindProduction returns a production together with its owning organization id.
func (r *OrganizationRepository) FindProduction(ctx context.Context, id string) (*models.Production, error) {
	const query = `SELECT id, organization_id, name, description, calculation_version, base_year, reporting_period_start, reporting_period_end, is_active, created_at, updated_at FROM productions WHERE id = $1`
	var production models.Production
	if err := r.db.GetContext(ctx, &production, query, id); err != nil {
		return nil, err
	}
	return &production, nil
}

// CreateOrganization persists a new organization.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	org.UpdatedAt = now

	const query = `INSERT INTO organizations (id, name, slug, description, is_active, created_at, updated_at) VALUES (:id, :name, :slug, :description, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, org); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// CreateProduction persists a new production.
func (r *OrganizationRepository) CreateProduction(ctx context.Context, production *models.Production) error {
	if production.ID == "" {
		production.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if production.CreatedAt.IsZero() {
		production.CreatedAt = now
	}
	production.UpdatedAt = now

	const query = `INSERT INTO productions (id, organization_id, name, description, calculation_version, base_year, reporting_period_start, reporting_period_end, is_active, created_at, updated_at) VALUES (:id, :organization_id, :name, :description, :calculation_version, :base_year, :reporting_period_start, :reporting_period_end, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, production); err != nil {
		return fmt.Errorf("create production: %w", err)
	}
	return nil
}
