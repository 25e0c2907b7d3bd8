package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenledger/greenledger-api/internal/models"
)

const activityNodeColumns = `code, name, description, parent_code, level, scope, unit, is_leaf, is_active, sort_order, created_at, updated_at`

// TaxonomyRepository reads the activity code tree. The tree is maintained by
// taxonomy administration and is read-only to this service.
type TaxonomyRepository struct {
	db *sqlx.DB
}

// NewTaxonomyRepository creates a new repository instance.
func NewTaxonomyRepository(db *sqlx.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

// FindByCode returns a single node.
func (r *TaxonomyRepository) FindByCode(ctx context.Context, code string) (*models.ActivityNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_code_tree WHERE code = $1`, activityNodeColumns)
	var node models.ActivityNode
	if err := r.db.GetContext(ctx, &node, query, code); err != nil {
		return nil, err
	}
	return &node, nil
}

// ListChildren returns the direct children of a node ordered by sort order,
// ties broken by code.
func (r *TaxonomyRepository) ListChildren(ctx context.Context, code string) ([]models.ActivityNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_code_tree WHERE parent_code = $1 ORDER BY sort_order, code`, activityNodeColumns)
	var nodes []models.ActivityNode
	if err := r.db.SelectContext(ctx, &nodes, query, code); err != nil {
		return nil, fmt.Errorf("list children of %s: %w", code, err)
	}
	return nodes, nil
}

// ListRoots returns nodes without a parent ordered by sort order.
func (r *TaxonomyRepository) ListRoots(ctx context.Context) ([]models.ActivityNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_code_tree WHERE parent_code IS NULL ORDER BY sort_order, code`, activityNodeColumns)
	var nodes []models.ActivityNode
	if err := r.db.SelectContext(ctx, &nodes, query); err != nil {
		return nil, fmt.Errorf("list root nodes: %w", err)
	}
	return nodes, nil
}

// ListAll returns the whole tree in one query so walks operate on a
// consistent snapshot.
func (r *TaxonomyRepository) ListAll(ctx context.Context) ([]models.ActivityNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_code_tree ORDER BY sort_order, code`, activityNodeColumns)
	var nodes []models.ActivityNode
	if err := r.db.SelectContext(ctx, &nodes, query); err != nil {
		return nil, fmt.Errorf("list activity code tree: %w", err)
	}
	return nodes, nil
}

// Insert persists a node. Used by seeding only; the API never writes the tree.
func (r *TaxonomyRepository) Insert(ctx context.Context, node *models.ActivityNode) error {
	const query = `
		INSERT INTO activity_code_tree (code, name, description, parent_code, level, scope, unit, is_leaf, is_active, sort_order, created_at, updated_at)
		VALUES (:code, :name, :description, :parent_code, :level, :scope, :unit, :is_leaf, :is_active, :sort_order, NOW(), NOW())
		ON CONFLICT (code) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, node); err != nil {
		return fmt.Errorf("insert activity node %s: %w", node.Code, err)
	}
	return nil
}
