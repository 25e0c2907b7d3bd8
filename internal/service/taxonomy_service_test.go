package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

type mockTaxonomyRepo struct {
	nodes []models.ActivityNode
	err   error
}

func (m *mockTaxonomyRepo) FindByCode(ctx context.Context, code string) (*models.ActivityNode, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.nodes {
		if m.nodes[i].Code == code {
			node := m.nodes[i]
			return &node, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaxonomyRepo) ListChildren(ctx context.Context, code string) ([]models.ActivityNode, error) {
	if m.err != nil {
		return nil, m.err
	}
	var children []models.ActivityNode
	for _, node := range m.nodes {
		if node.ParentCode != nil && *node.ParentCode == code {
			children = append(children, node)
		}
	}
	return children, nil
}

func (m *mockTaxonomyRepo) ListRoots(ctx context.Context) ([]models.ActivityNode, error) {
	if m.err != nil {
		return nil, m.err
	}
	var roots []models.ActivityNode
	for _, node := range m.nodes {
		if node.ParentCode == nil {
			roots = append(roots, node)
		}
	}
	return roots, nil
}

func (m *mockTaxonomyRepo) ListAll(ctx context.Context) ([]models.ActivityNode, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.nodes, nil
}

func parentOf(code string) *string { return &code }

func sampleTree() []models.ActivityNode {
	return []models.ActivityNode{
		{Code: "scope_3", Name: "Scope 3 - Indirect Emissions", Scope: 3, IsActive: true, SortOrder: 3},
		{Code: "business_travel", Name: "Category 6 - Business Travel", ParentCode: parentOf("scope_3"), Level: 1, Scope: 3, IsActive: true},
		{Code: "flight_domestic", Name: "Domestic Flights", ParentCode: parentOf("business_travel"), Level: 2, Scope: 3, IsLeaf: true, IsActive: true},
		{Code: "flight_international", Name: "International Flights", ParentCode: parentOf("business_travel"), Level: 2, Scope: 3, IsLeaf: true, IsActive: true},
		{Code: "scope_1", Name: "Scope 1 - Direct Emissions", Scope: 1, IsActive: true, SortOrder: 1},
		{Code: "stationary_combustion", Name: "Stationary Combustion", ParentCode: parentOf("scope_1"), Level: 1, Scope: 1, IsLeaf: true, IsActive: true},
	}
}

func TestTaxonomyServiceNode(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	node, err := svc.Node(context.Background(), "flight_domestic")
	require.NoError(t, err)
	assert.Equal(t, "Domestic Flights", node.Name)
	assert.True(t, node.IsLeaf)
}

func TestTaxonomyServiceNodeNotFound(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	_, err := svc.Node(context.Background(), "does_not_exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTaxonomyServiceChildren(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	children, err := svc.Children(context.Background(), "business_travel")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "flight_domestic", children[0].Code)
	assert.Equal(t, "flight_international", children[1].Code)
}

func TestTaxonomyServiceChildrenOfMissingNode(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	_, err := svc.Children(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTaxonomyServiceDescendantsExcludesSelf(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	descendants, err := svc.Descendants(context.Background(), "scope_3")
	require.NoError(t, err)
	require.Len(t, descendants, 3)
	for _, node := range descendants {
		assert.NotEqual(t, "scope_3", node.Code)
	}
}

func TestTaxonomyServiceDescendantsOfLeaf(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	descendants, err := svc.Descendants(context.Background(), "flight_domestic")
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestTaxonomyServiceDescendantsDetectsCycle(t *testing.T) {
	// a -> b -> c -> a
	nodes := []models.ActivityNode{
		{Code: "a", Name: "A", ParentCode: parentOf("c"), Scope: 1, IsActive: true},
		{Code: "b", Name: "B", ParentCode: parentOf("a"), Scope: 1, IsActive: true},
		{Code: "c", Name: "C", ParentCode: parentOf("b"), Scope: 1, IsActive: true},
	}
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: nodes}, nil, zap.NewNop())

	_, err := svc.Descendants(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidHierarchy))
}

func TestTaxonomyServiceHierarchyPath(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	path, err := svc.HierarchyPath(context.Background(), "flight_domestic")
	require.NoError(t, err)
	assert.Equal(t, []string{"Scope 3 - Indirect Emissions", "Category 6 - Business Travel", "Domestic Flights"}, path)
}

func TestTaxonomyServiceHierarchyPathOfRoot(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	path, err := svc.HierarchyPath(context.Background(), "scope_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Scope 1 - Direct Emissions"}, path)
}

func TestTaxonomyServiceHierarchyPathCycle(t *testing.T) {
	nodes := []models.ActivityNode{
		{Code: "a", Name: "A", ParentCode: parentOf("b"), Scope: 1, IsActive: true},
		{Code: "b", Name: "B", ParentCode: parentOf("a"), Scope: 1, IsActive: true},
	}
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: nodes}, nil, zap.NewNop())

	_, err := svc.HierarchyPath(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidHierarchy))
}

func TestTaxonomyServiceSnapshotRejectsDanglingParent(t *testing.T) {
	nodes := []models.ActivityNode{
		{Code: "orphan", Name: "Orphan", ParentCode: parentOf("ghost"), Scope: 1, IsActive: true},
	}
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: nodes}, nil, zap.NewNop())

	_, err := svc.Descendants(context.Background(), "orphan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidHierarchy))
	assert.Contains(t, err.Error(), "ghost")
}

func TestTaxonomyServiceRoots(t *testing.T) {
	svc := NewTaxonomyService(&mockTaxonomyRepo{nodes: sampleTree()}, nil, zap.NewNop())

	roots, err := svc.Roots(context.Background())
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}
