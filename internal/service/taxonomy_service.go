package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

type taxonomyRepo interface {
	FindByCode(ctx context.Context, code string) (*models.ActivityNode, error)
	ListChildren(ctx context.Context, code string) ([]models.ActivityNode, error)
	ListRoots(ctx context.Context) ([]models.ActivityNode, error)
	ListAll(ctx context.Context) ([]models.ActivityNode, error)
}

// TaxonomyService answers node, ancestor and descendant queries over the
// activity code tree. Recursive queries load the whole tree in one snapshot
// and walk it in memory with a visited set, so a corrupted parent chain is
// reported instead of looping.
type TaxonomyService struct {
	repo   taxonomyRepo
	cache  *CacheService
	logger *zap.Logger
}

// NewTaxonomyService constructs TaxonomyService.
func NewTaxonomyService(repo taxonomyRepo, cache *CacheService, logger *zap.Logger) *TaxonomyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyService{repo: repo, cache: cache, logger: logger}
}

// Node returns a single activity node.
func (s *TaxonomyService) Node(ctx context.Context, code string) (*models.ActivityNode, error) {
	node, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity code %q not found", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load activity node")
	}
	return node, nil
}

// Roots returns the top-level nodes ordered by sort order.
func (s *TaxonomyService) Roots(ctx context.Context) ([]models.ActivityNode, error) {
	return s.repo.ListRoots(ctx)
}

// Children returns the direct children of a node. The node must exist.
func (s *TaxonomyService) Children(ctx context.Context, code string) ([]models.ActivityNode, error) {
	if _, err := s.Node(ctx, code); err != nil {
		return nil, err
	}
	return s.repo.ListChildren(ctx, code)
}

// Descendants returns every node below the given one. The start node itself
// is never part of the result. A parent chain that loops back is reported as
// an integrity fault.
func (s *TaxonomyService) Descendants(ctx context.Context, code string) ([]models.ActivityNode, error) {
	cacheKey := "taxonomy:subtree:" + code
	var cached []models.ActivityNode
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	arena, childIndex, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := arena[code]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity code %q not found", code))
	}

	visited := map[string]bool{code: true}
	queue := []string{code}
	var result []models.ActivityNode

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, childCode := range childIndex[current] {
			if visited[childCode] {
				return nil, appErrors.Clone(appErrors.ErrInvalidHierarchy, fmt.Sprintf("cycle detected at activity code %q", childCode))
			}
			visited[childCode] = true
			result = append(result, *arena[childCode])
			queue = append(queue, childCode)
		}
	}

	_ = s.cache.Set(ctx, cacheKey, result, 0)
	return result, nil
}

// HierarchyPath returns the node names from the root down to the given node,
// for display and audit output.
func (s *TaxonomyService) HierarchyPath(ctx context.Context, code string) ([]string, error) {
	cacheKey := "taxonomy:path:" + code
	var cached []string
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	arena, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	node, ok := arena[code]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity code %q not found", code))
	}

	var path []string
	visited := make(map[string]bool, len(arena))
	for node != nil {
		if visited[node.Code] {
			return nil, appErrors.Clone(appErrors.ErrInvalidHierarchy, fmt.Sprintf("cycle detected at activity code %q", node.Code))
		}
		visited[node.Code] = true
		path = append([]string{node.Name}, path...)

		if node.ParentCode == nil {
			break
		}
		parent, ok := arena[*node.ParentCode]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidHierarchy, fmt.Sprintf("activity code %q references missing parent %q", node.Code, *node.ParentCode))
		}
		node = parent
	}

	_ = s.cache.Set(ctx, cacheKey, path, 0)
	return path, nil
}

// snapshot loads the full tree in one query and indexes it by code. Children
// keep the repository's sort order.
func (s *TaxonomyService) snapshot(ctx context.Context) (map[string]*models.ActivityNode, map[string][]string, error) {
	nodes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load activity code tree")
	}

	arena := make(map[string]*models.ActivityNode, len(nodes))
	childIndex := make(map[string][]string, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		arena[node.Code] = node
	}
	for i := range nodes {
		node := &nodes[i]
		if node.ParentCode == nil {
			continue
		}
		if _, ok := arena[*node.ParentCode]; !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidHierarchy, fmt.Sprintf("activity code %q references missing parent %q", node.Code, *node.ParentCode))
		}
		childIndex[*node.ParentCode] = append(childIndex[*node.ParentCode], node.Code)
	}

	return arena, childIndex, nil
}
