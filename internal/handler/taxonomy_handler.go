package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenledger/greenledger-api/internal/dto"
	"github.com/greenledger/greenledger-api/internal/models"
	"github.com/greenledger/greenledger-api/pkg/response"
)

type taxonomyService interface {
	Roots(ctx context.Context) ([]models.ActivityNode, error)
	Node(ctx context.Context, code string) (*models.ActivityNode, error)
	Children(ctx context.Context, code string) ([]models.ActivityNode, error)
	Descendants(ctx context.Context, code string) ([]models.ActivityNode, error)
	HierarchyPath(ctx context.Context, code string) ([]string, error)
}

// TaxonomyHandler exposes read-only activity code tree endpoints.
type TaxonomyHandler struct {
	service taxonomyService
}

// NewTaxonomyHandler constructs a taxonomy handler.
func NewTaxonomyHandler(svc taxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{service: svc}
}

// Roots lists top-level activity codes.
func (h *TaxonomyHandler) Roots(c *gin.Context) {
	nodes, err := h.service.Roots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes, nil)
}

// Get returns a single activity node.
func (h *TaxonomyHandler) Get(c *gin.Context) {
	node, err := h.service.Node(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, node, nil)
}

// Children lists direct children of a node.
func (h *TaxonomyHandler) Children(c *gin.Context) {
	nodes, err := h.service.Children(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes, nil)
}

// Descendants lists the full subtree below a node.
func (h *TaxonomyHandler) Descendants(c *gin.Context) {
	nodes, err := h.service.Descendants(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nodes, nil)
}

// Path returns the root-to-node name path.
func (h *TaxonomyHandler) Path(c *gin.Context) {
	code := c.Param("code")
	path, err := h.service.HierarchyPath(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.HierarchyPathResponse{Code: code, Path: path}, nil)
}
