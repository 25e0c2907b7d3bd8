package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

type taxonomyServiceMock struct {
	roots       []models.ActivityNode
	node        *models.ActivityNode
	children    []models.ActivityNode
	descendants []models.ActivityNode
	path        []string
	err         error
	lastCode    string
}

func (m *taxonomyServiceMock) Roots(ctx context.Context) ([]models.ActivityNode, error) {
	return m.roots, m.err
}

func (m *taxonomyServiceMock) Node(ctx context.Context, code string) (*models.ActivityNode, error) {
	m.lastCode = code
	return m.node, m.err
}

func (m *taxonomyServiceMock) Children(ctx context.Context, code string) ([]models.ActivityNode, error) {
	m.lastCode = code
	return m.children, m.err
}

func (m *taxonomyServiceMock) Descendants(ctx context.Context, code string) ([]models.ActivityNode, error) {
	m.lastCode = code
	return m.descendants, m.err
}

func (m *taxonomyServiceMock) HierarchyPath(ctx context.Context, code string) ([]string, error) {
	m.lastCode = code
	return m.path, m.err
}

func TestTaxonomyHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taxonomyServiceMock{
		node: &models.ActivityNode{Code: "flight_domestic", Name: "Domestic Flights", Scope: 3, IsLeaf: true},
	}
	handler := NewTaxonomyHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/taxonomy/flight_domestic", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "code", Value: "flight_domestic"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "flight_domestic", mockSvc.lastCode)

	var envelope struct {
		Data models.ActivityNode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Domestic Flights", envelope.Data.Name)
}

func TestTaxonomyHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taxonomyServiceMock{
		err: appErrors.Clone(appErrors.ErrNotFound, `activity code "nope" not found`),
	}
	handler := NewTaxonomyHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/taxonomy/nope", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "code", Value: "nope"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestTaxonomyHandlerDescendantsCorruptTree(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taxonomyServiceMock{
		err: appErrors.Clone(appErrors.ErrInvalidHierarchy, `cycle detected at activity code "a"`),
	}
	handler := NewTaxonomyHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/taxonomy/a/descendants", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "code", Value: "a"}}

	handler.Descendants(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_HIERARCHY", envelope.Error.Code)
}

func TestTaxonomyHandlerPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taxonomyServiceMock{
		path: []string{"Scope 3 - Indirect Emissions", "Category 6 - Business Travel", "Domestic Flights"},
	}
	handler := NewTaxonomyHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/taxonomy/flight_domestic/path", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "code", Value: "flight_domestic"}}

	handler.Path(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Code string   `json:"code"`
			Path []string `json:"path"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "flight_domestic", envelope.Data.Code)
	assert.Len(t, envelope.Data.Path, 3)
}

func TestTaxonomyHandlerRoots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taxonomyServiceMock{
		roots: []models.ActivityNode{{Code: "scope_1"}, {Code: "scope_3"}},
	}
	handler := NewTaxonomyHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/taxonomy/roots", nil)
	c.Request = req

	handler.Roots(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.ActivityNode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}
