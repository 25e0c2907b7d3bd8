package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenledger/greenledger-api/internal/dto"
	"github.com/greenledger/greenledger-api/internal/models"
	"github.com/greenledger/greenledger-api/internal/service"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

type emissionServiceMock struct {
	computed   *models.Emission
	computeErr error
	batch      []models.Emission
	batchFails []service.BatchItemError
	batchErr   error
	listResp   []models.Emission
	lastDraft  models.EmissionDraft
	lastDrafts []models.EmissionDraft
	lastFilter models.EmissionFilter
}

func (m *emissionServiceMock) Compute(ctx context.Context, draft models.EmissionDraft) (*models.Emission, error) {
	m.lastDraft = draft
	return m.computed, m.computeErr
}

func (m *emissionServiceMock) ComputeBatch(ctx context.Context, drafts []models.EmissionDraft) ([]models.Emission, []service.BatchItemError, error) {
	m.lastDrafts = drafts
	return m.batch, m.batchFails, m.batchErr
}

func (m *emissionServiceMock) List(ctx context.Context, filter models.EmissionFilter) ([]models.Emission, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listResp)}, nil
}

func draftBody() []byte {
	body, _ := json.Marshal(dto.EmissionDraftRequest{
		ProductionID: "prod-1",
		RecordDate:   "2024-06-15",
		RecordPeriod: 202406,
		ActivityCode: "flight_domestic",
		Country:      "US",
		Data: models.JSONMap{
			"flight_origin":      "JFK",
			"flight_destination": "LAX",
			"flight_distance_km": 1850,
		},
	})
	return body
}

func TestEmissionHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &emissionServiceMock{
		computed: &models.Emission{
			ID:             42,
			ActivityCode:   "flight_domestic",
			CalculatedCO2e: decimal.RequireFromString("246.05"),
		},
	}
	handler := NewEmissionHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions", bytes.NewReader(draftBody()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "flight_domestic", mockSvc.lastDraft.ActivityCode)
	assert.Equal(t, 2024, mockSvc.lastDraft.RecordDate.Year())
}

func TestEmissionHandlerCreateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEmissionHandler(&emissionServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmissionHandlerCreateBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEmissionHandler(&emissionServiceMock{}, nil)

	body, _ := json.Marshal(dto.EmissionDraftRequest{
		ProductionID: "prod-1",
		RecordDate:   "15/06/2024",
		RecordPeriod: 202406,
		ActivityCode: "flight_domestic",
		Country:      "US",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmissionHandlerCreatePipelineFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &emissionServiceMock{
		computeErr: appErrors.Clone(appErrors.ErrNoFactorFound, "no active emission factor"),
	}
	handler := NewEmissionHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions", bytes.NewReader(draftBody()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NO_FACTOR_FOUND", envelope.Error.Code)
}

func TestEmissionHandlerCreateBulkPartialFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &emissionServiceMock{
		batch: []models.Emission{{ID: 1}},
		batchFails: []service.BatchItemError{
			{Index: 1, Error: appErrors.Clone(appErrors.ErrValidation, "payload missing required keys")},
		},
	}
	handler := NewEmissionHandler(mockSvc, nil)

	body, _ := json.Marshal(dto.BulkEmissionRequest{Items: []dto.EmissionDraftRequest{
		{ProductionID: "prod-1", RecordDate: "2024-06-15", RecordPeriod: 202406, ActivityCode: "flight_domestic", Country: "US"},
		{ProductionID: "prod-1", RecordDate: "2024-06-16", RecordPeriod: 202406, ActivityCode: "flight_domestic", Country: "US"},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CreateBulk(c)
	require.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Len(t, mockSvc.lastDrafts, 2)

	var envelope struct {
		Data dto.BulkEmissionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Created, 1)
	require.Len(t, envelope.Data.Failures, 1)
	assert.Equal(t, 1, envelope.Data.Failures[0].Index)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Data.Failures[0].Code)
}

func TestEmissionHandlerImportWithoutQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEmissionHandler(&emissionServiceMock{}, nil)

	body, _ := json.Marshal(dto.BulkEmissionRequest{Items: []dto.EmissionDraftRequest{
		{ProductionID: "prod-1", RecordDate: "2024-06-15", RecordPeriod: 202406, ActivityCode: "flight_domestic", Country: "US"},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/emissions/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Import(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEmissionHandlerListFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &emissionServiceMock{listResp: []models.Emission{{ID: 1}}}
	handler := NewEmissionHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/emissions?production_id=prod-1&scope=3&period_from=202401&period_to=202412&page=2&limit=50", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prod-1", mockSvc.lastFilter.ProductionID)
	assert.Equal(t, 3, mockSvc.lastFilter.Scope)
	assert.Equal(t, 202401, mockSvc.lastFilter.PeriodFrom)
	assert.Equal(t, 202412, mockSvc.lastFilter.PeriodTo)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 50, mockSvc.lastFilter.PageSize)
}

func TestEmissionHandlerListRejectsBadScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEmissionHandler(&emissionServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/emissions?scope=4", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
