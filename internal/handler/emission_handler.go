package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenledger/greenledger-api/internal/dto"
	"github.com/greenledger/greenledger-api/internal/models"
	"github.com/greenledger/greenledger-api/internal/service"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
	"github.com/greenledger/greenledger-api/pkg/jobs"
	"github.com/greenledger/greenledger-api/pkg/response"
)

// ImportJobType identifies queued emission imports.
const ImportJobType = "emission_import"

type emissionService interface {
	Compute(ctx context.Context, draft models.EmissionDraft) (*models.Emission, error)
	ComputeBatch(ctx context.Context, drafts []models.EmissionDraft) ([]models.Emission, []service.BatchItemError, error)
	List(ctx context.Context, filter models.EmissionFilter) ([]models.Emission, *models.Pagination, error)
}

// EmissionHandler exposes the calculation pipeline over HTTP.
type EmissionHandler struct {
	service emissionService
	imports *jobs.Queue
}

// NewEmissionHandler constructs an emission handler. The import queue may be
// nil, in which case the async endpoint reports a conflict.
func NewEmissionHandler(svc emissionService, imports *jobs.Queue) *EmissionHandler {
	return &EmissionHandler{service: svc, imports: imports}
}

// Create submits a single activity draft and returns the computed record.
func (h *EmissionHandler) Create(c *gin.Context) {
	var req dto.EmissionDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	emission, err := h.service.Compute(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, emission)
}

// CreateBulk computes a batch synchronously.
func (h *EmissionHandler) CreateBulk(c *gin.Context) {
	var req dto.BulkEmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drafts, err := req.ToDrafts()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	created, failures, err := h.service.ComputeBatch(c.Request.Context(), drafts)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.BulkEmissionResponse{Created: created}
	for _, failure := range failures {
		resp.Failures = append(resp.Failures, dto.BulkEmissionFailure{
			Index:   failure.Index,
			Code:    failure.Error.Code,
			Message: failure.Error.Message,
		})
	}
	response.JSON(c, http.StatusMultiStatus, resp, nil)
}

// Import enqueues a batch for background processing.
func (h *EmissionHandler) Import(c *gin.Context) {
	if h.imports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "import queue is disabled"))
		return
	}

	var req dto.BulkEmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drafts, err := req.ToDrafts()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	jobID := uuid.NewString()
	if err := h.imports.Enqueue(jobs.Job{ID: jobID, Type: ImportJobType, Payload: drafts}); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue import"))
		return
	}
	response.Accepted(c, dto.ImportAccepted{JobID: jobID, Count: len(drafts)})
}

// List returns persisted records filtered by query parameters.
func (h *EmissionHandler) List(c *gin.Context) {
	var filter models.EmissionFilter
	filter.ProductionID = c.Query("production_id")
	filter.ActivityCode = c.Query("activity_code")
	if scope, err := strconv.Atoi(c.DefaultQuery("scope", "0")); err == nil {
		if scope != 0 && !models.ValidScope(scope) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "scope must be 1, 2 or 3"))
			return
		}
		filter.Scope = scope
	}
	if from, err := strconv.Atoi(c.DefaultQuery("period_from", "0")); err == nil {
		filter.PeriodFrom = from
	}
	if to, err := strconv.Atoi(c.DefaultQuery("period_to", "0")); err == nil {
		filter.PeriodTo = to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	emissions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emissions, pagination)
}
