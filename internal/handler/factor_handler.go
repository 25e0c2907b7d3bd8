package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
	"github.com/greenledger/greenledger-api/pkg/response"
)

type factorService interface {
	Resolve(ctx context.Context, activityCode, country string, year int, organizationID string) (*models.ResolvedFactor, error)
}

// FactorHandler previews factor resolution without writing anything.
type FactorHandler struct {
	service factorService
}

// NewFactorHandler constructs a factor handler.
func NewFactorHandler(svc factorService) *FactorHandler {
	return &FactorHandler{service: svc}
}

// Resolve answers which factor would apply for the given parameters.
func (h *FactorHandler) Resolve(c *gin.Context) {
	activityCode := c.Query("activity_code")
	country := c.Query("country")
	if activityCode == "" || country == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity_code and country are required"))
		return
	}

	year := time.Now().UTC().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
			return
		}
		year = parsed
	}

	resolved, err := h.service.Resolve(c.Request.Context(), activityCode, country, year, c.Query("organization_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolved, nil)
}
