package dto

import (
	"fmt"
	"time"

	"github.com/greenledger/greenledger-api/internal/models"
)

const recordDateLayout = "2006-01-02"

// EmissionDraftRequest is the wire shape of an activity draft.
type EmissionDraftRequest struct {
	ProductionID string         `json:"production_id" binding:"required"`
	RecordDate   string         `json:"record_date" binding:"required"`
	RecordPeriod int            `json:"record_period" binding:"required"`
	Department   *string        `json:"department,omitempty"`
	ActivityCode string         `json:"activity_code" binding:"required"`
	Country      string         `json:"country" binding:"required"`
	Data         models.JSONMap `json:"data"`
}

// ToDraft converts the request into the pipeline's draft model.
func (r EmissionDraftRequest) ToDraft() (models.EmissionDraft, error) {
	recordDate, err := time.Parse(recordDateLayout, r.RecordDate)
	if err != nil {
		return models.EmissionDraft{}, fmt.Errorf("record_date must be YYYY-MM-DD: %w", err)
	}
	data := r.Data
	if data == nil {
		data = models.JSONMap{}
	}
	return models.EmissionDraft{
		ProductionID: r.ProductionID,
		RecordDate:   recordDate,
		RecordPeriod: r.RecordPeriod,
		Department:   r.Department,
		ActivityCode: r.ActivityCode,
		Country:      r.Country,
		Data:         data,
	}, nil
}

// BulkEmissionRequest wraps a batch of drafts.
type BulkEmissionRequest struct {
	Items []EmissionDraftRequest `json:"items" binding:"required"`
}

// ToDrafts converts every item, failing on the first malformed one.
func (r BulkEmissionRequest) ToDrafts() ([]models.EmissionDraft, error) {
	drafts := make([]models.EmissionDraft, 0, len(r.Items))
	for i, item := range r.Items {
		draft, err := item.ToDraft()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// BulkEmissionResponse reports batch outcomes.
type BulkEmissionResponse struct {
	Created  []models.Emission     `json:"created"`
	Failures []BulkEmissionFailure `json:"failures,omitempty"`
}

// BulkEmissionFailure captures one rejected draft.
type BulkEmissionFailure struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportAccepted acknowledges an asynchronous import.
type ImportAccepted struct {
	JobID string `json:"job_id"`
	Count int    `json:"count"`
}
