package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

// co2ePrecision is the stored decimal precision of calculated_co2e.
const co2ePrecision = 6

type emissionRepo interface {
	Insert(ctx context.Context, emission *models.Emission) error
	BulkInsert(ctx context.Context, emissions []models.Emission) error
	List(ctx context.Context, filter models.EmissionFilter) ([]models.Emission, int, error)
}

type productionReader interface {
	FindProduction(ctx context.Context, id string) (*models.Production, error)
}

type nodeReader interface {
	Node(ctx context.Context, code string) (*models.ActivityNode, error)
}

type factorResolver interface {
	Resolve(ctx context.Context, activityCode, country string, year int, organizationID string) (*models.ResolvedFactor, error)
}

// EmissionService runs the calculation pipeline: payload validation, factor
// resolution, quantity derivation, CO2e computation and the single final
// write. Every invocation is independent; records are immutable audit facts
// once persisted.
type EmissionService struct {
	emissions       emissionRepo
	productions     productionReader
	taxonomy        nodeReader
	resolver        factorResolver
	rules           *RuleSet
	validator       *validator.Validate
	metrics         *MetricsService
	logger          *zap.Logger
	version         string
	rejectAnomalies bool
}

// NewEmissionService constructs EmissionService.
func NewEmissionService(
	emissions emissionRepo,
	productions productionReader,
	taxonomy nodeReader,
	resolver factorResolver,
	rules *RuleSet,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	version string,
	rejectAnomalies bool,
) *EmissionService {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "v1.0"
	}
	return &EmissionService{
		emissions:       emissions,
		productions:     productions,
		taxonomy:        taxonomy,
		resolver:        resolver,
		rules:           rules,
		validator:       validate,
		metrics:         metrics,
		logger:          logger,
		version:         version,
		rejectAnomalies: rejectAnomalies,
	}
}

// Compute validates a draft, resolves its factor, computes calculated_co2e
// and persists the record. Any typed failure prevents the write entirely.
func (s *EmissionService) Compute(ctx context.Context, draft models.EmissionDraft) (*models.Emission, error) {
	emission, err := s.prepare(ctx, draft)
	if err != nil {
		s.metrics.RecordComputation("failed")
		return nil, err
	}

	if err := s.emissions.Insert(ctx, emission); err != nil {
		s.metrics.RecordComputation("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist emission record")
	}

	if emission.RecordFlags != 0 {
		s.metrics.RecordComputation("flagged")
	} else {
		s.metrics.RecordComputation("ok")
	}

	s.logger.Info("emission computed",
		zap.Int64("emission_id", emission.ID),
		zap.String("activity_code", emission.ActivityCode),
		zap.String("production_id", emission.ProductionID),
		zap.String("calculated_co2e", emission.CalculatedCO2e.String()),
		zap.Int("record_flags", emission.RecordFlags),
	)
	return emission, nil
}

// BatchItemError reports a draft that failed validation or resolution within
// a batch.
type BatchItemError struct {
	Index int              `json:"index"`
	Error *appErrors.Error `json:"error"`
}

// ComputeBatch validates and resolves every draft individually, then writes
// the successful ones in a single batched insert. Batching never skips
// per-record validation.
func (s *EmissionService) ComputeBatch(ctx context.Context, drafts []models.EmissionDraft) ([]models.Emission, []BatchItemError, error) {
	prepared := make([]models.Emission, 0, len(drafts))
	var failures []BatchItemError

	for i, draft := range drafts {
		emission, err := s.prepare(ctx, draft)
		if err != nil {
			s.metrics.RecordComputation("failed")
			failures = append(failures, BatchItemError{Index: i, Error: appErrors.FromError(err)})
			continue
		}
		prepared = append(prepared, *emission)
	}

	if len(prepared) > 0 {
		if err := s.emissions.BulkInsert(ctx, prepared); err != nil {
			return nil, failures, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist emission batch")
		}
		for range prepared {
			s.metrics.RecordComputation("ok")
		}
	}

	return prepared, failures, nil
}

// List returns persisted emission records.
func (s *EmissionService) List(ctx context.Context, filter models.EmissionFilter) ([]models.Emission, *models.Pagination, error) {
	emissions, total, err := s.emissions.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list emissions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return emissions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// prepare runs every step of the pipeline short of the final write.
func (s *EmissionService) prepare(ctx context.Context, draft models.EmissionDraft) (*models.Emission, error) {
	if err := s.validator.Struct(draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid emission draft")
	}

	production, err := s.productions.FindProduction(ctx, draft.ProductionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("production %q not found", draft.ProductionID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load production")
	}

	node, err := s.taxonomy.Node(ctx, draft.ActivityCode)
	if err != nil {
		return nil, err
	}
	if !node.IsLeaf {
		return nil, appErrors.Clone(appErrors.ErrNotLeafActivity,
			fmt.Sprintf("activity code %q is a category, records need a leaf code", draft.ActivityCode))
	}
	if !node.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("activity code %q is inactive", draft.ActivityCode))
	}

	if err := s.rules.Validate(draft.ActivityCode, draft.Data); err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, draft.ActivityCode, draft.Country, draft.RecordDate.Year(), production.OrganizationID)
	if err != nil {
		return nil, err
	}

	quantity, numeric := s.rules.Quantity(draft.ActivityCode, draft.Data)

	var flags int
	if !numeric || quantity.Sign() <= 0 {
		flags |= models.FlagZeroOrNegativeQuantity
	}
	if resolved.CO2eFactor.Sign() < 0 {
		flags |= models.FlagNegativeFactor
	}
	if flags != 0 && s.rejectAnomalies {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("anomalous input for activity %s: quantity %s, factor %s", draft.ActivityCode, quantity, resolved.CO2eFactor))
	}

	version := production.CalculationVersion
	if version == "" {
		version = s.version
	}

	emission := &models.Emission{
		ProductionID:       draft.ProductionID,
		RecordDate:         draft.RecordDate,
		RecordPeriod:       draft.RecordPeriod,
		Department:         draft.Department,
		ActivityCode:       draft.ActivityCode,
		Scope:              node.Scope,
		Country:            draft.Country,
		CalculationVersion: version,
		CalculatedCO2e:     quantity.Mul(resolved.CO2eFactor).Truncate(co2ePrecision),
		RecordFlags:        flags,
		Data:               draft.Data,
	}
	emission.SetFactorRef(resolved.Ref)

	return emission, nil
}
