// Package service orchestrates the matching engine: priority and match
// scoring, pairing validation, and single and bulk assignment commits.
package service

import (
	"context"
	"log/slog"

	"carebridge/internal/matching/config"
	"carebridge/internal/matching/metrics"
	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	"carebridge/internal/matching/scoring"
	"carebridge/internal/matching/validator"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

// PriorityCache is an optional read-through cache for computed priority
// scores. Misses are not errors; the score is recomputed.
type PriorityCache interface {
	Get(ctx context.Context, familyID id.FamilyID) (*models.PriorityScore, error)
	Set(ctx context.Context, familyID id.FamilyID, score models.PriorityScore) error
	Invalidate(ctx context.Context, familyID id.FamilyID) error
}

// invalidatePriority drops the family's cached priority after anything that
// changes its assignment history.
func (s *Service) invalidatePriority(ctx context.Context, familyID id.FamilyID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, familyID); err != nil {
		s.logger.WarnContext(ctx, "priority cache invalidation failed", "error", err)
	}
}

// Service exposes the operator-facing matching operations.
type Service struct {
	cfg         *config.Config
	families    ports.FamilyStore
	caregivers  ports.CaregiverStore
	assignments ports.AssignmentStore
	scoring     *scoring.Model
	validator   *validator.Validator
	progress    ports.ProgressSink

	cache          PriorityCache
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPriorityCache(cache PriorityCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service. A nil cfg falls back to production defaults.
func New(cfg *config.Config, families ports.FamilyStore, caregivers ports.CaregiverStore, assignments ports.AssignmentStore, progress ports.ProgressSink, opts ...Option) (*Service, error) {
	if families == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "family store is required")
	}
	if caregivers == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "caregiver store is required")
	}
	if assignments == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "assignment store is required")
	}
	if progress == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "progress sink is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Service{
		cfg:         cfg,
		families:    families,
		caregivers:  caregivers,
		assignments: assignments,
		scoring:     scoring.New(cfg),
		progress:    progress,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validator.New(cfg, families, caregivers, assignments, s.logger)
	return s, nil
}

// ValidateMatch runs the pairing validator for an operator preview. It never
// returns an error; failures degrade to a rejected result.
func (s *Service) ValidateMatch(ctx context.Context, familyID id.FamilyID, caregiverID id.CaregiverID, minScore int, allowOverride bool) *models.ValidationResult {
	result := s.validator.Validate(ctx, familyID, caregiverID, minScore, allowOverride)
	switch {
	case result.Overridden:
		s.metrics.IncrementValidation("overridden")
	case result.IsValid:
		s.metrics.IncrementValidation("valid")
	default:
		s.metrics.IncrementValidation("rejected")
	}
	return result
}

// GetBulkProgress returns the last published progress for a batch.
func (s *Service) GetBulkProgress(ctx context.Context, batchID id.BatchID) (*models.BulkProgress, error) {
	progress, err := s.progress.Fetch(ctx, batchID)
	if err != nil {
		return nil, translateStoreErr(err, "bulk batch not found")
	}
	return progress, nil
}
