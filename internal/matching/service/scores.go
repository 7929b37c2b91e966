package service

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/requestcontext"
)

// loadConcurrency bounds the per-entity fan-out when annotating cohort
// listings with scores and workload counts.
const loadConcurrency = 8

// ComputePriorityScore computes the family's urgency score at the request
// time. Served from the cache when one is configured; failed matches come
// from the family's inactive assignment history.
func (s *Service) ComputePriorityScore(ctx context.Context, familyID id.FamilyID) (*models.PriorityScore, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, familyID)
		if err != nil {
			s.logger.WarnContext(ctx, "priority cache read failed", "error", err)
		} else if cached != nil {
			s.metrics.IncrementPriorityCache("hit")
			return cached, nil
		}
		s.metrics.IncrementPriorityCache("miss")
	}

	score, _, err := s.computePriority(ctx, familyID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, familyID, *score); err != nil {
			s.logger.WarnContext(ctx, "priority cache write failed", "error", err)
		}
	}
	return score, nil
}

func (s *Service) computePriority(ctx context.Context, familyID id.FamilyID) (*models.PriorityScore, *models.FamilyProfile, error) {
	family, err := s.families.GetFamily(ctx, familyID)
	if err != nil {
		return nil, nil, translateStoreErr(err, "family not found")
	}
	return s.priorityFor(ctx, family)
}

func (s *Service) priorityFor(ctx context.Context, family *models.FamilyProfile) (*models.PriorityScore, *models.FamilyProfile, error) {
	needs, err := s.families.GetCareNeeds(ctx, family.ID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load care needs")
	}
	history, err := s.assignments.ListInactiveAssignments(ctx, family.ID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load assignment history")
	}
	score := s.scoring.ComputePriority(family, needs, len(history), requestcontext.Now(ctx))
	return &score, family, nil
}

// ComputeMatchScore computes the weighted fit breakdown for one pairing.
func (s *Service) ComputeMatchScore(ctx context.Context, familyID id.FamilyID, caregiverID id.CaregiverID) (*models.MatchScoreBreakdown, error) {
	family, err := s.families.GetFamily(ctx, familyID)
	if err != nil {
		return nil, translateStoreErr(err, "family not found")
	}
	caregiver, err := s.caregivers.GetCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, translateStoreErr(err, "caregiver not found")
	}
	needs, err := s.families.GetCareNeeds(ctx, familyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load care needs")
	}
	breakdown := s.scoring.ComputeMatch(family, needs, caregiver)
	return &breakdown, nil
}

// ListUnassignedFamilies returns the waiting cohort ordered by priority score
// descending, ties broken by earliest registration (longest wait first).
func (s *Service) ListUnassignedFamilies(ctx context.Context) ([]*models.PrioritizedFamily, error) {
	families, err := s.families.ListUnassignedFamilies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list unassigned families")
	}

	out := make([]*models.PrioritizedFamily, len(families))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, family := range families {
		g.Go(func() error {
			score, _, err := s.priorityFor(gctx, family)
			if err != nil {
				return err
			}
			out[i] = &models.PrioritizedFamily{Family: family, Priority: *score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.Score != out[j].Priority.Score {
			return out[i].Priority.Score > out[j].Priority.Score
		}
		return out[i].Family.CreatedAt.Before(out[j].Family.CreatedAt)
	})
	return out, nil
}

// ListAvailableCaregivers returns the candidate pool annotated with current
// active assignment counts.
func (s *Service) ListAvailableCaregivers(ctx context.Context) ([]*models.CaregiverWithLoad, error) {
	caregivers, err := s.caregivers.ListAvailableCaregivers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list available caregivers")
	}

	out := make([]*models.CaregiverWithLoad, len(caregivers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, caregiver := range caregivers {
		g.Go(func() error {
			count, err := s.assignments.CountActiveAssignments(gctx, caregiver.ID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "count active assignments")
			}
			out[i] = &models.CaregiverWithLoad{CaregiverProfile: *caregiver, ActiveAssignments: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func translateStoreErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting record")
	case errors.Is(err, sentinel.ErrCapacity):
		return dErrors.New(dErrors.CodeCapacityExceeded, "caregiver is at maximum assignment capacity")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, "record is not in a state that allows this operation")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}
