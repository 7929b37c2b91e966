package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"carebridge/internal/audit"
	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/requestcontext"
)

// bulkItem is one family's slot in a batch, resolved up front so the commit
// loop only deals with pairing and writing.
type bulkItem struct {
	familyID id.FamilyID
	family   *models.FamilyProfile
	priority int
	loadErr  error
}

// AssignBulk commits a batch of assignments for the selected families in
// priority order, one at a time. Batch preconditions fail before any writes;
// individual item failures are isolated and reported, never raised. Families
// that already hold an active assignment fail their item: reassignment is a
// single-path operation. With no
// explicit pairing map, caregivers are spread round-robin over the available
// pool filtered to those under capacity.
func (s *Service) AssignBulk(ctx context.Context, req *models.BulkAssignRequest) (*models.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batchID := id.NewBatchID()
	now := requestcontext.Now(ctx)
	operator := requestcontext.OperatorID(ctx)

	items, err := s.resolveCohort(ctx, req.FamilyIDs)
	if err != nil {
		return nil, err
	}

	var pool []*models.CaregiverWithLoad
	if len(req.Pairing) == 0 {
		pool, err = s.underCapacityPool(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.metrics.ObserveBulkBatchSize(len(items))
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Timestamp:  now,
		Action:     audit.EventBulkBatchStarted,
		OperatorID: operator.String(),
		BatchID:    batchID.String(),
		Reason:     req.Reason,
	})

	result := &models.BulkResult{BatchID: batchID}
	total := len(items)
	s.publishProgress(ctx, batchID, result, total, false)

	poolIndex := 0
	for _, item := range items {
		if ctx.Err() != nil {
			// Best-effort stop before the next item; committed items stay.
			s.logger.WarnContext(ctx, "bulk batch interrupted",
				"batch_id", batchID.String(),
				"completed", len(result.Items),
				"total", total,
			)
			break
		}

		if item.loadErr != nil {
			s.recordItem(result, models.BulkItemResult{
				FamilyID: item.familyID,
				Status:   models.BulkItemFailed,
				Error:    dErrors.MessageOf(item.loadErr),
			})
			s.publishProgress(ctx, batchID, result, total, false)
			continue
		}

		var caregiverID id.CaregiverID
		if len(req.Pairing) > 0 {
			paired, ok := req.Pairing[item.familyID]
			if !ok || paired.IsNil() {
				s.recordItem(result, models.BulkItemResult{
					FamilyID: item.familyID,
					Status:   models.BulkItemSkipped,
				})
				s.publishProgress(ctx, batchID, result, total, false)
				continue
			}
			caregiverID = paired
		} else {
			if len(pool) == 0 {
				s.recordItem(result, models.BulkItemResult{
					FamilyID: item.familyID,
					Status:   models.BulkItemSkipped,
				})
				s.publishProgress(ctx, batchID, result, total, false)
				continue
			}
			caregiverID = pool[poolIndex%len(pool)].ID
			poolIndex++
		}

		itemResult := s.commitBulkItem(ctx, req, item, caregiverID, batchID, operator)
		s.recordItem(result, itemResult)
		s.publishProgress(ctx, batchID, result, total, false)
	}

	s.publishProgress(ctx, batchID, result, total, true)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Timestamp:  now,
		Action:     audit.EventBulkBatchCompleted,
		OperatorID: operator.String(),
		BatchID:    batchID.String(),
	})
	return result, nil
}

// resolveCohort loads and priority-orders the selected families. Families
// that fail to load stay in the batch as failed items, after the resolved
// cohort.
func (s *Service) resolveCohort(ctx context.Context, familyIDs []id.FamilyID) ([]*bulkItem, error) {
	items := make([]*bulkItem, len(familyIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, familyID := range familyIDs {
		g.Go(func() error {
			item := &bulkItem{familyID: familyID}
			score, family, err := s.computePriority(gctx, familyID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					item.loadErr = err
					items[i] = item
					return nil
				}
				return err
			}
			item.family = family
			item.priority = score.Score
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.loadErr != nil:
			return false
		case b.loadErr != nil:
			return true
		case a.priority != b.priority:
			return a.priority > b.priority
		default:
			return a.family.CreatedAt.Before(b.family.CreatedAt)
		}
	})
	return items, nil
}

func (s *Service) underCapacityPool(ctx context.Context) ([]*models.CaregiverWithLoad, error) {
	caregivers, err := s.ListAvailableCaregivers(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]*models.CaregiverWithLoad, 0, len(caregivers))
	for _, caregiver := range caregivers {
		if caregiver.ActiveAssignments < s.cfg.MaxAssignments {
			pool = append(pool, caregiver)
		}
	}
	return pool, nil
}

func (s *Service) commitBulkItem(ctx context.Context, req *models.BulkAssignRequest, item *bulkItem, caregiverID id.CaregiverID, batchID id.BatchID, operator id.OperatorID) models.BulkItemResult {
	// Bulk never reassigns. A family that already holds an active assignment
	// fails its item so the batch cannot stack a second active assignment.
	active, err := s.assignments.GetActiveAssignment(ctx, item.familyID)
	if err != nil {
		return models.BulkItemResult{
			FamilyID:    item.familyID,
			CaregiverID: &caregiverID,
			Status:      models.BulkItemFailed,
			Error:       dErrors.MessageOf(dErrors.Wrap(err, dErrors.CodeInternal, "load active assignment")),
		}
	}
	if active != nil {
		return models.BulkItemResult{
			FamilyID:    item.familyID,
			CaregiverID: &caregiverID,
			Status:      models.BulkItemFailed,
			Error:       "family already has an active assignment",
		}
	}

	validation := s.validator.Validate(ctx, item.familyID, caregiverID, 0, req.AllowOverride)
	if !validation.IsValid {
		return models.BulkItemResult{
			FamilyID:    item.familyID,
			CaregiverID: &caregiverID,
			Status:      models.BulkItemFailed,
			Error:       "match rejected: " + strings.Join(validation.Issues, "; "),
		}
	}

	score := s.cfg.BulkDefaultAdminScore
	if req.AdminScore > 0 {
		score = req.AdminScore
	}
	if itemScore, ok := req.ItemScores[item.familyID]; ok && itemScore > 0 {
		score = itemScore
	}

	now := requestcontext.Now(ctx)
	assignment := models.Assignment{
		ID:               id.NewAssignmentID(),
		FamilyID:         item.familyID,
		CaregiverID:      caregiverID,
		MatchScore:       score,
		AssignmentReason: req.Reason,
		AssignedBy:       operator,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	intervention := models.Intervention{
		ID:              id.NewInterventionID(),
		FamilyID:        item.familyID,
		CaregiverID:     caregiverID,
		Type:            models.InterventionBulkMatch,
		Reason:          req.Reason,
		AdminMatchScore: score,
		Status:          models.InterventionStatusActive,
		BatchID:         &batchID,
		CreatedBy:       operator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, committed, err := s.assignments.CommitAssignment(ctx, ports.CommitParams{
		Intervention:    intervention,
		Assignment:      assignment,
		EnforceCapacity: s.capacityGuard(validation.Overridden),
	})
	if err != nil {
		translated := translateStoreErr(err, "family or caregiver not found")
		return models.BulkItemResult{
			FamilyID:    item.familyID,
			CaregiverID: &caregiverID,
			Status:      models.BulkItemFailed,
			Error:       dErrors.MessageOf(translated),
		}
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Timestamp:   now,
		Action:      audit.EventAssignmentCreated,
		OperatorID:  operator.String(),
		FamilyID:    item.familyID.String(),
		CaregiverID: caregiverID.String(),
		BatchID:     batchID.String(),
		MatchScore:  score,
		Reason:      req.Reason,
	})
	s.invalidatePriority(ctx, item.familyID)
	return models.BulkItemResult{
		FamilyID:     item.familyID,
		CaregiverID:  &caregiverID,
		AssignmentID: &committed.ID,
		Status:       models.BulkItemCommitted,
	}
}

func (s *Service) recordItem(result *models.BulkResult, item models.BulkItemResult) {
	result.Items = append(result.Items, item)
	switch item.Status {
	case models.BulkItemCommitted:
		result.Committed++
	case models.BulkItemSkipped:
		result.Skipped++
	case models.BulkItemFailed:
		result.Failed++
	}
	s.metrics.IncrementBulkItem(string(item.Status))
	s.metrics.IncrementAssignment("bulk", string(item.Status))
}

// publishProgress is best-effort; a sink failure never interrupts the batch.
func (s *Service) publishProgress(ctx context.Context, batchID id.BatchID, result *models.BulkResult, total int, done bool) {
	progress := models.BulkProgress{
		BatchID:   batchID,
		Completed: len(result.Items),
		Total:     total,
		Committed: result.Committed,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
		Done:      done,
	}
	if err := s.progress.Publish(ctx, progress); err != nil {
		s.logger.WarnContext(ctx, "bulk progress publish failed",
			"batch_id", batchID.String(),
			"error", err,
		)
	}
}
