// Package handler exposes the matching engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/httputil"
	"carebridge/pkg/requestcontext"
)

// Service defines the matching operations the handler depends on.
type Service interface {
	ComputePriorityScore(ctx context.Context, familyID id.FamilyID) (*models.PriorityScore, error)
	ComputeMatchScore(ctx context.Context, familyID id.FamilyID, caregiverID id.CaregiverID) (*models.MatchScoreBreakdown, error)
	ValidateMatch(ctx context.Context, familyID id.FamilyID, caregiverID id.CaregiverID, minScore int, allowOverride bool) *models.ValidationResult
	ListUnassignedFamilies(ctx context.Context) ([]*models.PrioritizedFamily, error)
	ListAvailableCaregivers(ctx context.Context) ([]*models.CaregiverWithLoad, error)
	AssignSingle(ctx context.Context, req *models.SingleAssignRequest) (*models.Assignment, error)
	AssignBulk(ctx context.Context, req *models.BulkAssignRequest) (*models.BulkResult, error)
	DeactivateAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error)
	GetBulkProgress(ctx context.Context, batchID id.BatchID) (*models.BulkProgress, error)
}

// Handler wires matching endpoints to the matching service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a matching handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts matching endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/families/unassigned", h.HandleListUnassigned)
	r.Get("/families/{familyID}/priority", h.HandlePriorityScore)
	r.Get("/caregivers/available", h.HandleListCaregivers)
	r.Post("/matches/score", h.HandleMatchScore)
	r.Post("/matches/validate", h.HandleValidateMatch)
	r.Post("/assignments", h.HandleAssignSingle)
	r.Post("/assignments/bulk", h.HandleAssignBulk)
	r.Get("/assignments/bulk/{batchID}/progress", h.HandleBulkProgress)
	r.Post("/assignments/{assignmentID}/deactivate", h.HandleDeactivate)
}

// HandleListUnassigned handles GET /families/unassigned.
func (h *Handler) HandleListUnassigned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cohort, err := h.service.ListUnassignedFamilies(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list unassigned families failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCohort(cohort))
}

// HandlePriorityScore handles GET /families/{familyID}/priority.
func (h *Handler) HandlePriorityScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	familyID, err := id.ParseFamilyID(chi.URLParam(r, "familyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "family id must be a valid uuid"))
		return
	}

	score, err := h.service.ComputePriorityScore(ctx, familyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPriority(familyID.String(), score))
}

// HandleListCaregivers handles GET /caregivers/available.
func (h *Handler) HandleListCaregivers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pool, err := h.service.ListAvailableCaregivers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list available caregivers failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CaregiverPoolResponse{Caregivers: pool, Total: len(pool)})
}

// HandleMatchScore handles POST /matches/score.
func (h *Handler) HandleMatchScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PairRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	breakdown, err := h.service.ComputeMatchScore(ctx, req.familyID, req.caregiverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, breakdown)
}

// HandleValidateMatch handles POST /matches/validate.
func (h *Handler) HandleValidateMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PairRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := h.service.ValidateMatch(ctx, req.familyID, req.caregiverID, req.MinScore, req.AllowOverride)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAssignSingle handles POST /assignments.
func (h *Handler) HandleAssignSingle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	assignment, err := h.service.AssignSingle(ctx, req.Domain())
	if err != nil {
		h.logger.WarnContext(ctx, "single assignment failed",
			"request_id", requestID,
			"family_id", req.FamilyID,
			"caregiver_id", req.CaregiverID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assignment created",
		"request_id", requestID,
		"assignment_id", assignment.ID.String(),
		"family_id", req.FamilyID,
		"caregiver_id", req.CaregiverID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, assignment)
}

// HandleAssignBulk handles POST /assignments/bulk.
func (h *Handler) HandleAssignBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BulkAssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.AssignBulk(ctx, req.Domain())
	if err != nil {
		h.logger.WarnContext(ctx, "bulk assignment failed",
			"request_id", requestID,
			"families", len(req.FamilyIDs),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bulk batch completed",
		"request_id", requestID,
		"batch_id", result.BatchID.String(),
		"committed", result.Committed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleBulkProgress handles GET /assignments/bulk/{batchID}/progress.
func (h *Handler) HandleBulkProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	batchID, err := id.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "batch id must be a valid uuid"))
		return
	}

	progress, err := h.service.GetBulkProgress(ctx, batchID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, progress)
}

// HandleDeactivate handles POST /assignments/{assignmentID}/deactivate.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "assignment id must be a valid uuid"))
		return
	}

	assignment, err := h.service.DeactivateAssignment(ctx, assignmentID)
	if err != nil {
		h.logger.WarnContext(ctx, "assignment deactivation failed",
			"request_id", requestcontext.RequestID(ctx),
			"assignment_id", assignmentID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assignment)
}
