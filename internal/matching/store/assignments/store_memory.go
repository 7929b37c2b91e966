package assignments

import (
	"context"
	"sync"
	"time"

	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// InMemoryStore keeps assignments and interventions in maps under one mutex.
// The single lock is what makes CommitAssignment's capacity guard sound
// without row locks.
type InMemoryStore struct {
	mu            sync.RWMutex
	assignments   map[id.AssignmentID]*models.Assignment
	interventions map[id.InterventionID]*models.Intervention
}

// NewInMemory constructs an empty in-memory assignment store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		assignments:   make(map[id.AssignmentID]*models.Assignment),
		interventions: make(map[id.InterventionID]*models.Intervention),
	}
}

func (s *InMemoryStore) GetAssignment(_ context.Context, assignmentID id.AssignmentID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignment, ok := s.assignments[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (s *InMemoryStore) GetActiveAssignment(_ context.Context, familyID id.FamilyID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, assignment := range s.assignments {
		if assignment.FamilyID == familyID && assignment.IsActive {
			copied := *assignment
			return &copied, nil
		}
	}
	return nil, nil
}

// HasActiveAssignment implements profiles.ActiveLookup.
func (s *InMemoryStore) HasActiveAssignment(ctx context.Context, familyID id.FamilyID) (bool, error) {
	assignment, err := s.GetActiveAssignment(ctx, familyID)
	if err != nil {
		return false, err
	}
	return assignment != nil, nil
}

func (s *InMemoryStore) CountActiveAssignments(_ context.Context, caregiverID id.CaregiverID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countActiveLocked(caregiverID), nil
}

func (s *InMemoryStore) countActiveLocked(caregiverID id.CaregiverID) int {
	count := 0
	for _, assignment := range s.assignments {
		if assignment.CaregiverID == caregiverID && assignment.IsActive {
			count++
		}
	}
	return count
}

func (s *InMemoryStore) ListInactiveAssignments(_ context.Context, familyID id.FamilyID) ([]*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Assignment
	for _, assignment := range s.assignments {
		if assignment.FamilyID == familyID && !assignment.IsActive {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CommitAssignment writes both records under one lock acquisition so the
// intervention and assignment appear together or not at all, and the capacity
// guard observes a consistent active count.
func (s *InMemoryStore) CommitAssignment(_ context.Context, params ports.CommitParams) (*models.Intervention, *models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignment := params.Assignment
	intervention := params.Intervention
	intervention.AssignmentID = assignment.ID

	if _, exists := s.assignments[assignment.ID]; exists {
		return nil, nil, sentinel.ErrConflict
	}
	if _, exists := s.interventions[intervention.ID]; exists {
		return nil, nil, sentinel.ErrConflict
	}

	if params.EnforceCapacity > 0 {
		if s.countActiveLocked(assignment.CaregiverID) >= params.EnforceCapacity {
			return nil, nil, sentinel.ErrCapacity
		}
	}

	if params.DeactivatePrevious {
		for _, existing := range s.assignments {
			if existing.FamilyID == assignment.FamilyID && existing.IsActive {
				existing.IsActive = false
				existing.UpdatedAt = assignment.CreatedAt
			}
		}
	}

	assignmentCopy := assignment
	interventionCopy := intervention
	s.assignments[assignment.ID] = &assignmentCopy
	s.interventions[intervention.ID] = &interventionCopy

	assignmentOut := assignmentCopy
	interventionOut := interventionCopy
	return &interventionOut, &assignmentOut, nil
}

func (s *InMemoryStore) DeactivateAssignment(_ context.Context, assignmentID id.AssignmentID, now time.Time) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignment, ok := s.assignments[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !assignment.IsActive {
		return nil, sentinel.ErrInvalidState
	}

	assignment.IsActive = false
	assignment.UpdatedAt = now

	for _, intervention := range s.interventions {
		if intervention.AssignmentID == assignmentID && intervention.Status == models.InterventionStatusActive {
			intervention.Status = models.InterventionStatusCancelled
			intervention.UpdatedAt = now
		}
	}

	copied := *assignment
	return &copied, nil
}

// GetIntervention returns an intervention by id; primarily for tests
// verifying the one-intervention-per-assignment invariant.
func (s *InMemoryStore) GetIntervention(_ context.Context, interventionID id.InterventionID) (*models.Intervention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	intervention, ok := s.interventions[interventionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *intervention
	return &copied, nil
}

// ListInterventionsByAssignment returns all interventions linked to one
// assignment.
func (s *InMemoryStore) ListInterventionsByAssignment(_ context.Context, assignmentID id.AssignmentID) ([]*models.Intervention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Intervention
	for _, intervention := range s.interventions {
		if intervention.AssignmentID == assignmentID {
			copied := *intervention
			out = append(out, &copied)
		}
	}
	return out, nil
}
