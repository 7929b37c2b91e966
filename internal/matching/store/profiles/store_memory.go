package profiles

import (
	"context"
	"sort"
	"sync"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// ActiveLookup answers whether a family currently has an active assignment.
// The memory store needs it to filter the unassigned pool; in PostgreSQL the
// same question is a join.
type ActiveLookup interface {
	HasActiveAssignment(ctx context.Context, familyID id.FamilyID) (bool, error)
}

// InMemoryStore holds family and caregiver profiles for tests and
// single-process deployments.
type InMemoryStore struct {
	mu         sync.RWMutex
	families   map[id.FamilyID]*models.FamilyProfile
	careNeeds  map[id.FamilyID]*models.CareNeeds
	caregivers map[id.CaregiverID]*models.CaregiverProfile
	active     ActiveLookup
}

// NewInMemory constructs an empty in-memory profile store. The active lookup
// may be nil; ListUnassignedFamilies then returns every family.
func NewInMemory(active ActiveLookup) *InMemoryStore {
	return &InMemoryStore{
		families:   make(map[id.FamilyID]*models.FamilyProfile),
		careNeeds:  make(map[id.FamilyID]*models.CareNeeds),
		caregivers: make(map[id.CaregiverID]*models.CaregiverProfile),
		active:     active,
	}
}

// SetActiveLookup wires the assignment store in after construction; the two
// memory stores reference each other.
func (s *InMemoryStore) SetActiveLookup(active ActiveLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// PutFamily seeds or replaces a family profile.
func (s *InMemoryStore) PutFamily(family *models.FamilyProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *family
	s.families[family.ID] = &copied
}

// PutCareNeeds seeds or replaces a family's care-needs record.
func (s *InMemoryStore) PutCareNeeds(needs *models.CareNeeds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *needs
	s.careNeeds[needs.FamilyID] = &copied
}

// PutCaregiver seeds or replaces a caregiver profile.
func (s *InMemoryStore) PutCaregiver(caregiver *models.CaregiverProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *caregiver
	s.caregivers[caregiver.ID] = &copied
}

func (s *InMemoryStore) GetFamily(_ context.Context, familyID id.FamilyID) (*models.FamilyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	family, ok := s.families[familyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *family
	return &copied, nil
}

func (s *InMemoryStore) GetCareNeeds(_ context.Context, familyID id.FamilyID) (*models.CareNeeds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needs, ok := s.careNeeds[familyID]
	if !ok {
		return nil, nil
	}
	copied := *needs
	return &copied, nil
}

func (s *InMemoryStore) GetCaregiver(_ context.Context, caregiverID id.CaregiverID) (*models.CaregiverProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caregiver, ok := s.caregivers[caregiverID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *caregiver
	return &copied, nil
}

func (s *InMemoryStore) ListAvailableCaregivers(_ context.Context) ([]*models.CaregiverProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.CaregiverProfile, 0, len(s.caregivers))
	for _, caregiver := range s.caregivers {
		if !caregiver.AvailableForMatching {
			continue
		}
		copied := *caregiver
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) ListUnassignedFamilies(ctx context.Context) ([]*models.FamilyProfile, error) {
	s.mu.RLock()
	candidates := make([]*models.FamilyProfile, 0, len(s.families))
	for _, family := range s.families {
		copied := *family
		candidates = append(candidates, &copied)
	}
	active := s.active
	s.mu.RUnlock()

	out := candidates[:0]
	for _, family := range candidates {
		if active != nil {
			assigned, err := active.HasActiveAssignment(ctx, family.ID)
			if err != nil {
				return nil, err
			}
			if assigned {
				continue
			}
		}
		out = append(out, family)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
