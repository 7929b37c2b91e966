package profiles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// PostgresStore reads family and caregiver profiles from PostgreSQL.
// This store is pure I/O; scoring and eligibility rules live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetFamily(ctx context.Context, familyID id.FamilyID) (*models.FamilyProfile, error) {
	query := `
		SELECT id, name, email, phone, care_types, address, created_at, updated_at
		FROM family_profiles
		WHERE id = $1
	`
	family, err := scanFamily(s.db.QueryRowContext(ctx, query, familyID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get family: %w", err)
	}
	return family, nil
}

func (s *PostgresStore) GetCareNeeds(ctx context.Context, familyID id.FamilyID) (*models.CareNeeds, error) {
	query := `
		SELECT family_id, diagnosed_conditions, chronic_illness_type, emergency_plan,
		       assistance_medication, assistance_mobility, care_schedule,
		       preferred_time_start, preferred_time_end, created_at, updated_at
		FROM care_needs
		WHERE family_id = $1
	`
	var needs models.CareNeeds
	var rawFamilyID string
	var schedule pq.StringArray
	err := s.db.QueryRowContext(ctx, query, familyID.String()).Scan(
		&rawFamilyID,
		&needs.DiagnosedConditions,
		&needs.ChronicIllnessType,
		&needs.EmergencyPlan,
		&needs.AssistanceMedication,
		&needs.AssistanceMobility,
		&schedule,
		&needs.PreferredTimeStart,
		&needs.PreferredTimeEnd,
		&needs.CreatedAt,
		&needs.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get care needs: %w", err)
	}
	parsed, err := id.ParseFamilyID(rawFamilyID)
	if err != nil {
		return nil, fmt.Errorf("parse care needs family id: %w", err)
	}
	needs.FamilyID = parsed
	needs.CareSchedule = id.Tags(schedule)
	return &needs, nil
}

func (s *PostgresStore) GetCaregiver(ctx context.Context, caregiverID id.CaregiverID) (*models.CaregiverProfile, error) {
	query := `
		SELECT id, name, email, phone, care_types, years_of_experience,
		       availability_schedule, available_for_matching, address, created_at, updated_at
		FROM caregiver_profiles
		WHERE id = $1
	`
	caregiver, err := scanCaregiver(s.db.QueryRowContext(ctx, query, caregiverID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get caregiver: %w", err)
	}
	return caregiver, nil
}

func (s *PostgresStore) ListAvailableCaregivers(ctx context.Context) ([]*models.CaregiverProfile, error) {
	query := `
		SELECT id, name, email, phone, care_types, years_of_experience,
		       availability_schedule, available_for_matching, address, created_at, updated_at
		FROM caregiver_profiles
		WHERE available_for_matching = TRUE
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available caregivers: %w", err)
	}
	defer rows.Close()

	var out []*models.CaregiverProfile
	for rows.Next() {
		caregiver, err := scanCaregiver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan available caregiver: %w", err)
		}
		out = append(out, caregiver)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available caregivers: %w", err)
	}
	return out, nil
}

// ListUnassignedFamilies returns families with no active assignment, oldest
// registration first so wait-time ordering is stable before scoring.
func (s *PostgresStore) ListUnassignedFamilies(ctx context.Context) ([]*models.FamilyProfile, error) {
	query := `
		SELECT f.id, f.name, f.email, f.phone, f.care_types, f.address, f.created_at, f.updated_at
		FROM family_profiles f
		LEFT JOIN assignments a ON a.family_id = f.id AND a.is_active = TRUE
		WHERE a.id IS NULL
		ORDER BY f.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unassigned families: %w", err)
	}
	defer rows.Close()

	var out []*models.FamilyProfile
	for rows.Next() {
		family, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unassigned family: %w", err)
		}
		out = append(out, family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unassigned families: %w", err)
	}
	return out, nil
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanFamily(row profileRow) (*models.FamilyProfile, error) {
	var family models.FamilyProfile
	var rawID string
	var careTypes pq.StringArray
	if err := row.Scan(
		&rawID,
		&family.Name,
		&family.Email,
		&family.Phone,
		&careTypes,
		&family.Address,
		&family.CreatedAt,
		&family.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := id.ParseFamilyID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse family id: %w", err)
	}
	family.ID = parsed
	family.CareTypes = id.Tags(careTypes)
	return &family, nil
}

func scanCaregiver(row profileRow) (*models.CaregiverProfile, error) {
	var caregiver models.CaregiverProfile
	var rawID string
	var careTypes, schedule pq.StringArray
	var years sql.NullInt64
	if err := row.Scan(
		&rawID,
		&caregiver.Name,
		&caregiver.Email,
		&caregiver.Phone,
		&careTypes,
		&years,
		&schedule,
		&caregiver.AvailableForMatching,
		&caregiver.Address,
		&caregiver.CreatedAt,
		&caregiver.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := id.ParseCaregiverID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse caregiver id: %w", err)
	}
	caregiver.ID = parsed
	caregiver.CareTypes = id.Tags(careTypes)
	caregiver.AvailabilitySchedule = id.Tags(schedule)
	if years.Valid {
		v := int(years.Int64)
		caregiver.YearsOfExperience = &v
	}
	return &caregiver, nil
}
