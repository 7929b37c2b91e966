package assignments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// PostgresStore persists assignments and interventions in PostgreSQL.
// CommitAssignment is the only multi-statement path; it runs in a single
// transaction with a caregiver row lock so the capacity guard cannot race.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed assignment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error) {
	query := `
		SELECT id, family_id, caregiver_id, match_score, assignment_reason, assigned_by,
		       is_active, visit_scheduled, created_at, updated_at
		FROM assignments
		WHERE id = $1
	`
	assignment, err := scanAssignment(s.db.QueryRowContext(ctx, query, assignmentID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

func (s *PostgresStore) GetActiveAssignment(ctx context.Context, familyID id.FamilyID) (*models.Assignment, error) {
	query := `
		SELECT id, family_id, caregiver_id, match_score, assignment_reason, assigned_by,
		       is_active, visit_scheduled, created_at, updated_at
		FROM assignments
		WHERE family_id = $1 AND is_active = TRUE
	`
	assignment, err := scanAssignment(s.db.QueryRowContext(ctx, query, familyID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active assignment: %w", err)
	}
	return assignment, nil
}

// HasActiveAssignment implements profiles.ActiveLookup.
func (s *PostgresStore) HasActiveAssignment(ctx context.Context, familyID id.FamilyID) (bool, error) {
	assignment, err := s.GetActiveAssignment(ctx, familyID)
	if err != nil {
		return false, err
	}
	return assignment != nil, nil
}

func (s *PostgresStore) CountActiveAssignments(ctx context.Context, caregiverID id.CaregiverID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE caregiver_id = $1 AND is_active = TRUE`,
		caregiverID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListInactiveAssignments(ctx context.Context, familyID id.FamilyID) ([]*models.Assignment, error) {
	query := `
		SELECT id, family_id, caregiver_id, match_score, assignment_reason, assigned_by,
		       is_active, visit_scheduled, created_at, updated_at
		FROM assignments
		WHERE family_id = $1 AND is_active = FALSE
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, familyID.String())
	if err != nil {
		return nil, fmt.Errorf("list inactive assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inactive assignment: %w", err)
		}
		out = append(out, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inactive assignments: %w", err)
	}
	return out, nil
}

// CommitAssignment inserts the intervention and assignment in one transaction.
// With EnforceCapacity > 0 it takes a row lock on the caregiver and re-counts
// active assignments inside the transaction; concurrent commits against the
// same caregiver serialize on that lock.
func (s *PostgresStore) CommitAssignment(ctx context.Context, params ports.CommitParams) (*models.Intervention, *models.Assignment, error) {
	assignment := params.Assignment
	intervention := params.Intervention
	intervention.AssignmentID = assignment.ID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin commit assignment: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if params.EnforceCapacity > 0 {
		var lockedID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM caregiver_profiles WHERE id = $1 FOR UPDATE`,
			assignment.CaregiverID.String(),
		).Scan(&lockedID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, sentinel.ErrNotFound
			}
			return nil, nil, fmt.Errorf("lock caregiver: %w", err)
		}

		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM assignments WHERE caregiver_id = $1 AND is_active = TRUE`,
			assignment.CaregiverID.String(),
		).Scan(&count)
		if err != nil {
			return nil, nil, fmt.Errorf("count active assignments in tx: %w", err)
		}
		if count >= params.EnforceCapacity {
			return nil, nil, sentinel.ErrCapacity
		}
	}

	if params.DeactivatePrevious {
		_, err := tx.ExecContext(ctx,
			`UPDATE assignments SET is_active = FALSE, updated_at = $2 WHERE family_id = $1 AND is_active = TRUE`,
			assignment.FamilyID.String(), assignment.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("deactivate previous assignment: %w", err)
		}
	}

	if err := insertAssignment(ctx, tx, assignment); err != nil {
		return nil, nil, err
	}
	if err := insertIntervention(ctx, tx, intervention); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit assignment: %w", err)
	}
	return &intervention, &assignment, nil
}

func (s *PostgresStore) DeactivateAssignment(ctx context.Context, assignmentID id.AssignmentID, now time.Time) (*models.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin deactivate assignment: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE assignments
		SET is_active = FALSE, updated_at = $2
		WHERE id = $1 AND is_active = TRUE
		RETURNING id, family_id, caregiver_id, match_score, assignment_reason, assigned_by,
		          is_active, visit_scheduled, created_at, updated_at
	`
	assignment, err := scanAssignment(tx.QueryRowContext(ctx, query, assignmentID.String(), now))
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinguish an unknown id from an already inactive one.
			var exists bool
			checkErr := s.db.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1)`,
				assignmentID.String(),
			).Scan(&exists)
			if checkErr != nil {
				return nil, fmt.Errorf("check assignment exists: %w", checkErr)
			}
			if exists {
				return nil, sentinel.ErrInvalidState
			}
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("deactivate assignment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE interventions SET status = $3, updated_at = $2 WHERE assignment_id = $1 AND status = $4`,
		assignmentID.String(), now, string(models.InterventionStatusCancelled), string(models.InterventionStatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("cancel linked interventions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit deactivate assignment: %w", err)
	}
	return assignment, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAssignment(ctx context.Context, db execer, assignment models.Assignment) error {
	query := `
		INSERT INTO assignments (id, family_id, caregiver_id, match_score, assignment_reason,
		                         assigned_by, is_active, visit_scheduled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.ExecContext(ctx, query,
		assignment.ID.String(),
		assignment.FamilyID.String(),
		assignment.CaregiverID.String(),
		assignment.MatchScore,
		assignment.AssignmentReason,
		assignment.AssignedBy.String(),
		assignment.IsActive,
		assignment.VisitScheduled,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func insertIntervention(ctx context.Context, db execer, intervention models.Intervention) error {
	var batchID *string
	if intervention.BatchID != nil {
		v := intervention.BatchID.String()
		batchID = &v
	}
	query := `
		INSERT INTO interventions (id, assignment_id, family_id, caregiver_id, intervention_type,
		                           reason, notes, admin_match_score, status, batch_id,
		                           created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := db.ExecContext(ctx, query,
		intervention.ID.String(),
		intervention.AssignmentID.String(),
		intervention.FamilyID.String(),
		intervention.CaregiverID.String(),
		string(intervention.Type),
		intervention.Reason,
		intervention.Notes,
		intervention.AdminMatchScore,
		string(intervention.Status),
		batchID,
		intervention.CreatedBy.String(),
		intervention.CreatedAt,
		intervention.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert intervention: %w", err)
	}
	return nil
}

type assignmentRow interface {
	Scan(dest ...any) error
}

func scanAssignment(row assignmentRow) (*models.Assignment, error) {
	var assignment models.Assignment
	var rawID, rawFamilyID, rawCaregiverID, rawAssignedBy string
	if err := row.Scan(
		&rawID,
		&rawFamilyID,
		&rawCaregiverID,
		&assignment.MatchScore,
		&assignment.AssignmentReason,
		&rawAssignedBy,
		&assignment.IsActive,
		&assignment.VisitScheduled,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsedID, err := id.ParseAssignmentID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse assignment id: %w", err)
	}
	parsedFamily, err := id.ParseFamilyID(rawFamilyID)
	if err != nil {
		return nil, fmt.Errorf("parse assignment family id: %w", err)
	}
	parsedCaregiver, err := id.ParseCaregiverID(rawCaregiverID)
	if err != nil {
		return nil, fmt.Errorf("parse assignment caregiver id: %w", err)
	}
	parsedOperator, err := id.ParseOperatorID(rawAssignedBy)
	if err != nil {
		return nil, fmt.Errorf("parse assignment operator id: %w", err)
	}
	assignment.ID = parsedID
	assignment.FamilyID = parsedFamily
	assignment.CaregiverID = parsedCaregiver
	assignment.AssignedBy = parsedOperator
	return &assignment, nil
}
