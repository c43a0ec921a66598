package studyplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reteach/backend/internal/models"
)

var ErrPlanNotFound = errors.New("study plan not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save persists a plan with its steps as JSONB.
func (s *Store) Save(ctx context.Context, plan *models.StudyPlan) error {
	stepsJSON, err := json.Marshal(plan.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO study_plans
		 (id, student_name, student_email, overall_readiness, steps, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		plan.ID, plan.StudentName, plan.StudentEmail,
		plan.OverallReadiness, stepsJSON, plan.Message, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	var stepsJSON []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_name, student_email, overall_readiness, steps, message
		 FROM study_plans WHERE id = $1`,
		id,
	).Scan(&plan.ID, &plan.StudentName, &plan.StudentEmail,
		&plan.OverallReadiness, &stepsJSON, &plan.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query study plan %s: %w", id, err)
	}

	if err := json.Unmarshal(stepsJSON, &plan.Steps); err != nil {
		return nil, fmt.Errorf("decode steps for %s: %w", id, err)
	}
	return &plan, nil
}

// ListByEmail returns every plan generated for a student, newest first.
func (s *Store) ListByEmail(ctx context.Context, studentEmail string) ([]models.StudyPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_name, student_email, overall_readiness, steps, message
		 FROM study_plans WHERE student_email = $1 ORDER BY created_at DESC`,
		studentEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	defer rows.Close()

	var plans []models.StudyPlan
	for rows.Next() {
		var plan models.StudyPlan
		var stepsJSON []byte
		if err := rows.Scan(&plan.ID, &plan.StudentName, &plan.StudentEmail,
			&plan.OverallReadiness, &stepsJSON, &plan.Message); err != nil {
			return nil, fmt.Errorf("scan study plan: %w", err)
		}
		if err := json.Unmarshal(stepsJSON, &plan.Steps); err != nil {
			return nil, fmt.Errorf("decode steps for %s: %w", plan.ID, err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
