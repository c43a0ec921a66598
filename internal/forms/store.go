package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/reteach/backend/internal/models"
)

var ErrFormNotFound = errors.New("form not found")

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateForm persists a new form under a slug derived from its title.
// On a slug collision it retries once with a longer random suffix.
func (s *Store) CreateForm(ctx context.Context, req *models.CreateFormRequest) (*models.Form, error) {
	form := &models.Form{
		ID:        uuid.NewString(),
		Title:     req.Title,
		CourseID:  req.CourseID,
		Questions: req.Questions,
		CreatedAt: time.Now().UTC(),
	}

	questionsJSON, err := json.Marshal(form.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	for _, suffixLen := range []int{slugSuffixLen, slugRetrySuffix} {
		form.Slug = Slugify(form.Title, suffixLen)
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO forms (id, slug, title, course_id, questions, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			form.ID, form.Slug, form.Title, nullString(form.CourseID), questionsJSON, form.CreatedAt,
		)
		if err == nil {
			return form, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			log.Printf("WARN: [forms] slug collision on %q, retrying with longer suffix", form.Slug)
			continue
		}
		return nil, fmt.Errorf("insert form: %w", err)
	}
	return nil, fmt.Errorf("insert form: %w", err)
}

// GetBySlug loads a form, answer keys included. Callers serving
// students must go through Form.PublicView.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	var form models.Form
	var courseID sql.NullString
	var questionsJSON []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, title, course_id, questions, created_at
		 FROM forms WHERE slug = $1`,
		slug,
	).Scan(&form.ID, &form.Slug, &form.Title, &courseID, &questionsJSON, &form.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query form %s: %w", slug, err)
	}

	form.CourseID = courseID.String
	if err := json.Unmarshal(questionsJSON, &form.Questions); err != nil {
		return nil, fmt.Errorf("decode questions for %s: %w", slug, err)
	}
	return &form, nil
}

// SaveSubmission records a graded submission.
func (s *Store) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions
		 (id, form_id, student_name, student_email, answers, score, total, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.FormID, sub.StudentName, sub.StudentEmail,
		answersJSON, sub.Score, sub.Total, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissions returns all submissions for a form, newest first.
func (s *Store) ListSubmissions(ctx context.Context, formID string) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, form_id, student_name, student_email, answers, score, total, submitted_at
		 FROM submissions WHERE form_id = $1 ORDER BY submitted_at DESC`,
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var answersJSON []byte
		if err := rows.Scan(&sub.ID, &sub.FormID, &sub.StudentName, &sub.StudentEmail,
			&answersJSON, &sub.Score, &sub.Total, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(answersJSON, &sub.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", sub.ID, err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
