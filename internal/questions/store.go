package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/reteach/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Question Storage ────────────────────────────────────

// SaveBatch persists one generated batch for a course. Options are
// stored as JSONB. Questions whose topic has no UUID in the mapping are
// skipped, not fatal.
func (s *Store) SaveBatch(ctx context.Context, courseID string, questions []models.Question, topicNameToID map[string]string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	saved := 0
	for _, q := range questions {
		topicUUID, ok := topicNameToID[q.Topic]
		if !ok {
			continue
		}

		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return 0, fmt.Errorf("encode options for %s: %w", q.ID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions
			 (question_id, course_id, topic_id, stem, options, answer_index, rationale, difficulty, bloom_level)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			q.ID, courseID, topicUUID, q.Stem, optionsJSON, q.AnswerIndex,
			q.Rationale, q.Difficulty, q.Bloom,
		)
		if err != nil {
			return 0, fmt.Errorf("insert question %s: %w", q.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.question_id, t.name, q.stem, q.options, q.answer_index,
		        q.rationale, q.difficulty, q.bloom_level
		 FROM questions q
		 JOIN topics t ON t.id = q.topic_id
		 WHERE q.course_id = $1
		 ORDER BY q.question_id`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var optionsJSON []byte
		if err := rows.Scan(&q.ID, &q.Topic, &q.Stem, &optionsJSON,
			&q.AnswerIndex, &q.Rationale, &q.Difficulty, &q.Bloom); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ── Survey Storage ──────────────────────────────────────

// SaveSurvey stores a survey under a fresh row ID. The survey's batch
// ID only describes its shape ("survey_9q"), so it cannot key rows.
func (s *Store) SaveSurvey(ctx context.Context, survey *models.Survey) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	storedID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO surveys (survey_id, course_id, title, description, total_questions)
		 VALUES ($1, $2, $3, $4, $5)`,
		storedID, survey.CourseID, survey.Title, survey.Description, survey.TotalQuestions,
	)
	if err != nil {
		return "", fmt.Errorf("insert survey: %w", err)
	}

	for _, q := range survey.Questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO survey_questions (survey_id, question_id, topic_id, text, cognitive_level)
			 VALUES ($1, $2, $3, $4, $5)`,
			storedID, q.ID, q.TopicID, q.Text, q.CognitiveLevel,
		)
		if err != nil {
			return "", fmt.Errorf("insert survey question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return storedID, nil
}
