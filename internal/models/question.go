package models

import "fmt"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "med"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// Question is a multiple-choice diagnostic question. The answerIndex
// invariant (0 <= answerIndex < len(options)) is enforced by Validate
// at construction time; a Question that fails Validate is never
// admitted into a batch.
type Question struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Stem        string     `json:"stem"`
	Options     []string   `json:"options"`
	AnswerIndex int        `json:"answerIndex"`
	Rationale   string     `json:"rationale"`
	Difficulty  Difficulty `json:"difficulty"`
	Bloom       string     `json:"bloom"`
}

const (
	MinOptions   = 2
	MaxOptions   = 6
	MinStemLen   = 10
	MinRationale = 5
)

// Validate enforces the construction-time invariants. Out-of-range
// values are rejected, never clamped.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("empty question id")
	}
	if q.Topic == "" {
		return fmt.Errorf("question %s: empty topic", q.ID)
	}
	if len(q.Stem) < MinStemLen {
		return fmt.Errorf("question %s: stem too short (%d chars)", q.ID, len(q.Stem))
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return fmt.Errorf("question %s: expected %d-%d options, got %d", q.ID, MinOptions, MaxOptions, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if seen[opt] {
			return fmt.Errorf("question %s: duplicate option %q", q.ID, opt)
		}
		seen[opt] = true
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return fmt.Errorf("question %s: answerIndex %d out of bounds for %d options", q.ID, q.AnswerIndex, len(q.Options))
	}
	if len(q.Rationale) < MinRationale {
		return fmt.Errorf("question %s: rationale too short", q.ID)
	}
	if !ValidDifficulties[q.Difficulty] {
		return fmt.Errorf("question %s: invalid difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}

// ── Request/Response Types ────────────────────────────────

type GenerateQuestionsRequest struct {
	Topics        []string     `json:"topics"`
	CourseID      string       `json:"course_id,omitempty"`
	CountPerTopic int          `json:"count_per_topic"`
	Difficulty    *Difficulty  `json:"difficulty,omitempty"`
	CourseLevel   *CourseLevel `json:"course_level,omitempty"`
	TextbookID    string       `json:"textbook_id,omitempty"`
	UseTextbook   bool         `json:"use_textbook,omitempty"`
	TotalCount    int          `json:"total_count,omitempty"`
}

type GenerateQuestionsResponse struct {
	Questions []Question     `json:"questions"`
	Rejected  []RejectedItem `json:"rejected,omitempty"`
}

// RejectedItem records one generated item that failed validation and
// was dropped from the batch.
type RejectedItem struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}
