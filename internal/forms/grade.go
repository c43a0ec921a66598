package forms

import (
	"fmt"

	"github.com/reteach/backend/internal/models"
)

// GradeResult is the outcome of grading one submission against the
// stored answer key.
type GradeResult struct {
	Score   int
	Total   int
	Records []models.AnswerRecord
}

// Percentage returns the score as a percentage of the total, 0 for an
// empty form.
func (g GradeResult) Percentage() float64 {
	if g.Total == 0 {
		return 0
	}
	return float64(g.Score) / float64(g.Total) * 100
}

// Grade scores a submission server-side against the form's answer key.
// Every question on the form counts toward the total; an unanswered
// question is simply wrong. Answers referencing unknown question IDs
// are an error, since they indicate a stale or tampered submission.
func Grade(form *models.Form, answers map[string]int) (GradeResult, error) {
	byID := make(map[string]models.Question, len(form.Questions))
	for _, q := range form.Questions {
		byID[q.ID] = q
	}
	for id := range answers {
		if _, ok := byID[id]; !ok {
			return GradeResult{}, fmt.Errorf("answer references unknown question %q", id)
		}
	}

	result := GradeResult{Total: len(form.Questions)}
	for _, q := range form.Questions {
		chosen, answered := answers[q.ID]
		correct := answered && chosen == q.AnswerIndex
		if correct {
			result.Score++
		}
		result.Records = append(result.Records, models.AnswerRecord{
			TopicID:   q.Topic,
			TopicName: q.Topic,
			Correct:   correct,
		})
	}
	return result, nil
}
