package forms

import (
	"testing"

	"github.com/reteach/backend/internal/models"
)

func testForm() *models.Form {
	return &models.Form{
		ID:    "f1",
		Slug:  "physics-diagnostic-a1b2",
		Title: "Physics Diagnostic",
		Questions: []models.Question{
			{ID: "q_001", Topic: "Kinematics", AnswerIndex: 2},
			{ID: "q_002", Topic: "Kinematics", AnswerIndex: 0},
			{ID: "q_003", Topic: "Energy", AnswerIndex: 1},
		},
	}
}

func TestGrade_ScoresAgainstKey(t *testing.T) {
	result, err := Grade(testForm(), map[string]int{
		"q_001": 2, // correct
		"q_002": 3, // wrong
		"q_003": 1, // correct
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 2 || result.Total != 3 {
		t.Errorf("expected 2/3, got %d/%d", result.Score, result.Total)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected a record per question, got %d", len(result.Records))
	}
	if !result.Records[0].Correct || result.Records[1].Correct || !result.Records[2].Correct {
		t.Errorf("unexpected correctness pattern: %+v", result.Records)
	}
	if result.Records[0].TopicName != "Kinematics" {
		t.Errorf("expected topic carried onto record, got %q", result.Records[0].TopicName)
	}
}

func TestGrade_UnansweredCountsWrong(t *testing.T) {
	result, err := Grade(testForm(), map[string]int{"q_001": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 1 || result.Total != 3 {
		t.Errorf("expected 1/3 with two unanswered, got %d/%d", result.Score, result.Total)
	}
}

func TestGrade_UnknownQuestionID(t *testing.T) {
	if _, err := Grade(testForm(), map[string]int{"q_999": 0}); err == nil {
		t.Fatal("expected error for answer to unknown question")
	}
}

func TestGradeResult_Percentage(t *testing.T) {
	if pct := (GradeResult{Score: 2, Total: 3}).Percentage(); pct < 66.6 || pct > 66.7 {
		t.Errorf("expected ~66.7, got %.2f", pct)
	}
	if pct := (GradeResult{}).Percentage(); pct != 0 {
		t.Errorf("expected 0 for empty form, got %.2f", pct)
	}
}
