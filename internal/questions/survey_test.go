package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

func TestGenerateSurvey_SequentialIDs(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`[{"text":"Do you know how to solve linear equations?","cognitive_level":"apply"},
			  {"text":"Can you define a variable?","cognitive_level":"remember"}]`,
			`[{"text":"Do you understand what a limit is?","cognitive_level":"understand"}]`,
		},
	}
	gen := newGenerator(client)

	survey, err := gen.GenerateSurvey(context.Background(), []string{"Algebra", "Limits"}, 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if survey.TotalQuestions != 3 || len(survey.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(survey.Questions))
	}
	wantIDs := []string{"sq_001", "sq_002", "sq_003"}
	wantTopics := []string{"Algebra", "Algebra", "Limits"}
	for i, q := range survey.Questions {
		if q.ID != wantIDs[i] {
			t.Errorf("question %d: expected id %s, got %s", i, wantIDs[i], q.ID)
		}
		if q.TopicID != wantTopics[i] {
			t.Errorf("question %d: expected topic %q, got %q", i, wantTopics[i], q.TopicID)
		}
	}
}

func TestGenerateSurvey_DefaultsCognitiveLevel(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`[{"text":"Do you know how to factor a quadratic?"}]`,
		},
	}
	gen := newGenerator(client)

	survey, err := gen.GenerateSurvey(context.Background(), []string{"Algebra"}, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if survey.Questions[0].CognitiveLevel != models.CognitiveUnderstand {
		t.Errorf("expected default cognitive level, got %s", survey.Questions[0].CognitiveLevel)
	}
}

func TestGenerateSurvey_DropsInvalidLevel(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`[{"text":"Do you know this topic well enough?","cognitive_level":"transcend"},
			  {"text":"Can you apply the quadratic formula?","cognitive_level":"apply"}]`,
		},
	}
	gen := newGenerator(client)

	survey, err := gen.GenerateSurvey(context.Background(), []string{"Algebra"}, 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(survey.Questions) != 1 {
		t.Fatalf("expected invalid item dropped, got %d", len(survey.Questions))
	}
	if survey.Questions[0].ID != "sq_001" {
		t.Errorf("expected renumbering after drop, got %s", survey.Questions[0].ID)
	}
}

func TestGenerateSurvey_AllFail(t *testing.T) {
	client := &scriptedClient{
		responses: []string{""},
		errs:      []error{errors.New("provider unavailable")},
	}
	gen := newGenerator(client)

	_, err := gen.GenerateSurvey(context.Background(), []string{"Algebra"}, 2)
	if !errors.Is(err, llm.ErrNoValidResults) {
		t.Fatalf("expected ErrNoValidResults, got: %v", err)
	}
}
