package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

// scriptedClient returns one scripted response (or error) per call.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	return &llm.CompletionResponse{Text: s.responses[idx], InputTokens: 10, OutputTokens: 5}, nil
}

func newGenerator(client llm.Client) *Generator {
	return NewGenerator(llm.NewService(client, nil, "test-model"))
}

func questionJSON(id, topic string) string {
	q := models.Question{
		ID:          id,
		Topic:       topic,
		Stem:        "Which value satisfies the equation shown above?",
		Options:     []string{"2", "3", "4", "5"},
		AnswerIndex: 1,
		Rationale:   "Substituting 3 balances both sides.",
		Difficulty:  models.DifficultyEasy,
		Bloom:       "apply",
	}
	data, _ := json.Marshal(q)
	return string(data)
}

func TestGenerateQuestions_RenumbersGlobally(t *testing.T) {
	// Both topics come back with arbitrary, colliding IDs.
	client := &scriptedClient{
		responses: []string{
			fmt.Sprintf("[%s,%s]", questionJSON("q_007", "A"), questionJSON("q_007", "")),
			fmt.Sprintf("[%s,%s]", questionJSON("x1", "B"), questionJSON("", "B")),
		},
	}
	gen := newGenerator(client)

	resp, err := gen.GenerateQuestions(context.Background(), []string{"A", "B"}, GenerateOptions{CountPerTopic: 2})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(resp.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(resp.Questions))
	}

	wantTopics := []string{"A", "A", "B", "B"}
	for i, q := range resp.Questions {
		wantID := fmt.Sprintf("q_%03d", i+1)
		if q.ID != wantID {
			t.Errorf("question %d: expected id %s, got %s", i, wantID, q.ID)
		}
		if q.Topic != wantTopics[i] {
			t.Errorf("question %d: expected topic %q, got %q", i, wantTopics[i], q.Topic)
		}
	}
}

func TestGenerateQuestions_SingleTopicFailureDegrades(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			fmt.Sprintf("[%s]", questionJSON("q_001", "A")),
			"",
			fmt.Sprintf("[%s]", questionJSON("q_001", "C")),
		},
		errs: []error{nil, errors.New("provider unavailable"), nil},
	}
	gen := newGenerator(client)

	resp, err := gen.GenerateQuestions(context.Background(), []string{"A", "B", "C"}, GenerateOptions{CountPerTopic: 1})
	if err != nil {
		t.Fatalf("expected degraded batch, got error: %v", err)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("expected 2 questions from surviving topics, got %d", len(resp.Questions))
	}
	if resp.Questions[0].ID != "q_001" || resp.Questions[1].ID != "q_002" {
		t.Errorf("expected gap-free renumbering, got %s, %s", resp.Questions[0].ID, resp.Questions[1].ID)
	}
	if len(resp.Rejected) != 1 || resp.Rejected[0].Topic != "B" {
		t.Errorf("expected topic B recorded as rejected, got %+v", resp.Rejected)
	}
}

func TestGenerateQuestions_DropsInvalidItems(t *testing.T) {
	bad := `{"id":"q_001","topic":"A","stem":"short","options":["x","x"],"answerIndex":5,"rationale":"","difficulty":"easy","bloom":"remember"}`
	client := &scriptedClient{
		responses: []string{
			fmt.Sprintf("[%s,%s]", questionJSON("q_001", "A"), bad),
		},
	}
	gen := newGenerator(client)

	resp, err := gen.GenerateQuestions(context.Background(), []string{"A"}, GenerateOptions{CountPerTopic: 2})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(resp.Questions) != 1 {
		t.Errorf("expected invalid item dropped, got %d questions", len(resp.Questions))
	}
	if len(resp.Rejected) != 1 {
		t.Errorf("expected 1 rejection recorded, got %d", len(resp.Rejected))
	}
}

func TestGenerateQuestions_AllTopicsFail(t *testing.T) {
	client := &scriptedClient{
		responses: []string{""},
		errs:      []error{errors.New("provider unavailable")},
	}
	gen := newGenerator(client)

	_, err := gen.GenerateQuestions(context.Background(), []string{"A", "B"}, GenerateOptions{CountPerTopic: 2})
	if !errors.Is(err, llm.ErrNoValidResults) {
		t.Fatalf("expected ErrNoValidResults, got: %v", err)
	}
}

func TestGenerateQuestions_NoTopics(t *testing.T) {
	gen := newGenerator(&scriptedClient{responses: []string{"[]"}})

	if _, err := gen.GenerateQuestions(context.Background(), nil, GenerateOptions{}); err == nil {
		t.Fatal("expected error for empty topic list")
	}
}
