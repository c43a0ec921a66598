package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

// scriptedClient returns responses (or errors) in call order. Entries
// past the script repeat the last one.
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

func newParser(client llm.Client) *Parser {
	return NewParser(llm.NewService(client, nil, "test-model"))
}

func TestParseTopics_ValidExtraction(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": []}`,
			`[
				{"id":"t_001","name":"Algebra","weight":1.5,"prereqs":[]},
				{"id":"t_002","name":"","weight":1.0,"prereqs":[]},
				{"id":"t_003","name":"Calculus","weight":2.0,"prereqs":["t_001"]}
			]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "Course syllabus text", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(resp.Topics) != 2 {
		t.Fatalf("expected invalid item dropped, got %d topics", len(resp.Topics))
	}
	if resp.Topics[0].Name != "Algebra" || resp.Topics[1].Name != "Calculus" {
		t.Errorf("unexpected topics: %+v", resp.Topics)
	}
	if resp.Topics[1].Prereqs[0] != "t_001" {
		t.Errorf("expected prereq preserved, got %v", resp.Topics[1].Prereqs)
	}
}

func TestParseTopics_FallbackScenario(t *testing.T) {
	providerDown := errors.New("provider unavailable")
	client := &scriptedClient{
		responses: []string{""},
		errs:      []error{providerDown},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "# Algebra\n# Calculus\n# Statistics", nil)
	if err != nil {
		t.Fatalf("fallback path must not fail: %v", err)
	}

	if len(resp.Topics) != 3 {
		t.Fatalf("expected exactly 3 fallback topics, got %d", len(resp.Topics))
	}
	want := []string{"Algebra", "Calculus", "Statistics"}
	for i, topic := range resp.Topics {
		if topic.Name != want[i] {
			t.Errorf("topic %d: expected %q, got %q", i, want[i], topic.Name)
		}
		if topic.Weight != 1.0 {
			t.Errorf("topic %d: expected weight 1.0, got %.2f", i, topic.Weight)
		}
		if len(topic.Prereqs) != 0 {
			t.Errorf("topic %d: expected empty prereqs, got %v", i, topic.Prereqs)
		}
	}
}

func TestParseTopics_EmptyValidSetFallsBack(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": []}`,
			`[{"id":"","name":"","weight":-1}]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "# Probability", nil)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(resp.Topics) != 1 || resp.Topics[0].Name != "Probability" {
		t.Errorf("expected heading fallback, got %+v", resp.Topics)
	}
}

func TestParseTopics_EmptySyllabus(t *testing.T) {
	parser := newParser(&scriptedClient{responses: []string{"{}"}})

	if _, err := parser.ParseTopics(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected error for empty syllabus text")
	}
}

func TestParseTopics_PrerequisiteBackfill(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": ["Algebra", "Trigonometry"]}`,
			`[{"id":"t_001","name":"Limits","weight":1.0,"prereqs":[]},
			  {"id":"t_002","name":"Derivatives","weight":1.5,"prereqs":["t_001"]}]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "Calculus syllabus", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(resp.Topics) != 4 {
		t.Fatalf("expected 2 synthesized + 2 extracted topics, got %d", len(resp.Topics))
	}

	// Synthesized prerequisites sit at the head with lower weight and
	// collision-free IDs.
	algebra, trig := resp.Topics[0], resp.Topics[1]
	if algebra.Name != "Algebra" || trig.Name != "Trigonometry" {
		t.Fatalf("expected synthesized topics first, got %+v", resp.Topics[:2])
	}
	if algebra.Weight != 0.6 || trig.Weight != 0.6 {
		t.Errorf("expected synthesized weight 0.6, got %.2f / %.2f", algebra.Weight, trig.Weight)
	}
	if algebra.ID != "t_003" || trig.ID != "t_004" {
		t.Errorf("expected smallest unused IDs t_003/t_004, got %s/%s", algebra.ID, trig.ID)
	}
	if len(algebra.Prereqs) != 0 || len(trig.Prereqs) != 0 {
		t.Errorf("synthesized topics must not have prereqs")
	}

	// The topic with an empty prereqs list defaults to the synthesized
	// prerequisites; the one with an existing list keeps it.
	limits, derivatives := resp.Topics[2], resp.Topics[3]
	if len(limits.Prereqs) != 2 || limits.Prereqs[0] != "t_003" || limits.Prereqs[1] != "t_004" {
		t.Errorf("expected Limits to default to synthesized prereqs, got %v", limits.Prereqs)
	}
	if len(derivatives.Prereqs) != 1 || derivatives.Prereqs[0] != "t_001" {
		t.Errorf("expected Derivatives to keep its prereq, got %v", derivatives.Prereqs)
	}
}

func TestParseTopics_PrereqAlreadyPresent(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": ["Algebra"]}`,
			`[{"id":"t_001","name":"Algebra","weight":1.0,"prereqs":[]}]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "syllabus", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Topics) != 1 {
		t.Errorf("expected no synthesis when prerequisite already present, got %d topics", len(resp.Topics))
	}
}

func TestParseTopics_CleansSelfAndDanglingRefs(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": []}`,
			`[{"id":"t_001","name":"Limits","weight":1.0,"prereqs":["t_001","t_099","t_002"]},
			  {"id":"t_002","name":"Algebra","weight":1.0,"prereqs":[]}]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "syllabus", nil)
	if err != nil {
		t.Fatal(err)
	}
	limits := resp.Topics[0]
	if len(limits.Prereqs) != 1 || limits.Prereqs[0] != "t_002" {
		t.Errorf("expected self-reference and dangling ID removed, got %v", limits.Prereqs)
	}
}

func TestParseTopics_BreaksCycles(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"prerequisites": []}`,
			`[{"id":"t_001","name":"A","weight":1.0,"prereqs":["t_002"]},
			  {"id":"t_002","name":"B","weight":1.0,"prereqs":["t_001"]}]`,
		},
	}
	parser := newParser(client)

	resp, err := parser.ParseTopics(context.Background(), "syllabus", nil)
	if err != nil {
		t.Fatal(err)
	}

	reach := make(map[string][]string)
	for _, topic := range resp.Topics {
		reach[topic.ID] = topic.Prereqs
	}
	var walk func(id string, seen map[string]bool) bool
	walk = func(id string, seen map[string]bool) bool {
		if seen[id] {
			return true
		}
		seen[id] = true
		for _, ref := range reach[id] {
			if walk(ref, seen) {
				return true
			}
		}
		delete(seen, id)
		return false
	}
	for _, topic := range resp.Topics {
		if walk(topic.ID, map[string]bool{}) {
			t.Errorf("cycle still reachable from %s", topic.ID)
		}
	}
}

func TestValidateTopic_DefaultsWeight(t *testing.T) {
	topic := models.Topic{ID: "t_001", Name: "Algebra"}
	if err := validateTopic(&topic); err != nil {
		t.Fatalf("expected valid, got: %v", err)
	}
	if topic.Weight != 1.0 {
		t.Errorf("expected default weight 1.0, got %.2f", topic.Weight)
	}
	if topic.Prereqs == nil {
		t.Error("expected prereqs normalized to empty slice")
	}
}
