package textbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

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

func testSections() []models.Section {
	return []models.Section{
		{Number: "1", Title: "Introduction to Motion", StartPage: 1, EndPage: 20},
		{Number: "2", Title: "Kinematics", StartPage: 21, EndPage: 45},
		{Number: "3", Title: "Forces and Newton's Laws", StartPage: 46, EndPage: 70},
		{Number: "4", Title: "Energy Conservation", StartPage: 71, EndPage: 95},
	}
}

func newTestMapper(client llm.Client) (*SectionMapper, *[]time.Duration) {
	m := NewSectionMapper(llm.NewService(client, nil, "test-model"))
	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }
	return m, &slept
}

func TestKeywordFilter_ScoresTitleMatches(t *testing.T) {
	indices := keywordFilter("Kinematics", testSections(), 50)
	if len(indices) != 1 || indices[0] != 1 {
		t.Errorf("expected only the Kinematics section, got %v", indices)
	}
}

func TestKeywordFilter_NoMatches(t *testing.T) {
	if indices := keywordFilter("Thermodynamics", testSections(), 50); len(indices) != 0 {
		t.Errorf("expected no candidates, got %v", indices)
	}
}

func TestKeywordFilter_TopK(t *testing.T) {
	sections := make([]models.Section, 60)
	for i := range sections {
		sections[i] = models.Section{Title: "Energy and Work", StartPage: i + 1, EndPage: i + 2}
	}
	if indices := keywordFilter("Energy", sections, 50); len(indices) != 50 {
		t.Errorf("expected shortlist capped at 50, got %d", len(indices))
	}
}

func TestMapTopicsToSections_MapsByIndex(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"relevant_sections": [{"index": 1, "relevance": "Covers the topic directly", "confidence": "high"}]}`,
		},
	}
	mapper, _ := newTestMapper(client)

	topics := []models.Topic{{ID: "t_001", Name: "Kinematics", Weight: 1.0}}
	mappings, err := mapper.MapTopicsToSections(context.Background(), topics, testSections(), "Physics", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	sections := mappings["t_001"]
	if len(sections) != 1 {
		t.Fatalf("expected 1 mapped section, got %d", len(sections))
	}
	if sections[0].Title != "Kinematics" {
		t.Errorf("index mapped to wrong section: %q", sections[0].Title)
	}
	if sections[0].Confidence != "high" {
		t.Errorf("expected confidence preserved, got %q", sections[0].Confidence)
	}
}

func TestMapTopicsToSections_DelayBetweenTopics(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"relevant_sections": [{"index": 1, "confidence": "high"}]}`,
			`{"relevant_sections": [{"index": 3, "confidence": "medium"}]}`,
		},
	}
	mapper, slept := newTestMapper(client)

	topics := []models.Topic{
		{ID: "t_001", Name: "Kinematics", Weight: 1.0},
		{ID: "t_002", Name: "Energy", Weight: 1.0},
	}
	if _, err := mapper.MapTopicsToSections(context.Background(), topics, testSections(), "Physics", nil); err != nil {
		t.Fatal(err)
	}

	// One delay between two topics, none after the last.
	if len(*slept) != 1 || (*slept)[0] != interTopicDelay {
		t.Errorf("expected exactly one inter-topic delay of %v, got %v", interTopicDelay, *slept)
	}
}

func TestMapTopicsToSections_FailureYieldsEmptyMapping(t *testing.T) {
	client := &scriptedClient{
		responses: []string{""},
		errs:      []error{errors.New("provider unavailable")},
	}
	mapper, _ := newTestMapper(client)

	topics := []models.Topic{{ID: "t_001", Name: "Kinematics", Weight: 1.0}}
	mappings, err := mapper.MapTopicsToSections(context.Background(), topics, testSections(), "Physics", nil)
	if err != nil {
		t.Fatalf("per-topic failure must not fail the run: %v", err)
	}
	if _, ok := mappings["t_001"]; ok {
		t.Error("expected no mapping entry for failed topic")
	}
}

func TestMapTopicsToSections_DropsOutOfRangeIndices(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"relevant_sections": [{"index": 99, "confidence": "high"}, {"index": 1, "confidence": "medium"}]}`,
		},
	}
	mapper, _ := newTestMapper(client)

	topics := []models.Topic{{ID: "t_001", Name: "Kinematics", Weight: 1.0}}
	mappings, err := mapper.MapTopicsToSections(context.Background(), topics, testSections(), "Physics", nil)
	if err != nil {
		t.Fatal(err)
	}
	sections := mappings["t_001"]
	if len(sections) != 1 || sections[0].Title != "Kinematics" {
		t.Errorf("expected only the in-range index kept, got %+v", sections)
	}
}

func TestMapTopicsToSections_NoSections(t *testing.T) {
	mapper, _ := newTestMapper(&scriptedClient{responses: []string{"{}"}})

	if _, err := mapper.MapTopicsToSections(context.Background(), []models.Topic{{ID: "t_001", Name: "X"}}, nil, "Physics", nil); err == nil {
		t.Fatal("expected error for empty section list")
	}
}
