package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

const (
	topicSchemaVersion = "topics-v1"
	synthWeight        = 0.6
	maxDefaultPrereqs  = 3
)

// Parser extracts prerequisite topics from syllabus text. The primary
// path is generative; a regex heading scan covers total failure, and
// prerequisite back-fill runs after either path.
type Parser struct {
	llm *llm.Service

	// DefaultPrereqLimit caps how many synthesized prerequisite IDs are
	// assigned to topics that came back with an empty prereqs list.
	DefaultPrereqLimit int
}

func NewParser(svc *llm.Service) *Parser {
	return &Parser{llm: svc, DefaultPrereqLimit: maxDefaultPrereqs}
}

// ExtractPrerequisites asks the model for prerequisite names mentioned
// in the syllabus. Failures degrade to an empty list, never an error.
func (p *Parser) ExtractPrerequisites(ctx context.Context, syllabusText string) []string {
	raw, err := p.llm.GenerateJSON(ctx, PrerequisitesPrompt(syllabusText), llm.GenerateOptions{
		MaxTokens:     512,
		SchemaVersion: topicSchemaVersion,
	})
	if err != nil {
		log.Printf("WARN: [topics] could not extract prerequisites: %v", err)
		return nil
	}

	var result struct {
		Prerequisites []string `json:"prerequisites"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("WARN: [topics] malformed prerequisites payload: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	var unique []string
	for _, name := range result.Prerequisites {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, name)
	}
	return unique
}

// ParseTopics runs the full extraction chain: generative extraction
// with per-item validation, the heading-scan fallback when that yields
// nothing usable, then prerequisite back-fill.
func (p *Parser) ParseTopics(ctx context.Context, syllabusText string, courseLevel *models.CourseLevel) (*models.ParseTopicsResponse, error) {
	if strings.TrimSpace(syllabusText) == "" {
		return nil, fmt.Errorf("empty syllabus text")
	}
	log.Printf("[topics] parsing %d chars of syllabus text", len(syllabusText))

	prerequisites := p.ExtractPrerequisites(ctx, syllabusText)
	if len(prerequisites) > 0 {
		log.Printf("[topics] found prerequisites: %s", strings.Join(prerequisites, ", "))
	}

	level := ""
	if courseLevel != nil {
		level = string(*courseLevel)
	}

	extracted, err := p.extractTopics(ctx, syllabusText, level)
	if err != nil {
		log.Printf("WARN: [topics] generative extraction failed, using heading fallback: %v", err)
		extracted = FallbackFromHeadings(syllabusText)
		log.Printf("[topics] fallback extracted %d topics", len(extracted))
	} else {
		log.Printf("[topics] extracted %d topics", len(extracted))
	}

	final := p.ensurePrerequisiteTopics(extracted, prerequisites)

	return &models.ParseTopicsResponse{
		Topics:        final,
		Prerequisites: prerequisites,
	}, nil
}

func (p *Parser) extractTopics(ctx context.Context, syllabusText, level string) ([]models.Topic, error) {
	raw, err := p.llm.GenerateJSON(ctx, ExtractionPrompt(syllabusText, level), llm.GenerateOptions{
		MaxTokens:     2048,
		SchemaVersion: topicSchemaVersion,
	})
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("response is not a list: %w", err)
	}

	var topics []models.Topic
	for i, item := range items {
		var topic models.Topic
		if err := json.Unmarshal(item, &topic); err != nil {
			log.Printf("WARN: [topics] skipping malformed item %d: %v", i, err)
			continue
		}
		if err := validateTopic(&topic); err != nil {
			log.Printf("WARN: [topics] skipping invalid topic: %v", err)
			continue
		}
		topics = append(topics, topic)
	}

	if len(topics) == 0 {
		return nil, llm.ErrNoValidResults
	}
	return topics, nil
}

func validateTopic(t *models.Topic) error {
	if t.ID == "" {
		return fmt.Errorf("empty topic id")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("topic %s: empty name", t.ID)
	}
	if t.Weight < 0 {
		return fmt.Errorf("topic %s: negative weight %.2f", t.ID, t.Weight)
	}
	if t.Weight == 0 {
		t.Weight = 1.0
	}
	if t.Prereqs == nil {
		t.Prereqs = []string{}
	}
	return nil
}

// ensurePrerequisiteTopics synthesizes topics for prerequisite names
// not already in the batch, inserting them at the head with a lower
// weight. Prereq lists are then rewritten: self-references and dangling
// IDs are removed, and topics left with no prereqs default to the first
// few synthesized prerequisites. Synthesized topics never point at
// course topics, so the result stays acyclic.
func (p *Parser) ensurePrerequisiteTopics(topics []models.Topic, prereqNames []string) []models.Topic {
	names := make(map[string]bool, len(topics))
	ids := make(map[string]bool, len(topics))
	for _, t := range topics {
		names[strings.ToLower(t.Name)] = true
		ids[t.ID] = true
	}

	var synthesized []models.Topic
	var synthIDs []string
	for _, name := range prereqNames {
		if names[strings.ToLower(name)] {
			continue
		}
		id := nextUnusedID(ids)
		ids[id] = true
		names[strings.ToLower(name)] = true
		synthesized = append(synthesized, models.Topic{
			ID:      id,
			Name:    name,
			Weight:  synthWeight,
			Prereqs: []string{},
		})
		synthIDs = append(synthIDs, id)
	}

	defaultPrereqs := synthIDs
	if len(defaultPrereqs) > p.DefaultPrereqLimit {
		defaultPrereqs = defaultPrereqs[:p.DefaultPrereqLimit]
	}

	for i := range topics {
		t := &topics[i]
		cleaned := t.Prereqs[:0]
		for _, ref := range t.Prereqs {
			if ref == t.ID {
				log.Printf("WARN: [topics] removing self-reference on %s", t.ID)
				continue
			}
			if !ids[ref] {
				log.Printf("WARN: [topics] removing dangling prereq %s on %s", ref, t.ID)
				continue
			}
			cleaned = append(cleaned, ref)
		}
		t.Prereqs = cleaned

		if len(t.Prereqs) == 0 && len(defaultPrereqs) > 0 {
			t.Prereqs = append([]string{}, defaultPrereqs...)
		}
	}

	result := append(synthesized, topics...)
	breakCycles(result)
	return result
}

// nextUnusedID returns the smallest t_NNN not present in used.
func nextUnusedID(used map[string]bool) string {
	for n := 1; ; n++ {
		id := fmt.Sprintf("t_%03d", n)
		if !used[id] {
			return id
		}
	}
}

// breakCycles drops the edge closing any prereq cycle. The synthesized
// two-tier shape never cycles, but model-produced prereq lists can.
func breakCycles(topics []models.Topic) {
	index := make(map[string]int, len(topics))
	for i, t := range topics {
		index[t.ID] = i
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make([]int, len(topics))

	var visit func(i int)
	visit = func(i int) {
		state[i] = inStack
		t := &topics[i]
		kept := t.Prereqs[:0]
		for _, ref := range t.Prereqs {
			j, ok := index[ref]
			if !ok {
				continue
			}
			if state[j] == inStack {
				log.Printf("WARN: [topics] breaking prereq cycle at %s -> %s", t.ID, ref)
				continue
			}
			if state[j] == unvisited {
				visit(j)
			}
			kept = append(kept, ref)
		}
		t.Prereqs = kept
		state[i] = done
	}

	for i := range topics {
		if state[i] == unvisited {
			visit(i)
		}
	}
}
