package textbook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

const (
	mapperSchemaVersion = "mapper-v1"
	keywordTopK         = 50
	maxSectionsPerTopic = 3
	interTopicDelay     = 2 * time.Second
)

// SectionMapper aligns course topics to textbook sections. A cheap
// keyword filter shortlists candidates before the generative call, and
// a fixed delay between topics keeps the provider call rate bounded.
type SectionMapper struct {
	llm   *llm.Service
	delay time.Duration
	sleep func(time.Duration)
}

func NewSectionMapper(svc *llm.Service) *SectionMapper {
	return &SectionMapper{
		llm:   svc,
		delay: interTopicDelay,
		sleep: time.Sleep,
	}
}

// MapTopicsToSections maps each topic to its 1-3 most relevant
// sections. A generative failure on one topic yields an empty mapping
// for that topic, never a failed run.
func (m *SectionMapper) MapTopicsToSections(ctx context.Context, topics []models.Topic, sections []models.Section, textbookTitle string, prerequisites []string) (models.SectionMapping, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections to map against")
	}
	log.Printf("[mapper] mapping %d topics to %d sections", len(topics), len(sections))

	mappings := make(models.SectionMapping)

	for i, topic := range topics {
		relevant := m.findRelevantSections(ctx, topic.Name, sections, textbookTitle, prerequisites)
		if len(relevant) > 0 {
			mappings[topic.ID] = relevant
			log.Printf("[mapper] %q -> %d section(s)", topic.Name, len(relevant))
		} else {
			log.Printf("WARN: [mapper] no relevant sections for %q", topic.Name)
		}

		if i < len(topics)-1 {
			m.sleep(m.delay)
		}
	}

	return mappings, nil
}

type scoredSection struct {
	score int
	index int
}

// keywordFilter scores sections by keyword overlap with the topic name
// (title hits count double) and returns the indices of the top K.
func keywordFilter(topicName string, sections []models.Section, topK int) []int {
	keywords := strings.Fields(strings.ToLower(topicName))

	var scored []scoredSection
	for i, section := range sections {
		titleLower := strings.ToLower(section.Title)
		numberLower := strings.ToLower(section.Number)

		score := 0
		for _, kw := range keywords {
			if strings.Contains(titleLower, kw) {
				score += 2
			}
			if numberLower != "" && strings.Contains(numberLower, kw) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredSection{score: score, index: i})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	indices := make([]int, len(scored))
	for i, s := range scored {
		indices[i] = s.index
	}
	return indices
}

func (m *SectionMapper) findRelevantSections(ctx context.Context, topicName string, sections []models.Section, textbookTitle string, prerequisites []string) []models.MappedSection {
	candidates := keywordFilter(topicName, sections, keywordTopK)
	if len(candidates) == 0 {
		log.Printf("WARN: [mapper] no keyword matches for %q", topicName)
		return nil
	}

	prompt := mappingPrompt(topicName, textbookTitle, prerequisites, sections, candidates)

	raw, err := m.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{
		MaxTokens:     1024,
		SchemaVersion: mapperSchemaVersion,
	})
	if err != nil {
		log.Printf("WARN: [mapper] generative mapping failed for %q: %v", topicName, err)
		return nil
	}

	var result struct {
		RelevantSections []struct {
			Index      int    `json:"index"`
			Relevance  string `json:"relevance"`
			Confidence string `json:"confidence"`
		} `json:"relevant_sections"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("WARN: [mapper] malformed mapping payload for %q: %v", topicName, err)
		return nil
	}

	var relevant []models.MappedSection
	for _, match := range result.RelevantSections {
		if len(relevant) >= maxSectionsPerTopic {
			break
		}
		if match.Index < 0 || match.Index >= len(sections) {
			log.Printf("WARN: [mapper] index %d out of range for %q", match.Index, topicName)
			continue
		}
		confidence := match.Confidence
		if confidence == "" {
			confidence = "medium"
		}
		relevant = append(relevant, models.MappedSection{
			Section:    sections[match.Index],
			Relevance:  match.Relevance,
			Confidence: confidence,
		})
	}
	return relevant
}

func mappingPrompt(topicName, textbookTitle string, prerequisites []string, sections []models.Section, candidates []int) string {
	var context strings.Builder
	fmt.Fprintf(&context, "Textbook: %q\nTopic: %q", textbookTitle, topicName)
	if len(prerequisites) > 0 {
		fmt.Fprintf(&context, "\nCourse Prerequisites: %s", strings.Join(prerequisites, ", "))
		context.WriteString("\nNote: This topic builds on these prerequisites.")
	}

	var list strings.Builder
	for _, idx := range candidates {
		s := sections[idx]
		if s.Number != "" {
			fmt.Fprintf(&list, "%d. [%s] %s (pages %d-%d)\n", idx, s.Number, s.Title, s.StartPage, s.EndPage)
		} else {
			fmt.Fprintf(&list, "%d. %s (pages %d-%d)\n", idx, s.Title, s.StartPage, s.EndPage)
		}
	}

	return fmt.Sprintf(`You are helping map a course topic to relevant sections in a textbook.

%s

Available sections (%d total):
%s
Task: Identify which sections are most relevant for learning about "%s".

Rules:
1. Select 1-3 most relevant sections
2. Prioritize sections that directly cover the topic
3. Choose sections with reasonable page ranges (3-15 pages ideal)
4. If no sections are clearly relevant, return empty array
5. ONLY return the JSON object, no explanatory text before or after

Return ONLY this JSON structure (no other text):
{
  "relevant_sections": [
    {"index": 5, "relevance": "Directly covers fundamentals", "confidence": "high"},
    {"index": 12, "relevance": "Advanced applications", "confidence": "medium"}
  ]
}`, context.String(), len(candidates), list.String(), topicName)
}
