package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

// GenerateSurvey produces a Yes/Maybe/No self-assessment survey across
// the given topics. Items get sequential sq_NNN IDs; a missing
// cognitive level defaults to "understand".
func (g *Generator) GenerateSurvey(ctx context.Context, topicNames []string, perTopic int) (*models.Survey, error) {
	if len(topicNames) == 0 {
		return nil, fmt.Errorf("no topics given")
	}
	if perTopic <= 0 {
		perTopic = 3
	}

	var all []models.SurveyQuestion
	counter := 1

	for _, topicName := range topicNames {
		raw, err := g.llm.GenerateJSON(ctx, SurveyPrompt(topicName, perTopic), llm.GenerateOptions{
			MaxTokens:     1024,
			SchemaVersion: questionSchemaVersion,
		})
		if err != nil {
			log.Printf("WARN: [survey] generation failed for %q: %v", topicName, err)
			continue
		}

		var items []struct {
			Text           string `json:"text"`
			CognitiveLevel string `json:"cognitive_level"`
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Printf("WARN: [survey] response for %q is not a list: %v", topicName, err)
			continue
		}

		for _, item := range items {
			level := models.CognitiveLevel(item.CognitiveLevel)
			if item.CognitiveLevel == "" {
				level = models.CognitiveUnderstand
			}

			sq := models.SurveyQuestion{
				ID:             fmt.Sprintf("sq_%03d", counter),
				TopicID:        topicName,
				Text:           item.Text,
				CognitiveLevel: level,
			}
			if err := sq.Validate(); err != nil {
				log.Printf("WARN: [survey] dropping invalid question: %v", err)
				continue
			}
			all = append(all, sq)
			counter++
		}
	}

	if len(all) == 0 {
		return nil, llm.ErrNoValidResults
	}

	// Close any numbering gaps left by dropped items.
	for i := range all {
		all[i].ID = fmt.Sprintf("sq_%03d", i+1)
	}

	return &models.Survey{
		ID:             fmt.Sprintf("survey_%dq", len(all)),
		CourseID:       "default",
		Title:          "Diagnostic Survey",
		Description:    "Assess your current knowledge",
		Questions:      all,
		TotalQuestions: len(all),
	}, nil
}
