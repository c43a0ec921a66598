package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

const questionSchemaVersion = "questions-v1"

// Generator produces diagnostic questions and surveys topic by topic.
// A failure on one topic degrades the batch, it never aborts it.
type Generator struct {
	llm *llm.Service
}

func NewGenerator(svc *llm.Service) *Generator {
	return &Generator{llm: svc}
}

// GenerateOptions tunes one question batch.
type GenerateOptions struct {
	CountPerTopic int
	Difficulty    *models.Difficulty
	CourseLevel   *models.CourseLevel
	Context       string
}

// GenerateQuestions requests CountPerTopic questions for each topic and
// assembles one sequentially numbered batch. Items are repaired (topic
// injected when absent), renumbered q_NNN in generation order, then
// construction-time validated; failures are dropped with a warning. A
// batch that ends up empty is a hard error.
func (g *Generator) GenerateQuestions(ctx context.Context, topicNames []string, opts GenerateOptions) (*models.GenerateQuestionsResponse, error) {
	if len(topicNames) == 0 {
		return nil, fmt.Errorf("no topics given")
	}
	if opts.CountPerTopic <= 0 {
		opts.CountPerTopic = 5
	}
	log.Printf("[questions] generating %d questions for %d topics", opts.CountPerTopic, len(topicNames))

	level, difficulty := "", ""
	if opts.CourseLevel != nil {
		level = string(*opts.CourseLevel)
	}
	if opts.Difficulty != nil {
		difficulty = string(*opts.Difficulty)
	}

	var accepted []models.Question
	var rejected []models.RejectedItem
	counter := 1

	for _, topicName := range topicNames {
		prompt := GenerationPrompt(topicName, opts.CountPerTopic, level, difficulty, opts.Context)

		raw, err := g.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{
			MaxTokens:     4096,
			SchemaVersion: questionSchemaVersion,
		})
		if err != nil {
			log.Printf("WARN: [questions] generation failed for %q: %v", topicName, err)
			rejected = append(rejected, models.RejectedItem{Topic: topicName, Reason: err.Error()})
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Printf("WARN: [questions] response for %q is not a list: %v", topicName, err)
			rejected = append(rejected, models.RejectedItem{Topic: topicName, Reason: "response is not a list"})
			continue
		}

		kept := 0
		for _, item := range items {
			var q models.Question
			if err := json.Unmarshal(item, &q); err != nil {
				log.Printf("WARN: [questions] skipping malformed item for %q: %v", topicName, err)
				rejected = append(rejected, models.RejectedItem{Topic: topicName, Reason: err.Error()})
				continue
			}

			if q.Topic == "" {
				q.Topic = topicName
			}
			q.ID = fmt.Sprintf("q_%03d", counter)
			counter++

			if err := q.Validate(); err != nil {
				log.Printf("WARN: [questions] dropping invalid question: %v", err)
				rejected = append(rejected, models.RejectedItem{Topic: topicName, Reason: err.Error()})
				continue
			}

			accepted = append(accepted, q)
			kept++
		}

		if kept == 0 {
			log.Printf("WARN: [questions] no valid questions for %q", topicName)
		} else {
			log.Printf("[questions] generated %d questions for %q", kept, topicName)
		}
	}

	if len(accepted) == 0 {
		return nil, llm.ErrNoValidResults
	}

	// Renumber once more so dropped items leave no gaps.
	for i := range accepted {
		accepted[i].ID = fmt.Sprintf("q_%03d", i+1)
	}

	log.Printf("[questions] batch complete: %d accepted, %d rejected", len(accepted), len(rejected))
	return &models.GenerateQuestionsResponse{Questions: accepted, Rejected: rejected}, nil
}
