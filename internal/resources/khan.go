package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
)

const resourceSchemaVersion = "resources-v1"

const genericKhanURL = "https://www.khanacademy.org/science/physics"

// Finder locates Khan Academy remediation links for weak topics. On any
// generative failure every topic gets the generic subject page instead,
// so study plan assembly never blocks on this call.
type Finder struct {
	llm *llm.Service
}

func NewFinder(svc *llm.Service) *Finder {
	return &Finder{llm: svc}
}

// FindResources returns a resource per topic name, keyed by topic.
func (f *Finder) FindResources(ctx context.Context, topicNames []string, subject string) map[string]models.Resource {
	if len(topicNames) == 0 {
		return map[string]models.Resource{}
	}
	if subject == "" {
		subject = "Physics"
	}
	log.Printf("[resources] finding resources for %d topics", len(topicNames))

	raw, err := f.llm.GenerateJSON(ctx, resourcePrompt(topicNames, subject), llm.GenerateOptions{
		MaxTokens:     2048,
		SchemaVersion: resourceSchemaVersion,
	})
	if err != nil {
		log.Printf("WARN: [resources] lookup failed, using generic links: %v", err)
		return genericResources(topicNames)
	}

	var result struct {
		Resources []struct {
			Topic          string `json:"topic"`
			KhanAcademyURL string `json:"khan_academy_url"`
			TextbookPages  string `json:"textbook_pages"`
			Description    string `json:"description"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("WARN: [resources] malformed payload, using generic links: %v", err)
		return genericResources(topicNames)
	}

	found := make(map[string]models.Resource)
	for _, r := range result.Resources {
		if r.Topic == "" {
			continue
		}
		res := models.Resource{
			KhanAcademyURL: r.KhanAcademyURL,
			TextbookPages:  r.TextbookPages,
			Description:    r.Description,
		}
		if res.TextbookPages == "" {
			res.TextbookPages = "N/A"
		}
		if res.Description == "" {
			res.Description = "Study resource for this topic"
		}
		found[r.Topic] = res
	}

	log.Printf("[resources] found resources for %d topics", len(found))
	return found
}

func genericResources(topicNames []string) map[string]models.Resource {
	out := make(map[string]models.Resource, len(topicNames))
	for _, name := range topicNames {
		out[name] = models.Resource{
			KhanAcademyURL: genericKhanURL,
			TextbookPages:  "N/A",
			Description:    "Khan Academy Physics resources",
		}
	}
	return out
}

func resourcePrompt(topicNames []string, subject string) string {
	var list strings.Builder
	for _, name := range topicNames {
		fmt.Fprintf(&list, "- %s\n", name)
	}

	return fmt.Sprintf(`You are helping students learn %s. Given these topics they struggled with, find the most relevant Khan Academy resources.

Topics:
%s
For each topic, provide:
1. The most relevant Khan Academy URL (be specific - use actual Khan Academy article/video URLs)
2. Estimated textbook page ranges (if this were a standard %s textbook)
3. A brief helpful description

Return ONLY valid JSON in this exact format:
{
  "resources": [
    {
      "topic": "Newton's Laws",
      "khan_academy_url": "https://www.khanacademy.org/science/physics/forces-newtons-laws",
      "textbook_pages": "120-145",
      "description": "Review Newton's three laws of motion with interactive examples"
    }
  ]
}

IMPORTANT:
- Use real Khan Academy URLs from khanacademy.org
- Be specific with URLs (target the exact topic, not just the subject homepage)
- For %s topics, focus on the most foundational resources
- Keep descriptions under 100 characters`, subject, list.String(), subject, subject)
}
