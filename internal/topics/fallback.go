package topics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reteach/backend/internal/models"
)

const fallbackMaxTopics = 8

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#{1,3}\s+(.+)$`),      // markdown headings
	regexp.MustCompile(`^\d+\.\s+(.+)$`),       // numbered list items
	regexp.MustCompile(`^([A-Z][^.!?]*):`),     // title-case lines ending with a colon
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FallbackFromHeadings extracts topics from heading-like lines when the
// generative path fails. Names are deduplicated case-insensitively and
// the result is capped at 8 entries. An unmatchable text yields a
// single "General Concepts" sentinel so callers never see zero topics
// from this path.
func FallbackFromHeadings(syllabusText string) []models.Topic {
	var topics []models.Topic
	seen := make(map[string]bool)

	for _, line := range strings.Split(syllabusText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}

		for _, pattern := range headingPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			name := strings.TrimRight(strings.TrimSpace(match[1]), ":")
			name = whitespaceRun.ReplaceAllString(name, " ")

			key := strings.ToLower(name)
			if name != "" && !seen[key] && len(name) < 100 {
				seen[key] = true
				topics = append(topics, models.Topic{
					ID:      fmt.Sprintf("t_%03d", len(topics)+1),
					Name:    name,
					Weight:  1.0,
					Prereqs: []string{},
				})
				if len(topics) >= fallbackMaxTopics {
					return topics
				}
			}
			break
		}
	}

	if len(topics) == 0 {
		topics = []models.Topic{{
			ID:      "t_001",
			Name:    "General Concepts",
			Weight:  1.0,
			Prereqs: []string{},
		}}
	}
	return topics
}
