package analysis

import (
	"sort"

	"github.com/reteach/backend/internal/models"
)

const (
	// DefaultThreshold separates strong from weak topics.
	DefaultThreshold = 60.0

	// DefaultHighCutoff and DefaultMediumCutoff bucket weak-topic
	// priority by score.
	DefaultHighCutoff   = 40.0
	DefaultMediumCutoff = 60.0
)

// Config tunes the gap engine. Zero values take the defaults above.
type Config struct {
	Threshold    float64
	HighCutoff   float64
	MediumCutoff float64
}

func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.HighCutoff == 0 {
		c.HighCutoff = DefaultHighCutoff
	}
	if c.MediumCutoff == 0 {
		c.MediumCutoff = DefaultMediumCutoff
	}
	return c
}

// AnalyzeGaps groups graded answers by topic and classifies each topic
// as strong or weak against the mastery threshold. Weak topics come
// back sorted worst-first. Pure computation, no generative calls.
func AnalyzeGaps(records []models.AnswerRecord, cfg Config) *models.GapAnalysis {
	cfg = cfg.withDefaults()

	type tally struct {
		name    string
		total   int
		correct int
		order   int
	}

	tallies := make(map[string]*tally)
	var topicOrder []string
	totalQuestions, totalCorrect := 0, 0

	for _, r := range records {
		t, ok := tallies[r.TopicID]
		if !ok {
			t = &tally{name: r.TopicName, order: len(topicOrder)}
			tallies[r.TopicID] = t
			topicOrder = append(topicOrder, r.TopicID)
		}
		t.total++
		totalQuestions++
		if r.Correct {
			t.correct++
			totalCorrect++
		}
	}

	analysis := &models.GapAnalysis{TotalTopics: len(tallies)}

	for _, topicID := range topicOrder {
		t := tallies[topicID]
		pct := float64(t.correct) / float64(t.total) * 100

		if pct >= cfg.Threshold {
			analysis.StrongTopics = append(analysis.StrongTopics, models.TopicScore{
				TopicID:         topicID,
				TopicName:       t.name,
				TotalQuestions:  t.total,
				CorrectAnswers:  t.correct,
				ScorePercentage: pct,
			})
		} else {
			analysis.WeakTopics = append(analysis.WeakTopics, models.WeakTopic{
				TopicID:         topicID,
				TopicName:       t.name,
				ScorePercentage: pct,
				GapSize:         cfg.Threshold - pct,
				Priority:        priorityFor(pct, cfg),
			})
		}
	}

	// Worst first, for prioritized remediation.
	sort.SliceStable(analysis.WeakTopics, func(a, b int) bool {
		return analysis.WeakTopics[a].ScorePercentage < analysis.WeakTopics[b].ScorePercentage
	})

	if totalQuestions > 0 {
		analysis.OverallReadiness = float64(totalCorrect) / float64(totalQuestions) * 100
	}
	analysis.NeedsStudy = len(analysis.WeakTopics) > 0

	return analysis
}

func priorityFor(pct float64, cfg Config) models.Priority {
	switch {
	case pct < cfg.HighCutoff:
		return models.PriorityHigh
	case pct < cfg.MediumCutoff:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
