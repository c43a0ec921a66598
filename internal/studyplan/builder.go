package studyplan

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/reteach/backend/internal/models"
)

var priorityRank = map[models.Priority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// Build assembles a study plan from a gap analysis, section mappings
// keyed by topic ID, and resources keyed by topic name. Steps are
// ordered by priority, then by gap size descending, so the student
// starts where the deficit is largest.
func Build(analysis *models.GapAnalysis, mappings models.SectionMapping, resources map[string]models.Resource, studentName, studentEmail string) *models.StudyPlan {
	plan := &models.StudyPlan{
		ID:               uuid.NewString(),
		StudentName:      studentName,
		StudentEmail:     studentEmail,
		OverallReadiness: analysis.OverallReadiness,
	}

	if len(analysis.WeakTopics) == 0 {
		plan.Message = "No weak topics identified. You're well prepared!"
		plan.Steps = []models.StudyStep{}
		return plan
	}

	weak := make([]models.WeakTopic, len(analysis.WeakTopics))
	copy(weak, analysis.WeakTopics)
	sort.SliceStable(weak, func(a, b int) bool {
		ra, rb := priorityRank[weak[a].Priority], priorityRank[weak[b].Priority]
		if ra != rb {
			return ra < rb
		}
		return weak[a].GapSize > weak[b].GapSize
	})

	for i, topic := range weak {
		step := models.StudyStep{
			Order:           i + 1,
			TopicID:         topic.TopicID,
			TopicName:       topic.TopicName,
			Priority:        topic.Priority,
			ScorePercentage: topic.ScorePercentage,
			GapSize:         topic.GapSize,
			Resource:        resources[topic.TopicName],
		}
		for _, section := range mappings[topic.TopicID] {
			label := section.Title
			if section.Number != "" {
				label = fmt.Sprintf("[%s] %s", section.Number, section.Title)
			}
			step.Sections = append(step.Sections,
				fmt.Sprintf("%s (pages %d-%d)", label, section.StartPage, section.EndPage))
		}
		plan.Steps = append(plan.Steps, step)
	}

	return plan
}
