package models

import "fmt"

type CognitiveLevel string

const (
	CognitiveRemember   CognitiveLevel = "remember"
	CognitiveUnderstand CognitiveLevel = "understand"
	CognitiveApply      CognitiveLevel = "apply"
	CognitiveAnalyze    CognitiveLevel = "analyze"
	CognitiveEvaluate   CognitiveLevel = "evaluate"
	CognitiveCreate     CognitiveLevel = "create"
)

var ValidCognitiveLevels = map[CognitiveLevel]bool{
	CognitiveRemember:   true,
	CognitiveUnderstand: true,
	CognitiveApply:      true,
	CognitiveAnalyze:    true,
	CognitiveEvaluate:   true,
	CognitiveCreate:     true,
}

// SurveyAnswerOptions is the fixed self-assessment scale every survey
// question is answered on.
var SurveyAnswerOptions = []string{"Yes", "Maybe", "No"}

// SurveyQuestion is a self-assessment question answered on the fixed
// Yes/Maybe/No scale.
type SurveyQuestion struct {
	ID             string         `json:"id"`
	TopicID        string         `json:"topic_id"`
	Text           string         `json:"text"`
	CognitiveLevel CognitiveLevel `json:"cognitive_level"`
}

func (q *SurveyQuestion) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("empty survey question id")
	}
	if q.TopicID == "" {
		return fmt.Errorf("survey question %s: empty topic_id", q.ID)
	}
	if len(q.Text) < 5 {
		return fmt.Errorf("survey question %s: text too short", q.ID)
	}
	if !ValidCognitiveLevels[q.CognitiveLevel] {
		return fmt.Errorf("survey question %s: invalid cognitive_level %q", q.ID, q.CognitiveLevel)
	}
	return nil
}

type Survey struct {
	ID             string           `json:"id"`
	CourseID       string           `json:"course_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Questions      []SurveyQuestion `json:"questions"`
	TotalQuestions int              `json:"total_questions"`
}

// ── Request/Response Types ────────────────────────────────

type GenerateSurveyRequest struct {
	Topics            []string `json:"topics"`
	CourseID          string   `json:"course_id,omitempty"`
	QuestionsPerTopic int      `json:"questions_per_topic"`
}

type GenerateSurveyResponse struct {
	Survey Survey `json:"survey"`
}
