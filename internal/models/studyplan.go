package models

// StudyStep is one ordered remediation step in a study plan. Steps are
// ordered by priority, then by gap size descending.
type StudyStep struct {
	Order           int      `json:"order"`
	TopicID         string   `json:"topic_id"`
	TopicName       string   `json:"topic_name"`
	Priority        Priority `json:"priority"`
	ScorePercentage float64  `json:"score_percentage"`
	GapSize         float64  `json:"gap_size"`
	Sections        []string `json:"sections,omitempty"`
	Resource        Resource `json:"resource"`
}

type StudyPlan struct {
	ID               string      `json:"id"`
	StudentName      string      `json:"student_name,omitempty"`
	StudentEmail     string      `json:"student_email,omitempty"`
	OverallReadiness float64     `json:"overall_readiness"`
	Steps            []StudyStep `json:"steps"`
	Message          string      `json:"message,omitempty"`
}
