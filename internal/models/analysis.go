package models

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// AnswerRecord is one graded answer tagged with the topic it tested.
type AnswerRecord struct {
	TopicID   string `json:"topic_id"`
	TopicName string `json:"topic_name"`
	Correct   bool   `json:"correct"`
}

// TopicScore is the aggregate correctness for one topic.
type TopicScore struct {
	TopicID         string  `json:"topic_id"`
	TopicName       string  `json:"topic_name"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
}

// WeakTopic is a topic scoring below the mastery threshold.
type WeakTopic struct {
	TopicID         string   `json:"topic_id"`
	TopicName       string   `json:"topic_name"`
	ScorePercentage float64  `json:"score_percentage"`
	GapSize         float64  `json:"gap_size"`
	Priority        Priority `json:"priority"`
}

// GapAnalysis is the complete knowledge-gap picture for one submission.
type GapAnalysis struct {
	TotalTopics      int          `json:"total_topics"`
	StrongTopics     []TopicScore `json:"strong_topics"`
	WeakTopics       []WeakTopic  `json:"weak_topics"`
	OverallReadiness float64      `json:"overall_readiness"`
	NeedsStudy       bool         `json:"needs_study"`
}

// Resource is a remediation pointer for one topic.
type Resource struct {
	KhanAcademyURL string `json:"khan_academy_url"`
	TextbookPages  string `json:"textbook_pages"`
	Description    string `json:"description"`
}
