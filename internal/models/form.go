package models

import "time"

// Form is a published diagnostic, addressable by slug.
type Form struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	CourseID  string     `json:"course_id,omitempty"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
}

// PublicForm is the student-facing view of a form. Answer indices and
// rationales are stripped so the page source never leaks the key.
type PublicForm struct {
	ID        string           `json:"id"`
	Slug      string           `json:"slug"`
	Title     string           `json:"title"`
	Questions []PublicQuestion `json:"questions"`
}

type PublicQuestion struct {
	ID      string   `json:"id"`
	Topic   string   `json:"topic"`
	Stem    string   `json:"stem"`
	Options []string `json:"options"`
}

// PublicView strips answer keys and rationales for student delivery.
func (f *Form) PublicView() PublicForm {
	pub := PublicForm{
		ID:        f.ID,
		Slug:      f.Slug,
		Title:     f.Title,
		Questions: make([]PublicQuestion, 0, len(f.Questions)),
	}
	for _, q := range f.Questions {
		pub.Questions = append(pub.Questions, PublicQuestion{
			ID:      q.ID,
			Topic:   q.Topic,
			Stem:    q.Stem,
			Options: q.Options,
		})
	}
	return pub
}

// ── Request/Response Types ────────────────────────────────

type CreateFormRequest struct {
	Title     string     `json:"title"`
	CourseID  string     `json:"course_id,omitempty"`
	Questions []Question `json:"questions"`
}

type SubmitFormRequest struct {
	StudentName  string         `json:"student_name"`
	StudentEmail string         `json:"student_email"`
	Answers      map[string]int `json:"answers"`
}

// SubmitFormResponse carries the server-side grading result. Per-question
// correctness is returned but answer keys themselves are not echoed back.
type SubmitFormResponse struct {
	SubmissionID string       `json:"submission_id"`
	Score        int          `json:"score"`
	Total        int          `json:"total"`
	Percentage   float64      `json:"percentage"`
	Analysis     *GapAnalysis `json:"analysis,omitempty"`
}

// Submission is a stored form submission with graded answers.
type Submission struct {
	ID           string         `json:"id"`
	FormID       string         `json:"form_id"`
	StudentName  string         `json:"student_name"`
	StudentEmail string         `json:"student_email"`
	Answers      map[string]int `json:"answers"`
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}
