package models

type CourseLevel string

const (
	LevelHighSchool    CourseLevel = "hs"
	LevelUndergraduate CourseLevel = "ug"
	LevelGraduate      CourseLevel = "grad"
)

var ValidCourseLevels = map[CourseLevel]bool{
	LevelHighSchool:    true,
	LevelUndergraduate: true,
	LevelGraduate:      true,
}

// Topic is a unit of prerequisite or course knowledge extracted from a
// syllabus. IDs follow the "t_NNN" pattern and prereqs reference only
// IDs present in the same batch.
type Topic struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Weight  float64  `json:"weight"`
	Prereqs []string `json:"prereqs"`
}

// ── Request/Response Types ────────────────────────────────

type ParseTopicsRequest struct {
	SyllabusText string       `json:"syllabus_text"`
	CourseID     string       `json:"course_id,omitempty"`
	CourseLevel  *CourseLevel `json:"course_level,omitempty"`
}

type ParseTopicsResponse struct {
	Topics        []Topic  `json:"topics"`
	Prerequisites []string `json:"prerequisites"`
}
