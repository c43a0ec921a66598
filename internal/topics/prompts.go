package topics

import "fmt"

const prereqSyllabusLimit = 3000

// ExtractionPrompt builds the primary topic-extraction prompt. The
// model is asked for prerequisite knowledge only, never in-course
// content, against a strict JSON schema.
func ExtractionPrompt(syllabusText, courseLevel string) string {
	levelContext := ""
	if courseLevel != "" {
		levelContext = fmt.Sprintf("Educational level: %s. ", courseLevel)
	}

	return fmt.Sprintf(`Extract 5-8 prerequisite topics from this syllabus. %s

Return ONLY a JSON array of objects with this exact structure:
[
  {
    "id": "t_001",
    "name": "Topic Name",
    "weight": 1.2,
    "prereqs": ["t_000"]
  }
]

Rules:
- Extract PREREQUISITE knowledge students need BEFORE the course, not in-course content
- Use IDs like "t_001", "t_002", etc.
- Prefer core concepts over minor details
- Weight represents importance (0.5 to 2.0, default 1.0)
- prereqs is an array of prerequisite topic IDs
- Avoid duplicates
- Return ONLY the JSON array, no other text

Syllabus text:
%s`, levelContext, syllabusText)
}

// PrerequisitesPrompt asks for the named prerequisite courses or skills
// the syllabus mentions.
func PrerequisitesPrompt(syllabusText string) string {
	if len(syllabusText) > prereqSyllabusLimit {
		syllabusText = syllabusText[:prereqSyllabusLimit]
	}

	return fmt.Sprintf(`Extract the prerequisite topics/skills mentioned in this course syllabus.

Syllabus:
%s

Task: Identify what prior knowledge or courses students need before taking this course.

Common prerequisites include:
- Math: Algebra, Geometry, Trigonometry, Calculus, Statistics
- Science: Physics, Chemistry, Biology
- Skills: Programming, Lab work, Writing

Return ONLY this JSON (no other text):
{
  "prerequisites": ["Algebra", "Calculus", "Scientific Notation"]
}

If no prerequisites are mentioned, return empty array.`, syllabusText)
}
