package questions

import "fmt"

// GenerationPrompt builds the MCQ prompt for one topic.
func GenerationPrompt(topic string, count int, courseLevel, difficulty, context string) string {
	levelContext := ""
	if courseLevel != "" {
		levelContext = fmt.Sprintf("Audience: %s. ", courseLevel)
	}
	difficultyContext := ""
	if difficulty != "" {
		difficultyContext = fmt.Sprintf("Target difficulty: %s. ", difficulty)
	}
	contextBlock := ""
	if context != "" {
		contextBlock = fmt.Sprintf("\nUse this course material as grounding:\n%s\n", context)
	}

	return fmt.Sprintf(`Create %d multiple-choice diagnostic questions for the topic: "%s".

%s%s%s
Return ONLY a JSON array of question objects with this EXACT structure:
[
  {
    "id": "q_001",
    "topic": "%s",
    "stem": "Question text here?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "answerIndex": 1,
    "rationale": "Explanation of why option B is correct.",
    "difficulty": "easy",
    "bloom": "remember"
  }
]

Rules:
- Each question must have exactly 1 correct answer and 3 plausible distractors
- answerIndex is 0-based (0 = first option)
- difficulty must be one of: "easy", "med", "hard"
- bloom level must be one of: "remember", "understand", "apply", "analyze", "evaluate", "create"
- stem must be clear and unambiguous
- options should be concise (1-3 words or short phrases when possible)
- rationale should explain WHY the answer is correct
- Use sequential IDs: q_001, q_002, etc.
- Return ONLY the JSON array, no other text or markdown formatting

Generate %d high-quality diagnostic questions now:`, count, topic, levelContext, difficultyContext, contextBlock, topic, count)
}

// SurveyPrompt builds the Yes/No self-assessment prompt for one topic.
func SurveyPrompt(topic string, count int) string {
	return fmt.Sprintf(`Generate %d simple Yes/No diagnostic questions for topic: "%s"

These questions should:
1. Be answerable with just Yes or No
2. Test basic understanding at different levels
3. Be clear and unambiguous
4. Help identify if student knows this topic

Return ONLY a JSON array:
[
  {
    "text": "Do you understand how to...",
    "cognitive_level": "understand"
  }
]

Cognitive levels: remember, understand, apply, analyze`, count, topic)
}
