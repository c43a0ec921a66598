package models

// Section is one textbook section from the table of contents or the
// header scan.
type Section struct {
	Number    string   `json:"section_number,omitempty"`
	Title     string   `json:"title"`
	StartPage int      `json:"page_start"`
	EndPage   int      `json:"page_end"`
	Level     int      `json:"level"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Textbook is an uploaded and parsed textbook.
type Textbook struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TotalPages    int       `json:"total_pages"`
	ParsingMethod string    `json:"parsing_method"`
	Sections      []Section `json:"sections"`
}

// MappedSection is a Section annotated with why the model picked it.
type MappedSection struct {
	Section
	Relevance  string `json:"relevance,omitempty"`
	Confidence string `json:"confidence"`
}

// SectionMapping links one topic to the textbook sections that cover it.
type SectionMapping map[string][]MappedSection
