package textbook

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/reteach/backend/internal/models"
)

const (
	tocScanPages   = 20
	headerScanMax  = 50
	minTOCEntries  = 5
	lastSectionPad = 10
)

// ExtractText pulls plain text from every page of a PDF, joined with
// blank lines the way syllabus text arrives from a paste.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	log.Printf("[pdf] extracting text from %d pages", total)

	var parts []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("WARN: [pdf] page %d text extraction failed: %v", i, err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// ParseStructure derives a section list for a textbook: a table of
// contents parse when one is found in the first pages, a header scan
// otherwise.
func ParseStructure(path string) (*models.Textbook, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	log.Printf("[textbook] analyzing structure of %q (%d pages)", title, total)

	pages := pageTexts(r, total)

	if sections := extractTOC(pages); sections != nil {
		log.Printf("[textbook] found table of contents with %d entries", len(sections))
		return &models.Textbook{
			Title:         title,
			TotalPages:    total,
			ParsingMethod: "toc",
			Sections:      sections,
		}, nil
	}

	log.Printf("[textbook] no table of contents, scanning pages for headers")
	sections := ScanForHeaders(pages, headerScanMax)
	return &models.Textbook{
		Title:         title,
		TotalPages:    total,
		ParsingMethod: "headers",
		Sections:      sections,
	}, nil
}

func pageTexts(r *pdf.Reader, total int) []string {
	limit := total
	if limit > headerScanMax {
		limit = headerScanMax
	}
	texts := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// ── Table of Contents ──────────────────────────────────────

var tocKeywords = []string{"table of contents", "contents", "overview"}

var tocPatterns = []*regexp.Regexp{
	// "Chapter 1: Title .... 10" or "1. Title .... 10"
	regexp.MustCompile(`(?i)(?:Chapter\s+)?(\d+(?:\.\d+)*)[:.\s]+([^.]{3,}?)[\s.]{2,}(\d+)`),
	// "1.1 Title    page 10" or "1.1 Title (10)"
	regexp.MustCompile(`(?i)(\d+\.\d+)\s+([^(\n]{3,}?)[\s(]*(?:page\s+)?(\d+)`),
	// "Chapter 1    10"
	regexp.MustCompile(`(?i)(?:Chapter\s+)?(\d+)\s+([^0-9\n]{5,}?)\s+(\d+)$`),
}

var dotLeaderRun = regexp.MustCompile(`[\s.]{3,}`)

// extractTOC looks for a table of contents in the first pages. Fewer
// than 5 valid entries means the ToC guess was wrong and the caller
// falls back to header scanning.
func extractTOC(pages []string) []models.Section {
	var entries []models.Section

	limit := len(pages)
	if limit > tocScanPages {
		limit = tocScanPages
	}

	for i := 0; i < limit; i++ {
		pageNum := i + 1
		text := pages[i]
		if text == "" {
			continue
		}

		lower := strings.ToLower(text)
		isTOCPage := false
		for _, kw := range tocKeywords {
			if strings.Contains(lower, kw) {
				isTOCPage = true
				break
			}
		}

		if isTOCPage || pageNum > 2 {
			entries = append(entries, ParseTOCText(text)...)
		}
	}

	var valid []models.Section
	for _, e := range entries {
		if e.StartPage > 0 && len(e.Title) > 2 {
			valid = append(valid, e)
		}
	}
	if len(valid) < minTOCEntries {
		return nil
	}

	fillEndPages(valid)
	return valid
}

// ParseTOCText extracts section entries from one page of ToC text.
func ParseTOCText(text string) []models.Section {
	var entries []models.Section

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 {
			continue
		}

		for _, pattern := range tocPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			number := match[1]
			title := strings.TrimSpace(dotLeaderRun.ReplaceAllString(match[2], " "))
			page, err := strconv.Atoi(match[3])
			if err != nil || len(title) <= 2 {
				break
			}

			entries = append(entries, models.Section{
				Number:    number,
				Title:     title,
				StartPage: page,
				Level:     strings.Count(number, ".") + 1,
				Keywords:  ExtractKeywords(title),
			})
			break
		}
	}

	return entries
}

func fillEndPages(sections []models.Section) {
	for i := 0; i < len(sections)-1; i++ {
		sections[i].EndPage = sections[i+1].StartPage - 1
	}
	if len(sections) > 0 {
		last := &sections[len(sections)-1]
		last.EndPage = last.StartPage + lastSectionPad
	}
}

// ── Header Scan Fallback ───────────────────────────────────

var (
	chapterPrefix = regexp.MustCompile(`(?i)^Chapter\s+\d+`)
	sectionPrefix = regexp.MustCompile(`^(?:Section\s+)?\d+(?:\.\d+)*[.:\s]`)
)

// ScanForHeaders walks page text looking for header-like lines and
// turns each into a section spanning up to the next header.
func ScanForHeaders(pages []string, maxPages int) []models.Section {
	var sections []models.Section
	var current *models.Section
	counter := 1

	limit := len(pages)
	if limit > maxPages {
		limit = maxPages
	}

	for i := 0; i < limit; i++ {
		pageNum := i + 1
		for _, line := range strings.Split(pages[i], "\n") {
			line = strings.TrimSpace(line)
			if len(line) < 5 || !IsLikelyHeader(line) {
				continue
			}

			if current != nil {
				current.EndPage = pageNum - 1
				sections = append(sections, *current)
			}

			title := line
			if len(title) > 100 {
				title = title[:100]
			}
			current = &models.Section{
				Number:    strconv.Itoa(counter),
				Title:     title,
				StartPage: pageNum,
				Level:     1,
				Keywords:  ExtractKeywords(title),
			}
			counter++
		}
	}

	if current != nil {
		current.EndPage = limit
		sections = append(sections, *current)
	}
	return sections
}

// IsLikelyHeader applies cheap heuristics to decide whether a line is a
// chapter or section header.
func IsLikelyHeader(line string) bool {
	if line == strings.ToUpper(line) && line != strings.ToLower(line) && len(line) > 5 && len(line) < 60 {
		return true
	}
	if chapterPrefix.MatchString(line) {
		return true
	}
	if sectionPrefix.MatchString(line) {
		return true
	}
	if len(line) > 10 && len(line) < 80 && line != strings.ToLower(line) {
		return true
	}
	return false
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// ExtractKeywords pulls up to 10 content words from a section title.
func ExtractKeywords(title string) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(title), " ")

	var keywords []string
	for _, w := range strings.Fields(clean) {
		if len(w) > 2 && !stopWords[w] {
			keywords = append(keywords, w)
			if len(keywords) == 10 {
				break
			}
		}
	}
	return keywords
}
