package textbook

import (
	"testing"
)

func TestParseTOCText_ChapterEntries(t *testing.T) {
	text := `Table of Contents
Chapter 1: Introduction to Mechanics .................... 12
Chapter 2: Kinematics in One Dimension .................. 34
Chapter 3: Vectors and Projectile Motion ................ 58`

	entries := ParseTOCText(text)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Number != "1" {
		t.Errorf("expected section number 1, got %q", first.Number)
	}
	if first.Title != "Introduction to Mechanics" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.StartPage != 12 {
		t.Errorf("expected start page 12, got %d", first.StartPage)
	}
	if first.Level != 1 {
		t.Errorf("expected level 1, got %d", first.Level)
	}
}

func TestParseTOCText_SubsectionLevels(t *testing.T) {
	text := `1.1 Displacement and Velocity    15
1.2 Acceleration    22`

	entries := ParseTOCText(text)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != 2 {
		t.Errorf("expected level 2 for 1.1, got %d", entries[0].Level)
	}
	if entries[0].StartPage != 15 || entries[1].StartPage != 22 {
		t.Errorf("unexpected pages: %d, %d", entries[0].StartPage, entries[1].StartPage)
	}
}

func TestParseTOCText_IgnoresShortLines(t *testing.T) {
	entries := ParseTOCText("hi\n1. x 3\nplain prose without any structure")
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestExtractTOC_RequiresMinimumEntries(t *testing.T) {
	pages := []string{
		"Contents\nChapter 1: Motion ..... 10\nChapter 2: Forces ..... 30",
	}
	if sections := extractTOC(pages); sections != nil {
		t.Errorf("expected nil for fewer than %d entries, got %d", minTOCEntries, len(sections))
	}
}

func TestExtractTOC_FillsEndPages(t *testing.T) {
	pages := []string{
		`Contents
Chapter 1: Motion .......... 10
Chapter 2: Forces .......... 30
Chapter 3: Energy .......... 55
Chapter 4: Momentum .......... 80
Chapter 5: Rotation .......... 105`,
	}

	sections := extractTOC(pages)
	if sections == nil {
		t.Fatal("expected a valid table of contents")
	}
	if sections[0].EndPage != 29 {
		t.Errorf("expected first section to end at 29, got %d", sections[0].EndPage)
	}
	last := sections[len(sections)-1]
	if last.EndPage != last.StartPage+lastSectionPad {
		t.Errorf("expected padded end page for last section, got %d", last.EndPage)
	}
}

func TestIsLikelyHeader(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"CHAPTER SUMMARY", true},
		{"Chapter 3", true},
		{"1.2 Conservation of Energy", true},
		{"Section 4: Waves", true},
		{"The Physics of Everyday Motion", true},
		{"all lowercase prose that keeps going on and on", false},
		{"tiny", false},
	}
	for _, c := range cases {
		if got := IsLikelyHeader(c.line); got != c.want {
			t.Errorf("IsLikelyHeader(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestScanForHeaders(t *testing.T) {
	pages := []string{
		"CHAPTER ONE MOTION\nsome body text here that is plainly prose and stays lowercase throughout the page",
		"more lowercase body text continuing the chapter without any headers at all on this page",
		"CHAPTER TWO FORCES\nbody text again in the same lowercase style as before",
	}

	sections := ScanForHeaders(pages, 50)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].StartPage != 1 || sections[0].EndPage != 2 {
		t.Errorf("unexpected first section range: %d-%d", sections[0].StartPage, sections[0].EndPage)
	}
	if sections[1].StartPage != 3 || sections[1].EndPage != 3 {
		t.Errorf("unexpected second section range: %d-%d", sections[1].StartPage, sections[1].EndPage)
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("The Conservation of Energy and Momentum")
	want := []string{"conservation", "energy", "momentum"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], keywords[i])
		}
	}
}
