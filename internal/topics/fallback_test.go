package topics

import (
	"fmt"
	"strings"
	"testing"
)

func TestFallbackFromHeadings_Markdown(t *testing.T) {
	text := "# Algebra\n# Calculus\n# Statistics"

	topics := FallbackFromHeadings(text)
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(topics))
	}

	want := []string{"Algebra", "Calculus", "Statistics"}
	for i, topic := range topics {
		if topic.Name != want[i] {
			t.Errorf("topic %d: expected %q, got %q", i, want[i], topic.Name)
		}
		if topic.Weight != 1.0 {
			t.Errorf("topic %d: expected default weight 1.0, got %.2f", i, topic.Weight)
		}
		if len(topic.Prereqs) != 0 {
			t.Errorf("topic %d: expected empty prereqs, got %v", i, topic.Prereqs)
		}
		if topic.ID != fmt.Sprintf("t_%03d", i+1) {
			t.Errorf("topic %d: unexpected id %s", i, topic.ID)
		}
	}
}

func TestFallbackFromHeadings_NumberedAndColon(t *testing.T) {
	text := "1. Linear Equations\n2. Quadratic Functions\nUnit Overview: covers the basics\nsome prose that is not a heading."

	topics := FallbackFromHeadings(text)
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d: %v", len(topics), topics)
	}
	if topics[0].Name != "Linear Equations" {
		t.Errorf("unexpected first topic: %q", topics[0].Name)
	}
	if topics[2].Name != "Unit Overview" {
		t.Errorf("expected colon heading stripped of trailing colon, got %q", topics[2].Name)
	}
}

func TestFallbackFromHeadings_DedupeCaseInsensitive(t *testing.T) {
	text := "# Algebra\n# ALGEBRA\n# algebra"

	topics := FallbackFromHeadings(text)
	if len(topics) != 1 {
		t.Errorf("expected case-insensitive dedupe to 1 topic, got %d", len(topics))
	}
}

func TestFallbackFromHeadings_CapAtEight(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "# Topic Number %d\n", i)
	}

	topics := FallbackFromHeadings(b.String())
	if len(topics) != 8 {
		t.Errorf("expected cap at 8 topics, got %d", len(topics))
	}
}

func TestFallbackFromHeadings_Sentinel(t *testing.T) {
	topics := FallbackFromHeadings("just a paragraph of prose with no structure at all")
	if len(topics) != 1 {
		t.Fatalf("expected 1 sentinel topic, got %d", len(topics))
	}
	if topics[0].Name != "General Concepts" {
		t.Errorf("expected sentinel topic, got %q", topics[0].Name)
	}
}
