package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postsync-curator/internal/model"
)

func TestRenderAndParseRoundTrip(t *testing.T) {
	d := Data{
		Title:    "AI Daily 2026-03-01",
		Slug:     "ai-daily-20260301",
		Datetime: "2026-03-01 12:00",
		Summary:  "Top stories of the day.",
		Preface:  "Good morning.",
		Items: []Item{
			{
				Title:     "AI startup raises $10M",
				URL:       "https://example.com/a",
				Score:     83.2,
				Breakdown: model.ScoreBreakdown{Upvotes: 0.85, Comments: 0.85, Recency: 0.92, Keywords: 0.67},
				Upvotes:   200,
				Comments:  50,
				Published: "2026-03-01 10:00",
			},
		},
		Postscript: "See you tomorrow.",
	}

	md, err := Render(d)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"## [AI startup raises $10M](https://example.com/a)",
		"relevance: 83.2",
		"200 upvotes, 50 comments",
		"Good morning.",
		"See you tomorrow.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rendered digest missing %q:\n%s", want, md)
		}
	}

	tmp := t.TempDir()
	path := filepath.Join(tmp, "digest.md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title() != "AI Daily 2026-03-01" {
		t.Errorf("frontmatter title mismatch: %q", doc.Title())
	}
	if doc.Summary() != "Top stories of the day." {
		t.Errorf("frontmatter summary mismatch: %q", doc.Summary())
	}
	if !strings.Contains(doc.Body, "## [AI startup raises $10M]") {
		t.Errorf("body missing item heading: %q", doc.Body)
	}
}

func TestParseFileWithoutFrontmatter(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "plain.md")
	body := "# Hello\n\nNo frontmatter here.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got: %+v", doc.Frontmatter)
	}
	if doc.Body != body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", body, doc.Body)
	}
}

func TestExpandVars(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := ExpandVars("{.Channel} digest for {.CurrentDate}", "ai-daily", now)
	if got != "ai-daily digest for 2026-03-01" {
		t.Errorf("unexpected expansion: %q", got)
	}
	if out := ExpandVars("  ", "x", now); out != "  " {
		t.Errorf("blank strings pass through, got %q", out)
	}
}
