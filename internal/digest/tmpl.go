package digest

import (
	"bytes"
	_ "embed"
	"text/template"

	"postsync-curator/internal/model"
)

// Item is one ranked candidate rendered into a digest.
type Item struct {
	Title     string
	URL       string
	Blurb     string // optional AI-written one-liner
	Score     float64
	Breakdown model.ScoreBreakdown
	Upvotes   int
	Comments  int
	Published string
}

// Data is everything the digest template needs.
type Data struct {
	Title      string
	Slug       string
	Datetime   string
	Summary    string
	Preface    string
	Postscript string
	Items      []Item
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(digestTpl))

// Render produces the digest markdown with YAML frontmatter.
func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
