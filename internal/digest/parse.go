package digest

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a digest file read back from disk: its YAML frontmatter plus
// the markdown body. Used by the preview command.
type Document struct {
	Frontmatter map[string]any
	Body        string
}

// Title returns the frontmatter title, if present.
func (d Document) Title() string {
	if v, ok := d.Frontmatter["title"].(string); ok {
		return v
	}
	return ""
}

// Summary returns the frontmatter summary, if present.
func (d Document) Summary() string {
	if v, ok := d.Frontmatter["summary"].(string); ok {
		return v
	}
	return ""
}

// ParseFile reads a digest markdown file and extracts its YAML frontmatter
// and body. Frontmatter is expected at the top of the file between two lines
// containing only "---".
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	peek, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	hasFM := string(peek) == "---"

	var fmBuf strings.Builder
	var bodyBuf strings.Builder

	if hasFM {
		// consume the opening '---' line
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == "---" {
				break
			}
			fmBuf.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
	}
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
	}

	d := Document{Frontmatter: map[string]any{}, Body: bodyBuf.String()}
	if hasFM {
		m := map[string]any{}
		if err := yaml.Unmarshal([]byte(fmBuf.String()), &m); err != nil {
			return Document{}, err
		}
		d.Frontmatter = m
	}
	return d, nil
}
