// Package export renders a workspace as markdown, HTML, JSON, or a Mermaid
// diagram of its section graph.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatMermaid  Format = "mermaid"
)

// ParseFormat accepts a format name or a common alias ("md", "htm").
// Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	default:
		return "", fmt.Errorf("export: unknown format %q", s)
	}
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension is the file extension of the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	case FormatMermaid:
		return "mmd"
	default:
		return "md"
	}
}

// Render exports ws in format f. now stamps the JSON export.
func Render(ws plan.Workspace, f Format, now time.Time) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		md, err := Markdown(ws)
		if err != nil {
			return nil, err
		}
		return []byte(md), nil
	case FormatHTML:
		return HTML(ws)
	case FormatJSON:
		return JSON(ws, now)
	case FormatMermaid:
		return []byte(Mermaid(ws)), nil
	default:
		return nil, fmt.Errorf("export: unknown format %q", f)
	}
}

// Filename suggests a file name for the export of ws.
func Filename(ws plan.Workspace, f Format) string {
	slug := slugify(ws.Name)
	if slug == "" {
		slug = "idea"
	}
	return slug + "." + f.Extension()
}

func slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
