package export

import (
	"bytes"
	"fmt"
	"html"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// The converter is configured once and safe to share between calls.
var (
	markdownConverter     goldmark.Markdown
	markdownConverterOnce sync.Once
)

func converter() goldmark.Markdown {
	markdownConverterOnce.Do(func() {
		markdownConverter = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return markdownConverter
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
pre { background: #f5f5f5; padding: 0.75rem; overflow-x: auto; white-space: pre-wrap; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
`

const htmlFoot = "</body>\n</html>\n"

// HTML renders the markdown document of ws as a standalone HTML page.
func HTML(ws plan.Workspace) ([]byte, error) {
	md, err := Markdown(ws)
	if err != nil {
		return nil, err
	}
	title := ws.Name
	if title == "" {
		title = "Product Idea"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlHead, html.EscapeString(title))
	if err := converter().Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("export: render html: %w", err)
	}
	buf.WriteString(htmlFoot)
	return buf.Bytes(), nil
}
