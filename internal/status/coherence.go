package status

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// codeBlockRe matches fenced code blocks (``` ... ```).
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// depVersionRe matches patterns like "React 18.2", "Go 1.22.3", "node v20.x"
// or "PostgreSQL 16.1": a word followed by an optional 'v' and a version.
var depVersionRe = regexp.MustCompile(`(?i)\b([A-Za-z][A-Za-z0-9_.-]*)\s+v?(\d+\.\d+(?:\.\d+)?(?:\.x)?)\b`)

// Issue is a contradiction between two sections with content.
type Issue struct {
	SectionA    plan.SectionKey `json:"sectionA"`
	SectionB    plan.SectionKey `json:"sectionB"`
	Description string          `json:"description"`
}

// CheckCoherence scans the text of every section with content for
// technology mentions carrying a version number, and reports each
// technology named with different versions in different sections. Fenced
// code blocks are ignored.
func CheckCoherence(ws plan.Workspace) []Issue {
	// name -> version -> sections, in fixed section order.
	depVersions := make(map[string]map[string][]plan.SectionKey)

	for _, sec := range ws.Sections {
		if !sec.HasContent() {
			continue
		}
		cleaned := codeBlockRe.ReplaceAllString(sectionText(sec.Content), "")

		seen := make(map[string]bool)
		for _, m := range depVersionRe.FindAllStringSubmatch(cleaned, -1) {
			name, version := strings.ToLower(m[1]), m[2]
			if seen[name+"@"+version] {
				continue
			}
			seen[name+"@"+version] = true

			if depVersions[name] == nil {
				depVersions[name] = make(map[string][]plan.SectionKey)
			}
			depVersions[name][version] = append(depVersions[name][version], sec.Key)
		}
	}

	names := make([]string, 0, len(depVersions))
	for name, versions := range depVersions {
		if len(versions) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var issues []Issue
	for _, name := range names {
		versions := make([]string, 0, len(depVersions[name]))
		for v := range depVersions[name] {
			versions = append(versions, v)
		}
		sort.Strings(versions)

		for i := 0; i < len(versions); i++ {
			for j := i + 1; j < len(versions); j++ {
				a, b := depVersions[name][versions[i]], depVersions[name][versions[j]]
				issues = append(issues, Issue{
					SectionA: a[0],
					SectionB: b[0],
					Description: fmt.Sprintf("%q has conflicting versions: %s (in %s) vs %s (in %s)",
						name, versions[i], joinKeys(a), versions[j], joinKeys(b)),
				})
			}
		}
	}
	return issues
}

// sectionText joins every string value in a section's JSON content, one per
// line. Content that is not valid JSON is scanned as-is.
func sectionText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	var sb strings.Builder
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case string:
			sb.WriteString(x)
			sb.WriteByte('\n')
		case []any:
			for _, e := range x {
				walk(e)
			}
		case map[string]any:
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(x[k])
			}
		}
	}
	walk(v)
	return sb.String()
}

func joinKeys(keys []plan.SectionKey) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}
