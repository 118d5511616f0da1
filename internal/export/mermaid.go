package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// statusClasses maps each status to a Mermaid classDef.
var statusClasses = []struct {
	status plan.Status
	style  string
}{
	{plan.StatusEmpty, "fill:#f4f4f5,stroke:#a1a1aa,color:#3f3f46"},
	{plan.StatusGenerating, "fill:#fef9c3,stroke:#ca8a04,color:#713f12"},
	{plan.StatusGenerated, "fill:#dcfce7,stroke:#16a34a,color:#14532d"},
	{plan.StatusEdited, "fill:#dbeafe,stroke:#2563eb,color:#1e3a8a"},
	{plan.StatusError, "fill:#fee2e2,stroke:#dc2626,color:#7f1d1d"},
}

// Mermaid renders the section dependency graph of ws as a Mermaid
// flowchart. Each node is styled by its section's status and locked
// sections carry a lock marker. Edges point from dependency to dependent.
func Mermaid(ws plan.Workspace) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, d := range plan.Definitions() {
		sec := ws.Get(d.Key)
		label := d.Title
		if sec.Locked {
			label += " (locked)"
		}
		fmt.Fprintf(&sb, "  %s[\"%s\"]:::%s\n", d.Key, label, sec.Status)
	}

	for _, d := range plan.Definitions() {
		for _, dep := range d.Requires {
			fmt.Fprintf(&sb, "  %s --> %s\n", dep, d.Key)
		}
	}

	for _, c := range statusClasses {
		fmt.Fprintf(&sb, "  classDef %s %s\n", c.status, c.style)
	}
	return sb.String()
}
