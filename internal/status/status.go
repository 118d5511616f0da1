// Package status summarizes how far a workspace's generation has progressed.
package status

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// SectionInfo describes the state of one section.
type SectionInfo struct {
	Key      plan.SectionKey `json:"key"`
	Title    string          `json:"title"`
	Status   plan.Status     `json:"status"`
	Locked   bool            `json:"locked"`
	Complete bool            `json:"complete"`

	// Runnable is true when the section lacks content, is unlocked, and
	// every dependency has content.
	Runnable bool `json:"runnable"`

	// Waiting lists dependencies that have no content yet.
	Waiting []plan.SectionKey `json:"waiting,omitempty"`
}

// Summary is the progress of one workspace.
type Summary struct {
	WorkspaceID string              `json:"workspaceId"`
	Name        string              `json:"name"`
	Sections    []SectionInfo       `json:"sections"`
	Counts      map[plan.Status]int `json:"counts"`
	Complete    int                 `json:"complete"`
	Runnable    []plan.SectionKey   `json:"runnable"`

	// Next is the first runnable section in fixed order, empty when none.
	Next plan.SectionKey `json:"next,omitempty"`

	Issues []Issue `json:"issues,omitempty"`
}

// Done reports whether every section has content.
func (s Summary) Done() bool {
	return s.Complete == plan.SectionCount
}

// Summarize computes the progress summary of ws.
func Summarize(ws plan.Workspace) Summary {
	sum := Summary{
		WorkspaceID: ws.ID,
		Name:        ws.Name,
		Counts:      make(map[plan.Status]int),
		Sections:    make([]SectionInfo, 0, plan.SectionCount),
	}
	for _, d := range plan.Definitions() {
		sec := ws.Get(d.Key)
		info := SectionInfo{
			Key:      d.Key,
			Title:    d.Title,
			Status:   sec.Status,
			Locked:   sec.Locked,
			Complete: sec.HasContent(),
		}
		for _, dep := range d.Requires {
			if !ws.Get(dep).HasContent() {
				info.Waiting = append(info.Waiting, dep)
			}
		}
		info.Runnable = !info.Complete && !info.Locked && len(info.Waiting) == 0 &&
			sec.Status != plan.StatusGenerating

		sum.Counts[sec.Status]++
		if info.Complete {
			sum.Complete++
		}
		if info.Runnable {
			sum.Runnable = append(sum.Runnable, d.Key)
			if sum.Next == "" {
				sum.Next = d.Key
			}
		}
		sum.Sections = append(sum.Sections, info)
	}
	sum.Issues = CheckCoherence(ws)
	return sum
}

// Format renders the summary as a table for terminal output.
func Format(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Idea: %s (%s)\n\n", s.Name, s.WorkspaceID)
	for _, si := range s.Sections {
		marker := "  "
		label := string(si.Status)
		if si.Key == s.Next {
			marker = "->"
			label = "next"
		}
		lock := ""
		if si.Locked {
			lock = " locked"
		}
		fmt.Fprintf(&sb, "  %s %-30s [%s]%s\n", marker, si.Title, label, lock)
	}
	if len(s.Issues) > 0 {
		sb.WriteString("\n  Warnings:\n")
		for _, is := range s.Issues {
			fmt.Fprintf(&sb, "  ! %s\n", is.Description)
		}
	}
	fmt.Fprintf(&sb, "\n  %d/%d complete", s.Complete, plan.SectionCount)
	if s.Done() {
		sb.WriteString(". All sections complete.")
	}
	sb.WriteString("\n")
	return sb.String()
}
