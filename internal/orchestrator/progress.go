package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// ProgressStatus is the state a progress event reports for a section.
type ProgressStatus int

const (
	ProgressPending ProgressStatus = iota
	ProgressWorking
	ProgressComplete
	ProgressFailed
	ProgressSkipped
)

func (s ProgressStatus) String() string {
	switch s {
	case ProgressPending:
		return "pending"
	case ProgressWorking:
		return "working"
	case ProgressComplete:
		return "complete"
	case ProgressFailed:
		return "failed"
	case ProgressSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s ProgressStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *ProgressStatus) UnmarshalText(b []byte) error {
	for st := ProgressPending; st <= ProgressSkipped; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("orchestrator: unknown progress status %q", b)
}

// ProgressEvent reports a section's progress during a run.
type ProgressEvent struct {
	WorkspaceID string          `json:"workspaceId"`
	Section     plan.SectionKey `json:"section"`
	Status      ProgressStatus  `json:"status"`
	Message     string          `json:"message,omitempty"`
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event without blocking.
// If the channel is full, the event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	title := string(event.Section)
	if d, ok := plan.Lookup(event.Section); ok {
		title = d.Title
	}
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", title)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", title)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s (%s)", title, event.Message)
		}
		return fmt.Sprintf("  ✓ %s complete", title)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", title, event.Message)
	case ProgressSkipped:
		return fmt.Sprintf("  - %s skipped: %s", title, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", title)
	}
}

// FormatReport formats a finished run as a one-line summary.
func FormatReport(r *Report) string {
	return fmt.Sprintf("%d generated, %d failed, %d skipped, %d already present, %d locked",
		len(r.Succeeded), len(r.Failed), len(r.Skipped), len(r.Reused), len(r.Locked))
}
