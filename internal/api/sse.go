package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Event names on the generation stream.
const (
	EventProgress = "progress"
	EventReport   = "report"
	EventError    = "error"
)

// SSEWriter writes Server-Sent Events to an http.ResponseWriter.
// Call Init once before writing any events to set the required headers.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter wraps w. Without http.Flusher, writes may be buffered.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	f, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: f}
}

// Init sets the SSE response headers and flushes them to the client.
func (sw *SSEWriter) Init() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.w.WriteHeader(http.StatusOK)
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
}

// WriteEvent serializes v as JSON and writes one named event:
//
//	event: name
//	data: {json}
func (sw *SSEWriter) WriteEvent(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("sse: write event: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// Event is one parsed Server-Sent Event. Err is set when the stream carried
// a frame that could not be read.
type Event struct {
	Name string
	Data json.RawMessage
	Err  error
}

// ReadEvents parses SSE frames from body and delivers them on the returned
// channel. The channel is closed when the body is exhausted or ctx is done;
// body is closed when reading finishes. Frames without an event field are
// named "message". Comment lines and unknown fields are ignored.
func ReadEvents(ctx context.Context, body io.ReadCloser) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		var (
			name string
			data strings.Builder
		)
		flush := func() bool {
			if data.Len() == 0 {
				name = ""
				return true
			}
			ok := emit(ctx, ch, name, data.String())
			name = ""
			data.Reset()
			return ok
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					send(ctx, ch, Event{Err: fmt.Errorf("sse: read: %w", err)})
					return
				}
				flush()
				return
			}

			line := scanner.Text()
			switch {
			case line == "":
				if !flush() {
					return
				}
			case strings.HasPrefix(line, ":"):
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				payload := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(payload)
			}
		}
	}()
	return ch
}

// emit sends one frame, checking that its payload is JSON.
func emit(ctx context.Context, ch chan<- Event, name, raw string) bool {
	if name == "" {
		name = "message"
	}
	ev := Event{Name: name, Data: json.RawMessage(raw)}
	if !json.Valid(ev.Data) {
		ev = Event{Name: name, Err: fmt.Errorf("sse: %s event is not JSON", name)}
	}
	return send(ctx, ch, ev)
}

func send(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
