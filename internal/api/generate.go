package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

// handleGenerate serves POST /generate/{slug}: one stateless section
// generation. Data is the section-shaped content.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	def, ok := plan.BySlug(r.PathValue("slug"))
	if !ok {
		writeEnvelope(w, http.StatusNotFound, Envelope{Error: "unknown section endpoint " + r.PathValue("slug")})
		return
	}

	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("invalid request body: %v", err))
		return
	}
	req.Section = def.Key
	req.Settings = req.Settings.WithDefaults()

	res, err := s.gen.Generate(r.Context(), req)
	if err != nil {
		s.log.Warn("section generation failed", "section", def.Key, "error", err)
		writeError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: res.Content})
}

// handleGenerateAll serves POST /ideas/{id}/generate. Clients that accept
// text/event-stream get progress events followed by the report; everyone
// else gets the report as JSON once the run ends.
func (s *Server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		report, err := s.orch.GenerateAll(r.Context(), store)
		if err != nil && report == nil {
			writeError(w, err)
			return
		}
		s.flush(r.Context(), store)
		writeData(w, http.StatusOK, report)
		return
	}

	if s.orch.Running(store.ID()) || len(s.orch.InFlight(store.ID())) > 0 {
		writeError(w, orchestrator.ErrBusy)
		return
	}
	s.streamGenerateAll(w, r, store)
}

type runResult struct {
	report *orchestrator.Report
	err    error
}

func (s *Server) streamGenerateAll(w http.ResponseWriter, r *http.Request, store *workspace.Store) {
	sw := NewSSEWriter(w)
	sw.Init()

	pr := orchestrator.NewProgressReporter()
	done := make(chan runResult, 1)
	go func() {
		report, err := s.orch.GenerateAll(r.Context(), store, orchestrator.OnProgress(pr.Emit))
		pr.Close()
		done <- runResult{report: report, err: err}
	}()

	for ev := range pr.Subscribe() {
		if err := sw.WriteEvent(EventProgress, ev); err != nil {
			s.log.Debug("progress stream write failed", "workspace", store.ID(), "error", err)
		}
	}

	res := <-done
	s.flush(r.Context(), store)
	if res.report == nil {
		_ = sw.WriteEvent(EventError, Envelope{Error: res.err.Error()})
		return
	}
	_ = sw.WriteEvent(EventReport, res.report)
}

// handleRegenerate serves POST /ideas/{id}/sections/{key}/regenerate.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	store, k, err := s.section(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.orch.RegenerateOne(r.Context(), store, k); err != nil {
		writeError(w, err)
		return
	}
	s.flush(r.Context(), store)
	sec, _ := store.Section(k)
	writeData(w, http.StatusOK, sec)
}

// section resolves the {id} and {key} path values.
func (s *Server) section(r *http.Request) (*workspace.Store, plan.SectionKey, error) {
	k, err := plan.ParseSectionKey(r.PathValue("key"))
	if err != nil {
		return nil, "", badRequest("%v", err)
	}
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, "", err
	}
	return store, k, nil
}

// flush writes generation results now instead of waiting for the debounce.
// A failed write is logged; the store keeps the change and retries on the
// next save.
func (s *Server) flush(ctx context.Context, store *workspace.Store) {
	if err := store.Flush(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("save after generation failed", "workspace", store.ID(), "error", err)
	}
}
