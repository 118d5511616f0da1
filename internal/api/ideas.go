package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dusk-indust/ideaforge/internal/export"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/status"
	"github.com/dusk-indust/ideaforge/internal/templates"
)

// CreateIdeaRequest is the body of POST /ideas. Template seeds name, idea
// text and tech stack; explicit fields override it.
type CreateIdeaRequest struct {
	Name     string              `json:"name,omitempty"`
	RawIdea  string              `json:"rawIdea,omitempty"`
	Settings *plan.SettingsPatch `json:"settings,omitempty"`
	Template string              `json:"template,omitempty"`
}

// UpdateIdeaRequest is the body of PATCH /ideas/{id}.
type UpdateIdeaRequest struct {
	Name     *string             `json:"name,omitempty"`
	RawIdea  *string             `json:"rawIdea,omitempty"`
	Settings *plan.SettingsPatch `json:"settings,omitempty"`
}

// LockRequest is the body of POST /ideas/{id}/sections/{key}/lock.
type LockRequest struct {
	Locked bool `json:"locked"`
}

// EditSectionRequest is the body of PUT /ideas/{id}/sections/{key}.
type EditSectionRequest struct {
	Content json.RawMessage `json:"content"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := templates.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, ts)
}

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	list, err := s.ideas.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ws := plan.NewWorkspace(s.now())
	ws.Settings = s.defaults
	if req.Template != "" {
		tpl, err := templates.Get(req.Template)
		if err != nil {
			writeError(w, badRequest("%v", err))
			return
		}
		tpl.Apply(&ws)
	}
	if req.Name != "" {
		ws.Name = req.Name
	}
	if req.RawIdea != "" {
		ws.RawIdea = req.RawIdea
	}
	if req.Settings != nil {
		ws.Settings = req.Settings.Apply(ws.Settings)
	}
	if err := ws.Settings.Validate(); err != nil {
		writeError(w, badRequest("%v", err))
		return
	}

	store, err := s.ideas.Create(r.Context(), ws)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("idea created", "workspace", store.ID(), "template", req.Template)
	writeData(w, http.StatusCreated, store.Snapshot())
}

func (s *Server) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	var req UpdateIdeaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Settings != nil {
		if err := store.SetSettings(*req.Settings); err != nil {
			writeError(w, badRequest("%v", err))
			return
		}
	}
	if req.Name != nil {
		store.SetName(*req.Name)
	}
	if req.RawIdea != nil {
		store.SetRawIdea(*req.RawIdea)
	}
	writeData(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.orch.Running(id) || len(s.orch.InFlight(id)) > 0 {
		writeError(w, fmt.Errorf("cannot delete %s: %w", id, errRunning))
		return
	}
	if err := s.ideas.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.session.Forget(id)
	s.log.Info("idea deleted", "workspace", id)
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

// IdeaStatus is the body of GET /ideas/{id}/status.
type IdeaStatus struct {
	status.Summary
	Running    bool              `json:"running"`
	Generating []plan.SectionKey `json:"generating,omitempty"`
}

func (s *Server) handleIdeaStatus(w http.ResponseWriter, r *http.Request) {
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, IdeaStatus{
		Summary:    status.Summarize(store.Snapshot()),
		Running:    s.orch.Running(store.ID()),
		Generating: s.orch.InFlight(store.ID()),
	})
}

// handleEditSection stores user-edited content. The content must decode
// into the section's shape.
func (s *Server) handleEditSection(w http.ResponseWriter, r *http.Request) {
	var req EditSectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	store, k, err := s.section(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := plan.DecodeContent(k, req.Content); err != nil {
		writeError(w, badRequest("%s content: %v", k, err))
		return
	}
	if err := store.EditSectionContent(k, req.Content); err != nil {
		writeError(w, badRequest("%v", err))
		return
	}
	sec, _ := store.Section(k)
	writeData(w, http.StatusOK, sec)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req LockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	store, k, err := s.section(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := store.SetSectionLocked(k, req.Locked); err != nil {
		writeError(w, err)
		return
	}
	sec, _ := store.Section(k)
	writeData(w, http.StatusOK, sec)
}

// handleExport writes the rendered export as the raw response body, not
// wrapped in an envelope.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, badRequest("%v", err))
		return
	}
	store, err := s.ideas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ws := store.Snapshot()
	body, err := export.Render(ws, f, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(export.Filename(ws, f)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
