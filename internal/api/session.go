package api

import (
	"errors"
	"net/http"
)

var (
	errNoSession = errors.New("no active idea")
	errRunning   = errors.New("generation in progress")
)

// SwitchSessionRequest is the body of PUT /session.
type SwitchSessionRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	cur := s.session.Current()
	if cur == nil {
		writeError(w, errNoSession)
		return
	}
	writeData(w, http.StatusOK, cur.Snapshot())
}

// handleSwitchSession makes another idea active. The previous idea is
// written first; if that fails the switch is abandoned.
func (s *Server) handleSwitchSession(w http.ResponseWriter, r *http.Request) {
	var req SwitchSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == "" {
		writeError(w, badRequest("id is required"))
		return
	}
	store, err := s.session.Switch(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, store.Snapshot())
}
