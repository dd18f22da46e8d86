package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// scrollRequest is the body of POST /api/scroll.
// Load is the page load number the offset was read on.
type scrollRequest struct {
	Offset int `json:"offset"`
	Load   int `json:"load"`
}

// handleSidebar returns the sidebar view for the page given by ?url=.
// The root prefix is derived from the page depth unless ?prefix= is given.
// Like a page load, it consumes the session's stored scroll offset.
func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url parameter is required"})
		return
	}

	prefix, ok := r.URL.Query()["prefix"]
	rootPrefix := ""
	if ok {
		rootPrefix = prefix[0]
	} else {
		p := raw
		if u, err := url.Parse(raw); err == nil {
			p = u.Path
		}
		rootPrefix = RootPrefix(p)
	}

	c, load := s.pageLoad(r.Context(), sessionID(r.Context()), raw, rootPrefix)
	w.Header().Set("X-Booknav-Load", strconv.Itoa(load))
	writeJSON(w, http.StatusOK, c.View())
}

// handleScroll persists the sidebar scroll offset for the next page load of
// the session. Negative offsets are clamped to zero. An offset reported by a
// page the session has since navigated away from is refused with 409.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !s.reportScroll(r.Context(), sessionID(r.Context()), req.Load, req.Offset) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "stale page load"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
