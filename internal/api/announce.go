package api

import (
	"net/http"
)

type announcementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := s.deps.Announcements.Create(r.Context(), req.Title, req.Message, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Announcements.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
