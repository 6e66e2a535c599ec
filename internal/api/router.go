// Package api exposes the HTTP/JSON surface of the service.
package api

import (
	"context"
	"net/http"

	"github.com/bittubunny/BLMS/internal/account"
	"github.com/bittubunny/BLMS/internal/announce"
	"github.com/bittubunny/BLMS/internal/catalog"
	"github.com/bittubunny/BLMS/internal/progress"
	"github.com/bittubunny/BLMS/internal/report"
)

// Deps holds the services the router dispatches to. Ready is probed by
// /readyz and may be nil when there is nothing to probe.
type Deps struct {
	Accounts      *account.Service
	Courses       *catalog.Catalog
	Progress      *progress.Tracker
	Announcements *announce.Service
	Feed          *announce.Feed
	Reports       *report.Builder
	Ready         func(ctx context.Context) error
}

type server struct {
	deps Deps
}

// NewRouter builds the HTTP handler with all routes and CORS applied.
func NewRouter(deps Deps) http.Handler {
	s := &server{deps: deps}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /users", s.handleListUsers)

	mux.HandleFunc("POST /courses", s.handleCreateCourse)
	mux.HandleFunc("GET /courses", s.handleListCourses)
	mux.HandleFunc("GET /courses/{id}", s.handleGetCourse)
	mux.HandleFunc("DELETE /courses/{id}", s.handleDeleteCourse)
	mux.HandleFunc("GET /courses/{id}/report", s.handleCourseReport)

	mux.HandleFunc("GET /progress/{user}/{course}", s.handleGetProgress)
	mux.HandleFunc("POST /progress/{user}/{course}/topic", s.handleMarkTopic)
	mux.HandleFunc("POST /progress/{user}/{course}/quiz", s.handleRecordQuiz)

	mux.HandleFunc("POST /announcements", s.handleCreateAnnouncement)
	mux.HandleFunc("GET /announcements", s.handleListAnnouncements)
	if deps.Feed != nil {
		mux.Handle("GET /announcements/feed", deps.Feed)
	}

	return corsMiddleware(mux)
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, message{"BLMS API is running"})
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
