package api

import (
	"net/http"

	"github.com/bittubunny/BLMS/internal/catalog"
)

func (s *server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateInput
	if !decodeBody(w, r, &req) {
		return
	}

	course, err := s.deps.Courses.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (s *server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.Courses.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.deps.Courses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Courses.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"Course deleted"})
}

func (s *server) handleCourseReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Reports.CourseReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
