package api

import (
	"net/http"

	"github.com/bittubunny/BLMS/internal/progress"
)

type markTopicRequest struct {
	TopicID string `json:"topic_id"`
}

type quizScoreRequest struct {
	QuizID string   `json:"quiz_id"`
	Score  *float64 `json:"score"`
}

type markTopicResponse struct {
	Message  string          `json:"message"`
	Progress progress.Record `json:"progress"`
}

type quizScoreResponse struct {
	CertificateEarned bool `json:"certificate_earned"`
}

func (s *server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Progress.GetProgress(r.Context(), r.PathValue("user"), r.PathValue("course"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleMarkTopic(w http.ResponseWriter, r *http.Request) {
	var req markTopicRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.deps.Progress.MarkTopicComplete(
		r.Context(), r.PathValue("user"), r.PathValue("course"), req.TopicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markTopicResponse{
		Message:  "Topic marked as completed",
		Progress: rec,
	})
}

func (s *server) handleRecordQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// A null or absent score is a validation error; zero is a real score.
	if req.Score == nil {
		writeJSON(w, http.StatusBadRequest, message{"All fields required"})
		return
	}

	earned, err := s.deps.Progress.RecordQuizScore(
		r.Context(), r.PathValue("user"), r.PathValue("course"), req.QuizID, *req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizScoreResponse{CertificateEarned: earned})
}
