package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	stderrors "chatbot-backend/internal/common/errors"
	"chatbot-backend/internal/common/validation"
	"chatbot-backend/internal/models"
)

const maxBodyBytes = 1 << 20

// handleMessage is POST /api/chat/message.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.errors.WriteError(w, r, stderrors.NewInvalidRequestError("unreadable request body"))
		return
	}

	// Schema validation sees the raw document so unknown fields and type
	// mismatches are reported with field paths.
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		s.errors.WriteError(w, r, stderrors.NewInvalidRequestError("request body must be a JSON object"))
		return
	}
	result, err := validation.ValidateChatRequest(raw)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	if !result.Valid {
		s.errors.WriteError(w, r, stderrors.NewInvalidRequestError(
			strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errors.WriteError(w, r, stderrors.NewInvalidRequestError(err.Error()))
		return
	}

	response, err := s.service.ProcessMessage(r.Context(), &req)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleHistory is GET /api/chat/history/{sessionId}.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	messages, err := s.service.History(r.Context(), sessionID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	s.writeJSON(w, http.StatusOK, messages)
}

// handleClearHistory is DELETE /api/chat/history/{sessionId}.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if err := s.service.ClearHistory(r.Context(), sessionID); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessions is GET /api/chat/sessions?userId=.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.errors.WriteError(w, r, stderrors.NewInvalidRequestError("userId query parameter is required"))
		return
	}

	sessions, err := s.service.Sessions(r.Context(), userID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*models.ChatSession{}
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

// handleEndSession is POST /api/chat/session/{sessionId}/end.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if err := s.service.EndSession(r.Context(), sessionID); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": sessionID,
		"status":    "ended",
	})
}

// handleSearch is GET /api/chat/search?q=&userId=&limit=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	userID := r.URL.Query().Get("userId")
	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			s.errors.WriteError(w, r, stderrors.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	results, err := s.service.SearchExchanges(r.Context(), userID, query, limit)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// handleHealth is GET /api/chat/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}
