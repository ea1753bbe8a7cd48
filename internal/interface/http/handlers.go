package http

import (
	"encoding/json"
	"net/http"

	"github.com/skillspring-hub/skillspring-dashboard/internal/dashboard"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":          "healthy",
		"uptime":          s.Uptime().String(),
		"active_sessions": s.deps.Manager.ActiveSessions(),
	}

	if s.deps.Backend != nil {
		if s.deps.Backend.IsHealthy(r.Context()) {
			status["backend"] = "reachable"
		} else {
			status["backend"] = "unreachable"
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// handleLogin handles POST /api/auth/login. The bearer credential comes from
// the Authorization header; the body carries the learner's identity. The
// initial refresh pass runs before the response, so the first dashboard read
// is already populated.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "A valid bearer credential is required")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	session, err := s.deps.Manager.Login(r.Context(), token, req.UserID, req.Email, req.Role)
	if err != nil {
		s.logger.Error("login failed", logger.Err(err), logger.String("email", req.Email))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

// handleLogout handles POST /api/auth/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "A valid bearer credential is required")
		return
	}

	if err := s.deps.Manager.Logout(r.Context(), token); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// sessionFor resolves the caller's session from the Authorization header.
// A missing or unknown credential writes the error response and returns nil.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *dashboard.Session {
	session, err := s.deps.Manager.Get(bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	return session
}

// handleGetDashboard handles GET /api/dashboard.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

type addPathRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// handleAddPath handles POST /api/learning/paths.
func (s *Server) handleAddPath(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	var req addPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	path, err := session.Learning().AddPath(req.Title, req.Description, learning.Difficulty(req.Difficulty))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, path)
}

// handleAdvancePath handles POST /api/learning/paths/{id}/advance.
// Advancing an unknown path is a no-op and still answers 200.
func (s *Server) handleAdvancePath(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	path := session.Learning().Advance(r.PathValue("id"))
	if path == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no_change"})
		return
	}

	writeJSON(w, http.StatusOK, path)
}

// handleApplyJob handles POST /api/jobs/{id}/apply. Applying is idempotent,
// so the response is 200 regardless of prior state.
func (s *Server) handleApplyJob(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	session.Jobs().Apply(r.PathValue("id"))

	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// handleGetOpportunities handles GET /api/opportunities/live.
func (s *Server) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	snapshot := session.Opportunities().Snapshot()
	jobs, internships, hackathons := snapshot.Counts()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": snapshot,
		"total":         jobs + internships + hackathons,
	})
}

type assistantChatRequest struct {
	Message string `json:"message"`
	Context struct {
		Role       string `json:"role"`
		Profession string `json:"profession"`
	} `json:"context"`
}

// handleAssistantChat handles POST /api/ai/chat/student-assistant. A second
// request while a response is pending returns 409.
func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	var req assistantChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	reply, offline, err := session.Assistant().Send(r.Context(), req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response": reply.Content,
		"offline":  offline,
	})
}

// handleGetActivity handles GET /api/activity. Entries come back newest
// first.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFor(w, r)
	if session == nil {
		return
	}

	writeJSON(w, http.StatusOK, session.Activity())
}

// ══════════════════════════════════════════════════════════════════════════════
// PROXY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleProxyFolderItems handles GET /api/learning/folders/{folderId}/items.
func (s *Server) handleProxyFolderItems(w http.ResponseWriter, r *http.Request) {
	s.forwardToBackend(w, r, "/learning/folders/"+r.PathValue("folderId")+"/items")
}

// handleProxyResourceCategories handles GET /api/learning/free-resources/categories.
func (s *Server) handleProxyResourceCategories(w http.ResponseWriter, r *http.Request) {
	s.forwardToBackend(w, r, "/learning/free-resources/categories")
}

// forwardToBackend relays a GET to the backend with the caller's
// Authorization header unchanged. Upstream failures surface as a generic 500
// with the cause logged; the upstream status is never translated.
func (s *Server) forwardToBackend(w http.ResponseWriter, r *http.Request, path string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "A valid bearer credential is required")
		return
	}

	body, err := s.deps.Backend.Forward(r.Context(), authHeader, path)
	if err != nil {
		s.logger.Error("proxy request failed",
			logger.Err(err),
			logger.String("path", path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
