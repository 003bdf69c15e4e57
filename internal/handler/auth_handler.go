package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"securebank/internal/audit"
	"securebank/internal/models"
	"securebank/internal/service"
	"securebank/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler exposes the login flow, the session state and the security log.
type AuthHandler struct {
	responder
	engine      *service.Engine
	alerts      *service.AlertCenter
	securityLog *audit.SecurityLog
}

func NewAuthHandler(engine *service.Engine, alerts *service.AlertCenter, securityLog *audit.SecurityLog, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   responder{logger: logger},
		engine:      engine,
		alerts:      alerts,
		securityLog: securityLog,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type mfaRequest struct {
	Code string `json:"code"`
}

// RegisterRoutes mounts the public auth routes on public and the
// session-protected ones on protected.
func (h *AuthHandler) RegisterRoutes(public, protected chi.Router) {
	public.Post("/auth/login", h.Login)
	public.Post("/auth/mfa", h.VerifyMFA)
	public.Post("/auth/logout", h.Logout)
	public.Get("/session", h.Session)
	public.Get("/alerts", h.CurrentAlert)

	protected.Post("/session/activity", h.Activity)
	protected.Get("/security-logs", h.SecurityLogs)
}

// Login handles the credential step
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	username := util.SanitizeInput(req.Username)
	challenge, err := h.engine.SubmitCredentials(username, req.Password)
	if err != nil {
		h.respondWithServiceError(w, err, "Login failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(challenge, challenge.Message))
	h.logger.Debug("Credentials accepted via HTTP",
		util.String("username", username),
		util.Duration("duration", time.Since(startTime)),
	)
}

// VerifyMFA handles the second factor and returns the session token
func (h *AuthHandler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req mfaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	grant, err := h.engine.SubmitMFACode(req.Code)
	if err != nil {
		h.respondWithServiceError(w, err, "MFA verification failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(grant, "Login successful"))
}

// Logout ends the session. A signed-in session can only be ended by its own
// token; a pending MFA step can be abandoned without one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.engine.Snapshot().State == models.StateAuthenticated {
		if _, err := h.engine.Authenticate(bearerToken(r)); err != nil {
			h.respondWithServiceError(w, err, "Authentication required")
			return
		}
	}

	if !h.engine.Logout(models.LogoutUserAction) {
		h.respondWithJSON(w, http.StatusOK, successResponse(nil, "No active session"))
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(nil, "Logged out"))
}

// Session is public; the user and deadlines are only shown to the session's
// own token.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	_, authErr := h.engine.Authenticate(bearerToken(r))
	snap := h.engine.Snapshot()
	if authErr != nil {
		snap = snap.WithoutSession()
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(snap, ""))
}

// Activity is a keep-alive; RequireSession has already recorded the activity.
func (h *AuthHandler) Activity(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, successResponse(h.engine.Snapshot(), "Activity recorded"))
}

func (h *AuthHandler) CurrentAlert(w http.ResponseWriter, r *http.Request) {
	alert, ok := h.alerts.Current()
	if !ok {
		h.respondWithJSON(w, http.StatusOK, successResponse(nil, "No active alert"))
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(alert, ""))
}

func (h *AuthHandler) SecurityLogs(w http.ResponseWriter, r *http.Request) {
	entries := h.securityLog.Entries()
	h.respondWithJSON(w, http.StatusOK, successResponse(entries, ""))
}
