package httptransport

import (
	"net/http"
	"strings"

	"nyumba/internal/auth/models"
	authservice "nyumba/internal/auth/service"
	"nyumba/internal/transport/http/json"
	"nyumba/internal/transport/http/shared"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type adminResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	FirstLogin bool   `json:"firstLogin"`
}

type sessionResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	State   string         `json:"state"`
	Admin   *adminResponse `json:"admin,omitempty"`
	Token   string         `json:"token,omitempty"`
}

func toAdminResponse(identity *models.AdminIdentity) *adminResponse {
	if identity == nil {
		return nil
	}
	return &adminResponse{
		ID:         identity.ID.String(),
		Email:      identity.Email,
		FullName:   identity.FullName,
		Role:       string(identity.Role),
		FirstLogin: identity.FirstLogin,
	}
}

func stateFor(identity *models.AdminIdentity) models.State {
	if identity == nil {
		return models.StateUnauthenticated
	}
	if identity.FirstLogin {
		return models.StateFirstLoginPendingPinSetup
	}
	return models.StateAuthenticated
}

// loginEnvelope builds the response for a credential exchange. The session
// token and identity come from the result of this caller's own login; a
// failed attempt reveals nothing about whoever else may be logged in.
func loginEnvelope(res authservice.Result) sessionResponse {
	if !res.Success {
		return sessionResponse{
			Message: res.Message,
			State:   string(models.StateUnauthenticated),
		}
	}
	return sessionResponse{
		Success: true,
		Message: res.Message,
		State:   string(stateFor(res.Identity)),
		Admin:   toAdminResponse(res.Identity),
		Token:   res.Token,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.Decode(r, &req); err != nil {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnauthorized
	}
	json.WriteJSON(w, status, loginEnvelope(res))
}

func (h *Handler) handleLoginPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.Decode(r, &req); err != nil {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	res, err := h.auth.LoginWithPIN(r.Context(), req.PIN)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnauthorized
	}
	json.WriteJSON(w, status, loginEnvelope(res))
}

func (h *Handler) handleCreatePIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.Decode(r, &req); err != nil {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	res, err := h.auth.CreatePIN(r.Context(), req.PIN)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	json.WriteJSON(w, status, sessionResponse{
		Success: res.Success,
		Message: res.Message,
		State:   string(stateFor(res.Identity)),
		Admin:   toAdminResponse(res.Identity),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	json.WriteJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Message: "Logged out",
		State:   string(models.StateUnauthenticated),
	})
}

// handleSession reports the session of the presented bearer token. Callers
// without a valid token get a bare unauthenticated envelope; the identity of
// whoever else is logged in is never disclosed, and tokens are only ever
// returned by the login endpoints.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		json.WriteJSON(w, http.StatusOK, sessionResponse{
			State: string(models.StateUnauthenticated),
		})
		return
	}

	identity, err := h.auth.IdentityForToken(r.Context(), token)
	if err != nil {
		json.WriteJSON(w, http.StatusOK, sessionResponse{
			Message: "Session is not valid",
			State:   string(models.StateUnauthenticated),
		})
		return
	}

	json.WriteJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		State:   string(stateFor(identity)),
		Admin:   toAdminResponse(identity),
	})
}
