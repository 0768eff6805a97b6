package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/debtfree/internal/auth"
	"github.com/mmynk/debtfree/internal/models"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password"`
}

type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	UserKey     string `json:"userKey"`
	CreatedAt   int64  `json:"createdAt"`
}

type authResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		UserKey:     auth.EmailKey(u.Email),
		CreatedAt:   u.CreatedAt,
	}
}

// handleRegister creates a new account and returns a session token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}

	user, err := s.authn.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		slog.Warn("Registration failed", "email", req.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, authResponse{User: toUserPayload(user), Token: token})
}

// handleLogin authenticates an existing account and returns a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.authn.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email)
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{User: toUserPayload(user), Token: token})
}
