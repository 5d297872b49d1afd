package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
	"github.com/HammerMeetNail/reelcanon/internal/validation"
)

type AuthHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      *models.User `json:"user,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Message   string       `json:"message,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, r, "hash password", err)
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		writeServiceError(w, r, "create user", err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username or email and password are required")
		return
	}

	user, err := h.userService.FindByLogin(r.Context(), identifier)
	if errors.Is(err, services.ErrUserNotFound) {
		writeServiceError(w, r, "login", services.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		logging.Warn("Failed login attempt", map[string]interface{}{"user_id": user.ID.String()})
		writeServiceError(w, r, "login", services.ErrInvalidCredentials)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, expires, err := h.authService.IssueToken(user)
	if err != nil {
		writeServiceError(w, r, "issue token", err)
		return
	}
	writeJSON(w, status, AuthResponse{User: user, Token: token, ExpiresAt: &expires})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	if err := h.authService.RevokeToken(r.Context(), caller); err != nil {
		writeServiceError(w, r, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	user, err := h.userService.GetByID(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, r, "get current user", err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}
