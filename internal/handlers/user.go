package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
	"github.com/HammerMeetNail/reelcanon/internal/validation"
)

type UserHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,strongpassword"`
}

// PublicProfile is what anyone may see about another user.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type UserResponse struct {
	User    interface{} `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Get returns the full profile to its owner and admins and the public profile
// to everyone else, including anonymous callers.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := GetPrincipalFromContext(r.Context())
	if raw := r.PathValue("userId"); caller == nil && (raw == "" || raw == "me") {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	viewer := caller
	if viewer == nil {
		viewer = &models.Principal{}
	}
	target, err := resolveTargetUserID(r, viewer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, "get user", err)
		return
	}

	if caller != nil && services.AuthorizeSelfOrAdmin(*caller, target) == nil {
		writeJSON(w, http.StatusOK, UserResponse{User: user})
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: PublicProfile{ID: user.ID, Username: user.Username}})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, target, ok := h.authorizedTarget(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username != nil {
		u := strings.TrimSpace(*req.Username)
		req.Username = &u
	}
	if req.Email != nil {
		e := strings.TrimSpace(strings.ToLower(*req.Email))
		req.Email = &e
	}
	if req.Username == nil && req.Email == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, "update user", err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), target, models.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(w, r, "update user", err)
		return
	}

	logging.Info("User profile updated", map[string]interface{}{
		"user_id":  target.String(),
		"actor_id": caller.UserID.String(),
	})
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, target, ok := h.authorizedTarget(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), target); err != nil {
		writeServiceError(w, r, "delete user", err)
		return
	}
	h.revokeAll(r, target)

	logging.Info("User account removed", map[string]interface{}{
		"user_id":  target.String(),
		"actor_id": caller.UserID.String(),
	})
	writeJSON(w, http.StatusOK, UserResponse{Message: "User deleted successfully"})
}

// ChangePassword lets a user change their own password, which requires the
// current one, or an admin reset another user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, target, ok := h.authorizedTarget(w, r)
	if !ok {
		return
	}
	self := caller.UserID == target
	if !self {
		if err := services.RequireAdmin(*caller); err != nil {
			writeServiceError(w, r, "change password", err)
			return
		}
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, "change password", err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, "change password", err)
		return
	}
	if self && !h.authService.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	newHash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		writeServiceError(w, r, "change password", err)
		return
	}
	if err := h.userService.UpdatePassword(r.Context(), target, newHash); err != nil {
		writeServiceError(w, r, "change password", err)
		return
	}

	// Existing tokens for the target stop working; the caller gets a fresh one
	// when changing their own password.
	h.revokeAll(r, target)
	resp := UserResponse{Message: "Password changed successfully"}
	if self {
		token, _, err := h.authService.IssueToken(user)
		if err != nil {
			writeServiceError(w, r, "issue token", err)
			return
		}
		resp.Token = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// authorizedTarget resolves the request's target user and checks that the
// caller may modify it.
func (h *UserHandler) authorizedTarget(w http.ResponseWriter, r *http.Request) (*models.Principal, uuid.UUID, bool) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return nil, uuid.Nil, false
	}
	target, err := resolveTargetUserID(r, caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return nil, uuid.Nil, false
	}
	if err := services.AuthorizeSelfOrAdmin(*caller, target); err != nil {
		writeServiceError(w, r, "authorize", err)
		return nil, uuid.Nil, false
	}
	return caller, target, true
}

func (h *UserHandler) revokeAll(r *http.Request, userID uuid.UUID) {
	if err := h.authService.RevokeAllFor(r.Context(), userID); err != nil {
		logging.Warn("Failed to revoke tokens", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
}
