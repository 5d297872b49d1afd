package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
	"github.com/HammerMeetNail/reelcanon/internal/validation"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse lists every rejected field of one request.
type ValidationErrorResponse struct {
	Error   string                 `json:"error"`
	Details []validation.FieldError `json:"details"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	err     error
	status  int
	message string
}

var serviceErrors = []errorMapping{
	{services.ErrSelfRelation, http.StatusBadRequest, "Cannot create a friendship with yourself"},
	{services.ErrUnknownIdentity, http.StatusBadRequest, "User does not exist"},
	{services.ErrInvalidRating, http.StatusBadRequest, "Rating must be between 1 and 5"},
	{services.ErrSearchTitleEmpty, http.StatusBadRequest, "Title search parameter required"},
	{services.ErrPasswordTooLong, http.StatusBadRequest, "Password is too long"},

	{services.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},

	{services.ErrNotAuthorized, http.StatusForbidden, "Not authorized to perform this action"},
	{services.ErrForbidden, http.StatusForbidden, "Access denied"},

	{services.ErrFriendshipNotFound, http.StatusNotFound, "Friendship not found"},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrMovieNotFound, http.StatusNotFound, "Movie not found"},
	{services.ErrReelProgressNotFound, http.StatusNotFound, "Movie not found in reel progress"},

	{services.ErrDuplicateRelation, http.StatusConflict, "Friendship already exists"},
	{services.ErrInvalidState, http.StatusConflict, "Friendship is not pending"},
	{services.ErrMovieExists, http.StatusConflict, "A movie with this IMDb id already exists"},
	{services.ErrMovieIsCanon, http.StatusConflict, "Reel canon movies cannot be deleted"},
	{services.ErrReelProgressExists, http.StatusConflict, "Movie already in your reel progress"},
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps err to a response. Unknown errors are logged and
// reported as 500; op names the failed operation in the log line.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Details: verrs})
		return
	}

	if details := duplicateUserDetails(err); len(details) > 0 {
		writeJSON(w, http.StatusConflict, ValidationErrorResponse{Error: "User already exists", Details: details})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.message)
			return
		}
	}

	logging.Error("Request failed", map[string]interface{}{
		"operation": op,
		"method":    r.Method,
		"path":      r.URL.Path,
		"error":     err.Error(),
	})
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func duplicateUserDetails(err error) []validation.FieldError {
	var details []validation.FieldError
	if errors.Is(err, services.ErrUsernameAlreadyExists) {
		details = append(details, validation.FieldError{Field: "username", Message: "is already taken"})
	}
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		details = append(details, validation.FieldError{Field: "email", Message: "is already registered"})
	}
	return details
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// requirePrincipal returns the authenticated caller or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) *models.Principal {
	p := GetPrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return p
}
