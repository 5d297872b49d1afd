package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type ReelProgressHandler struct {
	reelProgressService services.ReelProgressServiceInterface
}

func NewReelProgressHandler(reelProgressService services.ReelProgressServiceInterface) *ReelProgressHandler {
	return &ReelProgressHandler{reelProgressService: reelProgressService}
}

type UpdateRatingRequest struct {
	Rating *int `json:"rating"`
}

type ReelProgressResponse struct {
	ReelProgress *models.ReelProgress `json:"reel_progress,omitempty"`
	Message      string               `json:"message,omitempty"`
}

type ReelProgressListResponse struct {
	ReelProgress []models.ReelProgressWithMovie `json:"reel_progress"`
}

func (h *ReelProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	list, err := h.reelProgressService.List(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, r, "list reel progress", err)
		return
	}
	writeJSON(w, http.StatusOK, ReelProgressListResponse{ReelProgress: list})
}

func (h *ReelProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	var params models.CreateReelProgressParams
	if !decodeJSON(w, r, &params) {
		return
	}
	if params.MovieID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "movie_id is required")
		return
	}

	rp, err := h.reelProgressService.Create(r.Context(), caller.UserID, params)
	if err != nil {
		writeServiceError(w, r, "create reel progress", err)
		return
	}
	writeJSON(w, http.StatusCreated, ReelProgressResponse{ReelProgress: rp})
}

func (h *ReelProgressHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	movieID, err := parseUUIDPath(r, "movieId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	var req UpdateRatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rp, err := h.reelProgressService.UpdateRating(r.Context(), caller.UserID, movieID, req.Rating)
	if err != nil {
		writeServiceError(w, r, "update rating", err)
		return
	}
	writeJSON(w, http.StatusOK, ReelProgressResponse{ReelProgress: rp})
}

func (h *ReelProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	movieID, err := parseUUIDPath(r, "movieId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	if err := h.reelProgressService.Delete(r.Context(), caller.UserID, movieID); err != nil {
		writeServiceError(w, r, "delete reel progress", err)
		return
	}
	writeJSON(w, http.StatusOK, ReelProgressResponse{Message: "Movie removed from reel progress"})
}

func (h *ReelProgressHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}
	if err := services.RequireAdmin(*caller); err != nil {
		writeServiceError(w, r, "admin list reel progress", err)
		return
	}

	list, err := h.reelProgressService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, "admin list reel progress", err)
		return
	}
	writeJSON(w, http.StatusOK, ReelProgressListResponse{ReelProgress: list})
}

func (h *ReelProgressHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}
	if err := services.RequireAdmin(*caller); err != nil {
		writeServiceError(w, r, "admin delete reel progress", err)
		return
	}

	userID, errUser := parseUUIDPath(r, "userId")
	movieID, errMovie := parseUUIDPath(r, "movieId")
	if errUser != nil || errMovie != nil {
		writeError(w, http.StatusBadRequest, "Invalid user or movie ID")
		return
	}

	if err := h.reelProgressService.Delete(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, r, "admin delete reel progress", err)
		return
	}
	writeJSON(w, http.StatusOK, ReelProgressResponse{Message: "Reel progress deleted"})
}
