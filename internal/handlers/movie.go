package handlers

import (
	"net/http"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type MovieHandler struct {
	movieService services.MovieServiceInterface
}

func NewMovieHandler(movieService services.MovieServiceInterface) *MovieHandler {
	return &MovieHandler{movieService: movieService}
}

type MovieResponse struct {
	Movie   *models.Movie `json:"movie,omitempty"`
	Message string        `json:"message,omitempty"`
}

type MovieListResponse struct {
	Movies []*models.Movie `json:"movies"`
}

type UpdatePosterRequest struct {
	Poster string `json:"poster"`
}

func writeMovies(w http.ResponseWriter, movies []*models.Movie) {
	if movies == nil {
		movies = []*models.Movie{}
	}
	writeJSON(w, http.StatusOK, MovieListResponse{Movies: movies})
}

func (h *MovieHandler) ReelCanon(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movieService.ListReelCanon(r.Context())
	if err != nil {
		writeServiceError(w, r, "list reel canon", err)
		return
	}
	writeMovies(w, movies)
}

func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movieService.Search(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		writeServiceError(w, r, "search movies", err)
		return
	}
	writeMovies(w, movies)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movieService.GetByImdbID(r.Context(), r.PathValue("imdbId"))
	if err != nil {
		writeServiceError(w, r, "get movie", err)
		return
	}
	writeJSON(w, http.StatusOK, MovieResponse{Movie: movie})
}

// Create adds a movie to the catalog. Only admins may add reel canon entries.
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	var params models.CreateMovieParams
	if !decodeJSON(w, r, &params) {
		return
	}
	if params.IsReelCanon {
		if err := services.RequireAdmin(*caller); err != nil {
			writeServiceError(w, r, "create movie", err)
			return
		}
	}

	movie, err := h.movieService.Create(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, "create movie", err)
		return
	}
	writeJSON(w, http.StatusCreated, MovieResponse{Movie: movie})
}

func (h *MovieHandler) UpdatePoster(w http.ResponseWriter, r *http.Request) {
	var req UpdatePosterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	movie, err := h.movieService.UpdatePoster(r.Context(), r.PathValue("imdbId"), req.Poster)
	if err != nil {
		writeServiceError(w, r, "update poster", err)
		return
	}
	writeJSON(w, http.StatusOK, MovieResponse{Movie: movie})
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.movieService.Delete(r.Context(), r.PathValue("imdbId")); err != nil {
		writeServiceError(w, r, "delete movie", err)
		return
	}
	writeJSON(w, http.StatusOK, MovieResponse{Message: "Movie deleted successfully"})
}
