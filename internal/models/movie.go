package models

import (
	"time"

	"github.com/google/uuid"
)

type Movie struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Year        string    `json:"year"`
	Director    string    `json:"director"`
	Genre       []string  `json:"genre"`
	Plot        string    `json:"plot"`
	Actors      []string  `json:"actors"`
	ImdbID      string    `json:"imdb_id"`
	Poster      string    `json:"poster"`
	IsReelCanon bool      `json:"is_reel_canon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateMovieParams struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Year        string   `json:"year" validate:"required,movieyear"`
	Director    string   `json:"director" validate:"required,max=200"`
	Genre       []string `json:"genre" validate:"max=10,dive,max=50"`
	Plot        string   `json:"plot" validate:"max=1000"`
	Actors      []string `json:"actors" validate:"max=50,dive,max=100"`
	ImdbID      string   `json:"imdb_id" validate:"required,imdbid"`
	Poster      string   `json:"poster" validate:"required,url"`
	IsReelCanon bool     `json:"is_reel_canon"`
}
