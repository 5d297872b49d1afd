package models

import (
	"time"

	"github.com/google/uuid"
)

// ReelProgress records that a user has logged a movie, with an optional 1-5 rating.
type ReelProgress struct {
	UserID    uuid.UUID `json:"user_id"`
	MovieID   uuid.UUID `json:"movie_id"`
	Rating    *int      `json:"rating"`
	IsWatched bool      `json:"is_watched"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReelProgressWithMovie is a progress row joined with the movie title for list views.
type ReelProgressWithMovie struct {
	ReelProgress
	Title  string `json:"title"`
	ImdbID string `json:"imdb_id"`
}

type CreateReelProgressParams struct {
	MovieID   uuid.UUID `json:"movie_id"`
	Rating    *int      `json:"rating"`
	IsWatched bool      `json:"is_watched"`
}

type LeaderboardEntry struct {
	UserID            uuid.UUID `json:"user_id"`
	Username          string    `json:"username"`
	ReelProgressCount int       `json:"reel_progress_count"`
}

// Leaderboard ranks users by logged movies. GeneratedAt is when the ranking
// was computed, which may predate the request when served from cache.
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"data"`
	GeneratedAt time.Time          `json:"updated_at"`
}
