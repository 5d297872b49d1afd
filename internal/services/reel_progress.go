package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

var (
	ErrReelProgressExists   = errors.New("movie already in your reel progress")
	ErrReelProgressNotFound = errors.New("movie not found in reel progress")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
)

const reelProgressColumns = `user_id, movie_id, rating, is_watched, created_at, updated_at`

type ReelProgressService struct {
	db    DB
	cache CacheInvalidator
}

func NewReelProgressService(db DB, cache CacheInvalidator) *ReelProgressService {
	return &ReelProgressService{db: db, cache: cache}
}

func validateRating(rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return ErrInvalidRating
	}
	return nil
}

func scanReelProgress(row Row) (*models.ReelProgress, error) {
	rp := &models.ReelProgress{}
	if err := row.Scan(&rp.UserID, &rp.MovieID, &rp.Rating, &rp.IsWatched, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		return nil, err
	}
	return rp, nil
}

// Create adds a movie to userID's reel progress. The composite primary key
// makes a second add for the same movie fail with ErrReelProgressExists.
func (s *ReelProgressService) Create(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error) {
	if err := validateRating(params.Rating); err != nil {
		return nil, err
	}

	rp, err := scanReelProgress(s.db.QueryRow(ctx,
		`INSERT INTO reel_progress (user_id, movie_id, rating, is_watched)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, movie_id) DO NOTHING
		 RETURNING `+reelProgressColumns,
		userID, params.MovieID, params.Rating, params.IsWatched,
	))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrReelProgressExists
	case isForeignKeyViolation(err, "reel_progress_movie_id_fkey"):
		return nil, ErrMovieNotFound
	case isForeignKeyViolation(err, "reel_progress_user_id_fkey"):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("creating reel progress: %w", err)
	}

	invalidateCache(ctx, s.cache)
	return rp, nil
}

func (s *ReelProgressService) queryWithMovie(ctx context.Context, where string, args ...any) ([]models.ReelProgressWithMovie, error) {
	rows, err := s.db.Query(ctx,
		`SELECT rp.user_id, rp.movie_id, rp.rating, rp.is_watched, rp.created_at, rp.updated_at, m.title, m.imdb_id
		 FROM reel_progress rp
		 JOIN movies m ON m.id = rp.movie_id
		 `+where+`
		 ORDER BY rp.created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reel progress: %w", err)
	}
	defer rows.Close()

	out := []models.ReelProgressWithMovie{}
	for rows.Next() {
		var r models.ReelProgressWithMovie
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Rating, &r.IsWatched, &r.CreatedAt, &r.UpdatedAt, &r.Title, &r.ImdbID); err != nil {
			return nil, fmt.Errorf("scanning reel progress: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing reel progress: %w", err)
	}
	return out, nil
}

func (s *ReelProgressService) List(ctx context.Context, userID uuid.UUID) ([]models.ReelProgressWithMovie, error) {
	return s.queryWithMovie(ctx, `WHERE rp.user_id = $1`, userID)
}

// ListAll returns every user's reel progress for admin review.
func (s *ReelProgressService) ListAll(ctx context.Context) ([]models.ReelProgressWithMovie, error) {
	return s.queryWithMovie(ctx, ``)
}

// UpdateRating sets or clears (nil) the rating for one movie.
func (s *ReelProgressService) UpdateRating(ctx context.Context, userID, movieID uuid.UUID, rating *int) (*models.ReelProgress, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	rp, err := scanReelProgress(s.db.QueryRow(ctx,
		`UPDATE reel_progress SET rating = $3, updated_at = NOW()
		 WHERE user_id = $1 AND movie_id = $2
		 RETURNING `+reelProgressColumns,
		userID, movieID, rating,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReelProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating rating: %w", err)
	}
	return rp, nil
}

// Delete removes one movie from userID's reel progress. Admin deletion of
// another user's record goes through the same call.
func (s *ReelProgressService) Delete(ctx context.Context, userID, movieID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM reel_progress WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("deleting reel progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReelProgressNotFound
	}

	invalidateCache(ctx, s.cache)
	return nil
}
