package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/validation"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrMovieExists      = errors.New("a movie with this imdb id already exists")
	ErrMovieIsCanon     = errors.New("reel canon movies cannot be deleted")
	ErrSearchTitleEmpty = errors.New("title search parameter required")
)

const (
	movieColumns     = `id, title, year, director, genre, plot, actors, imdb_id, poster, is_reel_canon, created_at, updated_at`
	movieSearchLimit = 50
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from user-supplied movie metadata and stores the
// result as plain text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(strings.ReplaceAll(s, "\x00", ""))))
}

func sanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = sanitizeText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type MovieService struct {
	db    DB
	cache CacheInvalidator
}

func NewMovieService(db DB, cache CacheInvalidator) *MovieService {
	return &MovieService{db: db, cache: cache}
}

func scanMovie(row Row) (*models.Movie, error) {
	m := &models.Movie{}
	if err := row.Scan(&m.ID, &m.Title, &m.Year, &m.Director, &m.Genre, &m.Plot, &m.Actors,
		&m.ImdbID, &m.Poster, &m.IsReelCanon, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MovieService) queryMovies(ctx context.Context, op, sql string, args ...any) ([]*models.Movie, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return movies, nil
}

func (s *MovieService) ListReelCanon(ctx context.Context) ([]*models.Movie, error) {
	return s.queryMovies(ctx, "listing reel canon",
		`SELECT `+movieColumns+` FROM movies WHERE is_reel_canon ORDER BY year, title`)
}

// Search matches titles case-insensitively. An empty result is ErrMovieNotFound.
func (s *MovieService) Search(ctx context.Context, title string) ([]*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrSearchTitleEmpty
	}
	pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(title) + "%"

	movies, err := s.queryMovies(ctx, "searching movies",
		`SELECT `+movieColumns+` FROM movies
		 WHERE title ILIKE $1
		 ORDER BY (LOWER(title) = LOWER($2)) DESC, year DESC
		 LIMIT $3`,
		pattern, title, movieSearchLimit,
	)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrMovieNotFound
	}
	return movies, nil
}

func (s *MovieService) GetByImdbID(ctx context.Context, imdbID string) (*models.Movie, error) {
	m, err := scanMovie(s.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE imdb_id = $1`, imdbID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting movie: %w", err)
	}
	return m, nil
}

// Create validates and sanitizes params before inserting. Validation failures
// are returned as validation.Errors.
func (s *MovieService) Create(ctx context.Context, params models.CreateMovieParams) (*models.Movie, error) {
	params.Title = sanitizeText(params.Title)
	params.Director = sanitizeText(params.Director)
	params.Plot = sanitizeText(params.Plot)
	params.Genre = sanitizeList(params.Genre)
	params.Actors = sanitizeList(params.Actors)
	params.Year = strings.TrimSpace(params.Year)
	params.ImdbID = strings.TrimSpace(params.ImdbID)
	params.Poster = strings.TrimSpace(params.Poster)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	m, err := scanMovie(s.db.QueryRow(ctx,
		`INSERT INTO movies (title, year, director, genre, plot, actors, imdb_id, poster, is_reel_canon)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+movieColumns,
		params.Title, params.Year, params.Director, params.Genre, params.Plot, params.Actors,
		params.ImdbID, params.Poster, params.IsReelCanon,
	))
	if isUniqueViolation(err, "movies_imdb_id_key") {
		return nil, ErrMovieExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating movie: %w", err)
	}
	return m, nil
}

func (s *MovieService) UpdatePoster(ctx context.Context, imdbID, poster string) (*models.Movie, error) {
	input := struct {
		Poster string `json:"poster" validate:"required,url"`
	}{Poster: strings.TrimSpace(poster)}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	m, err := scanMovie(s.db.QueryRow(ctx,
		`UPDATE movies SET poster = $2, updated_at = NOW() WHERE imdb_id = $1 RETURNING `+movieColumns,
		imdbID, input.Poster,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating poster: %w", err)
	}
	return m, nil
}

// Delete removes a non-canon movie. Reel progress rows for it cascade.
func (s *MovieService) Delete(ctx context.Context, imdbID string) error {
	m, err := s.GetByImdbID(ctx, imdbID)
	if err != nil {
		return err
	}
	if m.IsReelCanon {
		return ErrMovieIsCanon
	}

	result, err := s.db.Exec(ctx, `DELETE FROM movies WHERE id = $1 AND NOT is_reel_canon`, m.ID)
	if err != nil {
		return fmt.Errorf("deleting movie: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMovieNotFound
	}
	invalidateCache(ctx, s.cache)
	return nil
}
