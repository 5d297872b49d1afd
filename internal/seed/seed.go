// Package seed loads demo data through the service layer so seeded rows pass
// the same validation and sanitizing as API writes.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

// Tables lists every application table, children first.
var Tables = []string{"friendships", "reel_progress", "movies", "users"}

var sampleUsernames = []string{
	"cinematicAddict",
	"filmFanatic",
	"reelWatcher",
	"oldSchoolHollywoodCool",
	"indieGuru",
}

const (
	maxWatched      = 20
	nullRatingOdds  = 0.1
	DefaultPassword = "StrongPassword1!"
)

type UserCreator interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
}

type MovieCreator interface {
	Create(ctx context.Context, params models.CreateMovieParams) (*models.Movie, error)
}

type ProgressCreator interface {
	Create(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Seeder struct {
	db       services.DB
	users    UserCreator
	movies   MovieCreator
	progress ProgressCreator
	hasher   PasswordHasher
	rng      *rand.Rand
}

func NewSeeder(db services.DB, users UserCreator, movies MovieCreator, progress ProgressCreator, hasher PasswordHasher) *Seeder {
	return &Seeder{
		db:       db,
		users:    users,
		movies:   movies,
		progress: progress,
		hasher:   hasher,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// MoviesResult counts what SeedMovies did.
type MoviesResult struct {
	Created int
	Skipped int
	Failed  int
}

// SeedMovies reads a JSON array of movies from r and creates each one.
// Movies whose imdb id already exists are skipped.
func (s *Seeder) SeedMovies(ctx context.Context, r io.Reader) (MoviesResult, error) {
	var res MoviesResult
	var list []models.CreateMovieParams
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return res, fmt.Errorf("decoding movies: %w", err)
	}

	for _, params := range list {
		_, err := s.movies.Create(ctx, params)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, services.ErrMovieExists):
			res.Skipped++
		default:
			res.Failed++
			logging.Warn("Skipping movie", map[string]interface{}{
				"imdb_id": params.ImdbID,
				"error":   err.Error(),
			})
		}
	}
	return res, nil
}

// UsersOptions configures SeedUsers.
type UsersOptions struct {
	Count      int
	AdminEmail string
	Password   string
}

// UsersResult counts what SeedUsers did.
type UsersResult struct {
	Users    int
	Skipped  int
	Progress int
}

// SeedUsers creates opts.Count users, plus an admin when AdminEmail is set,
// and logs 1 to 20 random movies for each with a rating that is null 10% of
// the time. Existing usernames or emails are skipped.
func (s *Seeder) SeedUsers(ctx context.Context, opts UsersOptions) (UsersResult, error) {
	var res UsersResult

	movieIDs, err := s.movieIDs(ctx)
	if err != nil {
		return res, err
	}
	if len(movieIDs) == 0 {
		return res, errors.New("no movies found, seed movies first")
	}

	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return res, fmt.Errorf("hashing seed password: %w", err)
	}

	for _, params := range userParams(opts, hash) {
		user, err := s.users.Create(ctx, params)
		if errors.Is(err, services.ErrUsernameAlreadyExists) || errors.Is(err, services.ErrEmailAlreadyExists) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("creating user %s: %w", params.Username, err)
		}
		res.Users++

		for _, movieID := range s.pickRandom(movieIDs, s.rng.IntN(maxWatched)+1) {
			_, err := s.progress.Create(ctx, user.ID, models.CreateReelProgressParams{
				MovieID:   movieID,
				Rating:    s.randomRating(),
				IsWatched: true,
			})
			if err != nil {
				return res, fmt.Errorf("logging movie for %s: %w", params.Username, err)
			}
			res.Progress++
		}
	}
	return res, nil
}

func userParams(opts UsersOptions, hash string) []models.CreateUserParams {
	var out []models.CreateUserParams
	for i := 0; i < opts.Count; i++ {
		name := fmt.Sprintf("reeler_%d", i+1)
		if i < len(sampleUsernames) {
			name = sampleUsernames[i]
		}
		out = append(out, models.CreateUserParams{
			Username:     name,
			Email:        fmt.Sprintf("%s@example.com", name),
			PasswordHash: hash,
		})
	}
	if opts.AdminEmail != "" {
		out = append(out, models.CreateUserParams{
			Username:     "adminUser",
			Email:        opts.AdminEmail,
			PasswordHash: hash,
			IsAdmin:      true,
		})
	}
	return out
}

func (s *Seeder) movieIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing movie ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning movie id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// pickRandom returns count distinct ids using a partial Fisher-Yates shuffle.
func (s *Seeder) pickRandom(ids []uuid.UUID, count int) []uuid.UUID {
	cp := append([]uuid.UUID(nil), ids...)
	if count > len(cp) {
		count = len(cp)
	}
	for i := 0; i < count; i++ {
		j := i + s.rng.IntN(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:count]
}

func (s *Seeder) randomRating() *int {
	if s.rng.Float64() < nullRatingOdds {
		return nil
	}
	r := s.rng.IntN(5) + 1
	return &r
}

// Truncate empties every table in one statement.
func (s *Seeder) Truncate(ctx context.Context) error {
	sql := "TRUNCATE TABLE "
	for i, t := range Tables {
		if i > 0 {
			sql += ", "
		}
		sql += t
	}
	if _, err := s.db.Exec(ctx, sql+" CASCADE"); err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}
	return nil
}
