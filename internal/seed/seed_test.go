package seed

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type idRows struct {
	ids []uuid.UUID
	pos int
}

func (r *idRows) Next() bool {
	r.pos++
	return r.pos <= len(r.ids)
}

func (r *idRows) Scan(dest ...any) error {
	*dest[0].(*uuid.UUID) = r.ids[r.pos-1]
	return nil
}

func (r *idRows) Close()     {}
func (r *idRows) Err() error { return nil }

type fakeDB struct {
	services.DB
	movieIDs []uuid.UUID
	execSQL  string
	execErr  error
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (services.Rows, error) {
	return &idRows{ids: f.movieIDs}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (services.CommandTag, error) {
	f.execSQL = sql
	return nil, f.execErr
}

type recorder struct {
	users    []models.CreateUserParams
	taken    map[string]bool
	movies   []models.CreateMovieParams
	movieErr map[string]error
	progress map[uuid.UUID][]models.CreateReelProgressParams
}

func newRecorder() *recorder {
	return &recorder{
		taken:    map[string]bool{},
		movieErr: map[string]error{},
		progress: map[uuid.UUID][]models.CreateReelProgressParams{},
	}
}

type userSvc struct{ *recorder }

func (u userSvc) Create(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	if u.taken[p.Username] {
		return nil, services.ErrUsernameAlreadyExists
	}
	u.users = append(u.users, p)
	return &models.User{ID: uuid.New(), Username: p.Username, IsAdmin: p.IsAdmin}, nil
}

type movieSvc struct{ *recorder }

func (m movieSvc) Create(ctx context.Context, p models.CreateMovieParams) (*models.Movie, error) {
	if err := m.movieErr[p.ImdbID]; err != nil {
		return nil, err
	}
	m.movies = append(m.movies, p)
	return &models.Movie{ID: uuid.New(), ImdbID: p.ImdbID}, nil
}

type progressSvc struct{ *recorder }

func (p progressSvc) Create(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error) {
	p.progress[userID] = append(p.progress[userID], params)
	return &models.ReelProgress{UserID: userID, MovieID: params.MovieID}, nil
}

type hasher struct{}

func (hasher) HashPassword(pw string) (string, error) { return "hashed:" + pw, nil }

func newTestSeeder(db *fakeDB, rec *recorder) *Seeder {
	s := NewSeeder(db, userSvc{rec}, movieSvc{rec}, progressSvc{rec}, hasher{})
	s.rng = rand.New(rand.NewPCG(1, 2))
	return s
}

func movieIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestSeedMovies(t *testing.T) {
	rec := newRecorder()
	rec.movieErr["tt0000002"] = services.ErrMovieExists
	rec.movieErr["tt0000003"] = errors.New("year is invalid")

	input := `[
		{"title":"Heat","year":"1995","director":"Michael Mann","imdb_id":"tt0000001","poster":"https://x/1.jpg","is_reel_canon":true},
		{"title":"Dup","year":"1995","director":"D","imdb_id":"tt0000002","poster":"https://x/2.jpg"},
		{"title":"Bad","year":"95","director":"D","imdb_id":"tt0000003","poster":"https://x/3.jpg"}
	]`
	res, err := newTestSeeder(&fakeDB{}, rec).SeedMovies(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, MoviesResult{Created: 1, Skipped: 1, Failed: 1}, res)
	require.Len(t, rec.movies, 1)
	assert.True(t, rec.movies[0].IsReelCanon)
}

func TestSeedMovies_BadJSON(t *testing.T) {
	_, err := newTestSeeder(&fakeDB{}, newRecorder()).SeedMovies(context.Background(), strings.NewReader(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestSeedUsers(t *testing.T) {
	rec := newRecorder()
	rec.taken["filmFanatic"] = true
	ids := movieIDs(30)

	res, err := newTestSeeder(&fakeDB{movieIDs: ids}, rec).SeedUsers(context.Background(), UsersOptions{
		Count:      7,
		AdminEmail: "admin@reel.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Users, "6 regular users plus the admin")
	assert.Equal(t, 1, res.Skipped)

	var admins int
	for _, u := range rec.users {
		assert.Equal(t, "hashed:"+DefaultPassword, u.PasswordHash)
		if u.IsAdmin {
			admins++
			assert.Equal(t, "admin@reel.example.com", u.Email)
		}
	}
	assert.Equal(t, 1, admins)
	assert.Equal(t, "reeler_6", rec.users[len(rec.users)-3].Username)

	known := map[uuid.UUID]bool{}
	for _, id := range ids {
		known[id] = true
	}
	total := 0
	for _, logged := range rec.progress {
		require.NotEmpty(t, logged)
		require.LessOrEqual(t, len(logged), maxWatched)
		seen := map[uuid.UUID]bool{}
		for _, p := range logged {
			assert.True(t, known[p.MovieID])
			assert.False(t, seen[p.MovieID], "a movie is logged at most once per user")
			seen[p.MovieID] = true
			assert.True(t, p.IsWatched)
			if p.Rating != nil {
				assert.True(t, *p.Rating >= 1 && *p.Rating <= 5)
			}
		}
		total += len(logged)
	}
	assert.Equal(t, res.Progress, total)
}

func TestSeedUsers_RequiresMovies(t *testing.T) {
	_, err := newTestSeeder(&fakeDB{}, newRecorder()).SeedUsers(context.Background(), UsersOptions{Count: 1})
	assert.ErrorContains(t, err, "seed movies first")
}

func TestPickRandom_FewerIDsThanRequested(t *testing.T) {
	ids := movieIDs(3)
	got := newTestSeeder(&fakeDB{}, newRecorder()).pickRandom(ids, 10)
	assert.ElementsMatch(t, ids, got)
}

func TestRandomRating_Distribution(t *testing.T) {
	s := newTestSeeder(&fakeDB{}, newRecorder())
	nulls := 0
	for i := 0; i < 10000; i++ {
		r := s.randomRating()
		if r == nil {
			nulls++
			continue
		}
		require.True(t, *r >= 1 && *r <= 5)
	}
	assert.InDelta(t, 1000, nulls, 200)
}

func TestTruncate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, newTestSeeder(db, newRecorder()).Truncate(context.Background()))
	assert.Equal(t, "TRUNCATE TABLE friendships, reel_progress, movies, users CASCADE", db.execSQL)

	db.execErr = errors.New("permission denied")
	assert.Error(t, newTestSeeder(db, newRecorder()).Truncate(context.Background()))
}
