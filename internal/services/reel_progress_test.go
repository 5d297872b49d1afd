package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

func intPtr(v int) *int { return &v }

func TestReelProgressService_Create(t *testing.T) {
	userID, movieID := uuid.New(), uuid.New()
	cache := &fakeInvalidator{}
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			now := time.Now()
			return rowFromValues(args[0], args[1], args[2], args[3], now, now)
		},
	}

	rp, err := NewReelProgressService(db, cache).Create(context.Background(), userID, models.CreateReelProgressParams{
		MovieID: movieID, Rating: intPtr(4), IsWatched: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.UserID != userID || rp.MovieID != movieID || rp.Rating == nil || *rp.Rating != 4 || !rp.IsWatched {
		t.Fatalf("unexpected record: %+v", rp)
	}
	if cache.calls != 1 {
		t.Fatalf("expected leaderboard invalidation, got %d", cache.calls)
	}
}

func TestReelProgressService_Create_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"already added", pgx.ErrNoRows, ErrReelProgressExists},
		{"unknown movie", &pgconn.PgError{Code: "23503", ConstraintName: "reel_progress_movie_id_fkey"}, ErrMovieNotFound},
		{"unknown user", &pgconn.PgError{Code: "23503", ConstraintName: "reel_progress_user_id_fkey"}, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeInvalidator{}
			db := &fakeDB{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
					return errRow(tt.err)
				},
			}

			_, err := NewReelProgressService(db, cache).Create(context.Background(), uuid.New(), models.CreateReelProgressParams{MovieID: uuid.New()})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if cache.calls != 0 {
				t.Fatal("expected no invalidation on failure")
			}
		})
	}
}

func TestReelProgressService_InvalidRating(t *testing.T) {
	svc := NewReelProgressService(&fakeDB{}, nil)

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Create(context.Background(), uuid.New(), models.CreateReelProgressParams{MovieID: uuid.New(), Rating: intPtr(rating)}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("Create rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
		if _, err := svc.UpdateRating(context.Background(), uuid.New(), uuid.New(), intPtr(rating)); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("UpdateRating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestReelProgressService_UpdateRating(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			now := time.Now()
			return rowFromValues(args[0], args[1], args[2], false, now, now)
		},
	}
	svc := NewReelProgressService(db, nil)

	rp, err := svc.UpdateRating(context.Background(), uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.Rating != nil {
		t.Fatalf("expected cleared rating, got %d", *rp.Rating)
	}

	notFound := NewReelProgressService(&fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row { return errRow(pgx.ErrNoRows) },
	}, nil)
	if _, err := notFound.UpdateRating(context.Background(), uuid.New(), uuid.New(), intPtr(3)); !errors.Is(err, ErrReelProgressNotFound) {
		t.Fatalf("expected ErrReelProgressNotFound, got %v", err)
	}
}

func TestReelProgressService_List(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	rows := &fakeRows{rows: [][]any{
		{userID, uuid.New(), intPtr(5), true, now, now, "Heat", "tt0113277"},
		{userID, uuid.New(), nil, false, now, now, "Ran", "tt0089881"},
	}}
	var gotArgs []any
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			gotArgs = args
			return rows, nil
		},
	}

	list, err := NewReelProgressService(db, nil).List(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Heat" || list[1].Rating != nil {
		t.Fatalf("unexpected list: %+v", list)
	}
	if len(gotArgs) != 1 || gotArgs[0] != userID {
		t.Fatalf("expected query scoped to user, got %v", gotArgs)
	}
	if !rows.closed {
		t.Fatal("expected rows to be closed")
	}
}

func TestReelProgressService_ListAll_Empty(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			if len(args) != 0 {
				t.Fatalf("expected no args, got %v", args)
			}
			return &fakeRows{}, nil
		},
	}

	list, err := NewReelProgressService(db, nil).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestReelProgressService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		affected  int64
		want      error
		wantCalls int
	}{
		{"deleted", 1, nil, 1},
		{"missing", 0, ErrReelProgressNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeInvalidator{}
			db := &fakeDB{
				ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
					return fakeCommandTag{rowsAffected: tt.affected}, nil
				},
			}
			err := NewReelProgressService(db, cache).Delete(context.Background(), uuid.New(), uuid.New())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if cache.calls != tt.wantCalls {
				t.Fatalf("expected %d invalidations, got %d", tt.wantCalls, cache.calls)
			}
		})
	}
}
