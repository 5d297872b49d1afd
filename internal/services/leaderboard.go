package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/metrics"
	"github.com/HammerMeetNail/reelcanon/internal/models"
)

const (
	leaderboardCacheKey = "leaderboard:v1"
	leaderboardCacheTTL = 5 * time.Minute
)

// CacheInvalidator drops derived data that depends on users or reel progress.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

func invalidateCache(ctx context.Context, c CacheInvalidator) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logging.Warn("Failed to invalidate leaderboard cache", map[string]interface{}{"error": err.Error()})
	}
}

// LeaderboardService ranks users by the number of movies in their reel progress.
// Rankings are cached in Redis; a cache failure falls through to Postgres.
type LeaderboardService struct {
	db    DB
	redis redis.Cmdable
	now   func() time.Time
}

func NewLeaderboardService(db DB, redisClient redis.Cmdable) *LeaderboardService {
	return &LeaderboardService{db: db, redis: redisClient, now: time.Now}
}

func (s *LeaderboardService) Get(ctx context.Context) (*models.Leaderboard, error) {
	if board, ok := s.fromCache(ctx); ok {
		return board, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, COUNT(rp.movie_id) AS reel_progress_count
		 FROM users u
		 LEFT JOIN reel_progress rp ON rp.user_id = u.id
		 GROUP BY u.id, u.username
		 ORDER BY reel_progress_count DESC, u.username ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}
	defer rows.Close()

	board := &models.Leaderboard{Entries: []models.LeaderboardEntry{}, GeneratedAt: s.now().UTC()}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.ReelProgressCount); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		board.Entries = append(board.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}

	s.store(ctx, board)
	return board, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context) (*models.Leaderboard, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, leaderboardCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.LeaderboardCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.LeaderboardCache.WithLabelValues("error").Inc()
		logging.Warn("Leaderboard cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var board models.Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		metrics.LeaderboardCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.LeaderboardCache.WithLabelValues("hit").Inc()
	return &board, true
}

func (s *LeaderboardService) store(ctx context.Context, board *models.Leaderboard) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
		logging.Warn("Leaderboard cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate drops the cached ranking so the next Get recomputes it.
func (s *LeaderboardService) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, leaderboardCacheKey).Err()
}
