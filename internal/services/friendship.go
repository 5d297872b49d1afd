package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

var (
	ErrSelfRelation       = errors.New("cannot create a friendship with yourself")
	ErrUnknownIdentity    = errors.New("user does not exist")
	ErrDuplicateRelation  = errors.New("friendship already exists")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrInvalidState       = errors.New("friendship is not in a state that allows this action")
)

const friendshipColumns = `id, low_id, high_id, requester_id, accepted, created_at, updated_at`

// NormalizePair returns a and b in canonical order. The order is lexicographic
// on the lowercase hyphenated form, which agrees with Postgres uuid ordering.
func NormalizePair(a, b uuid.UUID) (low, high uuid.UUID, err error) {
	if a == b {
		return uuid.Nil, uuid.Nil, ErrSelfRelation
	}
	if strings.Compare(a.String(), b.String()) < 0 {
		return a, b, nil
	}
	return b, a, nil
}

// FriendshipService owns the friendships table. It enforces the pair
// invariants but applies no caller authorization beyond Accept's participant check.
type FriendshipService struct {
	db DB
}

func NewFriendshipService(db DB) *FriendshipService {
	return &FriendshipService{db: db}
}

func scanFriendship(row Row) (*models.FriendshipPair, error) {
	p := &models.FriendshipPair{}
	if err := row.Scan(&p.ID, &p.LowID, &p.HighID, &p.RequesterID, &p.Accepted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func collectFriendships(rows Rows) ([]*models.FriendshipPair, error) {
	defer rows.Close()
	var pairs []*models.FriendshipPair
	for rows.Next() {
		p, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning friendship: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friendships: %w", err)
	}
	return pairs, nil
}

// Create stores a pending pair requested by requesterID. The insert relies on
// the (low_id, high_id) unique constraint, so concurrent or reversed duplicates
// fail with ErrDuplicateRelation.
func (s *FriendshipService) Create(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipPair, error) {
	low, high, err := NormalizePair(requesterID, recipientID)
	if err != nil {
		return nil, err
	}

	var known int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id IN ($1, $2)`, low, high).Scan(&known)
	if err != nil {
		return nil, fmt.Errorf("checking participants: %w", err)
	}
	if known != 2 {
		return nil, ErrUnknownIdentity
	}

	pair, err := scanFriendship(s.db.QueryRow(ctx,
		`INSERT INTO friendships (low_id, high_id, requester_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (low_id, high_id) DO NOTHING
		 RETURNING `+friendshipColumns,
		low, high, requesterID,
	))
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err, "friendships_pair_key"):
		return nil, ErrDuplicateRelation
	case isForeignKeyViolation(err, ""):
		// A participant was deleted between the check and the insert.
		return nil, ErrUnknownIdentity
	case err != nil:
		return nil, fmt.Errorf("creating friendship: %w", err)
	}
	return pair, nil
}

// FindBetween returns the pair for {a, b} in either order, or nil if none exists.
func (s *FriendshipService) FindBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendshipPair, error) {
	low, high, err := NormalizePair(a, b)
	if err != nil {
		return nil, err
	}

	pair, err := scanFriendship(s.db.QueryRow(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE low_id = $1 AND high_id = $2`,
		low, high,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding friendship: %w", err)
	}
	return pair, nil
}

func (s *FriendshipService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	pair, err := s.FindBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return pair != nil && pair.Accepted, nil
}

func (s *FriendshipService) GetByID(ctx context.Context, id uuid.UUID) (*models.FriendshipPair, error) {
	pair, err := scanFriendship(s.db.QueryRow(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friendship: %w", err)
	}
	return pair, nil
}

// ListFor returns every pair that userID participates in, newest first.
func (s *FriendshipService) ListFor(ctx context.Context, userID uuid.UUID) ([]*models.FriendshipPair, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE low_id = $1 OR high_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friendships: %w", err)
	}
	return collectFriendships(rows)
}

func (s *FriendshipService) ListAll(ctx context.Context) ([]*models.FriendshipPair, error) {
	rows, err := s.db.Query(ctx, `SELECT `+friendshipColumns+` FROM friendships ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing all friendships: %w", err)
	}
	return collectFriendships(rows)
}

// Accept marks a pending pair accepted. Only the participant who did not send
// the request may accept.
func (s *FriendshipService) Accept(ctx context.Context, pairID, actorID uuid.UUID) (*models.FriendshipPair, error) {
	pair, err := s.GetByID(ctx, pairID)
	if err != nil {
		return nil, err
	}
	if !pair.Involves(actorID) || pair.RequesterID == actorID {
		return nil, ErrNotAuthorized
	}
	if pair.Accepted {
		return nil, ErrInvalidState
	}

	updated, err := scanFriendship(s.db.QueryRow(ctx,
		`UPDATE friendships SET accepted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND accepted = FALSE
		 RETURNING `+friendshipColumns,
		pairID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Accepted or removed by a concurrent request.
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("accepting friendship: %w", err)
	}
	return updated, nil
}

// Remove deletes the pair for {a, b} regardless of state and returns what was deleted.
func (s *FriendshipService) Remove(ctx context.Context, a, b uuid.UUID) (*models.FriendshipPair, error) {
	low, high, err := NormalizePair(a, b)
	if err != nil {
		return nil, err
	}

	pair, err := scanFriendship(s.db.QueryRow(ctx,
		`DELETE FROM friendships WHERE low_id = $1 AND high_id = $2 RETURNING `+friendshipColumns,
		low, high,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("removing friendship: %w", err)
	}
	return pair, nil
}

// DeleteAllFor removes every pair involving userID using q, which is normally
// the transaction that deletes the user.
func (s *FriendshipService) DeleteAllFor(ctx context.Context, q Querier, userID uuid.UUID) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM friendships WHERE low_id = $1 OR high_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting friendships for user: %w", err)
	}
	return tag.RowsAffected(), nil
}
