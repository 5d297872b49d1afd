package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLogin(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthServiceInterface defines the contract for credential and token operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	IssueToken(user *models.User) (string, time.Time, error)
	VerifyToken(ctx context.Context, token string) (*models.Principal, error)
	RevokeToken(ctx context.Context, p *models.Principal) error
	RevokeAllFor(ctx context.Context, userID uuid.UUID) error
}

// FriendshipWorkflowInterface defines the contract for friendship operations used by handlers.
type FriendshipWorkflowInterface interface {
	SendRequest(ctx context.Context, caller models.Principal, recipientID uuid.UUID) (*models.FriendshipPair, error)
	Accept(ctx context.Context, caller models.Principal, pairID uuid.UUID) (*models.FriendshipPair, error)
	Remove(ctx context.Context, caller models.Principal, otherID uuid.UUID) (Transition, error)
	AdminRemove(ctx context.Context, caller models.Principal, a, b uuid.UUID) error
	ListFor(ctx context.Context, caller models.Principal, target uuid.UUID, filter FriendshipFilter) ([]models.FriendRequestView, error)
	ListAll(ctx context.Context, caller models.Principal) ([]*models.FriendshipPair, error)
}

// MovieServiceInterface defines the contract for catalog operations.
type MovieServiceInterface interface {
	ListReelCanon(ctx context.Context) ([]*models.Movie, error)
	Search(ctx context.Context, title string) ([]*models.Movie, error)
	GetByImdbID(ctx context.Context, imdbID string) (*models.Movie, error)
	Create(ctx context.Context, params models.CreateMovieParams) (*models.Movie, error)
	UpdatePoster(ctx context.Context, imdbID, poster string) (*models.Movie, error)
	Delete(ctx context.Context, imdbID string) error
}

// ReelProgressServiceInterface defines the contract for watch-progress operations.
type ReelProgressServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.ReelProgressWithMovie, error)
	ListAll(ctx context.Context) ([]models.ReelProgressWithMovie, error)
	UpdateRating(ctx context.Context, userID, movieID uuid.UUID, rating *int) (*models.ReelProgress, error)
	Delete(ctx context.Context, userID, movieID uuid.UUID) error
}

type LeaderboardServiceInterface interface {
	Get(ctx context.Context) (*models.Leaderboard, error)
}

var (
	_ UserServiceInterface         = (*UserService)(nil)
	_ AuthServiceInterface         = (*AuthService)(nil)
	_ FriendshipWorkflowInterface  = (*FriendshipWorkflow)(nil)
	_ FriendshipEngine             = (*FriendshipService)(nil)
	_ MovieServiceInterface        = (*MovieService)(nil)
	_ ReelProgressServiceInterface = (*ReelProgressService)(nil)
	_ LeaderboardServiceInterface  = (*LeaderboardService)(nil)
	_ CacheInvalidator             = (*LeaderboardService)(nil)
)
