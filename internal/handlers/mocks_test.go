package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type mockUserService struct {
	CreateFunc         func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLoginFunc    func(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfileFunc  func(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.User{ID: uuid.New(), Username: params.Username, Email: params.Email, PasswordHash: params.PasswordHash}, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id, Username: "user", Email: "user@example.com"}, nil
}

func (m *mockUserService) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	if m.FindByLoginFunc != nil {
		return m.FindByLoginFunc(ctx, identifier)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, params)
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, newPasswordHash)
	}
	return nil
}

func (m *mockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockAuthService struct {
	HashPasswordFunc   func(password string) (string, error)
	VerifyPasswordFunc func(hash, password string) bool
	IssueTokenFunc     func(user *models.User) (string, time.Time, error)
	VerifyTokenFunc    func(ctx context.Context, token string) (*models.Principal, error)
	RevokeTokenFunc    func(ctx context.Context, p *models.Principal) error
	RevokeAllForFunc   func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed_"+password
}

func (m *mockAuthService) IssueToken(user *models.User) (string, time.Time, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(user)
	}
	return "token-for-" + user.Username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (m *mockAuthService) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return nil, services.ErrInvalidToken
}

func (m *mockAuthService) RevokeToken(ctx context.Context, p *models.Principal) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, p)
	}
	return nil
}

func (m *mockAuthService) RevokeAllFor(ctx context.Context, userID uuid.UUID) error {
	if m.RevokeAllForFunc != nil {
		return m.RevokeAllForFunc(ctx, userID)
	}
	return nil
}

type mockFriendshipWorkflow struct {
	SendRequestFunc func(ctx context.Context, caller models.Principal, recipientID uuid.UUID) (*models.FriendshipPair, error)
	AcceptFunc      func(ctx context.Context, caller models.Principal, pairID uuid.UUID) (*models.FriendshipPair, error)
	RemoveFunc      func(ctx context.Context, caller models.Principal, otherID uuid.UUID) (services.Transition, error)
	AdminRemoveFunc func(ctx context.Context, caller models.Principal, a, b uuid.UUID) error
	ListForFunc     func(ctx context.Context, caller models.Principal, target uuid.UUID, filter services.FriendshipFilter) ([]models.FriendRequestView, error)
	ListAllFunc     func(ctx context.Context, caller models.Principal) ([]*models.FriendshipPair, error)
}

func (m *mockFriendshipWorkflow) SendRequest(ctx context.Context, caller models.Principal, recipientID uuid.UUID) (*models.FriendshipPair, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, caller, recipientID)
	}
	return &models.FriendshipPair{ID: uuid.New()}, nil
}

func (m *mockFriendshipWorkflow) Accept(ctx context.Context, caller models.Principal, pairID uuid.UUID) (*models.FriendshipPair, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, caller, pairID)
	}
	return &models.FriendshipPair{ID: pairID, Accepted: true}, nil
}

func (m *mockFriendshipWorkflow) Remove(ctx context.Context, caller models.Principal, otherID uuid.UUID) (services.Transition, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, caller, otherID)
	}
	return services.TransitionUnfriended, nil
}

func (m *mockFriendshipWorkflow) AdminRemove(ctx context.Context, caller models.Principal, a, b uuid.UUID) error {
	if m.AdminRemoveFunc != nil {
		return m.AdminRemoveFunc(ctx, caller, a, b)
	}
	return nil
}

func (m *mockFriendshipWorkflow) ListFor(ctx context.Context, caller models.Principal, target uuid.UUID, filter services.FriendshipFilter) ([]models.FriendRequestView, error) {
	if m.ListForFunc != nil {
		return m.ListForFunc(ctx, caller, target, filter)
	}
	return []models.FriendRequestView{}, nil
}

func (m *mockFriendshipWorkflow) ListAll(ctx context.Context, caller models.Principal) ([]*models.FriendshipPair, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, caller)
	}
	return nil, nil
}

type mockMovieService struct {
	ListReelCanonFunc func(ctx context.Context) ([]*models.Movie, error)
	SearchFunc        func(ctx context.Context, title string) ([]*models.Movie, error)
	GetByImdbIDFunc   func(ctx context.Context, imdbID string) (*models.Movie, error)
	CreateFunc        func(ctx context.Context, params models.CreateMovieParams) (*models.Movie, error)
	UpdatePosterFunc  func(ctx context.Context, imdbID, poster string) (*models.Movie, error)
	DeleteFunc        func(ctx context.Context, imdbID string) error
}

func (m *mockMovieService) ListReelCanon(ctx context.Context) ([]*models.Movie, error) {
	if m.ListReelCanonFunc != nil {
		return m.ListReelCanonFunc(ctx)
	}
	return nil, nil
}

func (m *mockMovieService) Search(ctx context.Context, title string) ([]*models.Movie, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, title)
	}
	return nil, services.ErrMovieNotFound
}

func (m *mockMovieService) GetByImdbID(ctx context.Context, imdbID string) (*models.Movie, error) {
	if m.GetByImdbIDFunc != nil {
		return m.GetByImdbIDFunc(ctx, imdbID)
	}
	return &models.Movie{ImdbID: imdbID}, nil
}

func (m *mockMovieService) Create(ctx context.Context, params models.CreateMovieParams) (*models.Movie, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.Movie{ID: uuid.New(), Title: params.Title, ImdbID: params.ImdbID, IsReelCanon: params.IsReelCanon}, nil
}

func (m *mockMovieService) UpdatePoster(ctx context.Context, imdbID, poster string) (*models.Movie, error) {
	if m.UpdatePosterFunc != nil {
		return m.UpdatePosterFunc(ctx, imdbID, poster)
	}
	return &models.Movie{ImdbID: imdbID, Poster: poster}, nil
}

func (m *mockMovieService) Delete(ctx context.Context, imdbID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, imdbID)
	}
	return nil
}

type mockReelProgressService struct {
	CreateFunc       func(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error)
	ListFunc         func(ctx context.Context, userID uuid.UUID) ([]models.ReelProgressWithMovie, error)
	ListAllFunc      func(ctx context.Context) ([]models.ReelProgressWithMovie, error)
	UpdateRatingFunc func(ctx context.Context, userID, movieID uuid.UUID, rating *int) (*models.ReelProgress, error)
	DeleteFunc       func(ctx context.Context, userID, movieID uuid.UUID) error
}

func (m *mockReelProgressService) Create(ctx context.Context, userID uuid.UUID, params models.CreateReelProgressParams) (*models.ReelProgress, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, params)
	}
	return &models.ReelProgress{UserID: userID, MovieID: params.MovieID, Rating: params.Rating, IsWatched: params.IsWatched}, nil
}

func (m *mockReelProgressService) List(ctx context.Context, userID uuid.UUID) ([]models.ReelProgressWithMovie, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []models.ReelProgressWithMovie{}, nil
}

func (m *mockReelProgressService) ListAll(ctx context.Context) ([]models.ReelProgressWithMovie, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []models.ReelProgressWithMovie{}, nil
}

func (m *mockReelProgressService) UpdateRating(ctx context.Context, userID, movieID uuid.UUID, rating *int) (*models.ReelProgress, error) {
	if m.UpdateRatingFunc != nil {
		return m.UpdateRatingFunc(ctx, userID, movieID, rating)
	}
	return &models.ReelProgress{UserID: userID, MovieID: movieID, Rating: rating}, nil
}

func (m *mockReelProgressService) Delete(ctx context.Context, userID, movieID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, movieID)
	}
	return nil
}

type mockLeaderboardService struct {
	GetFunc func(ctx context.Context) (*models.Leaderboard, error)
}

func (m *mockLeaderboardService) Get(ctx context.Context) (*models.Leaderboard, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return &models.Leaderboard{Entries: []models.LeaderboardEntry{}}, nil
}

var (
	_ services.UserServiceInterface         = (*mockUserService)(nil)
	_ services.AuthServiceInterface         = (*mockAuthService)(nil)
	_ services.FriendshipWorkflowInterface  = (*mockFriendshipWorkflow)(nil)
	_ services.MovieServiceInterface        = (*mockMovieService)(nil)
	_ services.ReelProgressServiceInterface = (*mockReelProgressService)(nil)
	_ services.LeaderboardServiceInterface  = (*mockLeaderboardService)(nil)
)
