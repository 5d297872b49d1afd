package main

import (
	"net/http"

	"github.com/HammerMeetNail/reelcanon/internal/config"
	"github.com/HammerMeetNail/reelcanon/internal/handlers"
	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/metrics"
	"github.com/HammerMeetNail/reelcanon/internal/middleware"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

// appServices is everything the router needs from the service layer.
type appServices struct {
	users        services.UserServiceInterface
	auth         services.AuthServiceInterface
	friendships  services.FriendshipWorkflowInterface
	movies       services.MovieServiceInterface
	reelProgress services.ReelProgressServiceInterface
	leaderboard  services.LeaderboardServiceInterface
	db           handlers.HealthChecker
	redis        handlers.HealthChecker
}

func newRouter(cfg *config.Config, svc appServices, limiter *middleware.RateLimiter, logger *logging.Logger) http.Handler {
	healthHandler := handlers.NewHealthHandler(svc.db, svc.redis)
	authHandler := handlers.NewAuthHandler(svc.users, svc.auth)
	userHandler := handlers.NewUserHandler(svc.users, svc.auth)
	friendshipHandler := handlers.NewFriendshipHandler(svc.friendships)
	movieHandler := handlers.NewMovieHandler(svc.movies)
	reelProgressHandler := handlers.NewReelProgressHandler(svc.reelProgress)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.leaderboard)

	authMiddleware := middleware.NewAuthMiddleware(svc.auth, cfg.Auth.TokenHeader)
	requireAuth := func(h http.HandlerFunc) http.Handler { return authMiddleware.RequireAuth(h) }
	requireAdmin := func(h http.HandlerFunc) http.Handler { return authMiddleware.RequireAdmin(h) }
	limited := func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth
	mux.Handle("POST /api/auth/register", limited(authHandler.Register))
	mux.Handle("POST /api/auth/login", limited(authHandler.Login))
	mux.Handle("POST /api/auth/logout", requireAuth(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.Me))

	// Users. {userId} accepts "me"; other targets need admin except for GET,
	// which returns a public profile.
	mux.HandleFunc("GET /api/users/{userId}", userHandler.Get)
	mux.Handle("PUT /api/users/{userId}", requireAuth(userHandler.Update))
	mux.Handle("DELETE /api/users/{userId}", requireAuth(userHandler.Delete))
	mux.Handle("PUT /api/users/{userId}/password", requireAuth(userHandler.ChangePassword))

	// Friendships
	mux.Handle("POST /api/friendships", requireAuth(friendshipHandler.SendRequest))
	mux.Handle("GET /api/friendships", requireAuth(friendshipHandler.List))
	mux.Handle("GET /api/friendships/all", requireAdmin(friendshipHandler.ListAll))
	mux.Handle("GET /api/friendships/users/{userId}", requireAuth(friendshipHandler.List))
	mux.Handle("PUT /api/friendships/{id}/accept", requireAuth(friendshipHandler.Accept))
	mux.Handle("DELETE /api/friendships/{userId}", requireAuth(friendshipHandler.Remove))
	mux.Handle("DELETE /api/friendships/users/{userId}/{otherUserId}", requireAdmin(friendshipHandler.AdminRemove))

	// Movies
	mux.HandleFunc("GET /api/movies/reel-canon", movieHandler.ReelCanon)
	mux.HandleFunc("GET /api/movies/search", movieHandler.Search)
	mux.HandleFunc("GET /api/movies/{imdbId}", movieHandler.Get)
	mux.Handle("POST /api/movies", requireAuth(movieHandler.Create))
	mux.Handle("PATCH /api/movies/{imdbId}", requireAdmin(movieHandler.UpdatePoster))
	mux.Handle("DELETE /api/movies/{imdbId}", requireAdmin(movieHandler.Delete))

	// Reel progress
	mux.Handle("GET /api/reel-progress", requireAuth(reelProgressHandler.List))
	mux.Handle("POST /api/reel-progress", requireAuth(reelProgressHandler.Create))
	mux.Handle("PATCH /api/reel-progress/{movieId}", requireAuth(reelProgressHandler.UpdateRating))
	mux.Handle("DELETE /api/reel-progress/{movieId}", requireAuth(reelProgressHandler.Delete))
	mux.Handle("GET /api/reel-progress/admin", requireAdmin(reelProgressHandler.AdminList))
	mux.Handle("DELETE /api/reel-progress/admin/users/{userId}/movies/{movieId}", requireAdmin(reelProgressHandler.AdminDelete))

	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Get)

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = middleware.NewMetrics().Apply(handler)
	handler = authMiddleware.Authenticate(handler)
	handler = middleware.NewCORS(cfg.CORS.AllowedOrigins, cfg.Auth.TokenHeader).Apply(handler)
	handler = middleware.NewSecurityHeaders(cfg.Server.Secure).Apply(handler)
	handler = middleware.NewRequestLogger(logger).Apply(handler)
	return handler
}
