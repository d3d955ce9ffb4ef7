// Package httpapi wires the videotube HTTP surface: routing, auth,
// request decoding and the uniform response envelope.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayushmaan703/videotube/internal/app/comments"
	"github.com/ayushmaan703/videotube/internal/app/dashboard"
	"github.com/ayushmaan703/videotube/internal/app/engagement"
	"github.com/ayushmaan703/videotube/internal/app/playlists"
	"github.com/ayushmaan703/videotube/internal/app/tweets"
	"github.com/ayushmaan703/videotube/internal/app/users"
	"github.com/ayushmaan703/videotube/internal/app/videos"
	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/logging"
	"github.com/ayushmaan703/videotube/internal/token"
)

// Tokens verifies bearer tokens for the auth middleware.
type Tokens interface {
	Verify(raw string, kind token.Kind) (int64, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users      users.Service
	videos     videos.Service
	comments   comments.Service
	tweets     tweets.Service
	playlists  playlists.Service
	engagement engagement.Service
	dashboard  dashboard.Service
	tokens     Tokens
}

// New configures a Server with the given services.
func New(
	usersSvc users.Service,
	videosSvc videos.Service,
	commentsSvc comments.Service,
	tweetsSvc tweets.Service,
	playlistsSvc playlists.Service,
	engagementSvc engagement.Service,
	dashboardSvc dashboard.Service,
	tokens Tokens,
) *Server {
	return &Server{
		users:      usersSvc,
		videos:     videosSvc,
		comments:   commentsSvc,
		tweets:     tweetsSvc,
		playlists:  playlistsSvc,
		engagement: engagementSvc,
		dashboard:  dashboardSvc,
		tokens:     tokens,
	}
}

// Routes exposes the full HTTP surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// public
	mux.HandleFunc("POST /api/v1/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/users/refresh-token", s.handleRefreshToken)
	mux.HandleFunc("GET /api/v1/videos", s.optionalAuth(s.handleListVideos))

	// account
	mux.HandleFunc("POST /api/v1/users/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/v1/users/current-user", s.requireAuth(s.handleCurrentUser))
	mux.HandleFunc("POST /api/v1/users/change-password", s.requireAuth(s.handleChangePassword))
	mux.HandleFunc("PATCH /api/v1/users/update-account", s.requireAuth(s.handleUpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar", s.requireAuth(s.handleUpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/cover-image", s.requireAuth(s.handleUpdateCover))
	mux.HandleFunc("GET /api/v1/users/channel/{username}", s.requireAuth(s.handleChannel))
	mux.HandleFunc("GET /api/v1/users/history", s.requireAuth(s.handleWatchHistory))

	// videos
	mux.HandleFunc("POST /api/v1/videos", s.requireAuth(s.handlePublishVideo))
	mux.HandleFunc("GET /api/v1/videos/{id}", s.requireAuth(s.handleGetVideo))
	mux.HandleFunc("PATCH /api/v1/videos/{id}", s.requireAuth(s.handleUpdateVideo))
	mux.HandleFunc("PATCH /api/v1/videos/{id}/thumbnail", s.requireAuth(s.handleUpdateThumbnail))
	mux.HandleFunc("DELETE /api/v1/videos/{id}", s.requireAuth(s.handleDeleteVideo))
	mux.HandleFunc("PATCH /api/v1/videos/{id}/toggle-publish", s.requireAuth(s.handleTogglePublish))

	// comments
	mux.HandleFunc("GET /api/v1/comments/{videoId}", s.requireAuth(s.handleListComments))
	mux.HandleFunc("POST /api/v1/comments/{videoId}", s.requireAuth(s.handleAddComment))
	mux.HandleFunc("PATCH /api/v1/comments/c/{commentId}", s.requireAuth(s.handleUpdateComment))
	mux.HandleFunc("DELETE /api/v1/comments/c/{commentId}", s.requireAuth(s.handleDeleteComment))

	// tweets
	mux.HandleFunc("POST /api/v1/tweets", s.requireAuth(s.handleCreateTweet))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", s.requireAuth(s.handleUserTweets))
	mux.HandleFunc("PATCH /api/v1/tweets/{id}", s.requireAuth(s.handleUpdateTweet))
	mux.HandleFunc("DELETE /api/v1/tweets/{id}", s.requireAuth(s.handleDeleteTweet))

	// likes
	mux.HandleFunc("POST /api/v1/likes/toggle/v/{videoId}", s.requireAuth(s.handleToggleVideoLike))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{commentId}", s.requireAuth(s.handleToggleCommentLike))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{tweetId}", s.requireAuth(s.handleToggleTweetLike))
	mux.HandleFunc("GET /api/v1/likes/videos", s.requireAuth(s.handleLikedVideos))

	// subscriptions
	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", s.requireAuth(s.handleToggleSubscription))
	mux.HandleFunc("GET /api/v1/subscriptions/c/{channelId}", s.requireAuth(s.handleChannelSubscribers))
	mux.HandleFunc("GET /api/v1/subscriptions/u/{subscriberId}", s.requireAuth(s.handleSubscribedChannels))

	// playlists
	mux.HandleFunc("POST /api/v1/playlists", s.requireAuth(s.handleCreatePlaylist))
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.requireAuth(s.handleGetPlaylist))
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", s.requireAuth(s.handleUpdatePlaylist))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.requireAuth(s.handleDeletePlaylist))
	mux.HandleFunc("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", s.requireAuth(s.handleAddPlaylistVideo))
	mux.HandleFunc("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", s.requireAuth(s.handleRemovePlaylistVideo))
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", s.requireAuth(s.handleUserPlaylists))

	// dashboard
	mux.HandleFunc("GET /api/v1/dashboard/stats", s.requireAuth(s.handleDashboardStats))
	mux.HandleFunc("GET /api/v1/dashboard/videos", s.requireAuth(s.handleDashboardVideos))

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"}, "service healthy")
}

// bearerViewer extracts and verifies the access token, returning the
// viewer id or zero when the header is absent or invalid.
func (s *Server) bearerViewer(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return 0, token.ErrInvalidToken
	}
	return s.tokens.Verify(raw, token.Access)
}

// requireAuth rejects requests without a valid access token and stores the
// viewer id on the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := s.bearerViewer(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), logging.ViewerIDKey, viewerID)
		next(w, r.WithContext(ctx))
	}
}

// optionalAuth attaches the viewer id when a valid token is present but
// lets anonymous requests through.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if viewerID, err := s.bearerViewer(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), logging.ViewerIDKey, viewerID))
		}
		next(w, r)
	}
}

// viewerID returns the authenticated viewer from the request context, or
// zero for anonymous requests.
func viewerID(r *http.Request) int64 {
	id, _ := r.Context().Value(logging.ViewerIDKey).(int64)
	return id
}

// pathID parses a numeric path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadPathParam(name)
	}
	return id, nil
}

// feedOptions decodes the shared listing query parameters.
func feedOptions(r *http.Request) (feed.Options, error) {
	q := r.URL.Query()
	opts := feed.Options{Query: strings.TrimSpace(q.Get("query"))}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errBadQueryParam("limit")
		}
		opts.Limit = n
	}
	if raw := q.Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return opts, errBadQueryParam("userId")
		}
		opts.OwnerID = id
	}
	cursor, err := feed.ParseCursor(q.Get("cursor"))
	if err != nil {
		return opts, err
	}
	opts.After = cursor

	if field := q.Get("sortBy"); field != "" {
		dir := feed.SortDesc
		if strings.EqualFold(q.Get("sortType"), "asc") {
			dir = feed.SortAsc
		}
		opts.Sort = &feed.Sort{Field: field, Dir: dir}
	}
	return opts, nil
}
