package main

import (
	"net/http"
	"strings"

	"github.com/ayushmaan703/videotube/internal/app/comments"
	"github.com/ayushmaan703/videotube/internal/app/dashboard"
	"github.com/ayushmaan703/videotube/internal/app/engagement"
	"github.com/ayushmaan703/videotube/internal/app/playlists"
	"github.com/ayushmaan703/videotube/internal/app/tweets"
	"github.com/ayushmaan703/videotube/internal/app/users"
	appvideos "github.com/ayushmaan703/videotube/internal/app/videos"
	"github.com/ayushmaan703/videotube/internal/httpapi"
	"github.com/ayushmaan703/videotube/internal/media"
	"github.com/ayushmaan703/videotube/internal/middleware"
	"github.com/ayushmaan703/videotube/internal/store"
	"github.com/ayushmaan703/videotube/internal/token"
)

// newHTTPHandler assembles services, handlers and middleware into the
// final handler chain. videoSvc is returned separately so main can drive
// the view flusher.
func newHTTPHandler(
	cfg Config,
	dataStore *store.Store,
	tokens *token.Manager,
	storage media.Storage,
	views appvideos.ViewCounter,
) (http.Handler, appvideos.Service) {
	userSvc := users.New(dataStore, tokens, storage)
	videoSvc := appvideos.New(dataStore, storage, views)
	commentSvc := comments.New(dataStore)
	tweetSvc := tweets.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	engagementSvc := engagement.New(dataStore)
	dashboardSvc := dashboard.New(dataStore)

	api := httpapi.New(
		userSvc, videoSvc, commentSvc, tweetSvc,
		playlistSvc, engagementSvc, dashboardSvc, tokens,
	)

	handler := middleware.Recovery()(api.Routes())
	handler = middleware.RequestLogging()(handler)
	return withCORS(cfg.AllowedOrigins, handler), videoSvc
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
