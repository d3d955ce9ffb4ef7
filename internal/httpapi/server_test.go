package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayushmaan703/videotube/internal/app/engagement"
	"github.com/ayushmaan703/videotube/internal/app/users"
	"github.com/ayushmaan703/videotube/internal/app/videos"
	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
	"github.com/ayushmaan703/videotube/internal/token"
)

// stubTokens accepts exactly one access token and maps it to viewer 7.
type stubTokens struct{}

func (stubTokens) Verify(raw string, kind token.Kind) (int64, error) {
	if raw == "good-token" && kind == token.Access {
		return 7, nil
	}
	return 0, token.ErrInvalidToken
}

type stubUsers struct {
	users.Service
	login func(ctx context.Context, identifier, password string) (*models.User, token.Pair, error)
}

func (s stubUsers) Login(ctx context.Context, identifier, password string) (*models.User, token.Pair, error) {
	return s.login(ctx, identifier, password)
}

type stubVideos struct {
	videos.Service
	list func(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error)
}

func (s stubVideos) List(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error) {
	return s.list(ctx, opts)
}

type stubEngagement struct {
	engagement.Service
	toggleVideoLike func(ctx context.Context, viewerID, videoID int64) (engagement.ToggleResult, error)
	likedVideos     func(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error)
}

func (s stubEngagement) ToggleVideoLike(ctx context.Context, viewerID, videoID int64) (engagement.ToggleResult, error) {
	return s.toggleVideoLike(ctx, viewerID, videoID)
}

func (s stubEngagement) LikedVideos(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error) {
	return s.likedVideos(ctx, viewerID, limit, after)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding response envelope: %v", err)
	}
	return env
}

func TestHealthz(t *testing.T) {
	srv := New(nil, nil, nil, nil, nil, nil, nil, stubTokens{})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.StatusCode != http.StatusOK {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestLoginSetsSessionCookies(t *testing.T) {
	usersSvc := stubUsers{
		login: func(ctx context.Context, identifier, password string) (*models.User, token.Pair, error) {
			if identifier != "alice" || password != "pw" {
				t.Fatalf("unexpected credentials %q/%q", identifier, password)
			}
			return &models.User{ID: 1, Username: "alice"},
				token.Pair{AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	srv := New(usersSvc, nil, nil, nil, nil, nil, nil, stubTokens{})

	body := strings.NewReader(`{"username":"alice","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success envelope, got %+v", env)
	}
	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names["accessToken"] || !names["refreshToken"] {
		t.Fatalf("expected session cookies, got %v", names)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	srv := New(nil, nil, nil, nil, nil, nil, nil, stubTokens{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatalf("expected failure envelope, got %+v", env)
	}
}

func TestToggleVideoLikeRoutesViewer(t *testing.T) {
	eng := stubEngagement{
		toggleVideoLike: func(ctx context.Context, viewerID, videoID int64) (engagement.ToggleResult, error) {
			if viewerID != 7 {
				t.Fatalf("expected viewer 7, got %d", viewerID)
			}
			if videoID != 42 {
				t.Fatalf("expected video 42, got %d", videoID)
			}
			return engagement.ToggleResult{Active: true}, nil
		},
	}
	srv := New(nil, nil, nil, nil, nil, eng, nil, stubTokens{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/42", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListVideosIsPublic(t *testing.T) {
	vids := stubVideos{
		list: func(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error) {
			if opts.Query != "cats" {
				t.Fatalf("expected query cats, got %q", opts.Query)
			}
			return feed.Page[models.VideoFeedItem]{HasNextPage: false}, nil
		},
	}
	srv := New(nil, vids, nil, nil, nil, nil, nil, stubTokens{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?query=cats", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLikedVideosForwardsCursor(t *testing.T) {
	boundary := feed.CreatedCursor(time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC))
	eng := stubEngagement{
		likedVideos: func(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error) {
			if viewerID != 7 {
				t.Fatalf("expected viewer 7, got %d", viewerID)
			}
			if after == nil || !after.CreatedAt.Equal(boundary.CreatedAt) {
				t.Fatalf("expected boundary cursor, got %+v", after)
			}
			return feed.Page[models.VideoFeedItem]{}, nil
		},
	}
	srv := New(nil, nil, nil, nil, nil, eng, nil, stubTokens{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos?cursor="+boundary.Encode(), nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListVideosRejectsBadCursor(t *testing.T) {
	srv := New(nil, stubVideos{}, nil, nil, nil, nil, nil, stubTokens{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?cursor=!!not-a-cursor!!", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
