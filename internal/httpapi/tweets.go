package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/store"
)

type tweetRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request) {
	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	t, err := s.tweets.Create(r.Context(), viewerID(r), req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, t, "tweet created successfully")
}

func (s *Server) handleUserTweets(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, errBadQueryParam("limit"))
			return
		}
	}
	cursor, err := feed.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := s.tweets.ListForUser(r.Context(), viewerID(r), userID, limit, cursor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "tweets fetched successfully")
}

func (s *Server) handleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	t, err := s.tweets.Update(r.Context(), viewerID(r), tweetID, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, t, "tweet updated successfully")
}

func (s *Server) handleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.tweets.Delete(r.Context(), viewerID(r), tweetID); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "tweet deleted successfully")
}
