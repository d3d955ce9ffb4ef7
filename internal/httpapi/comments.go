package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/store"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
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

	page, err := s.comments.ListForVideo(r.Context(), viewerID(r), videoID, limit, cursor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "comments fetched successfully")
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	c, err := s.comments.Add(r.Context(), viewerID(r), videoID, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, c, "comment added successfully")
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	c, err := s.comments.Update(r.Context(), viewerID(r), commentID, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, c, "comment updated successfully")
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.comments.Delete(r.Context(), viewerID(r), commentID); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "comment deleted successfully")
}
