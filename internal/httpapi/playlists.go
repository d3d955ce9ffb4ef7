package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ayushmaan703/videotube/internal/store"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	p, err := s.playlists.Create(r.Context(), viewerID(r), req.Name, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, p, "playlist created successfully")
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, p, "playlist fetched successfully")
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	p, err := s.playlists.Update(r.Context(), viewerID(r), id, req.Name, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, p, "playlist updated successfully")
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.playlists.Delete(r.Context(), viewerID(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "playlist deleted successfully")
}

func (s *Server) handleAddPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := s.playlists.AddVideo(r.Context(), viewerID(r), playlistID, videoID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, p, "video added to playlist successfully")
}

func (s *Server) handleRemovePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := s.playlists.RemoveVideo(r.Context(), viewerID(r), playlistID, videoID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, p, "video removed from playlist successfully")
}

func (s *Server) handleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	lists, err := s.playlists.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, lists, "playlists fetched successfully")
}
