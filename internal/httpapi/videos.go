package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayushmaan703/videotube/internal/app/videos"
	"github.com/ayushmaan703/videotube/internal/store"
)

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	opts, err := feedOptions(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := s.videos.List(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "videos fetched successfully")
}

func (s *Server) handlePublishVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, errBadQueryParam("multipart form"))
		return
	}

	in := videos.PublishInput{
		OwnerID:     viewerID(r),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := r.FormValue("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			respondError(w, r, errBadQueryParam("duration"))
			return
		}
		in.Duration = d
	}

	videoFile, _, err := formUpload(r, "videoFile")
	if err != nil {
		respondError(w, r, err)
		return
	}
	thumbnail, _, err := formUpload(r, "thumbnail")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if videoFile == nil || thumbnail == nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	in.VideoFile = videos.Upload{Body: videoFile.Body, ContentType: videoFile.ContentType}
	in.Thumbnail = videos.Upload{Body: thumbnail.Body, ContentType: thumbnail.ContentType}

	v, err := s.videos.Publish(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, v, "video published successfully")
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	d, err := s.videos.Get(r.Context(), viewerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, d, "video fetched successfully")
}

func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	v, err := s.videos.Update(r.Context(), viewerID(r), id, req.Title, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, v, "video updated successfully")
}

func (s *Server) handleUpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, errBadQueryParam("multipart form"))
		return
	}
	up, _, err := formUpload(r, "thumbnail")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if up == nil {
		respondError(w, r, errBadQueryParam("thumbnail"))
		return
	}
	v, err := s.videos.UpdateThumbnail(r.Context(), viewerID(r), id,
		videos.Upload{Body: up.Body, ContentType: up.ContentType})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, v, "thumbnail updated successfully")
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.videos.Delete(r.Context(), viewerID(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "video deleted successfully")
}

func (s *Server) handleTogglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	published, err := s.videos.TogglePublish(r.Context(), viewerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state toggled successfully")
}
