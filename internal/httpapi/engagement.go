package httpapi

import (
	"net/http"
	"strconv"

	"github.com/ayushmaan703/videotube/internal/feed"
)

func (s *Server) handleToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "videoId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.engagement.ToggleVideoLike(r.Context(), viewerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, res, "video like toggled successfully")
}

func (s *Server) handleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.engagement.ToggleCommentLike(r.Context(), viewerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, res, "comment like toggled successfully")
}

func (s *Server) handleToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tweetId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.engagement.ToggleTweetLike(r.Context(), viewerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, res, "tweet like toggled successfully")
}

func (s *Server) handleLikedVideos(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, errBadQueryParam("limit"))
			return
		}
		limit = n
	}
	after, err := feed.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := s.engagement.LikedVideos(r.Context(), viewerID(r), limit, after)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "liked videos fetched successfully")
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.engagement.ToggleSubscription(r.Context(), viewerID(r), channelID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, res, "subscription toggled successfully")
}

func (s *Server) handleChannelSubscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	subs, err := s.engagement.ChannelSubscribers(r.Context(), channelID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, subs, "subscribers fetched successfully")
}

func (s *Server) handleSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	channels, err := s.engagement.SubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
