package httpapi

import "net/http"

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context(), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, stats, "channel stats fetched successfully")
}

func (s *Server) handleDashboardVideos(w http.ResponseWriter, r *http.Request) {
	vids, err := s.dashboard.Videos(r.Context(), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, vids, "channel videos fetched successfully")
}
