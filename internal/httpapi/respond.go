package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/logging"
	"github.com/ayushmaan703/videotube/internal/store"
	"github.com/ayushmaan703/videotube/internal/token"
)

// envelope is the uniform response body: every endpoint, success or
// failure, answers with this shape.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

func errBadPathParam(name string) error {
	return fmt.Errorf("%w: invalid %s path parameter", store.ErrInvalidInput, name)
}

func errBadQueryParam(name string) error {
	return fmt.Errorf("%w: invalid %s query parameter", store.ErrInvalidInput, name)
}

// respondError maps domain errors onto HTTP statuses. Anything unmatched
// is a 500 with the detail kept server-side.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	message := err.Error()

	switch {
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, feed.ErrBadCursor),
		errors.Is(err, store.ErrSelfSubscription):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, store.ErrInvalidRefresh),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrWrongKind):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrChannelNotFound),
		errors.Is(err, store.ErrVideoNotFound),
		errors.Is(err, store.ErrCommentNotFound),
		errors.Is(err, store.ErrTweetNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		logging.WithContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		message = "internal server error"
	}

	writeJSON(w, status, envelope{
		StatusCode: status,
		Data:       nil,
		Message:    message,
		Success:    false,
	})
}
