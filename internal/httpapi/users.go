package httpapi

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/ayushmaan703/videotube/internal/app/users"
	"github.com/ayushmaan703/videotube/internal/models"
	"github.com/ayushmaan703/videotube/internal/store"
	"github.com/ayushmaan703/videotube/internal/token"
)

// maxUploadBytes caps multipart request memory buffering; larger parts
// spill to temp files.
const maxUploadBytes = 32 << 20

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// formUpload adapts one multipart file into a service upload. Returns nil
// when the field is absent.
func formUpload(r *http.Request, field string) (*users.Upload, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errBadQueryParam(field)
	}
	return &users.Upload{Body: file, ContentType: header.Header.Get("Content-Type")}, header, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, errBadQueryParam("multipart form"))
		return
	}

	in := users.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
	}
	avatar, _, err := formUpload(r, "avatar")
	if err != nil {
		respondError(w, r, err)
		return
	}
	in.Avatar = avatar
	cover, _, err := formUpload(r, "coverImage")
	if err != nil {
		respondError(w, r, err)
		return
	}
	in.Cover = cover

	u, err := s.users.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, u, "user registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	u, pair, err := s.users.Login(r.Context(), identifier, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	setSessionCookies(w, pair)
	respond(w, http.StatusOK, sessionResponse{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), viewerID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	clearSessionCookies(w)
	respond(w, http.StatusOK, nil, "logged out successfully")
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		// fall back to the cookie set at login
		if c, cerr := r.Cookie("refreshToken"); cerr == nil {
			req.RefreshToken = c.Value
		}
	}
	if req.RefreshToken == "" {
		respondError(w, r, store.ErrInvalidRefresh)
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, err)
		return
	}
	setSessionCookies(w, pair)
	respond(w, http.StatusOK, map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "tokens refreshed successfully")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.CurrentUser(r.Context(), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u, "current user fetched successfully")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	if err := s.users.ChangePassword(r.Context(), viewerID(r), req.OldPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "password changed successfully")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, store.ErrInvalidInput)
		return
	}
	u, err := s.users.UpdateAccount(r.Context(), viewerID(r), req.FullName, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u, "account details updated successfully")
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleUserImage(w, r, "avatar", s.users.UpdateAvatar)
}

func (s *Server) handleUpdateCover(w http.ResponseWriter, r *http.Request) {
	s.handleUserImage(w, r, "coverImage", s.users.UpdateCover)
}

func (s *Server) handleUserImage(
	w http.ResponseWriter, r *http.Request, field string,
	apply func(ctx context.Context, id int64, up users.Upload) (*models.User, error),
) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, errBadQueryParam("multipart form"))
		return
	}
	up, _, err := formUpload(r, field)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if up == nil {
		respondError(w, r, errBadQueryParam(field))
		return
	}
	u, err := apply(r.Context(), viewerID(r), *up)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u, "image updated successfully")
}

func setSessionCookies(w http.ResponseWriter, pair token.Pair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.Channel(r.Context(), viewerID(r), r.PathValue("username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, profile, "channel profile fetched successfully")
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	page, err := s.users.WatchHistory(r.Context(), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "watch history fetched successfully")
}
