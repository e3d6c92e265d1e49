package site

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"walkintovoid/apperror"
	"walkintovoid/auth"
	"walkintovoid/database"

	"go.uber.org/zap"
)

const oauthStateCookieName = "oauth_state"

type registerRequest struct {
	Email string `json:"email"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.Otp.RequestOtp(r.Context(), req.Email); err != nil {
		s.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Verification OTP sent to email.",
	})
}

type verifyOtpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Otp      string `json:"otp"`
}

func (s *Server) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req verifyOtpRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	userID, err := s.Otp.VerifyOtp(r.Context(), auth.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Otp:      req.Otp,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, map[string]any{"success": true, "userId": userID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  *database.User `json:"user"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *database.User) {
	token, err := s.Sessions.Issue(u)
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Error signing in"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthenticatedUserTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.Options.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Options.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	renderJSON(w, http.StatusOK, sessionResponse{Token: token, User: u})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	u, err := s.Credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.startSession(w, r, u)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func generateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Server) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.Google == nil {
		s.renderError(w, r, apperror.NotFound("Google sign-in is not configured"))
		return
	}
	state, err := generateState()
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, ""))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.Options.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.Google.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.Google == nil {
		s.renderError(w, r, apperror.NotFound("Google sign-in is not configured"))
		return
	}
	cookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		s.renderError(w, r, apperror.Validation("Invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookieName, Value: "", Path: "/auth/oauth", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		s.renderError(w, r, apperror.Validation("Missing authorization code"))
		return
	}
	profile, err := s.Google.Exchange(r.Context(), code)
	if err != nil {
		s.Logger.Warn("google code exchange failed", zap.Error(err))
		s.renderError(w, r, apperror.Unauthorized("Google sign-in failed"))
		return
	}
	u, err := s.OAuth.SignIn(r.Context(), profile)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.startSession(w, r, u)
}
