package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/middleware"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=200"`
	Password string `json:"password" validate:"required,max=200"`
}

// Login handles POST /auth/login.
// On success the session is returned in the body and set as an HttpOnly cookie.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}

	http.SetCookie(w, s.sessionCookie(sess))
	writeJSON(w, http.StatusOK, sess)
}

// Logout handles POST /auth/logout. Tokens are stateless, so logging out only
// clears the cookie.
func (s *Server) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionCookie(sess domain.Session) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
