package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionName = "careslot_session"

// SessionManager carries an opaque conversation id in a signed, encrypted
// cookie. Result sets live server side, keyed by that id.
type SessionManager struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

func NewSessionManager(hashKey, blockKey []byte, maxAge time.Duration, secure bool) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	if maxAge > 0 {
		sc.MaxAge(int(maxAge.Seconds()))
	}
	return &SessionManager{sc: sc, maxAge: maxAge, secure: secure}
}

func (s *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name: sessionName, Value: value, Path: "/", MaxAge: maxAge,
		HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteLaxMode,
	}
}

func (s *SessionManager) SetSessionID(w http.ResponseWriter, id string) error {
	encoded, err := s.sc.Encode(sessionName, map[string]string{"sid": id})
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(encoded, int(s.maxAge.Seconds())))
	return nil
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *SessionManager) SessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	value := map[string]string{}
	if err := s.sc.Decode(sessionName, c.Value, &value); err != nil {
		return "", false
	}
	sid := value["sid"]
	if sid == "" {
		return "", false
	}
	return sid, true
}

type ctxKeySessionID struct{}

func sessionIDFromCtx(r *http.Request) string {
	if v, ok := r.Context().Value(ctxKeySessionID{}).(string); ok {
		return v
	}
	return ""
}

// Attach makes sure every request carries a session id, issuing a fresh
// one when the cookie is missing, expired or tampered with.
func (s *SessionManager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := s.SessionID(r)
		if !ok {
			sid = uuid.NewString()
			if err := s.SetSessionID(w, sid); err != nil {
				writeErr(w, err, http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySessionID{}, sid)))
	})
}
