package http

import (
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "quizlens"
	sessionIDKey      = "sid"
)

// NewCookieStore returns a cookie store signed with secret.
func NewCookieStore(secret []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionIdentifier maps a browser to a quiz session id kept in a signed cookie.
type SessionIdentifier struct {
	store sessions.Store
}

func NewSessionIdentifier(store sessions.Store) *SessionIdentifier {
	return &SessionIdentifier{store: store}
}

// Resolve returns the session id from the request cookie, minting and
// saving a new one when there is none.
func (s *SessionIdentifier) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := s.store.Get(r, sessionCookieName)
	if err != nil {
		// a tampered or stale cookie still yields a fresh session
		log.Printf("session cookie rejected: %v", err)
	}
	if sess == nil {
		return "", fmt.Errorf("load session cookie: %w", err)
	}
	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}
