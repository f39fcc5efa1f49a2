package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

const SessionCookieName = "session"

// SessionContext is the value stored in the session cookie.
type SessionContext struct {
	Token string `json:"jwt"`
}

// SessionStore reads and writes the session cookie. Values are signed, not
// encrypted: clients can read the token but not alter it.
type SessionStore struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func NewSessionStore(secret string, secure bool) *SessionStore {
	codec := securecookie.New([]byte(secret), nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0)
	return &SessionStore{codec: codec, secure: secure}
}

func (s *SessionStore) Create(w http.ResponseWriter, sc SessionContext) error {
	encoded, err := s.codec.Encode(SessionCookieName, sc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the session carried by r. A missing or tampered cookie yields
// an error.
func (s *SessionStore) Read(r *http.Request) (SessionContext, error) {
	var sc SessionContext
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return sc, err
	}
	if err := s.codec.Decode(SessionCookieName, c.Value, &sc); err != nil {
		return sc, fmt.Errorf("failed to decode session: %w", err)
	}
	return sc, nil
}

func (s *SessionStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the session authenticator,
// or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
