package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndRead(t *testing.T) {
	store := NewSessionStore("session-secret", false)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Create(rec, SessionContext{Token: "abc"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	sc, err := store.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", sc.Token)
}

func TestSessionStore_TamperedCookie(t *testing.T) {
	store := NewSessionStore("session-secret", false)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Create(rec, SessionContext{Token: "abc"}))
	c := rec.Result().Cookies()[0]

	other := NewSessionStore("another-secret", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)

	_, err := other.Read(req)
	assert.Error(t, err)
}

func TestSessionStore_MissingAndClear(t *testing.T) {
	store := NewSessionStore("session-secret", true)

	_, err := store.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, http.ErrNoCookie)

	rec := httptest.NewRecorder()
	store.Clear(rec)
	c := rec.Result().Cookies()[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.Secure)
}

func TestIdentityContext(t *testing.T) {
	assert.Nil(t, IdentityFrom(context.Background()))

	ctx := WithIdentity(context.Background(), &alice)
	assert.Equal(t, &alice, IdentityFrom(ctx))
}
