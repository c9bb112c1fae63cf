package user

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/fame-list-backend/pkg/token"
)

func newRouter(t *testing.T) (*gin.Engine, *token.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, _, err := token.NewSigner("test-secret")
	require.NoError(t, err)

	r := gin.New()
	r.Use(EnsureClientMiddleware(signer))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ClientIDKey))
	})
	return r, signer
}

func TestEnsureClientMiddleware_IssuesCookie(t *testing.T) {
	r, signer := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	assert.True(t, IsValidUUID(id))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	got, ok := signer.Verify(cookies[0].Value)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestEnsureClientMiddleware_KeepsValidCookie(t *testing.T) {
	r, signer := newRouter(t)
	id, err := NewClientID()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signer.Sign(id)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestEnsureClientMiddleware_ReplacesForgedCookie(t *testing.T) {
	r, _ := newRouter(t)
	id, err := NewClientID()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id + ".forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, id, w.Body.String())
	assert.Len(t, w.Result().Cookies(), 1)
}
