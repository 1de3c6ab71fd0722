package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

func newAuthContext(t *testing.T, apiKey string) (*Auth, echo.Context) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, store.CreateOrganization(context.Background(), &models.Organization{
		ID:   "org-1",
		Name: "Test Org",
	}))
	a := New(map[string]string{"secret-key": "org-1"}, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return a, e.NewContext(req, httptest.NewRecorder())
}

func TestRequireAPIKeyMissingHeader(t *testing.T) {
	a, c := newAuthContext(t, "")
	err := a.RequireAPIKey(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAPIKeyUnknownKey(t *testing.T) {
	a, c := newAuthContext(t, "wrong-key")
	err := a.RequireAPIKey(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAPIKeyAttachesOrganization(t *testing.T) {
	a, c := newAuthContext(t, "secret-key")

	called := false
	err := a.RequireAPIKey(func(c echo.Context) error {
		called = true
		org := OrganizationFrom(c)
		require.NotNil(t, org)
		assert.Equal(t, "org-1", org.ID)
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequireAPIKeyUnknownOrganization(t *testing.T) {
	store := repository.NewMemoryStore()
	a := New(map[string]string{"secret-key": "missing-org"}, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret-key")
	c := e.NewContext(req, httptest.NewRecorder())

	err := a.RequireAPIKey(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestOrganizationFromUnauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, OrganizationFrom(c))
}
