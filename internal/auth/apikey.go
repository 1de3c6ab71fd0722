// Package auth resolves the API-key-identified organization on incoming
// requests.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// orgContextKey is the echo context key the resolved organization is stored
// under.
const orgContextKey = "organization"

// Auth resolves API keys to organizations.
type Auth struct {
	// keys maps API keys to organization ids.
	keys  map[string]string
	store repository.ProfileStore
}

// New creates an Auth from the configured key map.
func New(keys map[string]string, store repository.ProfileStore) *Auth {
	return &Auth{keys: keys, store: store}
}

func (a *Auth) lookup(key string) (string, bool) {
	for candidate, orgID := range a.keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return orgID, true
		}
	}
	return "", false
}

// RequireAPIKey is echo middleware that rejects requests without a valid
// X-API-Key header and attaches the identified organization to the context.
func (a *Auth) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-Key")
		if key == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing X-API-Key header")
		}
		orgID, ok := a.lookup(key)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown API key")
		}
		org, err := a.store.GetOrganization(c.Request().Context(), orgID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve organization")
		}
		if org == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "API key references an unknown organization")
		}
		c.Set(orgContextKey, org)
		return next(c)
	}
}

// OrganizationFrom returns the organization attached by RequireAPIKey, nil
// when the request was not authenticated.
func OrganizationFrom(c echo.Context) *models.Organization {
	org, _ := c.Get(orgContextKey).(*models.Organization)
	return org
}
