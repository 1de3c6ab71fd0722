// Package api contains the HTTP handlers for the profile registry.
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/auth"
	"profile-registry/backend/internal/services"
	"profile-registry/backend/pkg/models"
)

// Server holds the dependencies for the API server.
type Server struct {
	Svc *services.ProfileService
}

// NewServer creates a new Server.
func NewServer(svc *services.ProfileService) *Server {
	return &Server{Svc: svc}
}

// RegisterRoutes mounts the API routes on the given group.
func (s *Server) RegisterRoutes(g *echo.Group) {
	g.POST("/profiles", s.ImportProfile)
	g.GET("/profiles/:iri", s.GetProfile)
	g.GET("/profiles/:iri/versions/:n", s.GetVersion)
	g.POST("/profiles/:iri/versions/:n/publish", s.PublishVersion)
	g.DELETE("/profiles/:iri/versions/:n", s.DeleteVersion)
	g.POST("/profiles/:iri/versions/:n/harvest", s.HarvestStatements)
}

// ProblemDetails represents an RFC 7807 Problem Details response.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// problem maps engine errors onto problem+json responses: conflicts to 409,
// validation failures to 422, missing parents to 404.
func problem(c echo.Context, err error) error {
	var (
		conflict   *apperr.ConflictError
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		invalid    *apperr.InvalidInputError
	)
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	switch {
	case errors.As(err, &conflict):
		status, title = http.StatusConflict, "Conflict"
	case errors.As(err, &validation):
		status, title = http.StatusUnprocessableEntity, "Validation Failed"
	case errors.As(err, &notFound):
		status, title = http.StatusNotFound, "Not Found"
	case errors.As(err, &invalid):
		status, title = http.StatusBadRequest, "Invalid Input"
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: err.Error(),
	})
}

func versionParams(c echo.Context) (string, int, error) {
	profileIRI, err := url.PathUnescape(c.Param("iri"))
	if err != nil || profileIRI == "" {
		return "", 0, apperr.InvalidInputf("invalid profile IRI")
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return "", 0, apperr.InvalidInputf("invalid version number %q", c.Param("n"))
	}
	return profileIRI, n, nil
}

// ImportProfile ingests a profile version document.
// (POST /api/v1/profiles)
func (s *Server) ImportProfile(c echo.Context) error {
	var doc models.ProfileDocument
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	result, err := s.Svc.ImportProfile(c.Request().Context(), doc, auth.OrganizationFrom(c))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetProfile returns a profile with its current version references.
// (GET /api/v1/profiles/:iri)
func (s *Server) GetProfile(c echo.Context) error {
	profileIRI, err := url.PathUnescape(c.Param("iri"))
	if err != nil || profileIRI == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile IRI")
	}
	profile, err := s.Svc.GetProfile(c.Request().Context(), profileIRI)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetVersion returns a version and the templates it owns.
// (GET /api/v1/profiles/:iri/versions/:n)
func (s *Server) GetVersion(c echo.Context) error {
	profileIRI, n, err := versionParams(c)
	if err != nil {
		return problem(c, err)
	}
	detail, err := s.Svc.GetVersion(c.Request().Context(), profileIRI, n)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// PublishVersion transitions a draft version to published.
// (POST /api/v1/profiles/:iri/versions/:n/publish)
func (s *Server) PublishVersion(c echo.Context) error {
	profileIRI, n, err := versionParams(c)
	if err != nil {
		return problem(c, err)
	}
	version, err := s.Svc.PublishVersion(c.Request().Context(), profileIRI, n)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, version)
}

// DeleteVersion removes a draft version, orphaning its owned concepts.
// (DELETE /api/v1/profiles/:iri/versions/:n)
func (s *Server) DeleteVersion(c echo.Context) error {
	profileIRI, n, err := versionParams(c)
	if err != nil {
		return problem(c, err)
	}
	if err := s.Svc.DeleteVersion(c.Request().Context(), profileIRI, n); err != nil {
		return problem(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HarvestStatements classifies a batch of statements against a draft
// version and stores the batch for review.
// (POST /api/v1/profiles/:iri/versions/:n/harvest)
func (s *Server) HarvestStatements(c echo.Context) error {
	profileIRI, n, err := versionParams(c)
	if err != nil {
		return problem(c, err)
	}
	var statements []models.StatementDocument
	if err := c.Bind(&statements); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	data, err := s.Svc.HarvestStatements(c.Request().Context(), profileIRI, n, statements)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HandleHealth returns basic health status.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:  "ok",
		Service: "profile-registry",
		Version: "1.0.0",
	})
}
