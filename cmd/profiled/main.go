package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"profile-registry/backend/internal/api"
	"profile-registry/backend/internal/auth"
	"profile-registry/backend/internal/config"
	"profile-registry/backend/internal/importer"
	"profile-registry/backend/internal/logging"
	"profile-registry/backend/internal/mcp"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/internal/services"
	"profile-registry/backend/internal/tls"
	"profile-registry/backend/pkg/models"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "profiled",
		Short: "Profile registry backend",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	root.AddCommand(serveCmd(), seedCmd(), importCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func buildService(ctx context.Context, logger *logging.Logger) (*services.ProfileService, *repository.PostgresProfileStore, *pgxpool.Pool, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("configuration loading failed: %w", err)
	}

	pool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("database initialization failed: %w", err)
	}

	store := repository.NewPostgresProfileStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("schema initialization failed: %w", err)
	}

	resolver := importer.NewResolver(store,
		importer.NewLRUCache[*models.Concept](cfg.Cache.Size, cfg.Cache.TTL),
		importer.NewLRUCache[*models.Template](cfg.Cache.Size, cfg.Cache.TTL),
	)
	svc, err := services.NewProfileService(store, resolver, logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("service initialization failed: %w", err)
	}
	return svc, store, pool, cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := logging.NewLogger()

			svc, store, pool, cfg, err := buildService(ctx, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger.Info("Starting Profile Registry Service")

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())
			e.Use(otelecho.Middleware("profile-registry"))

			apiServer := api.NewServer(svc)
			e.GET("/health", apiServer.HandleHealth)

			authz := auth.New(cfg.Auth.APIKeys, store)
			apiGroup := e.Group("/api/v1")
			apiGroup.Use(authz.RequireAPIKey)
			apiServer.RegisterRoutes(apiGroup)

			logger.Info("REST API handlers mounted")

			mcpServer := mcp.NewServer(svc)
			mcpHandlers := http.NewServeMux()
			mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
			e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

			logger.Info("MCP protocol handlers mounted")

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			server := &http.Server{
				Addr:         addr,
				Handler:      e,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
				if cfg.TLS.Enable {
					if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
						if len(cfg.TLS.Hostnames) > 0 {
							if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames, cfg.TLS.ValidFor); err != nil {
								logger.Error("failed to generate self-signed cert", "error", err)
							}
						}
					}
					serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
				} else {
					serverErrors <- server.ListenAndServe()
				}
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				if err != http.ErrServerClosed {
					return fmt.Errorf("server error: %w", err)
				}
			case sig := <-shutdown:
				logger.Info("Shutdown signal received", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown error", "error", err)
					if err := server.Close(); err != nil {
						logger.Error("Server close error", "error", err)
					}
				}

				logger.Info("Server stopped gracefully")
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a development organization and sample profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := logging.NewLogger()

			svc, store, pool, _, err := buildService(ctx, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			org, err := store.GetOrganization(ctx, "dev-org")
			if err != nil {
				return err
			}
			if org == nil {
				org = &models.Organization{
					ID:        "dev-org",
					Name:      "Local Dev Organization",
					CreatedAt: time.Now().UTC(),
					UpdatedAt: time.Now().UTC(),
				}
				if err := store.CreateOrganization(ctx, org); err != nil {
					return fmt.Errorf("failed to create organization: %w", err)
				}
				logger.Info("Created organization", "id", org.ID)
			} else {
				logger.Info("Found existing organization", "id", org.ID)
			}

			profileIRI := "https://example.org/profiles/" + uuid.New().String()
			doc := models.ProfileDocument{
				ID: profileIRI,
				Version: models.VersionDocument{
					Number:    1,
					CreatedBy: "seed-script",
					Concepts: []models.ConceptDocument{
						{Type: models.ConceptTypeVerb, PrefLabel: models.LanguageMap{"en": "launched"}, Definition: models.LanguageMap{"en": "Started an activity."}},
						{Type: models.ConceptTypeActivityType, PrefLabel: models.LanguageMap{"en": "course"}, Definition: models.LanguageMap{"en": "A structured learning activity."}},
					},
				},
			}
			result, err := svc.ImportProfile(ctx, doc, org)
			if err != nil {
				return fmt.Errorf("failed to seed profile: %w", err)
			}
			logger.Info("Seeded profile", "profile", result.ProfileIRI, "version", result.VersionIRI)
			logger.Info("Seeding complete!")
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a profile version document from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := logging.NewLogger()

			svc, _, pool, _, err := buildService(ctx, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc models.ProfileDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("invalid profile document: %w", err)
			}

			result, err := svc.ImportProfile(ctx, doc, nil)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(result, "", "  ")
			log.Println(string(out))
			return nil
		},
	}
}
