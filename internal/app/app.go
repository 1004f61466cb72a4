// Package app wires repositories, services and handlers into the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"siteportal/internal/blob"
	"siteportal/internal/config"
	"siteportal/internal/domain/access"
	"siteportal/internal/domain/auth"
	"siteportal/internal/domain/project"
	"siteportal/internal/domain/summary"
	"siteportal/internal/domain/upload"
	"siteportal/internal/middleware"
	"siteportal/internal/pkg/genai"
	jwtsvc "siteportal/internal/pkg/jwt"
	"siteportal/internal/workspace"
)

type App struct {
	Router   *gin.Engine
	Registry *workspace.Registry
	Auth     *auth.Service
	Projects *project.Service

	cancel context.CancelFunc
}

// New builds the application. blobs may be nil, in which case the backend is
// chosen from cfg.Blob.
func New(cfg *config.Config, db *gorm.DB, blobs blob.Store, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if blobs == nil {
		var err error
		if blobs, err = NewBlobStore(cfg.Blob); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(auth.NewUserRepository(db), auth.NewSessionRepository(db), tokens)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(project.NewStore(db))

	accessService := access.NewService(projectService, access.NewLedger(db), access.NewPreferenceRepository(db))
	accessHandler := access.NewHandler(accessService)

	projectHandler := project.NewHandler(projectService, accessService)

	registry := workspace.NewRegistry(ctx, upload.Config{
		MaxFileSize: cfg.Upload.MaxFileSize,
		SettleDelay: cfg.Upload.SettleDelay,
		ClearDelay:  cfg.Upload.ClearDelay,
	}, blobs, projectService, projectService, logger.With("component", "workspace"))
	authService.OnSessionEnd(registry.Drop)

	workspaceHandler := workspace.NewHandler(registry, accessService)
	uploadHandler := upload.NewHandler(registry, cfg.Upload.SpoolDir)

	gen := genai.New(genai.Config{
		Endpoint:   cfg.GenAI.Endpoint,
		APIKey:     cfg.GenAI.APIKey,
		Model:      cfg.GenAI.Model,
		MaxRetries: cfg.GenAI.MaxRetries,
		Timeout:    cfg.GenAI.Timeout,
	})
	if !gen.Enabled() {
		logger.Info("summary drafting disabled, GENAI_ENDPOINT or GENAI_API_KEY not set")
	}
	summaryHandler := summary.NewHandler(summary.NewService(projectService, gen, logger.With("component", "summary")))

	r := gin.New()
	r.Use(middleware.ErrorLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.DeviceID())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := blobs.(*blob.Local); ok {
		r.Static(local.StaticBase(), local.BaseDir())
	}

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		accessHandler.RegisterPreferenceRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens, authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			projectHandler.RegisterRoutes(protected)
			accessHandler.RegisterRoutes(protected,
				middleware.RateLimit(cfg.Unlock.RequestsPerMinute, cfg.Unlock.Burst))
			workspaceHandler.RegisterRoutes(protected)

			admin := protected.Group("")
			admin.Use(middleware.AdminOnly())
			{
				projectHandler.RegisterAdminRoutes(admin)
				uploadHandler.RegisterRoutes(admin)
				summaryHandler.RegisterRoutes(admin)
			}
		}
	}

	return &App{
		Router:   r,
		Registry: registry,
		Auth:     authService,
		Projects: projectService,
		cancel:   cancel,
	}, nil
}

// Close stops every upload worker.
func (a *App) Close() {
	a.Registry.Close()
	a.cancel()
}

// NewBlobStore returns the configured blob backend.
func NewBlobStore(cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "", "local":
		return blob.NewLocal(cfg.UploadsDir, cfg.StaticURLBase), nil
	case "minio":
		store, err := blob.NewMinIO(blob.MinIOConfig{
			Endpoint:        cfg.MinIOEndpoint,
			AccessKeyID:     cfg.MinIOAccessKey,
			SecretAccessKey: cfg.MinIOSecretKey,
			UseSSL:          cfg.MinIOUseSSL,
			PublicBaseURL:   cfg.MinIOPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
