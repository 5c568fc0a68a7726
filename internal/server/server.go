package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/vocal-lineage/backend/internal/server/middleware"
	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/pathcache"
	"github.com/vocal-lineage/backend/pkg/pathfind"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the HTTP server for app. Metrics are served from reg when it
// is not nil.
func New(app *mid.App, reg *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("8M"))

	RegisterRoutes(e, reg)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	graphStore, err := openGraphStore(ctx)
	if err != nil {
		logger.Fatal("Failed to open graph store", "err", err)
	}
	gs := store.Instrument(graphStore, reg)
	defer func() {
		if err := gs.Close(context.Background()); err != nil {
			logger.Error("Failed to close graph store", "err", err)
		}
	}()

	cache := pathcache.NewCache(pathcache.NewCacheParams{
		TTL:         util.GetEnvDuration("PATH_CACHE_TTL", pathcache.DefaultTTL),
		NegativeTTL: util.GetEnvDuration("PATH_CACHE_NEGATIVE_TTL", pathcache.DefaultNegativeTTL),
		Registerer:  reg,
	})
	resolver := pathfind.NewResolver(pathfind.NewResolverParams{
		Store: gs,
		Cache: cache,
	})

	snapshots, closeSnapshots, err := openSnapshots(ctx)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", "err", err)
	}
	defer closeSnapshots()

	audit, closeAudit := openAudit(ctx)
	defer closeAudit()

	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	} else {
		logger.Warn("AUTH_URL not set, only the master API key is accepted")
	}

	app := &mid.App{
		Store:          gs,
		Resolver:       resolver,
		Snapshots:      snapshots,
		Audit:          audit,
		Key:            key,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   util.GetEnv("MASTER_USER_ID"),
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	}
	e := New(app, reg)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
