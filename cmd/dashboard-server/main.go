package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nmep/dashboard/internal/config"
	"github.com/nmep/dashboard/internal/domain/action"
	"github.com/nmep/dashboard/internal/domain/briefing"
	"github.com/nmep/dashboard/internal/domain/dashboard"
	"github.com/nmep/dashboard/internal/domain/reference"
	"github.com/nmep/dashboard/internal/domain/snapshot"
	"github.com/nmep/dashboard/internal/platform/auth"
	"github.com/nmep/dashboard/internal/platform/blobstore"
	"github.com/nmep/dashboard/internal/platform/changefeed"
	"github.com/nmep/dashboard/internal/platform/db"
	"github.com/nmep/dashboard/internal/platform/gateway"
	"github.com/nmep/dashboard/internal/platform/middleware"
	"github.com/nmep/dashboard/internal/platform/reporting"
	"github.com/nmep/dashboard/internal/platform/websocket"
	"github.com/nmep/dashboard/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "dashboard-server",
		Short:        "Malaria elimination programme dashboard API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closePool, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closePool()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			migrator, closePool, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd, statuses)
			return nil
		},
	})

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.HasDatabase() {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.Files), pool.Close, nil
}

func printMigrationStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one dataset, or all of them, to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, _ := cmd.Flags().GetString("dataset")
			out, _ := cmd.Flags().GetString("out")
			seed, _ := cmd.Flags().GetInt64("seed")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.DataSeed = seed
			}
			if out == "" {
				out = dataset + ".xlsx"
			}

			snap := snapshot.Build(snapshotOptions(cfg))
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := exportDatasets(f, dashboard.Catalogue(snap), dataset); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (seed %d).\n", out, snap.Seed)
			return nil
		},
	}
	cmd.Flags().String("dataset", "all", "Dataset ID, or \"all\" for one sheet per dataset")
	cmd.Flags().String("out", "", "Output file (default <dataset>.xlsx)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 for a time-derived seed)")
	return cmd
}

// exportDatasets writes the named dataset, or every dataset when id is
// "all", as a workbook.
func exportDatasets(w io.Writer, cat *reporting.Catalogue, id string) error {
	var sheets []reporting.Sheet
	if id == "all" {
		for _, d := range cat.List() {
			sheets = append(sheets, namedSheet(d))
		}
	} else {
		d, ok := cat.Find(id)
		if !ok {
			var ids []string
			for _, d := range cat.List() {
				ids = append(ids, d.ID)
			}
			return fmt.Errorf("unknown dataset %q (available: %s)", id, strings.Join(ids, ", "))
		}
		sheets = append(sheets, namedSheet(d))
	}
	return reporting.WriteXLSX(w, sheets...)
}

func namedSheet(d reporting.Dataset) reporting.Sheet {
	s := d.Sheet()
	if s.Name == "" {
		s.Name = d.Name
	}
	return s
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			country, _ := cmd.Flags().GetString("country")
			roles, _ := cmd.Flags().GetStringSlice("roles")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthSigningKey == "" {
				return fmt.Errorf("AUTH_SIGNING_KEY must be set to issue tokens")
			}
			tok, err := auth.IssueToken(jwtConfig(cfg), subject, country, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("subject", "local-user", "Token subject")
	cmd.Flags().String("country", "", "Country claim (empty for any)")
	cmd.Flags().StringSlice("roles", []string{auth.RoleViewer}, "Granted roles")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthSigningKey),
	}
}

func snapshotOptions(cfg *config.Config) snapshot.Options {
	opts := snapshot.DefaultOptions()
	opts.Seed = cfg.DataSeed
	opts.Cases = cfg.CaseRecordCount
	opts.Facilities = cfg.FacilityReportCount
	opts.PPMVs = cfg.PPMVCount
	return opts
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// deps are the backing services a server is built from. Each has an
// in-process fallback so the server runs with no external infrastructure.
type deps struct {
	cfg     *config.Config
	logger  zerolog.Logger
	snap    *snapshot.Snapshot
	actions action.Repository
	feed    changefeed.Feed
	blobs   blobstore.Store
	gateway *gateway.Client
	db      db.Pinger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := deps{cfg: cfg, logger: logger}

	d.snap = snapshot.Build(snapshotOptions(cfg))
	logger.Info().Int64("seed", d.snap.Seed).Int("cases", len(d.snap.Cases)).Msg("built data snapshot")

	// Action store
	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		if _, err := db.NewMigrator(pool, migrations.Files).Up(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		d.actions = action.NewRepoPG(pool)
		d.db = pool
		logger.Info().Msg("connected to database")
	} else {
		d.actions = action.NewMemoryRepo()
		logger.Warn().Msg("DATABASE_URL not set, action items are kept in memory")
	}

	// Change feed
	if cfg.HasRedis() {
		client, err := changefeed.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		d.feed = changefeed.NewRedisFeed(client, changefeed.DefaultChannel, logger)
		logger.Info().Str("channel", changefeed.DefaultChannel).Msg("change feed on redis")
	} else {
		d.feed = changefeed.NewLocalFeed()
	}

	// Briefing audio store
	if cfg.HasMinio() {
		store, err := blobstore.NewMinioStore(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return err
		}
		d.blobs = store
	} else {
		mem := blobstore.NewMemoryStore()
		go purgeExpired(ctx, mem, time.Minute, logger)
		d.blobs = mem
	}

	d.gateway = gateway.New(gateway.Config{
		BaseURL:      cfg.AIGatewayURL,
		APIKey:       cfg.AIGatewayKey,
		ActionsPath:  cfg.AIActionsPath,
		BriefingPath: cfg.AIBriefingPath,
		Timeout:      cfg.RemoteTimeout,
	}, gateway.WithLogger(logger))
	if !d.gateway.Configured() {
		logger.Warn().Msg("AI_GATEWAY_URL not set, action generation and briefings are disabled")
	}

	e := newServer(ctx, d)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires handlers and middleware. Background work started here
// stops when ctx is cancelled.
func newServer(ctx context.Context, d deps) *echo.Echo {
	cfg, logger := d.cfg, d.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Country", "If-None-Match"},
	}))
	e.Use(middleware.SecurityHeaders())
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"version": version,
			"seed":    d.snap.Seed,
		})
	})
	if d.db != nil {
		e.GET("/health/db", db.HealthHandler(d.db))
	}

	// Auth and country scope
	var authMW echo.MiddlewareFunc
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtConfig(cfg))
	} else {
		authMW = auth.JWTMiddleware(jwtConfig(cfg))
	}
	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}

	apiV1 := e.Group("/api/v1", authMW, middleware.RateLimit(rateLimitCfg),
		middleware.CountryScope(cfg.DefaultCountry, reference.Countries().Has))

	// Push notifications
	hub := websocket.NewHub(logger)
	go func() {
		if err := hub.RelayChanges(ctx, d.feed); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("change relay stopped")
		}
	}()
	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(e, authMW)

	// Snapshot datasets and exports
	dashboard.NewHandler(d.snap).RegisterRoutes(apiV1)
	reporting.NewHandler(dashboard.Catalogue(d.snap)).RegisterRoutes(apiV1)

	// Action tracker
	actionSvc := action.NewService(d.actions, d.gateway, d.snap, d.feed,
		action.WithLogger(logger),
		action.WithTimeouts(cfg.RequestTimeout, cfg.RemoteTimeout))
	trackers := action.NewTrackers(ctx, actionSvc, d.feed, logger)
	action.NewHandler(actionSvc, trackers).RegisterRoutes(apiV1)

	// Daily audio briefing
	briefingSvc := briefing.NewService(d.gateway, d.snap, trackers, d.blobs,
		briefing.WithLogger(logger),
		briefing.WithTTL(cfg.BriefingTTL),
		briefing.WithTimeout(cfg.RemoteTimeout))
	briefing.NewHandler(briefingSvc).RegisterRoutes(apiV1)

	return e
}

// purgeExpired drops expired in-memory blobs every interval until ctx ends.
func purgeExpired(ctx context.Context, store *blobstore.MemoryStore, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.PurgeExpired(); n > 0 {
				logger.Debug().Int("purged", n).Msg("expired briefing audio removed")
			}
		}
	}
}
