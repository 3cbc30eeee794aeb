package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/assistant"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/complaint"
	"github.com/hms/hms/internal/domain/consultation"
	"github.com/hms/hms/internal/domain/emergency"
	"github.com/hms/hms/internal/domain/lab"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/pharmacy"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/triage"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/ledger"
	"github.com/hms/hms/internal/platform/middleware"
)

const (
	staffTokenTTL  = 12 * time.Hour
	requestTimeout = 30 * time.Second
	maxBodySize    = "1M"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HMS API server",
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a backup or write a compensating migration instead.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Classifier: remote gateway when configured, rule-based fallback
	// otherwise. Both also serve as the assistant's intent analyzer.
	var (
		classifier classify.Classifier
		analyzer   classify.IntentAnalyzer
	)
	if cfg.ClassifierURL != "" {
		remote := classify.NewRemoteClassifier(cfg.ClassifierURL, cfg.ClassifierAPIKey, cfg.ClassifierTimeout(), logger)
		classifier, analyzer = remote, remote
		logger.Info().Str("url", cfg.ClassifierURL).Msg("using remote classifier")
	} else {
		rules := classify.NewRuleClassifier()
		classifier, analyzer = rules, rules
		logger.Info().Msg("using rule-based classifier")
	}

	// Assistant session store: Redis when configured, in-memory otherwise.
	var sessions assistant.SessionStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		sessions = assistant.NewRedisStore(redis.NewClient(opts), assistant.DefaultSessionTTL)
		logger.Info().Msg("assistant sessions stored in redis")
	} else {
		sessions = assistant.NewMemoryStore()
		logger.Warn().Msg("REDIS_URL not set, assistant sessions are in-memory and lost on restart")
	}

	// Audit ledger
	ledgerSvc := ledger.NewService(ledger.NewRepoPG(pool), logger)

	// Domain services
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	staffSvc := staff.NewService(staff.NewRepoPG(pool))
	billingSvc := billing.NewService(billing.NewRepoPG(pool))
	triageSvc := triage.NewService(triage.NewRepoPG(pool), patientSvc, staffSvc, classifier)
	emergencySvc := emergency.NewService(emergency.NewRepoPG(pool), patientSvc, staffSvc, classifier)
	labSvc := lab.NewService(lab.NewRepoPG(pool), billingSvc, db.Runner(pool))
	pharmacySvc := pharmacy.NewService(pharmacy.NewRepoPG(pool), billingSvc, classifier, db.Runner(pool))
	consultationSvc := consultation.NewService(consultation.NewRepoPG(pool), triageSvc, staffSvc,
		pharmacySvc, labSvc, billingSvc, db.Runner(pool))
	complaintSvc := complaint.NewService(complaint.NewRepoPG(pool), patientSvc, classifier)
	appointmentSvc := appointment.NewService(appointment.NewRepoPG(pool), patientSvc, staffSvc)
	assistantSvc := assistant.NewService(sessions, analyzer, patientSvc, billingSvc, labSvc,
		appointmentSvc, emergencySvc, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Public routes: staff login and the patient assistant chat.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	staffHandler := staff.NewHandler(staffSvc, []byte(cfg.JWTSecret), staffTokenTTL)
	staffHandler.RegisterPublicRoutes(public)
	assistant.NewHandler(assistantSvc).RegisterPublicRoutes(public)

	// Authenticated API. Every access is recorded in the hash-chained ledger.
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{SigningKey: []byte(cfg.JWTSecret)}))
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.Audit(logger, ledgerRecorder(ledgerSvc)))

	staffHandler.RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	triage.NewHandler(triageSvc).RegisterRoutes(apiV1)
	emergency.NewHandler(emergencySvc).RegisterRoutes(apiV1)
	consultation.NewHandler(consultationSvc).RegisterRoutes(apiV1)
	lab.NewHandler(labSvc).RegisterRoutes(apiV1)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(apiV1)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)
	complaint.NewHandler(complaintSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)
	ledger.NewHandler(ledgerSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// ledgerRecorder adapts the ledger service to the audit middleware. Writes
// are asynchronous so a slow ledger append never delays a response.
func ledgerRecorder(svc *ledger.Service) middleware.AuditRecorder {
	return middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
		role := ""
		if len(entry.UserRoles) > 0 {
			role = entry.UserRoles[0]
		}
		svc.RecordAsync(entry.UserID, role, entry.Action, entry.ResourceType, entry.PatientID, map[string]interface{}{
			"path":       entry.Path,
			"method":     entry.Method,
			"status":     entry.StatusCode,
			"ip":         entry.IPAddress,
			"request_id": entry.RequestID,
		})
		return nil
	})
}
