package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/coachplan/internal/auth"
	"github.com/myrjola/coachplan/internal/envstruct"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/flightrecorder"
	"github.com/myrjola/coachplan/internal/logging"
	"github.com/myrjola/coachplan/internal/metrics"
	"github.com/myrjola/coachplan/internal/postgres"
	"github.com/myrjola/coachplan/internal/sqlite"
	"github.com/myrjola/coachplan/internal/workout"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type application struct {
	logger         *slog.Logger
	auth           *auth.Handler
	sessionManager *scs.SessionManager
	workoutService *workout.Service
	metrics        *metrics.Manager
	metricsHandler http.Handler
	windowDays     int
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"COACHPLAN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"COACHPLAN_SQLITE_URL" envDefault:"./coachplan.sqlite3"`
	// PostgresURL moves plans, logs and insights to PostgreSQL when set. Users and sessions stay in SQLite.
	PostgresURL string `env:"COACHPLAN_POSTGRES_URL" envDefault:""`
	// Admins is a comma separated list of user ids or display names with admin access.
	Admins string `env:"COACHPLAN_ADMINS" envDefault:""`
	// OpenAIAPIKey enables AI exercise generation.
	OpenAIAPIKey string `env:"COACHPLAN_OPENAI_API_KEY" envDefault:""`
	// ReanalyzeSpec is the cron spec of the periodic re-analysis job.
	ReanalyzeSpec string `env:"COACHPLAN_REANALYZE_SPEC" envDefault:"@every 1h"`
	// AnalysisWindowDays is the default analysis window.
	AnalysisWindowDays int `env:"COACHPLAN_ANALYSIS_WINDOW_DAYS" envDefault:"28"`
	// PlanCacheBytes sizes the in-process plan cache.
	PlanCacheBytes int `env:"COACHPLAN_PLAN_CACHE_BYTES" envDefault:"67108864"`
	// SecureCookies marks the session cookie Secure. Disable only for plain HTTP development setups.
	SecureCookies bool `env:"COACHPLAN_SECURE_COOKIES" envDefault:"true"`
	// TracesDir enables the flight recorder. Execution traces of timed out requests are written there.
	TracesDir string `env:"COACHPLAN_TRACES_DIR" envDefault:""`
}

type logConfig struct {
	Level  string `env:"COACHPLAN_LOG_LEVEL" envDefault:"info"`
	Format string `env:"COACHPLAN_LOG_FORMAT" envDefault:"text"`
	File   string `env:"COACHPLAN_LOG_FILE" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var store workout.Store = workout.NewSQLiteStore(db)
	if cfg.PostgresURL != "" {
		if err = postgres.RunMigrations(cfg.PostgresURL); err != nil {
			return errors.Wrap(err, "migrate postgres")
		}
		var pg *postgres.Store
		if pg, err = postgres.New(ctx, cfg.PostgresURL); err != nil {
			return errors.Wrap(err, "connect postgres")
		}
		defer pg.Close()
		store = pg
		logger.LogAttrs(ctx, slog.LevelInfo, "using postgres store")
	}

	registry := metrics.NewRegistry()
	metricsManager := metrics.NewManager(registry)

	opts := []workout.Option{
		workout.WithPlanCacheBytes(cfg.PlanCacheBytes),
		workout.WithAnalysisWindowDays(cfg.AnalysisWindowDays),
	}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, workout.WithExerciseGenerator(workout.NewOpenAIExerciseGenerator(cfg.OpenAIAPIKey)))
	}
	service := workout.NewService(store, logger, metricsManager, opts...)

	scheduler, err := workout.NewScheduler(service, logger, cfg.ReanalyzeSpec)
	if err != nil {
		return errors.Wrap(err, "new scheduler", slog.String("spec", cfg.ReanalyzeSpec))
	}

	sessionManager := initializeSessionManager(db, cfg.SecureCookies)

	app := application{
		logger:         logger,
		auth:           auth.New(logger, sessionManager, db, auth.ParseAdmins(cfg.Admins)),
		sessionManager: sessionManager,
		workoutService: service,
		metrics:        metricsManager,
		metricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), //nolint:exhaustruct // defaults.
		windowDays:     cfg.AnalysisWindowDays,
	}

	if cfg.TracesDir != "" {
		if app.flightRecorder, err = flightrecorder.New(flightrecorder.Config{ //nolint:exhaustruct // defaults.
			Logger:          logger,
			TracesDirectory: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = app.flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer app.flightRecorder.Stop(context.WithoutCancel(ctx))
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		scheduler.Run(ctx)
	})
	defer wg.Wait()

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		cancel()
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database, secure bool) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = secure
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	var lc logConfig
	if err := envstruct.Populate(&lc, os.LookupEnv); err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "invalid log config", errors.SlogError(err))
		os.Exit(1)
	}
	logger, closer, err := logging.NewLogger(logging.LoggerConfig{
		Level:    lc.Level,
		Format:   lc.Format,
		FilePath: lc.File,
	}, os.Stdout)
	if err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "failure creating logger", errors.SlogError(err))
		os.Exit(1)
	}
	err = run(ctx, logger, os.LookupEnv)
	_ = closer.Close()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
