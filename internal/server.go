package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/workouttracker/internal/auth"
	"github.com/2beens/workouttracker/internal/backup"
	"github.com/2beens/workouttracker/internal/cache"
	"github.com/2beens/workouttracker/internal/config"
	"github.com/2beens/workouttracker/internal/db"
	"github.com/2beens/workouttracker/internal/middleware"
	"github.com/2beens/workouttracker/internal/scheduler"
	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/internal/workouts"
	"github.com/2beens/workouttracker/internal/workouts/progress"
	"github.com/2beens/workouttracker/pkg"
)

const sessionsCleanupSchedule = "@every 8h"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config        *config.Config
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	loginChecker  *auth.LoginChecker
	authService   *auth.Service
	workoutsRepo  *workouts.Repo
	snapshotCache *cache.WorkoutsCache
	scheduler     *scheduler.Scheduler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	PasswordHash            string
	PostgresUser            string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
	// GDriveCredentialsJSON enables the scheduled Google Drive backups when set
	GDriveCredentialsJSON []byte
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "workout-tracker", rdb)
	if err != nil {
		return nil, err
	}

	sessionTTL := cfg.SessionTTL.Duration
	authService := auth.NewAuthService(params.PasswordHash, sessionTTL, rdb)
	workoutsRepo := workouts.NewRepo(dbPool)

	jobs := scheduler.New()
	if err := jobs.Add(scheduler.Job{
		Name:     "sessions-cleanup",
		Schedule: sessionsCleanupSchedule,
		Run: func(ctx context.Context) error {
			authService.ScanAndClean(ctx)
			return nil
		},
	}); err != nil {
		return nil, err
	}

	if len(params.GDriveCredentialsJSON) > 0 && cfg.BackupCronSchedule != "" {
		driveService, err := backup.NewGoogleDriveBackupService(ctx, params.GDriveCredentialsJSON, cfg.GDriveBackupsFolder)
		if err != nil {
			return nil, fmt.Errorf("google drive backup service: %w", err)
		}
		backupRunner := backup.NewRunner(workoutsRepo, driveService, metricsManager)
		if err := jobs.Add(scheduler.Job{
			Name:     "gdrive-backup",
			Schedule: cfg.BackupCronSchedule,
			Run:      backupRunner.Run,
		}); err != nil {
			return nil, err
		}
		log.Infof("google drive backups scheduled [%s] into folder [%s]", cfg.BackupCronSchedule, cfg.GDriveBackupsFolder)
	} else {
		log.Warnln("google drive backups disabled, credentials or schedule missing")
	}

	return &Server{
		config:        cfg,
		dbPool:        dbPool,
		redisClient:   rdb,
		authService:   authService,
		loginChecker:  auth.NewLoginChecker(sessionTTL, rdb),
		workoutsRepo:  workoutsRepo,
		snapshotCache: cache.NewWorkoutsCache(cfg.SnapshotCacheSizeMB, cfg.SnapshotCacheTTL.Duration),
		scheduler:     jobs,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", handleRoot).Methods("GET", "OPTIONS").Name("root")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	loginLimit := redis_rate.Limit{
		Rate:   s.config.LoginRateLimit,
		Burst:  s.config.LoginRateLimit,
		Period: s.config.LoginRateLimitPeriod.Duration,
	}
	authHandler := auth.NewHandler(s.authService, s.metricsManager)
	authHandler.SetupRoutes(r, middleware.RateLimit(reqRateLimiter, "login", loginLimit, s.metricsManager))

	workoutsHandler := workouts.NewHandler(s.workoutsRepo, s.snapshotCache, s.metricsManager)
	workoutsHandler.SetupRoutes(r)

	analyzer := progress.NewAnalyzer(s.workoutsRepo, s.snapshotCache, s.metricsManager)
	progressHandler := progress.NewHandler(analyzer)
	progressHandler.SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, `{"message":"Workout Tracker API is running!"}`)
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{Registry: s.promRegistry}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.scheduler.Start()
	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	s.scheduler.Stop(ctx)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
