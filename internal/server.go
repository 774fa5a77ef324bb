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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/config"
	"github.com/2beens/gymtrack/internal/db"
	"github.com/2beens/gymtrack/internal/middleware"
	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/sessions"
	"github.com/2beens/gymtrack/internal/stats"
	"github.com/2beens/gymtrack/internal/store/local"
	"github.com/2beens/gymtrack/internal/store/remote"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/tracker"
	"github.com/2beens/gymtrack/pkg"
)

const authCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	program    *program.Program
	repository *sessions.Repository
	runtime    *tracker.Runtime
	stats      *stats.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	var dbPool *pgxpool.Pool
	var extraCollectors []prometheus.Collector
	if !cfg.RemoteDisabled {
		var err error
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     cfg.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	} else {
		log.Warnln("remote store disabled, sessions are kept locally only")
	}

	promRegistry := metrics.NewRegistry(params.VersionInfo, extraCollectors...)
	metricsManager := metrics.NewManager("gymtrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(&auth.Admin{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}, auth.DefaultTTL, rdb)
	go func() {
		ticker := time.NewTicker(authCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(ctx)
			}
		}
	}()

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymtrack", rdb)
	if err != nil {
		return nil, err
	}

	prog := program.Default()
	if cfg.ProgramPath != "" {
		prog, err = program.Load(cfg.ProgramPath)
		if err != nil {
			return nil, fmt.Errorf("load program: %w", err)
		}
	}
	res := resolver.New(prog)

	kv, err := newLocalKV(cfg, rdb)
	if err != nil {
		return nil, err
	}
	localStore := local.NewStore(kv, res, metricsManager)

	loginChecker := auth.NewLoginChecker(auth.DefaultTTL, rdb)
	remoteStore := remote.NewStore(
		dbPool,
		auth.NewContextIdentity(loginChecker),
		res,
		metricsManager,
		cfg.RemoteTimeout(),
	)
	if cfg.EnsureSchema {
		if err := remoteStore.EnsureSchema(ctx); err != nil {
			log.Errorf("ensure remote schema: %s", err)
		}
	}

	repository := sessions.NewRepository(localStore, remoteStore, res, metricsManager, cfg.RemoteWait())

	runtime, err := tracker.NewRuntime(ctx, tracker.Params{
		Program:        prog,
		Resolver:       res,
		Repo:           repository,
		Drafts:         localStore,
		Scheduler:      tracker.RealScheduler{},
		Capabilities:   tracker.LogCapabilities{},
		MetricsManager: metricsManager,
	})
	if err != nil {
		return nil, fmt.Errorf("new tracker runtime: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: loginChecker,

		program:    prog,
		repository: repository,
		runtime:    runtime,
		stats:      stats.NewService(repository, loc, time.Now),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newLocalKV(cfg *config.Config, rdb *redis.Client) (local.KV, error) {
	switch cfg.LocalStoreBackend {
	case "memory":
		log.Warnln("local store is in memory, history is lost on restart")
		return local.NewMemoryKV(cfg.MemoryStoreBytes), nil
	case "redis":
		return local.NewRedisKV(rdb), nil
	case "file":
		kv, err := local.NewFileKV(cfg.LocalStorePath)
		if err != nil {
			return nil, fmt.Errorf("new file kv: %w", err)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown local store backend: %s", cfg.LocalStoreBackend)
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymtrack-router"))

	rateLimiter := redis_rate.NewLimiter(s.redisClient)

	r.HandleFunc("/program", program.NewHandler(s.program).HandleGet).Methods("GET")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteText(w, s.versionInfo, http.StatusOK)
	}).Methods("GET")

	authHandler := auth.NewHandler(s.authService)
	loginRouter := r.PathPrefix("/a").Subrouter()
	loginRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	loginRouter.HandleFunc("/logout", authHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	loginRouter.Use(middleware.RateLimit(rateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager))

	trackerHandler := tracker.NewHandler(s.runtime)
	r.HandleFunc("/tracker/state", trackerHandler.HandleState).Methods("GET")
	trackerRouter := r.PathPrefix("/tracker").Subrouter()
	trackerRouter.HandleFunc("/tap/{unit}", trackerHandler.HandleTap).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/rest", trackerHandler.HandleStartRest).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/rest", trackerHandler.HandleCancelRest).Methods("DELETE", "OPTIONS")
	trackerRouter.HandleFunc("/pause", trackerHandler.HandlePause).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/resume", trackerHandler.HandleResume).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/finish", trackerHandler.HandleFinish).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/discard", trackerHandler.HandleDiscard).Methods("POST", "OPTIONS")
	trackerRouter.HandleFunc("/draft", trackerHandler.HandleDraftEntry).Methods("PUT", "OPTIONS")
	trackerRouter.HandleFunc("/day/{index}", trackerHandler.HandleSelectDay).Methods("POST", "OPTIONS")
	trackerRouter.Use(middleware.RateLimit(rateLimiter, "tracker", s.config.TrackerRateLimitPerMin, s.metricsManager))

	sessionsHandler := sessions.NewHandler(s.repository)
	r.HandleFunc("/sessions", sessionsHandler.HandleList).Methods("GET")
	r.HandleFunc("/sessions/day/{day}/last", sessionsHandler.HandleLastForDay).Methods("GET")
	r.HandleFunc("/sessions/sync", sessionsHandler.HandleSync).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}", sessionsHandler.HandleDelete).Methods("DELETE", "OPTIONS")

	statsHandler := stats.NewHandler(s.stats)
	r.HandleFunc("/stats/summary", statsHandler.HandleSummary).Methods("GET")
	r.HandleFunc("/stats/records", statsHandler.HandleRecords).Methods("GET")
	r.HandleFunc("/stats/calendar", statsHandler.HandleCalendar).Methods("GET")
	r.HandleFunc("/stats/exercise/{exercise}", statsHandler.HandleExerciseHistory).Methods("GET")

	// all the rest - unhandled paths
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest(s.config.MaxRequestBodyBytes))

	return r
}

func (s *Server) Serve(host string, port int) {
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	s.metricsHttpServer = &http.Server{
		Addr:              net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go listen("tracker api", s.httpServer)
	go listen("metrics", s.metricsHttpServer)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func listen(name string, srv *http.Server) {
	log.Infof(" > %s listening on: [%s]", name, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("%s, listen and serve: %s", name, err)
	}
}

func shutdown(ctx context.Context, name string, srv *http.Server) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("%s shutdown: %s", name, err)
		return
	}
	log.Warnf("%s shut down", name)
}

// GracefulShutdown stops accepting requests first, then drops the rest timer
// (the draft is already persisted) and closes the backing clients.
func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdown(ctx, "tracker api", s.httpServer)
	s.runtime.CancelRest(ctx)
	shutdown(ctx, "metrics", s.metricsHttpServer)

	s.otelShutdown()

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}
	if s.dbPool != nil {
		s.dbPool.Close()
		log.Debugln("db pool closed")
	}

	if !sentry.Flush(5 * time.Second) {
		log.Warnln("sentry flush timed out")
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
