package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/cloudyskybd/portfolio/internal/admin"
	"github.com/cloudyskybd/portfolio/internal/auth"
	"github.com/cloudyskybd/portfolio/internal/backup"
	"github.com/cloudyskybd/portfolio/internal/blog"
	"github.com/cloudyskybd/portfolio/internal/cache"
	"github.com/cloudyskybd/portfolio/internal/category"
	"github.com/cloudyskybd/portfolio/internal/config"
	"github.com/cloudyskybd/portfolio/internal/db"
	"github.com/cloudyskybd/portfolio/internal/mailer"
	"github.com/cloudyskybd/portfolio/internal/middleware"
	"github.com/cloudyskybd/portfolio/internal/misc"
	"github.com/cloudyskybd/portfolio/internal/storage"
	"github.com/cloudyskybd/portfolio/internal/telemetry/metrics"
	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/internal/upload"
	"github.com/cloudyskybd/portfolio/pkg"
)

const (
	sessionsCleanupInterval = 8 * time.Hour
	categoriesCacheSizeMB   = 4
	categoriesCacheTTL      = 10 * time.Minute
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	authService *auth.Service
	objectStore storage.ObjectStore
	backups     *backup.Service
	categories  *cache.ResponseCache
	proxies     pkg.TrustedProxies

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	AdminBootstrapPassword  string
	EmailJSPrivateKey       string
	S3AccessKeyID           string
	S3SecretAccessKey       string
	HoneycombTracingEnabled bool

	// optional, built from Config when nil
	ObjectStore storage.ObjectStore
	Mailer      mailer.Sender
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	proxies, err := pkg.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.MigrateSchema {
		if err := db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		log.Debugln("db schema applied")
	}

	promRegistry := metrics.SetupPrometheus()
	if err := metrics.RegisterDBPool(promRegistry, dbPool, cfg.PostgresDBName); err != nil {
		log.Warnf("failed to register db pool collector: %s", err)
	}
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

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
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "portfolio-backend", rdb)
	if err != nil {
		return nil, err
	}

	sender := params.Mailer
	if sender == nil {
		sender = newMailer(cfg, params.EmailJSPrivateKey)
	}

	authService := auth.NewService(auth.NewServiceParams{
		CredentialsRepo: auth.NewRedisCredentialsRepo(rdb),
		SessionStore:    auth.NewRedisSessionStore(rdb),
		Mailer:          sender,
		SiteOrigin:      cfg.SiteOrigin,
	})
	bootstrapAdmin(ctx, authService, cfg, params.AdminBootstrapPassword)

	objectStore := params.ObjectStore
	if objectStore == nil {
		objectStore, err = newObjectStore(ctx, cfg, params.S3AccessKeyID, params.S3SecretAccessKey)
		if err != nil {
			return nil, fmt.Errorf("new object store: %w", err)
		}
	}

	var extraUploaders []backup.Uploader
	if cfg.GoogleDriveCredentialsFile != "" {
		driveUploader, err := backup.NewDriveUploaderFromFile(ctx, cfg.GoogleDriveCredentialsFile, cfg.GoogleDriveFolderID)
		if err != nil {
			log.Errorf("google drive backups disabled: %s", err)
		} else {
			extraUploaders = append(extraUploaders, driveUploader)
		}
	}

	backups := backup.NewService(backup.NewServiceParams{
		Settings:       backup.NewSettingsRepo(dbPool),
		Exporter:       backup.NewPsqlExporter(dbPool),
		ExtraUploaders: extraUploaders,
		MetricsManager: metricsManager,
	})

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,
		redisClient: rdb,
		authService: authService,
		objectStore: objectStore,
		backups:     backups,
		categories:  cache.NewResponseCache(categoriesCacheSizeMB, categoriesCacheTTL),
		proxies:     proxies,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newMailer(cfg *config.Config, privateKey string) mailer.Sender {
	if cfg.EmailJSServiceID == "" || cfg.EmailJSTemplateID == "" {
		log.Warnln("emailjs not configured, reset links will only be logged")
		return mailer.LogSender{}
	}
	return mailer.NewEmailJSSender(mailer.EmailJSConfig{
		BaseURL:    cfg.EmailJSBaseURL,
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		PublicKey:  cfg.EmailJSPublicKey,
		PrivateKey: privateKey,
	})
}

func newObjectStore(ctx context.Context, cfg *config.Config, accessKeyID, secretAccessKey string) (storage.ObjectStore, error) {
	switch cfg.StorageProvider {
	case config.StorageProviderGCS:
		return storage.NewGCSStore(ctx, storage.GCSStoreConfig{
			Bucket:          cfg.StorageBucket,
			CredentialsFile: cfg.GCSCredentialsFile,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
		})
	default:
		return storage.NewS3Store(ctx, storage.S3StoreConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.StorageBucket,
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
		})
	}
}

type bootstrapper interface {
	Bootstrap(ctx context.Context, username, password, email string) error
}

// bootstrapAdmin stores the first admin credentials. Existing credentials are never touched.
func bootstrapAdmin(ctx context.Context, authService bootstrapper, cfg *config.Config, password string) {
	if password == "" {
		log.Debugln("admin bootstrap password not set, skipping bootstrap")
		return
	}

	err := authService.Bootstrap(ctx, cfg.AdminBootstrapUsername, password, cfg.AdminBootstrapEmail)
	switch {
	case err == nil:
		log.Infof("admin [%s] bootstrapped", cfg.AdminBootstrapUsername)
	case errors.Is(err, auth.ErrAlreadyBootstrapped):
		log.Debugln("admin credentials already stored, bootstrap skipped")
	default:
		log.Errorf("failed to bootstrap admin: %s", err)
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo, map[string]misc.PingFunc{
		"postgres": s.dbPool.Ping,
		"redis": func(ctx context.Context) error {
			return s.redisClient.Ping(ctx).Err()
		},
	})
	miscHandler.SetupRoutes(r)

	loginRateLimit := middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"admin",
		s.config.LoginRateLimitAllowedPerMin,
		s.proxies,
		s.metricsManager,
	)
	adminHandler := admin.NewHandler(s.authService, s.metricsManager)
	adminHandler.SetupRoutes(r, loginRateLimit)

	upload.NewHandler(s.objectStore).SetupRoutes(r)

	blogHandler := blog.NewHandler(blog.NewRepo(s.dbPool), s.objectStore)
	blogHandler.SetupRoutes(r)

	categoryHandler := category.NewHandler(category.NewRepo(s.dbPool), s.categories)
	categoryHandler.SetupRoutes(r)

	backup.NewHandler(s.backups, backup.NewSettingsRepo(s.dbPool)).SetupRoutes(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONError(w, http.StatusNotFound, "not found")
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
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

	go s.cleanupSessions(ctx)

	if s.config.BackupIntervalHours > 0 {
		go s.backups.RunEvery(ctx, time.Duration(s.config.BackupIntervalHours)*time.Hour)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionsCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

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

	if closer, ok := s.objectStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("failed to close object store: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

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
