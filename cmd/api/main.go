package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/accessibility-checker/internal/application"
	appanalysis "github.com/bryanwahyu/accessibility-checker/internal/application/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/config"
	analysisdomain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/connector"
	mysqlp "github.com/bryanwahyu/accessibility-checker/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/accessibility-checker/internal/infra/db/postgres"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/accessibility-checker/internal/infra/storage"
	"github.com/bryanwahyu/accessibility-checker/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// connect database (mysql default, postgres optional)
	var (
		db       *sql.DB
		repo     assessment.Repository
		failures analysisdomain.FailureLog
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewAssessmentRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewAssessmentRepository(db)
		failures = mysqlp.NewFailureLogRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init external service clients
	conn := connector.New(ctx, cfg, store)
	defer conn.Close()

	cache := appanalysis.NewResultCache(conn.CacheStore(), cfg.CacheTTL())

	// init service
	svc := appanalysis.NewService(conn.Vision(), cache, repo, application.SystemClock{}, appanalysis.Options{
		MaxConcurrency: cfg.Analysis.MaxConcurrency,
		BatchSize:      cfg.Analysis.BatchSize,
		MaxRetries:     cfg.Analysis.MaxRetries,
		Timeout:        cfg.AnalysisTimeout(),
		Keywords:       cfg.Analysis.Keywords,
	})
	svc.Recommender = conn.Recommender()
	svc.Failures = failures

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 1))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"cache":    middleware.CheckerFunc(conn.Ping),
	}))
	mux.Mount("/", httpserver.NewRouter(svc, store, cfg.Analysis.MaxImages))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // assessments run synchronously
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
