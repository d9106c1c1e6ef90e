package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/ecommerce/internal/config"
	"github.com/Skotchmaster/ecommerce/internal/es"
	"github.com/Skotchmaster/ecommerce/internal/httpserver"
	"github.com/Skotchmaster/ecommerce/internal/logging"
	authmw "github.com/Skotchmaster/ecommerce/internal/middleware/auth"
	"github.com/Skotchmaster/ecommerce/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/ecommerce/internal/middleware/logging"
	"github.com/Skotchmaster/ecommerce/internal/mykafka"
	"github.com/Skotchmaster/ecommerce/internal/repo"
	"github.com/Skotchmaster/ecommerce/internal/service"
	"github.com/Skotchmaster/ecommerce/internal/session"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "ecommerce")
	slog.SetDefault(logger)

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	initCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	r := repo.New(db)

	store, closeStore := sessionStore(rootCtx, cfg, r, logger)
	sessions := session.NewManager(store, []byte(cfg.SessionSecret), cfg.SessionTTL)

	events := mykafka.New(cfg.KafkaBrokers)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	catalogSvc := &service.CatalogService{Repo: r, Events: events}
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("search_index_disabled", "reason", "elasticsearch unreachable", "error", err)
		} else {
			catalogSvc.Index = es.NewProductIndex(client, cfg.ESIndex)
		}
	}

	authSvc := &service.AuthService{Repo: r, Sessions: sessions, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID, "X-CSRF-Token"},
		AllowCredentials: len(cfg.CORSOrigins) > 0,
	}))
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         cfg.CookieSecure,
			TrustedOrigins: cfg.CORSOrigins,
			SkipPaths:      []string{"/login", "/health/live", "/health/ready"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}},
		Guard:          authmw.NewGuard(authSvc),
		Store:          r,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "session_backend", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	stopBackground()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	closeStore()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}

// sessionStore builds the configured session backend. The returned func
// releases whatever the backend holds open.
func sessionStore(ctx context.Context, cfg *config.Config, r *repo.GormRepo, logger *slog.Logger) (session.Store, func()) {
	if cfg.SessionBackend == "redis" {
		rdb, err := config.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		return session.NewRedisStore(rdb), func() { _ = rdb.Close() }
	}

	store := session.NewGormStore(r)
	go func() {
		t := time.NewTicker(sessionPurgeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := store.Purge(ctx)
				if err != nil {
					logger.Error("session_purge_failed", "error", err)
					continue
				}
				logger.Debug("session_purge", "deleted", n)
			}
		}
	}()
	return store, func() {}
}
