package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayushmaan703/videotube/internal/cache"
	"github.com/ayushmaan703/videotube/internal/logging"
	"github.com/ayushmaan703/videotube/internal/media"
	"github.com/ayushmaan703/videotube/internal/store"
	"github.com/ayushmaan703/videotube/internal/token"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.Fatal(err, "loading configuration")
	}
	logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal(err, "connecting to database")
	}
	defer db.Close()

	dataStore := store.New(db)
	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	storage, err := media.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		logging.Fatal(err, "initializing media storage")
	}

	// The view counter is optional: without Redis every view hits the
	// database directly.
	var views *cache.ViewCounter
	if cfg.RedisAddr != "" {
		views, err = cache.NewViewCounter(ctx, cfg.redisConfig())
		if err != nil {
			logging.Fatal(err, "connecting to redis")
		}
		defer views.Close()
	}

	var handler http.Handler
	if views != nil {
		h, videoSvc := newHTTPHandler(cfg, dataStore, tokens, storage, views)
		handler = h
		go runViewFlusher(ctx, videoSvc.FlushViews, cfg.ViewFlushInterval)
	} else {
		handler, _ = newHTTPHandler(cfg, dataStore, tokens, storage, nil)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error(err, "shutting down server")
		}
	}()

	logging.Info("listening on " + cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Fatal(err, "server error")
	}
	logging.Info("server stopped")
}

// runViewFlusher periodically drains cached view increments into the
// database, with a final flush on shutdown.
func runViewFlusher(ctx context.Context, flush func(context.Context) error, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := flush(flushCtx); err != nil {
				logging.Error(err, "final view flush failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := flush(ctx); err != nil {
				logging.Error(err, "view flush failed")
			}
		}
	}
}
