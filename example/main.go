// A runnable demo wiring the full logging stack into a chi server.
//
// Copy .env.example (or export the variables) and run:
//
//	LOG_TYPES=console,file LOG_FILE_PATH=./app.log go run ./example
//
// Then hit the endpoints and watch the same records land on stdout and
// in the rotating file:
//
//	curl localhost:8080/orders/42
//	curl "localhost:8080/login?password=hunter2"   # masked in every sink
//	curl localhost:8080/boom                       # recovered panic
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

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/redb0/slogwire"
	"github.com/redb0/slogwire/middlewares"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	var settings slogwire.Settings
	if err := env.Parse(&settings); err != nil {
		log.Fatalf("parse settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, shutdown, err := slogwire.Setup(ctx, settings,
		slogwire.WithContextExtractors(middlewares.RequestIDExtractor()),
		slogwire.WithDiagnostics(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown logging: %v", err)
		}
	}()

	r := chi.NewRouter()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.AccessLog(
		middlewares.WithAccessLogSkipPaths("/health"),
	))
	r.Use(middlewares.Recover())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		logger.InfoContext(r.Context(), "order fetched", slog.String("order_id", id))
		_, _ = w.Write([]byte("order " + id + "\n"))
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		// The password in the query string is masked by the pipeline
		// and by the access log before it reaches any sink.
		logger.WarnContext(r.Context(), "login attempt rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("demo panic")
	})

	srv := &http.Server{
		Addr:              addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server started", slog.String("addr", srv.Addr), slog.String("version", settings.Version))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

func addr() string {
	if a := os.Getenv("ADDRESS"); a != "" {
		return a
	}
	return ":8080"
}
