package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quillpdf/internal/bootstrap"
	httptransport "quillpdf/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// The worker's consume loop inherits this context; it must outlive
	// the shutdown signal so draining happens on our schedule, not the
	// kernel's.
	app, err := bootstrap.New(context.Background())
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           httptransport.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", app.Config.App.Name, server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server failed: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutdown signal received")
	}

	// Stop accepting chat and upload traffic first; in-flight streams
	// get the grace window to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown failed: %v", err)
	}

	// Close drains the ingest worker before the broker, cache and
	// database connections go away, so a picked-up job finishes its
	// status transition instead of stranding a file in PROCESSING.
	if err := app.Close(); err != nil {
		log.Printf("close resources failed: %v", err)
	}
}
