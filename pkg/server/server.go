// Package server assembles the HTTP API, worker pool and webhook
// publisher into one runnable service.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/xhn-ccc/fat-analysis-tool/internal/processing"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/config"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/handlers"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/metrics"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/profiling"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/webhook"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/worker"
)

// Server runs the identification HTTP API.
type Server struct {
	cfg         *config.ServerConfig
	httpServer  *http.Server
	pool        *worker.Pool
	profiler    *profiling.Server
	stopForward chan struct{}
}

// New wires the processor into a ready-to-start server.
func New(cfg *config.ServerConfig, processor *processing.Processor, quiet bool) *Server {
	var sender worker.WebhookSender
	if cfg.WebhookURL != "" {
		client := webhook.NewClient(cfg.WebhookURL, quiet)
		sender = client.Send
	}

	pool := worker.New(worker.Options{
		Workers:   cfg.WorkerCount,
		Processor: processor.Process,
		Sender:    sender,
		Quiet:     quiet,
	})

	s := &Server{
		cfg:         cfg,
		pool:        pool,
		stopForward: make(chan struct{}),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	identify := handlers.NewIdentifyHandler(processor, pool)
	batch := handlers.NewBatchHandler(processor, cfg.WorkerCount)
	reference := handlers.NewReferenceHandler(processor.Table())

	router.Post("/identify", identify.Identify)
	router.Post("/identify/batch", batch.Batch)
	router.Get("/reference", reference.Reference)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if cfg.EnableMetrics {
		router.Handle("/metrics", metrics.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if cfg.EnableProfiling {
		s.profiler = profiling.NewServer(cfg.ProfilingPort)
	}
	return s
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	if s.profiler != nil {
		s.profiler.Start()
	}
	go s.forwardResults()

	log.Printf("identification service listening on :%s", s.cfg.Port)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// forwardResults moves finished async work to the webhook queue.
func (s *Server) forwardResults() {
	for {
		select {
		case res := <-s.pool.Results():
			s.pool.QueueWebhook(models.WebhookItem{
				RequestID: res.RequestID,
				Result:    res.Result,
				Outcome:   res.Outcome,
			})
		case <-s.stopForward:
			return
		}
	}
}

// Shutdown drains the HTTP server and worker pool. The forwarder keeps
// consuming results until the pool has drained; stopping it earlier can
// leave a worker blocked on a full results buffer.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.pool.Shutdown()
	close(s.stopForward)
	if s.profiler != nil {
		if perr := s.profiler.Stop(ctx); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}
