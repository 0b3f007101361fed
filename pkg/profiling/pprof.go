// Package profiling runs the pprof endpoint on its own port so profiles
// never mix with API traffic.
package profiling

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
)

type Server struct {
	srv *http.Server
}

func NewServer(port string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    ":" + port,
			Handler: http.DefaultServeMux,
		},
	}
}

// Start launches the pprof server in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("pprof listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("pprof server error: %v", err)
		}
	}()
}

// Stop shuts the pprof server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
