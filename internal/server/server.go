package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/common/consul"
	"github.com/ykhdr/dict-attack/common/http/middleware"
	cnet "github.com/ykhdr/dict-attack/common/net"
	"github.com/ykhdr/dict-attack/internal/attack"
)

const shutdownTimeout = 5 * time.Second

type StatusProvider interface {
	Status() attack.Status
}

type Server struct {
	l      zerolog.Logger
	addr   string
	status StatusProvider
	consul consul.Client
}

// NewServer builds the status server. consulClient may be nil.
func NewServer(addr string, status StatusProvider, consulClient consul.Client) *Server {
	return &Server{
		addr:   addr,
		status: status,
		consul: consulClient,
		l: log.With().
			Str("domain", "status-server").
			Str("type", "http").
			Logger(),
	}
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(s.l))
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/progress", s.handleProgress).Methods(http.MethodGet)
	return router
}

// Start serves until ctx is done, then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	reg := s.register(lis.Addr().String())
	defer s.deregister(reg)

	errC := make(chan error, 1)
	go func() {
		errC <- srv.Serve(lis)
	}()
	s.l.Info().Str("address", lis.Addr().String()).Msg("status server is running")

	select {
	case err = <-errC:
		return errors.Wrap(err, "status server failed")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down status server")
	}
	s.l.Debug().Msg("status server stopped")
	return nil
}

// register failures are logged; the server keeps serving locally.
func (s *Server) register(listenAddr string) *consul.Registration {
	if s.consul == nil {
		return nil
	}
	host, port, err := cnet.AdvertiseHost(listenAddr)
	if err != nil {
		s.l.Warn().Err(err).Msg("failed to resolve advertised address")
		return nil
	}
	reg, err := s.consul.Register(host, port)
	if err != nil {
		s.l.Warn().Err(err).Msg("failed to register in consul")
		return nil
	}
	return reg
}

func (s *Server) deregister(reg *consul.Registration) {
	if s.consul == nil || reg == nil {
		return
	}
	if err := s.consul.Deregister(reg); err != nil {
		s.l.Warn().Err(err).Msg("failed to deregister from consul")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.l.Warn().Err(err).Msg("failed to write health response")
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status.Status()); err != nil {
		s.l.Warn().Err(err).Msg("failed to encode progress response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
