package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/api/handlers"
	"github.com/cbodonnell/yahtzee/pkg/api/middleware"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/network"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port        int
	TLS         *TLSConfig
	AllowOrigin string
	// PublicURL is encoded by /qr; the request host is used when empty
	PublicURL  string
	Session    handlers.Session
	UserStore  repositories.UserStore
	HallOfFame handlers.HallOfFame
	// WSServer is mounted at /ws when set
	WSServer *network.WSServer
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if opts.WSServer != nil {
		server.RegisterOnShutdown(opts.WSServer.Shutdown)
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the route table shared by the server and its tests.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.NewCORSMiddleware(opts.AllowOrigin))

	r.HandleFunc("/user", handlers.HandleGetUser(opts.UserStore)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/hall", handlers.HandleGetHall(opts.HallOfFame)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/refresh", handlers.HandleRefresh(opts.Session)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/state", handlers.HandleGetState(opts.Session)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/qr", handlers.HandleQR(opts.PublicURL)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handlers.HandleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.HandleVersion).Methods(http.MethodGet)
	if opts.WSServer != nil {
		r.Handle("/ws", opts.WSServer).Methods(http.MethodGet)
	}

	return r
}

// Start serves until the server is stopped. It returns nil after Stop and the
// listener error otherwise.
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("failed to serve API: %v", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
