// Package operator hosts ceremony instances behind an HTTP API. Each
// operator runs one server; initiators start ceremonies over /init and
// peers exchange protocol messages over /dkg.
package operator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

// request limits
const (
	generalLimit = 5000
	routeLimit   = 500
	timePeriod   = time.Minute
)

const ErrTooManyRouteRequests = `{"error": "too many requests to /route"}`

// Config carries the static identity and output settings of one
// operator process.
type Config struct {
	OperatorID       uint64
	OutputPath       string
	KeystorePassword string
}

// Server stores the http server and the ceremony instances of one
// operator.
type Server struct {
	Logger     *zap.Logger
	HttpServer *http.Server
	Router     chi.Router
	State      *Switch
}

// New creates a Server around the operator's envelope signer.
func New(signer crypto.Signer, logger *zap.Logger, config *Config) *Server {
	r := chi.NewRouter()
	s := &Server{
		Logger: logger,
		Router: r,
		State:  NewSwitch(signer, logger, config),
	}
	RegisterRoutes(s)
	return s
}

// Start runs the http server listening for incoming messages at the
// specified port. It blocks until the server stops.
func (s *Server) Start(port uint16) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%v", port), Handler: s.Router, ReadHeaderTimeout: 10 * time.Second}
	s.HttpServer = srv
	s.Logger.Info("server is listening for incoming requests", zap.Uint16("port", port))
	return s.HttpServer.ListenAndServe()
}

// Stop shuts the http server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.HttpServer == nil {
		return nil
	}
	return s.HttpServer.Shutdown(ctx)
}
