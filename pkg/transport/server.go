package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/logging"
)

func errField(err error) zap.Field   { return zap.Error(err) }
func pathField(path string) zap.Field { return zap.String("socket_path", path) }

// Handler is the bridge between the inbound HTTP request and the broker's
// dispatcher. It receives the request path, method and raw body, and must
// write a status code and body to the response.
type Handler func(w http.ResponseWriter, method, path string, body []byte)

// Server listens on a single Unix-domain socket and forwards every request
// to a Handler, regardless of path — routing within the broker's own
// handler table happens one level up, in pkg/broker.
type Server struct {
	socketPath string
	logger     *logging.Logger
	handler    Handler
	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds a Server for socketPath without touching the socket
// file; Start removes a stale file first if it already exists, matching a
// Unix-socket server's usual recovery from an unclean previous shutdown.
func NewServer(socketPath string, logger *logging.Logger, handler Handler) *Server {
	s := &Server{
		socketPath: socketPath,
		logger:     logger,
		handler:    handler,
		router:     chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(RequestTimeout))
	s.router.NotFound(s.serveAny)
	s.router.MethodNotAllowed(s.serveAny)
	s.router.Handle("/*", http.HandlerFunc(s.serveAny))

	s.httpServer = &http.Server{Handler: s.router}
	return s
}

func (s *Server) serveAny(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error(logging.ComponentTransport, "failed to read request body", errField(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.handler(w, r.Method, r.URL.Path, body)
}

// Start removes any stale socket file, binds the listener and begins
// serving in the background. It returns once the listener is live.
func (s *Server) Start() error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info(logging.ComponentTransport, "listening on unix socket", pathField(s.socketPath))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(logging.ComponentTransport, "server exited with error", errField(err))
		}
	}()
	return nil
}

// Stop gracefully drains in-flight requests within ctx's deadline, then
// closes the listener and removes the socket file.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	if rmErr := os.Remove(s.socketPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		s.logger.Warn(logging.ComponentTransport, "failed to remove socket file on shutdown", errField(rmErr))
	}
	return err
}

