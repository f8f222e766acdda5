// Package httpapi exposes the authentication operations over HTTP:
// signup, login, logout, the protected profile view and a liveness probe.
// It owns the session cookie transport; everything behind it treats the
// token as opaque.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avdokushin/authgate/internal/logging"
	"github.com/avdokushin/authgate/internal/server/models"
	"github.com/avdokushin/authgate/internal/server/services"
)

// AuthService is the slice of the orchestrator the HTTP layer needs.
type AuthService interface {
	Signup(ctx context.Context, sub services.Submission, transport services.SessionTransport) services.Result
	Login(ctx context.Context, sub services.Submission, transport services.SessionTransport) services.Result
	Logout(transport services.SessionTransport) services.Result
	Profile(ctx context.Context, accountID string) (*models.Account, error)
	SecretKey() []byte
}

type HTTPServer struct {
	address       string
	auth          AuthService
	logger        logging.Logger
	secureCookies bool
}

func NewHTTPServer(address string, l logging.Logger, auth AuthService, secureCookies bool) *HTTPServer {
	return &HTTPServer{
		address:       address,
		auth:          auth,
		logger:        l.With("module", "http_server"),
		secureCookies: secureCookies,
	}
}

// Handler builds the route table. Exposed separately so tests can drive
// the API through httptest without binding a socket.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/profile", s.withSession(s.handleProfile))
	mux.HandleFunc("GET /api/ping", s.handlePing)
	return mux
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
