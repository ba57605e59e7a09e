// Package server is the thin HTTP dispatch layer over the services. It owns
// routing, bearer-token extraction, request logging, and the mapping from
// domain errors to status codes; all decisions live in the services.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/malik-javed/ez-secure-files/internal/logging"
	"github.com/malik-javed/ez-secure-files/internal/service"
)

// Config carries the wiring for the HTTP server.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	Auth           *service.AuthService
	Files          *service.FileService
	Log            *logging.Logger
}

type Server struct {
	httpServer *http.Server
	cfg        Config
}

func New(cfg Config) *Server {
	s := &Server{cfg: cfg}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("GET /auth/verify", s.handleVerify)
	mux.HandleFunc("POST /auth/resend-verification", s.handleResendVerification)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/token", s.handleLogin)

	mux.Handle("POST /files/upload", s.requireSession(http.HandlerFunc(s.handleUpload)))
	mux.Handle("GET /files/list", s.requireSession(http.HandlerFunc(s.handleList)))
	mux.Handle("GET /files/download/{id}", s.requireSession(http.HandlerFunc(s.handleRequestDownload)))

	// Redemption deliberately carries no session requirement: the
	// capability itself is the authorization, so a bare link click works.
	mux.HandleFunc("GET /files/secure-download", s.handleSecureDownload)

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
