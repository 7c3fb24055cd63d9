// Package callback provides a loopback authorization surface: a local HTTP
// server receiving the redirect from the identity provider while the flow
// itself runs in the operating system browser. Each callback hit is turned
// into a navigation event for the flow classifier; query-string redirects
// arrive as GET requests and form_post responses as POSTed bodies.
//
// Fragment response mode cannot be observed by a loopback listener (the
// browser never sends the fragment to the server); embedded webview
// surfaces that watch the address bar directly are needed for that.
package callback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/websignin/websignin/internal/browser"
	"github.com/websignin/websignin/sdk/authflow"
)

const maxCallbackBodyBytes = 1 << 20

// Server is a loopback implementation of authflow.Surface.
type Server struct {
	port int
	path string
	cfg  authflow.SurfaceConfig

	server *http.Server
	group  *errgroup.Group

	events    chan authflow.Navigation
	dismissed chan struct{}

	cancelOnce sync.Once
	mu         sync.Mutex
	running    bool

	// openURL is swappable for tests.
	openURL func(string) error
}

// New constructs a loopback surface listening on the given port. An empty
// path defaults to /auth/callback.
func New(port int, path string, cfg authflow.SurfaceConfig) *Server {
	if path == "" {
		path = "/auth/callback"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Server{
		port:      port,
		path:      path,
		cfg:       cfg,
		events:    make(chan authflow.Navigation, 4),
		dismissed: make(chan struct{}),
		openURL:   browser.OpenURL,
	}
}

// Navigate starts the callback listener and opens the authorization URL in
// the system browser. With NoBrowser set the URL is printed for the user to
// open manually. OSAccountSSO and UserAgent cannot be enforced on the
// system browser; they are logged and ignored here.
func (s *Server) Navigate(rawURL string) error {
	if err := s.start(); err != nil {
		return err
	}
	if s.cfg.OSAccountSSO {
		log.Warn("os-account-sso has no effect on the system browser; use an embedded surface")
	}
	if s.cfg.NoBrowser || !browser.IsAvailable() {
		fmt.Printf("Open this URL in your browser to continue signing in:\n\n%s\n\n", rawURL)
		return nil
	}
	if err := s.openURL(rawURL); err != nil {
		log.Warnf("failed to open browser automatically: %v", err)
		fmt.Printf("Open this URL in your browser to continue signing in:\n\n%s\n\n", rawURL)
	}
	return nil
}

// Events yields one navigation event per callback hit.
func (s *Server) Events() <-chan authflow.Navigation {
	return s.events
}

// Dismissed is closed when Cancel is called. A loopback surface has no
// window of its own, so dismissal is always caller-driven (for example an
// interrupt signal or an external deadline).
func (s *Server) Dismissed() <-chan struct{} {
	return s.dismissed
}

// Cancel abandons the flow, unblocking any Run waiting on this surface.
func (s *Server) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.dismissed)
	})
}

// Close shuts the callback listener down gracefully.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}
	log.Debug("stopping callback listener")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.running = false
	s.server = nil
	if s.group != nil {
		if errServe := s.group.Wait(); errServe != nil && err == nil {
			err = errServe
		}
		s.group = nil
	}
	return err
}

// start launches the HTTP listener once.
func (s *Server) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.isPortAvailable() {
		return fmt.Errorf("port %d is already in use", s.port)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.running = true

	srv := s.server
	s.group = &errgroup.Group{}
	s.group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("callback listener failed: %w", err)
		}
		return nil
	})

	// Give the listener a moment to bind before the browser redirects.
	time.Sleep(100 * time.Millisecond)
	return nil
}

// handleCallback converts a redirect hit into a navigation event and serves
// a small landing page.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	log.Debug("received authorization callback")

	nav := authflow.Navigation{URL: absoluteURL(r)}
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBodyBytes))
		if err != nil {
			http.Error(w, "failed to read posted body", http.StatusBadRequest)
			return
		}
		nav.Body = string(body)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sendEvent(nav)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("error") != "" || strings.Contains(nav.Body, "error=") {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(signInFailedHTML))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(signInCompleteHTML))
}

// sendEvent forwards a navigation event without blocking the handler.
func (s *Server) sendEvent(nav authflow.Navigation) {
	select {
	case s.events <- nav:
		log.Debug("navigation event queued")
	default:
		log.Warn("navigation event channel full, event dropped")
	}
}

// absoluteURL reconstructs the full URL the browser requested.
func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.RequestURI)
}

// isPortAvailable probes the listen port before starting.
func (s *Server) isPortAvailable() bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return false
	}
	defer func() {
		_ = listener.Close()
	}()
	return true
}
