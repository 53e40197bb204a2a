// Package remote hosts lessons for clients that are not on this terminal:
// SSH sessions through wish and browser canvases through a WebSocket.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/san-kum/pointerquest/internal/config"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/progress"
	"github.com/san-kum/pointerquest/internal/viz"
)

type SSHConfig struct {
	Addr        string
	HostKeyPath string
	IdleTimeout time.Duration
	// PasswordHash is a bcrypt hash every client must match. Empty accepts
	// anyone.
	PasswordHash string
	FPS          int
	Theme        string
	// Mount is the starting point for every session's instance. A session
	// whose client sends LANG overrides Mount.Language.
	Mount engine.Options
}

// SSHServer serves the lesson picker over SSH, one instance per session.
type SSHServer struct {
	cfg    SSHConfig
	reg    *lessons.Registry
	store  *progress.Store
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer prepares the server. store may be nil, in which case no
// sessions are recorded.
func NewSSHServer(reg *lessons.Registry, store *progress.Store, cfg SSHConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "pointerquest-ssh"})
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultSSHAddr
	}
	srv := &SSHServer{cfg: cfg, reg: reg, store: store, logger: logger}

	hostKey := config.ExpandPath(cfg.HostKeyPath)
	if hostKey == "" {
		hostKey = config.ExpandPath(config.DefaultConfig().Serve.HostKey)
	}
	if err := os.MkdirAll(filepath.Dir(hostKey), 0o700); err != nil {
		return nil, fmt.Errorf("create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(hostKey),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}
	if cfg.PasswordHash != "" {
		opts = append(opts, wish.WithPasswordAuth(srv.checkPassword))
	}
	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

func (s *SSHServer) checkPassword(ctx ssh.Context, password string) bool {
	ok := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) == nil
	if !ok {
		s.logger.Warn("password rejected", "user", ctx.User(), "remote", ctx.RemoteAddr().String())
	}
	return ok
}

// HashPassword returns the bcrypt hash to store as the server password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("remote: empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sess.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	mount := s.cfg.Mount
	if lang, ok := sessionLanguage(sess.Environ()); ok {
		mount.Language = lang
	}
	opts := viz.Options{
		FPS:    s.cfg.FPS,
		Theme:  s.cfg.Theme,
		Host:   "ssh:" + sess.User(),
		Logger: s.logger,
	}
	if s.store != nil {
		opts.Recorder = s.store
	}
	app, err := viz.NewApp(s.reg, mount, opts, "")
	if err != nil {
		s.logger.Error("could not open lesson picker", "user", sess.User(), "error", err)
		return nil, nil
	}
	// A dropped connection ends the program without a quit key.
	go func() {
		<-sess.Context().Done()
		app.Close()
	}()
	return app, []tea.ProgramOption{tea.WithAltScreen()}
}

// sessionLanguage picks the lesson language from the client's forwarded
// locale variables, if any.
func sessionLanguage(environ []string) (lessons.Language, bool) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag := config.NormalizeLocale(env[k]); tag != "" {
			return config.ResolveLanguage(tag), true
		}
	}
	return "", false
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String())
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe blocks until SIGINT or SIGTERM, then shuts down.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.cfg.Addr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("ssh server: %w", err)
	case <-done:
	}
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *SSHServer) Addr() string { return s.cfg.Addr }
