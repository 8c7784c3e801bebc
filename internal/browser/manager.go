// Package browser manages the headless Chrome process and the page sessions
// driven against it. The Manager owns the exec allocator (one browser process
// per Manager lifetime); each Session is an isolated chromedp context holding
// one page. Front-ends that want per-call isolation mint a fresh Session per
// request on the shared allocator; the long-lived mode reuses one Session.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/config"
)

// Manager implements the schemas.SessionManager interface.
type Manager struct {
	logger *zap.Logger
	cfg    *config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// Track active sessions for graceful shutdown.
	sessions map[string]*Session
	mu       sync.Mutex
}

var _ schemas.SessionManager = (*Manager)(nil)

// NewManager configures the browser allocator. The Chrome process itself
// launches lazily with the first session; a launch failure is fatal to that
// session request and surfaced, never retried.
func NewManager(ctx context.Context, logger *zap.Logger, cfg *config.BrowserConfig) *Manager {
	m := &Manager{
		logger:   logger.Named("browser_manager"),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}

	m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, m.allocatorOptions()...)

	m.logger.Info("Browser manager initialized",
		zap.Bool("headless", cfg.Headless),
		zap.Duration("default_timeout", cfg.DefaultTimeout),
	)
	return m
}

// allocatorOptions configures the flags for the browser executable.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	if m.cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		// Stability flags for containerized runs.
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Headless),

		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
	)

	return opts
}

// NewSession opens one isolated browsing context with one page, ready to
// drive. The initial blank navigation forces the browser to actually start;
// if it cannot, the error is reported upward as a session start failure.
func (m *Manager) NewSession(ctx context.Context) (schemas.PageSession, error) {
	cdpCtx, cancel := chromedp.NewContext(m.allocatorCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Errorf),
	)

	// Tie the chromedp context to the caller's lifetime.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-cdpCtx.Done():
		}
	}()

	if err := chromedp.Run(cdpCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	s := &Session{
		id:      uuid.New().String(),
		ctx:     cdpCtx,
		cancel:  cancel,
		cfg:     m.cfg,
		logger:  m.logger.Named("session"),
		manager: m,
		slot:    make(chan struct{}, 1),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("Browser session started", zap.String("session_id", s.id))
	return s, nil
}

// unregisterSession removes a session from the tracking map. Called by
// Session.Close.
func (m *Manager) unregisterSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Shutdown closes all active sessions and then the browser process. Every
// step is best-effort: a failure is logged as a warning and never blocks the
// remaining teardown.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down browser manager...")

	m.mu.Lock()
	sessionsToClose := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessionsToClose = append(sessionsToClose, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessionsToClose {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := s.Close(closeCtx); err != nil {
				m.logger.Warn("Error closing browser session during shutdown",
					zap.String("session_id", s.id), zap.Error(err))
			}
		}(s)
	}
	wg.Wait()

	if m.allocatorCancel != nil {
		m.allocatorCancel()
	}

	m.logger.Info("Browser manager shutdown complete.")
	return nil
}
