// Package session keeps per-browser cart and checkout state in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

const (
	CookieName  = "sf_session"
	DefaultIdle = 30 * time.Minute
)

// Session is the state behind one sf_session cookie.
type Session struct {
	ID      string
	Cart    *cart.Service
	Notices *notify.Buffer

	mu       sync.Mutex
	checkout *checkout.Orchestrator
	redirect string
	lastSeen time.Time
}

// Checkout returns the active orchestrator, or nil before the cart has been
// checked out.
func (s *Session) Checkout() *checkout.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout
}

// TakeRedirect returns and clears the pending navigation target.
func (s *Session) TakeRedirect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.redirect
	s.redirect = ""
	return path
}

// navigateFrom records path and drops the form, but only while owner is
// still the session's checkout. A timer left over from an earlier checkout
// must not end a newer one.
func (s *Session) navigateFrom(owner *checkout.Orchestrator, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner == nil || s.checkout != owner {
		return
	}
	s.redirect = path
	s.checkout = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Options struct {
	Backend   cart.Backend
	Cache     cart.Cache
	Processor checkout.PaymentProcessor
	Recorder  checkout.Recorder
	Validator *payment.Validator
	Logger    *logger.Logger

	Idle          time.Duration
	RedirectDelay time.Duration
	RedirectPath  string

	NowFunc func() time.Time
	NewID   func() string
}

type Manager struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Idle <= 0 {
		opts.Idle = DefaultIdle
	}
	if opts.NowFunc == nil {
		opts.NowFunc = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Validator == nil {
		opts.Validator = payment.NewValidator(opts.NowFunc)
	}
	return &Manager{opts: opts, sessions: map[string]*Session{}}
}

// Get returns the session for id, creating a fresh one when id is empty or
// unknown. created reports whether a new cookie must be issued.
func (m *Manager) Get(id string) (s *Session, created bool) {
	now := m.opts.NowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[id]; ok && id != "" {
		existing.touch(now)
		return existing, false
	}

	id = m.opts.NewID()
	notices := &notify.Buffer{}
	s = &Session{
		ID:      id,
		Notices: notices,
		Cart: cart.NewService(cart.ServiceOptions{
			Backend:  m.opts.Backend,
			Cache:    m.opts.Cache,
			Notifier: notices,
			Logger:   m.opts.Logger,
			CacheKey: id,
		}),
		lastSeen: now,
	}
	m.sessions[id] = s
	return s, true
}

// StartCheckout replaces the session's orchestrator with one over order.
func (m *Manager) StartCheckout(s *Session, userID string, order cart.Snapshot) *checkout.Orchestrator {
	var o *checkout.Orchestrator
	o = checkout.New(checkout.Options{
		Processor:     m.opts.Processor,
		Validator:     m.opts.Validator,
		Notifier:      s.Notices,
		Recorder:      m.opts.Recorder,
		Logger:        m.opts.Logger,
		Navigate:      func(path string) { s.navigateFrom(o, path) },
		RedirectDelay: m.opts.RedirectDelay,
		RedirectPath:  m.opts.RedirectPath,
		SessionID:     s.ID,
		UserID:        userID,
		Order:         order,
		NowFunc:       m.opts.NowFunc,
	})

	s.mu.Lock()
	s.checkout = o
	s.redirect = ""
	s.mu.Unlock()
	return o
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the configured window and
// returns how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.opts.NowFunc().Add(-m.opts.Idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.opts.Logger.Info(m.opts.Logger.WithField(ctx, "expired", n), "expired idle sessions")
			}
		}
	}
}
