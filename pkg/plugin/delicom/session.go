package delicom

import (
	"context"
	"sync"
	"time"

	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Session cache lookup results reported to the Observer.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupRefresh = "refresh"
	LookupError   = "error"
)

// Observer receives library events for metrics.
type Observer interface {
	SessionLookup(result string)
	RecordsSkipped(n int)
}

type nopObserver struct{}

func (nopObserver) SessionLookup(string) {}
func (nopObserver) RecordsSkipped(int)   {}

// SessionManager hands out an authenticated session for the current
// settings, reusing the cached one while DelisID, Server and TimeLogging
// are unchanged. A secret-only change keeps the cached session; call
// Invalidate after rotating the password.
type SessionManager struct {
	mu        sync.Mutex
	store     credstore.Store
	api       APIClient
	endpoints Endpoints
	ttl       time.Duration
	observer  Observer
	logger    *otelzap.Logger
	now       func() time.Time
}

// SessionManagerConfig holds the collaborators of a SessionManager.
type SessionManagerConfig struct {
	Store     credstore.Store
	API       APIClient
	Endpoints Endpoints
	TTL       time.Duration // zero keeps a session until settings change
	Observer  Observer
	Logger    *otelzap.Logger
}

// NewSessionManager creates a session manager. A nil store defaults to an
// in-memory one.
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	store := cfg.Store
	if store == nil {
		store = credstore.NewMemory()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &SessionManager{
		store:     store,
		api:       cfg.API,
		endpoints: cfg.Endpoints,
		ttl:       cfg.TTL,
		observer:  observer,
		logger:    logger,
		now:       time.Now,
	}
}

// Session returns the cached session when it was created for the same
// DelisID, Server and TimeLogging, and otherwise authenticates and replaces
// the cached one.
func (m *SessionManager) Session(ctx context.Context, s Settings) (*credstore.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, err := m.store.Get(ctx)
	if err != nil {
		// An unreadable slot is treated as empty; the fresh session below
		// overwrites it.
		m.logger.Ctx(ctx).Warn("Failed to read cached session", zap.Error(err))
		cached = nil
	}

	if s.Matches(cached) && !m.expired(cached) {
		m.observer.SessionLookup(LookupHit)
		return cached, nil
	}

	result := LookupMiss
	if cached != nil {
		result = LookupRefresh
	}

	endpoint := m.endpoints.For(s.Server)
	m.logger.Ctx(ctx).Info("Authenticating with DPD",
		zap.String("delis_id", s.DelisID),
		zap.String("endpoint", endpoint),
		zap.String("reason", result),
	)

	resp, err := m.api.Login(ctx, &LoginRequest{
		DelisID:     s.DelisID,
		Password:    s.Password,
		Endpoint:    endpoint,
		TimeLogging: s.TimeLogging,
	})
	if err != nil {
		m.observer.SessionLookup(LookupError)
		return nil, &plugin.AuthenticationError{
			Carrier:      CarrierName,
			Endpoint:     endpoint,
			CredentialID: s.DelisID,
			Cause:        err,
		}
	}

	sess := &credstore.Session{
		DelisID:     s.DelisID,
		Server:      s.Server,
		TimeLogging: s.TimeLogging,
		Endpoint:    endpoint,
		Token:       resp.Token,
		Depot:       resp.Depot,
		CreatedAt:   m.now(),
	}
	if err := m.store.Put(ctx, sess); err != nil {
		m.logger.Ctx(ctx).Warn("Failed to cache session", zap.Error(err))
	}

	m.observer.SessionLookup(result)
	return sess, nil
}

// Invalidate drops the cached session so the next call authenticates.
func (m *SessionManager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clear(ctx)
}

func (m *SessionManager) expired(s *credstore.Session) bool {
	return m.ttl > 0 && m.now().Sub(s.CreatedAt) >= m.ttl
}
