// Package session owns the current-identity concept: it merges the live
// identity source with the locally persisted fallback identity, applies the
// cached-identity expiry rule, and tracks the session lifecycle state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/identity"
	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/dmitrijs2005/liftfield/internal/netx"
	"github.com/sethvargo/go-retry"
)

// State is the identity lifecycle state.
type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateAuthenticated
	StateOfflineRestored
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateOfflineRestored:
		return "offline-restored"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// cachedAuth is the persisted fallback identity record.
type cachedAuth struct {
	Email     string `json:"email"`
	SubjectID string `json:"subjectId"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// Manager is the session cache. Exactly one identity is current at a time;
// making one current writes through to the local store, clearing it deletes
// the cached entry.
type Manager struct {
	kv       *store.KV
	provider identity.Provider // nil when the live provider failed to initialize
	net      *netx.Monitor
	log      logging.Logger
	clock    func() time.Time

	mu      sync.Mutex
	state   State
	current *models.Identity
}

// NewManager builds a session manager. provider may be nil when the live
// identity source is unavailable (degraded startup).
func NewManager(kv *store.KV, provider identity.Provider, net *netx.Monitor, log logging.Logger) *Manager {
	return &Manager{
		kv:       kv,
		provider: provider,
		net:      net,
		log:      log,
		clock:    time.Now,
	}
}

// Current returns the current identity and lifecycle state.
func (m *Manager) Current() (*models.Identity, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.state
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Resolve returns the current identity: live if the provider is initialized
// and connectivity is up, otherwise restored from the local store subject to
// the expiry rule. A nil identity with nil error means "no session".
func (m *Manager) Resolve(ctx context.Context) (*models.Identity, error) {
	if m.provider != nil && !m.net.Offline() {
		if id := m.provider.Current(); id != nil {
			m.SetAuthenticated(ctx, id)
			return id, nil
		}
		m.setState(StateUnauthenticated, nil)
		return nil, nil
	}
	return m.RestoreOffline(ctx)
}

// RestoreOffline loads the cached fallback identity. An entry older than the
// expiry limit is purged on read and reported as ErrSessionExpired; a missing
// entry yields ErrNoCachedData.
func (m *Manager) RestoreOffline(ctx context.Context) (*models.Identity, error) {
	raw, found, err := m.kv.Get(ctx, store.KeyOfflineAuth)
	if err != nil {
		return nil, err
	}
	if !found {
		m.setState(StateUnauthenticated, nil)
		return nil, common.ErrNoCachedData
	}

	var ca cachedAuth
	if err := json.Unmarshal(raw, &ca); err != nil {
		m.log.Warn(ctx, "corrupt offline auth entry, dropping", "error", err)
		_ = m.Persist(ctx, nil)
		m.setState(StateUnauthenticated, nil)
		return nil, common.ErrNoCachedData
	}

	id := &models.Identity{
		Email:          ca.Email,
		SubjectID:      ca.SubjectID,
		OfflineDerived: true,
		CapturedAt:     time.UnixMilli(ca.Timestamp),
	}

	if id.Expired(m.clock()) {
		m.log.Info(ctx, "cached identity expired, purging", "email", id.Email)
		if err := m.Persist(ctx, nil); err != nil {
			return nil, err
		}
		m.setState(StateUnauthenticated, nil)
		return nil, common.ErrSessionExpired
	}

	m.setState(StateOfflineRestored, id)
	return id, nil
}

// Persist writes the fallback identity through to the local store; nil
// deletes the cached entries. All keys move in one transaction.
func (m *Manager) Persist(ctx context.Context, id *models.Identity) error {
	return m.kv.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if id == nil {
			for _, key := range []string{store.KeyOfflineAuth, store.KeyCachedCurrentUser, store.KeyIsLoggedIn, store.KeyUsername} {
				if err := tx.Delete(ctx, key); err != nil {
					return err
				}
			}
			return nil
		}

		now := m.clock()
		auth, err := json.Marshal(cachedAuth{Email: id.Email, SubjectID: id.SubjectID, Timestamp: now.UnixMilli()})
		if err != nil {
			return err
		}
		user, err := json.Marshal(map[string]string{"email": id.Email, "uid": id.SubjectID})
		if err != nil {
			return err
		}

		if err := tx.Set(ctx, store.KeyOfflineAuth, auth); err != nil {
			return err
		}
		if err := tx.Set(ctx, store.KeyCachedCurrentUser, user); err != nil {
			return err
		}
		if err := tx.Set(ctx, store.KeyIsLoggedIn, []byte(`true`)); err != nil {
			return err
		}
		return tx.Set(ctx, store.KeyUsername, []byte(fmt.Sprintf("%q", id.Email)))
	})
}

// StartAuthenticating marks a live sign-in attempt in flight.
func (m *Manager) StartAuthenticating() {
	m.setState(StateAuthenticating, nil)
}

// SetAuthenticated makes a live identity current and writes it through.
func (m *Manager) SetAuthenticated(ctx context.Context, id *models.Identity) {
	m.setState(StateAuthenticated, id)
	if err := m.Persist(ctx, id); err != nil {
		m.log.Error(ctx, "failed to persist identity", "error", err)
	}
}

// SetUnauthenticated clears the current identity and purges the cached
// entry. Used for live sign-out and explicit local logout.
// Discard drops the in-memory session without touching the cached entry.
// Used when a restored session turns out to belong to a different account
// than the one requested: the cached entry stays restorable for its owner.
func (m *Manager) Discard() {
	m.setState(StateUnauthenticated, nil)
}

func (m *Manager) SetUnauthenticated(ctx context.Context) {
	m.setState(StateUnauthenticated, nil)
	if err := m.Persist(ctx, nil); err != nil {
		m.log.Error(ctx, "failed to purge cached identity", "error", err)
	}
}

// Upgrade attempts a silent promotion of an offline-restored session to an
// authenticated one once connectivity returns. Best-effort: failure leaves
// the session offline-restored.
func (m *Manager) Upgrade(ctx context.Context) error {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	if state != StateOfflineRestored {
		return nil
	}
	if m.provider == nil {
		return common.ErrGatewayUnavailable
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := m.provider.Refresh(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		m.SetAuthenticated(ctx, id)
		m.log.Info(ctx, "offline session upgraded", "email", id.Email)
		return nil
	})
}

func (m *Manager) setState(s State, id *models.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.current = id
}
