// Package netx owns the process-wide connectivity state: a single offline
// flag flipped by explicit online/offline signals and by a periodic
// reachability probe. Readers take immutable snapshots; only the handler of a
// given transition writes the flag.
package netx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/logging"
)

// Transition is delivered to subscribers whenever the connectivity state
// flips.
type Transition struct {
	Online bool
	At     time.Time
}

// Snapshot is an immutable view of the connectivity state, valid until the
// next handled transition.
type Snapshot struct {
	Offline   bool
	CheckedAt time.Time
}

// Monitor tracks reachability of the remote endpoint.
type Monitor struct {
	probeURL string
	client   *http.Client
	log      logging.Logger

	mu        sync.Mutex
	offline   bool
	checkedAt time.Time
	subs      map[int]chan Transition
	nextSubID int
}

// NewMonitor returns a Monitor that probes probeURL. The monitor starts in
// the online state; the first probe corrects it if needed.
func NewMonitor(probeURL string, log logging.Logger) *Monitor {
	return &Monitor{
		probeURL: probeURL,
		client:   &http.Client{Timeout: 3 * time.Second},
		log:      log,
		subs:     make(map[int]chan Transition),
	}
}

// Offline reports the current state of the shared flag.
func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Snapshot returns an immutable view of the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Offline: m.offline, CheckedAt: m.checkedAt}
}

// SetOnline handles a network-online signal.
func (m *Monitor) SetOnline(ctx context.Context) {
	m.transition(ctx, false)
}

// SetOffline handles a network-offline signal.
func (m *Monitor) SetOffline(ctx context.Context) {
	m.transition(ctx, true)
}

func (m *Monitor) transition(ctx context.Context, offline bool) {
	m.mu.Lock()
	changed := m.offline != offline
	m.offline = offline
	m.checkedAt = time.Now()
	if changed {
		// Send under the lock: cancel closes the channel under the same
		// lock, so a send can never hit a closed channel.
		t := Transition{Online: !offline, At: time.Now()}
		for _, ch := range m.subs {
			select {
			case ch <- t:
			default:
				// subscriber not draining; drop rather than block the event tick
			}
		}
	}
	m.mu.Unlock()

	if changed {
		m.log.Info(ctx, "connectivity changed", "offline", offline)
	}
}

// Probe performs a single reachability check and updates the flag with the
// result.
func (m *Monitor) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		m.SetOffline(ctx)
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.SetOffline(ctx)
		return false
	}
	defer resp.Body.Close()

	m.SetOnline(ctx)
	return true
}

// Subscribe registers for connectivity transitions. The returned cancel
// function must be called on teardown.
func (m *Monitor) Subscribe() (<-chan Transition, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan Transition, 4)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Subscribers reports how many transition subscriptions are registered.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Watch probes on the given interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			m.Probe(probeCtx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
