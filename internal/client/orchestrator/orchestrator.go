// Package orchestrator hosts the decision function invoked before every data
// operation: given connectivity and session state, route the operation to the
// remote gateway, the local cache, or block it. It also reacts to
// connectivity transitions to trigger resynchronization.
package orchestrator

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/liftfield/internal/client/session"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/dmitrijs2005/liftfield/internal/netx"
)

// OpKind classifies an operation for gating.
type OpKind int

const (
	OpRead OpKind = iota
	OpWrite
)

// Route is the gate's decision.
type Route int

const (
	// RouteRemote sends the operation to the remote gateway.
	RouteRemote Route = iota
	// RouteCached serves the operation from the local store.
	RouteCached
	// RouteBlocked refuses the operation; the accompanying error says why.
	RouteBlocked
)

func (r Route) String() string {
	switch r {
	case RouteRemote:
		return "remote"
	case RouteCached:
		return "cached"
	default:
		return "blocked"
	}
}

// Orchestrator gates data operations and drives reconciliation on
// connectivity transitions.
type Orchestrator struct {
	net          *netx.Monitor
	session      *session.Manager
	gatewayReady func() bool
	log          logging.Logger

	mu          sync.Mutex
	onReconnect []func(ctx context.Context)
}

// New builds an orchestrator. gatewayReady reports whether a live gateway
// handle exists (it may have failed to initialize at startup).
func New(net *netx.Monitor, sess *session.Manager, gatewayReady func() bool, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		net:          net,
		session:      sess,
		gatewayReady: gatewayReady,
		log:          log,
	}
}

// Gate decides how an operation of the given kind may proceed. Blocked
// decisions carry the user-visible reason as the error.
func (o *Orchestrator) Gate(kind OpKind) (Route, error) {
	offline := o.net.Offline()
	ready := o.gatewayReady()

	if !offline && ready {
		return RouteRemote, nil
	}

	if offline {
		if _, state := o.session.Current(); state == session.StateOfflineRestored {
			if kind == OpRead {
				return RouteCached, nil
			}
			return RouteBlocked, common.ErrOfflineWriteBlocked
		}
		return RouteBlocked, common.ErrAuthRequired
	}

	// Online but the live gateway handle never came up: degrade reads,
	// block writes.
	if kind == OpRead {
		return RouteCached, nil
	}
	return RouteBlocked, common.ErrGatewayUnavailable
}

// OnReconnect registers a hook run after connectivity returns, once the
// session has had its chance to upgrade. Used to re-run the list operations
// for the current owner.
func (o *Orchestrator) OnReconnect(fn func(ctx context.Context)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onReconnect = append(o.onReconnect, fn)
}

// Run consumes connectivity transitions until ctx is done. On transition to
// online it attempts a silent session upgrade and then replays the
// registered reconciliation hooks; on transition to offline it only logs,
// letting in-flight operations fail naturally into their fallbacks.
func (o *Orchestrator) Run(ctx context.Context) {
	events, cancel := o.net.Subscribe()
	defer cancel()

	for {
		select {
		case tr, ok := <-events:
			if !ok {
				return
			}
			if !tr.Online {
				o.log.Info(ctx, "connection lost, cached data only")
				continue
			}
			o.reconcile(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (o *Orchestrator) reconcile(ctx context.Context) {
	o.log.Info(ctx, "connection restored, reconciling")

	if err := o.session.Upgrade(ctx); err != nil {
		// best-effort: stay on the offline-restored session
		o.log.Warn(ctx, "silent session upgrade failed", "error", err)
	}

	if _, state := o.session.Current(); state != session.StateAuthenticated {
		return
	}

	o.mu.Lock()
	hooks := make([]func(ctx context.Context), len(o.onReconnect))
	copy(hooks, o.onReconnect)
	o.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}
