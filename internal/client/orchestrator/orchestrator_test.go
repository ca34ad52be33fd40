package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/identity"
	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/session"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/dmitrijs2005/liftfield/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type stubProvider struct {
	refreshed  *models.Identity
	refreshErr error
}

func (s *stubProvider) SignIn(context.Context, string, []byte) (*models.Identity, error) {
	return nil, nil
}
func (s *stubProvider) SignUp(context.Context, string, []byte) (*models.Identity, error) {
	return nil, nil
}
func (s *stubProvider) SignOut(context.Context) error { return nil }
func (s *stubProvider) Refresh(context.Context) (*models.Identity, error) {
	return s.refreshed, s.refreshErr
}
func (s *stubProvider) Current() *models.Identity         { return nil }
func (s *stubProvider) AccessToken() string               { return "" }
func (s *stubProvider) Subscribe() *identity.Subscription { return nil }

type fixture struct {
	orch *Orchestrator
	sess *session.Manager
	kv   *store.KV
	net  *netx.Monitor
}

func setup(t *testing.T, provider identity.Provider, gatewayReady bool) *fixture {
	t.Helper()
	kv, db, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	net := netx.NewMonitor("http://127.0.0.1:0", logging.Nop{})
	sess := session.NewManager(kv, provider, net, logging.Nop{})
	orch := New(net, sess, func() bool { return gatewayReady }, logging.Nop{})
	return &fixture{orch: orch, sess: sess, kv: kv, net: net}
}

// restoreOffline seeds a cached identity and loads it back so the session
// ends up offline-restored.
func (f *fixture) restoreOffline(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sess.Persist(ctx, &models.Identity{Email: "tech@example.com", SubjectID: "uid-1"}))
	_, err := f.sess.RestoreOffline(ctx)
	require.NoError(t, err)
}

// waitForSubscriber blocks until Run has registered its transition
// subscription, so signals raised by the test are not lost.
func waitForSubscriber(t *testing.T, net *netx.Monitor) {
	t.Helper()
	require.Eventually(t, func() bool { return net.Subscribers() > 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestGate_OnlineRoutesRemote(t *testing.T) {
	f := setup(t, nil, true)
	f.net.SetOnline(context.Background())

	for _, kind := range []OpKind{OpRead, OpWrite} {
		route, err := f.orch.Gate(kind)
		require.NoError(t, err)
		assert.Equal(t, RouteRemote, route)
	}
}

func TestGate_OfflineWithRestoredSession(t *testing.T) {
	f := setup(t, nil, true)
	f.net.SetOffline(context.Background())
	f.restoreOffline(t)

	route, err := f.orch.Gate(OpRead)
	require.NoError(t, err)
	assert.Equal(t, RouteCached, route)

	route, err = f.orch.Gate(OpWrite)
	assert.Equal(t, RouteBlocked, route)
	assert.ErrorIs(t, err, common.ErrOfflineWriteBlocked)
}

func TestGate_BlockedWriteLeavesStoreUntouched(t *testing.T) {
	f := setup(t, nil, true)
	f.net.SetOffline(context.Background())
	f.restoreOffline(t)
	ctx := context.Background()

	tasks := []models.Task{{ID: "t1", LiftModel: "KONE MonoSpace", Status: models.StatusNew, OwnerID: "uid-1"}}
	require.NoError(t, f.kv.SaveTasks(ctx, tasks))

	route, err := f.orch.Gate(OpWrite)
	assert.Equal(t, RouteBlocked, route)
	assert.ErrorIs(t, err, common.ErrOfflineWriteBlocked)

	got, err := f.kv.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestGate_OfflineWithoutSessionRequiresAuth(t *testing.T) {
	f := setup(t, nil, true)
	f.net.SetOffline(context.Background())

	for _, kind := range []OpKind{OpRead, OpWrite} {
		route, err := f.orch.Gate(kind)
		assert.Equal(t, RouteBlocked, route)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
	}
}

func TestGate_OnlineGatewayNotReady(t *testing.T) {
	f := setup(t, nil, false)
	f.net.SetOnline(context.Background())

	route, err := f.orch.Gate(OpRead)
	require.NoError(t, err)
	assert.Equal(t, RouteCached, route)

	route, err = f.orch.Gate(OpWrite)
	assert.Equal(t, RouteBlocked, route)
	assert.ErrorIs(t, err, common.ErrGatewayUnavailable)
}

func TestRun_ReconnectUpgradesAndReplaysHooks(t *testing.T) {
	provider := &stubProvider{refreshed: &models.Identity{Email: "tech@example.com", SubjectID: "uid-1"}}
	f := setup(t, provider, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.net.SetOffline(ctx)
	f.restoreOffline(t)

	fired := make(chan struct{}, 1)
	f.orch.OnReconnect(func(ctx context.Context) { fired <- struct{}{} })

	done := make(chan struct{})
	go func() { defer close(done); f.orch.Run(ctx) }()
	waitForSubscriber(t, f.net)

	f.net.SetOnline(ctx)

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reconnect hook never fired")
	}

	_, state := f.sess.Current()
	assert.Equal(t, session.StateAuthenticated, state)

	cancel()
	<-done
}

func TestRun_FailedUpgradeSkipsHooks(t *testing.T) {
	provider := &stubProvider{refreshErr: errors.New("token revoked")}
	f := setup(t, provider, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.net.SetOffline(ctx)
	f.restoreOffline(t)

	f.orch.OnReconnect(func(ctx context.Context) { t.Error("hook fired without authenticated session") })

	done := make(chan struct{})
	go func() { defer close(done); f.orch.Run(ctx) }()
	waitForSubscriber(t, f.net)

	f.net.SetOnline(ctx)

	// upgrade retries with backoff; give it room before asserting state
	assert.Eventually(t, func() bool {
		_, state := f.sess.Current()
		return state == session.StateOfflineRestored
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}
