package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"sync"

	"github.com/dmitrijs2005/liftfield/internal/client/assetcache"
	"github.com/dmitrijs2005/liftfield/internal/client/config"
	"github.com/dmitrijs2005/liftfield/internal/client/gateway"
	"github.com/dmitrijs2005/liftfield/internal/client/identity"
	"github.com/dmitrijs2005/liftfield/internal/client/orchestrator"
	"github.com/dmitrijs2005/liftfield/internal/client/services"
	"github.com/dmitrijs2005/liftfield/internal/client/session"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/filex"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/dmitrijs2005/liftfield/internal/netx"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// App wires every client component and drives the REPL.
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	kv       *store.KV
	net      *netx.Monitor
	provider identity.Provider
	sess     *session.Manager
	gw       *gateway.Client
	orch     *orchestrator.Orchestrator
	tasks    *services.TaskService
	docs     *services.DocumentService
	worker   *assetcache.Worker
	controls chan assetcache.Control

	// userName is read by the REPL prompt and written by the auth commands
	// and the identity watcher, which run on different goroutines.
	userMu   sync.Mutex
	userName string

	reader *bufio.Reader
}

// NewApp builds the full component graph. A failed gateway or identity
// endpoint degrades the app (cached reads, blocked writes) instead of
// aborting startup; only a broken local store is fatal.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(c.LogLevel)

	kv, db, err := store.InitDatabase(ctx, c.LocalStorePath)
	if err != nil {
		log.Error(ctx, "error initializing local store", "error", err)
		return nil, err
	}

	net := netx.NewMonitor(c.DatabaseEndpoint, log)

	var provider identity.Provider
	if c.AuthEndpoint != "" {
		provider = identity.NewRESTProvider(c.AuthEndpoint, c.APIKey, log)
	}

	sess := session.NewManager(kv, provider, net, log)

	var gw *gateway.Client
	if c.DatabaseEndpoint != "" {
		gw, err = gateway.New(c.DatabaseEndpoint, tokenSource{provider}, kv, log)
		if err != nil {
			log.Warn(ctx, "remote gateway unavailable, continuing degraded", "error", err)
			gw = nil
		}
	}

	orch := orchestrator.New(net, sess, func() bool { return gw != nil }, log)

	taskSvc := services.NewTaskService(gw, kv, orch, sess, log)
	docSvc := services.NewDocumentService(gw, kv, orch, sess, gw == nil, log)

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		kv:       kv,
		net:      net,
		provider: provider,
		sess:     sess,
		gw:       gw,
		orch:     orch,
		tasks:    taskSvc,
		docs:     docSvc,
		controls: make(chan assetcache.Control, 4),
		reader:   bufio.NewReader(os.Stdin),
	}

	cacheRoot, err := filex.EnsureSubdDir(c.AssetCacheDir)
	if err != nil {
		log.Warn(ctx, "cannot create asset cache dir", "error", err)
		cacheRoot = c.AssetCacheDir
	}

	a.worker, err = assetcache.NewWorker(assetcache.Options{
		Root:        cacheRoot,
		Version:     c.AssetVersion,
		ShellAssets: shellAssets(c.AppOrigin),
		EntryPage:   c.AppOrigin + "/index.html",
		OfflinePage: c.AppOrigin + "/offline.html",
		APIHost:     apiHost(gw),
	}, log)
	if err != nil {
		log.Warn(ctx, "asset cache unavailable", "error", err)
	}

	orch.OnReconnect(func(ctx context.Context) { a.refreshLists(ctx) })

	return a, nil
}

// tokenSource adapts a possibly-nil identity provider to the gateway's
// TokenSource.
type tokenSource struct{ p identity.Provider }

func (t tokenSource) AccessToken() string {
	if t.p == nil {
		return ""
	}
	return t.p.AccessToken()
}

// shellAssets enumerates the application shell cached at install time.
func shellAssets(origin string) []string {
	if origin == "" {
		return nil
	}
	paths := []string{
		"/index.html",
		"/offline.html",
		"/app.css",
		"/app.js",
		"/manifest.json",
		"/icons/icon-192.png",
		"/icons/icon-512.png",
	}
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = origin + p
	}
	return urls
}

func apiHost(gw *gateway.Client) string {
	if gw == nil {
		return ""
	}
	return gw.Host()
}

// Mode reports the current operating mode for the prompt.
func (a *App) Mode() Mode {
	if a.gw == nil && a.docs.Local() {
		return ModeDisabled
	}
	if a.net.Offline() {
		return ModeOffline
	}
	return ModeOnline
}

func (a *App) isLoggedIn() bool {
	id, _ := a.sess.Current()
	return id != nil
}

func (a *App) setUserName(name string) {
	a.userMu.Lock()
	a.userName = name
	a.userMu.Unlock()
}

func (a *App) currentUserName() string {
	a.userMu.Lock()
	defer a.userMu.Unlock()
	return a.userName
}

func (a *App) getStatus() string {
	s := ""
	if name := a.currentUserName(); name != "" {
		s = name + " "
	}
	return s + string(a.Mode())
}

// refreshLists re-runs both list operations so the local snapshots catch up
// with the remote collections. Best-effort.
func (a *App) refreshLists(ctx context.Context) {
	if _, _, err := a.tasks.List(ctx); err != nil {
		a.log.Warn(ctx, "task refresh failed", "error", err)
	}
	if _, _, err := a.docs.List(ctx); err != nil {
		a.log.Warn(ctx, "document refresh failed", "error", err)
	}
}

// Run starts the background workers, restores the session and enters the
// REPL. Blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.db.Close()

	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx, a.controls, false); err != nil && ctx.Err() == nil {
				a.log.Warn(ctx, "asset cache worker stopped", "error", err)
			}
		}()
	}
	go a.net.Watch(ctx, a.config.OnlineCheckInterval)
	go a.orch.Run(ctx)
	go a.watchMode(ctx)
	go a.watchIdentity(ctx)

	if id, err := a.sess.Resolve(ctx); err == nil && id != nil {
		a.setUserName(id.Email)
		a.log.Info(ctx, "session restored", "email", id.Email, "offline", id.OfflineDerived)
	}

	printlnFn("Welcome to liftfield CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// watchIdentity tracks the provider's identity publications so the prompt
// follows live state changes (e.g. a silent upgrade after reconnect or a
// sign-out from another code path).
func (a *App) watchIdentity(ctx context.Context) {
	if a.provider == nil {
		return
	}
	sub := a.provider.Subscribe()
	if sub == nil {
		return
	}
	defer sub.Cancel()

	for {
		select {
		case id, ok := <-sub.Updates():
			if !ok {
				return
			}
			if id == nil {
				a.setUserName("")
			} else {
				a.setUserName(id.Email)
			}
		case <-ctx.Done():
			return
		}
	}
}

// watchMode logs connectivity switches so the operator sees mode changes
// between prompts.
func (a *App) watchMode(ctx context.Context) {
	events, cancel := a.net.Subscribe()
	defer cancel()

	for {
		select {
		case tr, ok := <-events:
			if !ok {
				return
			}
			if tr.Online {
				a.log.Info(ctx, "switched to online mode")
			} else {
				a.log.Info(ctx, "switched to offline mode")
			}
		case <-ctx.Done():
			return
		}
	}
}
