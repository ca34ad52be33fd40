package assetcache

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/liftfield/internal/logging"
)

const (
	staticStorePrefix  = "static-assets-"
	dynamicStorePrefix = "dynamic-assets-"
)

// Options configures a Worker.
type Options struct {
	// Root is the directory holding the response stores.
	Root string
	// Version tags the stores; activating a Worker purges stores carrying
	// any other version.
	Version string
	// ShellAssets are the URLs cached at install time and served
	// cache-first afterwards.
	ShellAssets []string
	// EntryPage is the cached URL served for navigations that fail on the
	// network.
	EntryPage string
	// OfflinePage is the fallback when the entry page is not cached.
	OfflinePage string
	// APIHost marks requests that must never be served from the cache.
	APIHost string
	// Transport performs the actual network fetches. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Worker applies the caching policies: install the shell, purge stale
// versions on activate, and answer fetches per asset class. It implements
// http.RoundTripper so it can sit under any http.Client.
type Worker struct {
	opts    Options
	static  *Store
	dynamic *Store
	log     logging.Logger
	ready   atomic.Bool
}

// NewWorker opens the version-tagged stores and returns a Worker. The Worker
// serves nothing until Activate has run.
func NewWorker(opts Options, log logging.Logger) (*Worker, error) {
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	static, err := OpenStore(opts.Root, staticStorePrefix+opts.Version)
	if err != nil {
		return nil, err
	}
	dynamic, err := OpenStore(opts.Root, dynamicStorePrefix+opts.Version)
	if err != nil {
		return nil, err
	}

	return &Worker{opts: opts, static: static, dynamic: dynamic, log: log}, nil
}

// Ready reports whether Activate has completed.
func (w *Worker) Ready() bool { return w.ready.Load() }

// Version returns the store version tag.
func (w *Worker) Version() string { return w.opts.Version }

// Install fetches every shell asset into the static store. Individual
// failures are logged and skipped so one bad asset cannot brick the whole
// shell; the number of assets actually cached is returned.
func (w *Worker) Install(ctx context.Context) (int, error) {
	cached := 0
	for _, u := range w.opts.ShellAssets {
		if err := w.fetchInto(ctx, w.static, u); err != nil {
			w.log.Warn(ctx, "shell asset not cached", "url", u, "error", err)
			continue
		}
		cached++
	}
	w.log.Info(ctx, "shell installed", "cached", cached, "total", len(w.opts.ShellAssets))
	return cached, nil
}

// Activate deletes every store that does not carry the current version tag
// and marks the worker ready.
func (w *Worker) Activate(ctx context.Context) error {
	names, err := ListStores(w.opts.Root)
	if err != nil {
		return err
	}

	keep := map[string]bool{w.static.Name(): true, w.dynamic.Name(): true}
	for _, name := range names {
		if keep[name] {
			continue
		}
		w.log.Info(ctx, "purging stale asset store", "store", name)
		if err := DeleteStore(w.opts.Root, name); err != nil {
			return err
		}
	}

	w.ready.Store(true)
	return nil
}

// RoundTrip answers a request per its asset class:
//
//   - non-GET requests and anything addressed to the API host go straight to
//     the network, uncached;
//   - navigations are network-first, falling back to the cached entry page,
//     then the offline page;
//   - shell assets are cache-first, with a typed placeholder when both cache
//     and network miss;
//   - everything else is network-first with a dynamic-cache fallback and a
//     synthetic 503 as the last resort.
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || (w.opts.APIHost != "" && strings.Contains(req.URL.Host, w.opts.APIHost)) {
		return w.opts.Transport.RoundTrip(req)
	}

	u := req.URL.String()

	switch {
	case isNavigation(req):
		return w.serveNavigation(req)
	case w.isShellAsset(u):
		return w.serveShellAsset(req)
	default:
		return w.serveDefault(req)
	}
}

func (w *Worker) serveNavigation(req *http.Request) (*http.Response, error) {
	resp, err := w.opts.Transport.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	for _, page := range []string{w.opts.EntryPage, w.opts.OfflinePage} {
		if page == "" {
			continue
		}
		if cached, ok, cerr := w.static.Get(page); cerr == nil && ok {
			return synthesize(req, cached), nil
		}
	}
	return offlineError(req), nil
}

func (w *Worker) serveShellAsset(req *http.Request) (*http.Response, error) {
	u := req.URL.String()

	if cached, ok, err := w.static.Get(u); err == nil && ok {
		return synthesize(req, cached), nil
	}

	resp, err := w.opts.Transport.RoundTrip(req)
	if err == nil {
		return w.teeInto(req, w.static, u, resp)
	}
	return placeholder(req), nil
}

func (w *Worker) serveDefault(req *http.Request) (*http.Response, error) {
	u := req.URL.String()

	resp, err := w.opts.Transport.RoundTrip(req)
	if err == nil {
		if resp.StatusCode == http.StatusOK {
			return w.teeInto(req, w.dynamic, u, resp)
		}
		return resp, nil
	}

	for _, s := range []*Store{w.dynamic, w.static} {
		if cached, ok, cerr := s.Get(u); cerr == nil && ok {
			return synthesize(req, cached), nil
		}
	}
	return offlineError(req), nil
}

// fetchInto downloads a URL and stores the response.
func (w *Worker) fetchInto(ctx context.Context, store *Store, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := w.opts.Transport.RoundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return store.Put(Response{URL: u, Status: resp.StatusCode, Header: resp.Header, Body: body})
}

// teeInto stores a live response and hands the caller an equivalent one.
func (w *Worker) teeInto(req *http.Request, store *Store, u string, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if err := store.Put(Response{URL: u, Status: resp.StatusCode, Header: resp.Header, Body: body}); err != nil {
		w.log.Warn(req.Context(), "failed to cache response", "url", u, "error", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (w *Worker) isShellAsset(u string) bool {
	for _, a := range w.opts.ShellAssets {
		if a == u {
			return true
		}
	}
	return false
}

type httpStatusError struct{ status int }

func (e *httpStatusError) Error() string {
	return "unexpected status " + http.StatusText(e.status)
}

// isNavigation treats GET requests that prefer an HTML document as page
// navigations.
func isNavigation(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

// synthesize turns a cached record back into an http.Response.
func synthesize(req *http.Request, cached Response) *http.Response {
	header := cached.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode:    cached.Status,
		Status:        http.StatusText(cached.Status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}

// placeholder serves a harmless typed stand-in for an uncached shell asset so
// a missing stylesheet or script degrades rendering instead of breaking it.
func placeholder(req *http.Request) *http.Response {
	var body, ctype string
	switch path.Ext(req.URL.Path) {
	case ".css":
		body, ctype = "/* offline */", "text/css"
	case ".js":
		body, ctype = "// offline", "application/javascript"
	case ".json":
		body, ctype = "{}", "application/json"
	default:
		return offlineError(req)
	}

	header := http.Header{}
	header.Set("Content-Type", ctype)
	return &http.Response{
		StatusCode:    http.StatusOK,
		Status:        http.StatusText(http.StatusOK),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// offlineError is the synthetic response for requests that cannot be served
// from anywhere.
func offlineError(req *http.Request) *http.Response {
	const body = `{"error":"offline","message":"resource unavailable without connectivity"}`
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode:    http.StatusServiceUnavailable,
		Status:        http.StatusText(http.StatusServiceUnavailable),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
