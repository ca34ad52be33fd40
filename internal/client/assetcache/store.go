// Package assetcache keeps the application shell and previously fetched
// assets on disk so the client can render without connectivity. Cached
// responses live in named, version-tagged stores; a Worker applies the
// install/activate/fetch policies over them.
package assetcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/liftfield/internal/filex"
)

// Response is a cached HTTP response.
type Response struct {
	URL    string      `json:"url"`
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"-"`
}

// Store is one named on-disk response store. Each entry is a pair of files
// keyed by the hash of the request URL: a JSON meta record and the raw body.
type Store struct {
	name string
	dir  string
}

// OpenStore opens (creating if needed) the named store under root.
func OpenStore(root, name string) (*Store, error) {
	dir, err := filex.EnsureDir(root, name)
	if err != nil {
		return nil, err
	}
	return &Store{name: name, dir: dir}, nil
}

func (s *Store) Name() string { return s.name }

func entryKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Put writes a response under its URL, replacing any previous entry.
func (s *Store) Put(resp Response) error {
	key := entryKey(resp.URL)

	meta, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, key+".json"), meta, 0o660); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, key+".body"), resp.Body, 0o660); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Get loads the cached response for a URL. The second return is false when
// no entry exists.
func (s *Store) Get(url string) (Response, bool, error) {
	key := entryKey(url)

	meta, err := os.ReadFile(filepath.Join(s.dir, key+".json"))
	if os.IsNotExist(err) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("read meta: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(meta, &resp); err != nil {
		// treat a corrupt entry as a miss
		return Response{}, false, nil
	}

	body, err := os.ReadFile(filepath.Join(s.dir, key+".body"))
	if err != nil {
		return Response{}, false, nil
	}
	resp.Body = body
	return resp, true, nil
}

// Len counts the entries in the store.
func (s *Store) Len() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n, nil
}

// ListStores returns the names of all stores under root.
func ListStores(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DeleteStore removes a named store and everything in it.
func DeleteStore(root, name string) error {
	return os.RemoveAll(filepath.Join(root, name))
}
