package store

// Key space of the local persistent store. All values are JSON-encoded.
const (
	KeyCachedCurrentUser = "cachedCurrentUser"
	KeyOfflineAuth       = "offlineAuth"
	KeyCachedTasks       = "cachedTasks"
	KeyCachedDocuments   = "cachedDocuments"

	// Legacy fully-local mode.
	KeyUserDocuments = "userDocuments"
	KeyIsLoggedIn    = "isLoggedIn"
	KeyUsername      = "username"
)
