// Package models defines the client-side record types: the current identity,
// maintenance tasks, and library documents.
package models

import "time"

// MaxCachedIdentityAge is how long a locally cached identity stays usable.
// Anything older is purged on read and treated as absent.
const MaxCachedIdentityAge = 7 * 24 * time.Hour

// Identity is the current user. Two origins exist: live identities issued by
// the identity provider on successful authentication, and cached identities
// reconstructed from the local store while offline.
type Identity struct {
	Email          string    `json:"email"`
	SubjectID      string    `json:"uid"`
	OfflineDerived bool      `json:"-"`
	CapturedAt     time.Time `json:"capturedAt"`
}

// Expired reports whether a cached identity is too old to restore.
func (i *Identity) Expired(now time.Time) bool {
	return now.Sub(i.CapturedAt) > MaxCachedIdentityAge
}
