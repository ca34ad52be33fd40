// Package identity wraps the external identity provider: email/password
// sign-in and sign-up, sign-out, and a subscription stream of
// identity-change events.
package identity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
)

// Provider is the consumed surface of the identity provider.
//
// Contract:
//   - SignIn/SignUp authenticate and return the live identity on success.
//   - SignOut invalidates the live session; subscribers receive nil.
//   - Refresh re-validates the held token and returns a fresh live identity.
//   - Current returns the live identity, or nil when signed out.
//   - AccessToken returns the bearer token for the data gateway.
//   - Subscribe returns a cancellable handle on the identity-change stream.
type Provider interface {
	SignIn(ctx context.Context, email string, password []byte) (*models.Identity, error)
	SignUp(ctx context.Context, email string, password []byte) (*models.Identity, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (*models.Identity, error)
	Current() *models.Identity
	AccessToken() string
	Subscribe() *Subscription
}

// Subscription is a cancellable handle on the identity-change stream. A nil
// event means "signed out". Cancel must be called on teardown.
type Subscription struct {
	ch     chan *models.Identity
	cancel func()
	once   sync.Once
}

// Updates returns the event channel. It is closed after Cancel.
func (s *Subscription) Updates() <-chan *models.Identity {
	return s.ch
}

// Cancel detaches the subscription and closes the channel. Safe to call more
// than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}
