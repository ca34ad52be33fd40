package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/liftfield/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account with the identity provider. On success the new identity
// becomes the current session. The password byte slice is wiped before
// returning.
func (a *App) Register(ctx context.Context) error {
	if a.provider == nil {
		printlnFn("Registration is unavailable: no identity endpoint configured")
		return common.ErrGatewayUnavailable
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.provider.SignUp(ctx, email, password)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	a.sess.SetAuthenticated(ctx, id)
	a.setUserName(id.Email)
	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates with the identity
// provider. When the provider is unreachable it falls back to the cached
// offline session, subject to the expiry rule; the restored identity may
// only read cached data until connectivity returns.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if a.provider != nil && !a.net.Offline() {
		id, err := a.provider.SignIn(ctx, email, password)
		if err == nil {
			a.sess.SetAuthenticated(ctx, id)
			a.setUserName(id.Email)
			printlnFn("Login successful")
			return nil
		}
		if !errors.Is(err, common.ErrGatewayUnavailable) {
			printlnFn("Login failed:", err.Error())
			return err
		}
		a.log.Warn(ctx, "identity provider unreachable, trying offline restore")
	}

	id, err := a.sess.RestoreOffline(ctx)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSessionExpired):
			printlnFn("Cached session expired, connect to sign in again")
		case errors.Is(err, common.ErrNoCachedData):
			printlnFn("No cached session, connect to sign in")
		default:
			printlnFn("Offline login failed:", err.Error())
		}
		return err
	}
	if id.Email != email {
		// only the last signed-in account is restorable offline; roll the
		// restore back so the wrong account is not left logged in
		a.sess.Discard()
		printlnFn("No cached session for", email)
		return common.ErrNoCachedData
	}

	a.setUserName(id.Email)
	printlnFn("Restored offline session (cached data only)")
	return nil
}

// Logout signs out of the identity provider (best-effort when offline) and
// purges the cached session so the account is no longer restorable.
func (a *App) Logout(ctx context.Context) error {
	if a.provider != nil && !a.net.Offline() {
		if err := a.provider.SignOut(ctx); err != nil {
			a.log.Warn(ctx, "provider sign-out failed", "error", err)
		}
	}
	a.sess.SetUnauthenticated(ctx)
	a.setUserName("")
	printlnFn("Logged out")
	return nil
}
