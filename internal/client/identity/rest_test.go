package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIDToken(t *testing.T, subject, email string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newAuthServer(t *testing.T, handler http.HandlerFunc) *RESTProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTProvider(srv.URL, "test-key", logging.Nop{})
}

func TestSignIn_Success(t *testing.T) {
	idToken := signedIDToken(t, "uid-42", "tech@example.com", time.Now().Add(time.Hour))

	p := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "accounts:signInWithPassword"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req credentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tech@example.com", req.Email)
		assert.True(t, req.ReturnSecureToken)

		_ = json.NewEncoder(w).Encode(tokenResponse{
			IDToken: idToken,
			Email:   "tech@example.com",
			LocalID: "uid-42",
		})
	})

	sub := p.Subscribe()
	defer sub.Cancel()

	id, err := p.SignIn(context.Background(), "tech@example.com", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "uid-42", id.SubjectID)
	assert.Equal(t, "tech@example.com", id.Email)
	assert.False(t, id.OfflineDerived)

	assert.Equal(t, id, p.Current())
	assert.Equal(t, idToken, p.AccessToken())

	select {
	case got := <-sub.Updates():
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatal("expected identity event")
	}
}

func TestSignIn_ErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"INVALID_LOGIN_CREDENTIALS", common.ErrInvalidCredentials},
		{"EMAIL_NOT_FOUND", common.ErrUserNotFound},
		{"INVALID_PASSWORD", common.ErrWrongPassword},
		{"EMAIL_EXISTS", common.ErrEmailInUse},
		{"INVALID_EMAIL", common.ErrInvalidEmail},
		{"WEAK_PASSWORD : Password should be at least 6 characters", common.ErrWeakPassword},
		{"SOMETHING_ELSE", common.ErrOperationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			p := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":{"message":%q}}`, tc.code)
			})

			_, err := p.SignIn(context.Background(), "a@b.c", []byte("secret1"))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSignUp_ClientSideValidation(t *testing.T) {
	p := NewRESTProvider("http://127.0.0.1:0", "k", logging.Nop{})

	_, err := p.SignUp(context.Background(), "not-an-email", []byte("secret1"))
	assert.ErrorIs(t, err, common.ErrInvalidEmail)

	_, err = p.SignUp(context.Background(), "a@b.c", []byte("short"))
	assert.ErrorIs(t, err, common.ErrWeakPassword)
}

func TestSignOut_PublishesNilAndClearsState(t *testing.T) {
	idToken := signedIDToken(t, "uid-1", "a@b.c", time.Now().Add(time.Hour))
	p := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tokenResponse{IDToken: idToken, Email: "a@b.c", LocalID: "uid-1"})
	})

	_, err := p.SignIn(context.Background(), "a@b.c", []byte("secret1"))
	require.NoError(t, err)

	sub := p.Subscribe()
	defer sub.Cancel()

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, p.Current())
	assert.Empty(t, p.AccessToken())

	select {
	case got := <-sub.Updates():
		assert.Nil(t, got)
	case <-time.After(time.Second):
		t.Fatal("expected sign-out event")
	}
}

func TestSubscription_CancelDuringPublishDoesNotPanic(t *testing.T) {
	p := NewRESTProvider("http://127.0.0.1:0", "k", logging.Nop{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			p.publish(nil)
		}
	}()

	for i := 0; i < 200; i++ {
		sub := p.Subscribe()
		sub.Cancel()
	}
	wg.Wait()
}

func TestRefresh_WithoutTokenFails(t *testing.T) {
	p := NewRESTProvider("http://127.0.0.1:0", "k", logging.Nop{})
	_, err := p.Refresh(context.Background())
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestRefresh_Success(t *testing.T) {
	idToken := signedIDToken(t, "uid-7", "x@y.z", time.Now().Add(time.Hour))
	p := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "accounts:lookup") {
			fmt.Fprint(w, `{"users":[{"localId":"uid-7","email":"x@y.z"}]}`)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{IDToken: idToken, Email: "x@y.z", LocalID: "uid-7"})
	})

	_, err := p.SignIn(context.Background(), "x@y.z", []byte("secret1"))
	require.NoError(t, err)

	id, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "uid-7", id.SubjectID)
	assert.Equal(t, "x@y.z", id.Email)
}

func TestIdentityFromToken_Expired(t *testing.T) {
	token := signedIDToken(t, "uid-1", "a@b.c", time.Now().Add(-time.Minute))
	assert.Nil(t, identityFromToken(token, time.Now()))
}

func TestIdentityFromToken_Garbage(t *testing.T) {
	assert.Nil(t, identityFromToken("not.a.token", time.Now()))
	assert.Nil(t, identityFromToken("", time.Now()))
}
