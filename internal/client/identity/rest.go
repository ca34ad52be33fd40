package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RESTProvider talks to the hosted identity service over JSON/HTTPS.
type RESTProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      logging.Logger

	mu        sync.Mutex
	current   *models.Identity
	idToken   string
	subs      map[int]chan *models.Identity
	nextSubID int
}

// NewRESTProvider builds a provider against the given endpoint base URL.
func NewRESTProvider(endpoint, apiKey string, log logging.Logger) *RESTProvider {
	return &RESTProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 12 * time.Second},
		log:      log,
		subs:     make(map[int]chan *models.Identity),
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	IDToken string `json:"idToken"`
	Email   string `json:"email"`
	LocalID string `json:"localId"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates with email and password. The password slice is not
// retained; callers should wipe it afterwards.
func (p *RESTProvider) SignIn(ctx context.Context, email string, password []byte) (*models.Identity, error) {
	return p.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates a new account. Email format and a minimal password length
// are validated client-side before the request is made.
func (p *RESTProvider) SignUp(ctx context.Context, email string, password []byte) (*models.Identity, error) {
	if !emailRe.MatchString(email) {
		return nil, common.ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, common.ErrWeakPassword
	}
	return p.authenticate(ctx, "accounts:signUp", email, password)
}

func (p *RESTProvider) authenticate(ctx context.Context, op, email string, password []byte) (*models.Identity, error) {
	var resp tokenResponse
	req := credentialsRequest{Email: email, Password: string(password), ReturnSecureToken: true}
	if err := p.post(ctx, op, req, &resp); err != nil {
		return nil, err
	}

	id := identityFromToken(resp.IDToken, time.Now())
	if id == nil {
		id = &models.Identity{CapturedAt: time.Now()}
	}
	if id.Email == "" {
		id.Email = resp.Email
	}
	if id.SubjectID == "" {
		id.SubjectID = resp.LocalID
	}

	p.mu.Lock()
	p.current = id
	p.idToken = resp.IDToken
	p.mu.Unlock()

	p.publish(id)
	return id, nil
}

// SignOut drops the live session and notifies subscribers.
func (p *RESTProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.idToken = ""
	p.mu.Unlock()

	p.publish(nil)
	return nil
}

// Refresh re-validates the held token against the provider and returns a
// fresh live identity. Used for the silent upgrade of an offline-restored
// session once connectivity returns.
func (p *RESTProvider) Refresh(ctx context.Context) (*models.Identity, error) {
	p.mu.Lock()
	token := p.idToken
	p.mu.Unlock()

	if token == "" {
		return nil, common.ErrNotLoggedIn
	}

	var resp struct {
		Users []struct {
			LocalID string `json:"localId"`
			Email   string `json:"email"`
		} `json:"users"`
	}
	if err := p.post(ctx, "accounts:lookup", map[string]string{"idToken": token}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, common.ErrNotLoggedIn
	}

	id := &models.Identity{
		Email:      resp.Users[0].Email,
		SubjectID:  resp.Users[0].LocalID,
		CapturedAt: time.Now(),
	}

	p.mu.Lock()
	p.current = id
	p.mu.Unlock()

	p.publish(id)
	return id, nil
}

// Current returns the live identity, or nil when signed out.
func (p *RESTProvider) Current() *models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// AccessToken returns the bearer token for the data gateway, empty when
// signed out.
func (p *RESTProvider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idToken
}

// Subscribe registers for identity-change events.
func (p *RESTProvider) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	ch := make(chan *models.Identity, 4)
	p.subs[id] = ch

	return &Subscription{
		ch: ch,
		cancel: func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(ch)
			}
		},
	}
}

func (p *RESTProvider) publish(id *models.Identity) {
	// Send under the lock: Subscription.Cancel closes the channel under the
	// same lock, so a send can never hit a closed channel.
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- id:
		default:
		}
	}
}

func (p *RESTProvider) post(ctx context.Context, op string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", p.endpoint, op, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return mapProviderError(data)
	}

	return json.Unmarshal(data, out)
}

// mapProviderError converts provider error codes to the fixed set of
// user-facing sentinels; unmapped codes fall back to a generic
// operation-failed error carrying the provider message.
func mapProviderError(body []byte) error {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil || pe.Error.Message == "" {
		return fmt.Errorf("%w: %s", common.ErrOperationFailed, strings.TrimSpace(string(body)))
	}

	code := pe.Error.Message
	switch {
	case code == "INVALID_LOGIN_CREDENTIALS":
		return common.ErrInvalidCredentials
	case code == "EMAIL_NOT_FOUND":
		return common.ErrUserNotFound
	case code == "INVALID_PASSWORD":
		return common.ErrWrongPassword
	case code == "EMAIL_EXISTS":
		return common.ErrEmailInUse
	case code == "INVALID_EMAIL":
		return common.ErrInvalidEmail
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return common.ErrWeakPassword
	default:
		return fmt.Errorf("%w: %s", common.ErrOperationFailed, code)
	}
}
