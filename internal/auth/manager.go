package auth

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/api"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/session"
)

// expiryMargin is subtracted from the stored expiration before comparison
// so a token is never used when it would expire mid-flight of a request.
const expiryMargin = 30 * time.Second

// Config holds the endpoints and client credentials for token exchanges.
type Config struct {
	AuthURL      string
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Manager owns the Session state machine. It is the only component that
// mutates session state; the fetch wrapper and aggregator read through it.
type Manager struct {
	mu      sync.RWMutex
	session models.Session
	user    *models.User
	errMsg  string

	cfg    Config
	store  *session.Store
	client *http.Client

	refreshGroup singleflight.Group

	// onProfile is invoked whenever a user profile lands, including
	// from the async fetch after a session restore.
	onProfile func(*models.User)

	// now is swappable for expiry boundary tests.
	now func() time.Time
}

// New creates a manager over the given token store. A nil client falls
// back to a default with a conservative timeout.
func New(cfg Config, store *session.Store, client *http.Client) *Manager {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		client: client,
		now:    time.Now,
	}
}

// OnProfile registers a callback invoked each time a user profile is
// fetched. The restore path fetches the profile in the background, so
// this is how consumers learn about it.
func (m *Manager) OnProfile(fn func(*models.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProfile = fn
}

// Session returns a copy of the current session state.
func (m *Manager) Session() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// User returns the cached user profile, nil when not fetched yet.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Err returns the last user-facing auth error message.
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

// AccessToken returns the current access token, empty when anonymous.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken
}

// HasRefreshToken reports whether a refresh token is held.
func (m *Manager) HasRefreshToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.RefreshToken != ""
}

// Authenticated reports whether the session is currently authenticated.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Authenticated
}

// Login exchanges credentials via the password grant. It reports success
// by return value; failures set a user-facing message readable via Err.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	m.mu.Lock()
	m.errMsg = ""
	m.mu.Unlock()

	resp, err := exchangeToken(ctx, m.client, m.cfg.AuthURL, tokenRequest{
		GrantType:    grantPassword,
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		Username:     username,
		Password:     password,
	})
	if err != nil {
		m.setLoginError(err)
		return false
	}

	m.setAuthData(resp)

	// Best-effort profile fetch: failure does not unset authenticated
	if err := m.fetchUser(ctx); err != nil {
		logger.Warn("failed to fetch user profile after login", "error", err)
	}

	return true
}

// setLoginError maps an exchange failure to a user-facing message.
func (m *Manager) setLoginError(err error) {
	var msg string
	switch api.KindOf(err) {
	case api.KindInvalidCredentials:
		msg = "Invalid credentials. Check your email and password."
	case api.KindConnectivity:
		msg = "Network error. Check your internet connection."
	default:
		msg = "Authentication failed."
	}

	logger.Error("login failed", "error", err)

	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}

// Refresh exchanges the current refresh token for new tokens. Concurrent
// callers converge on a single in-flight exchange and share its outcome,
// so a rotated refresh token is never reused. Failure forces a full logout.
func (m *Manager) Refresh(ctx context.Context) bool {
	if !m.HasRefreshToken() {
		return false
	}

	// The shared exchange must not die with the first caller's context.
	exchangeCtx := context.WithoutCancel(ctx)

	v, _, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.doRefresh(exchangeCtx), nil
	})

	ok, _ := v.(bool)
	return ok
}

func (m *Manager) doRefresh(ctx context.Context) bool {
	// Re-read under lock: the token may have rotated since the caller checked
	m.mu.RLock()
	refreshToken := m.session.RefreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		return false
	}

	resp, err := exchangeToken(ctx, m.client, m.cfg.AuthURL, tokenRequest{
		GrantType:    grantRefreshToken,
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		RefreshToken: refreshToken,
	})
	if err != nil {
		logger.Warn("token refresh failed, logging out", "error", err)
		m.Logout()
		return false
	}

	m.setAuthData(resp)

	if err := m.fetchUser(ctx); err != nil {
		logger.Warn("failed to fetch user profile after refresh", "error", err)
	}

	return true
}

// CheckSession restores the session from the token store without touching
// the network unless the stored token is expired, in which case the outcome
// of an awaited refresh is returned. The profile fetch, when needed, runs
// asynchronously so navigation is never blocked on it.
func (m *Manager) CheckSession(ctx context.Context) bool {
	accessToken, okAccess := m.store.Get(session.KeyAccessToken)
	refreshToken, okRefresh := m.store.Get(session.KeyRefreshToken)

	if !okAccess || !okRefresh || accessToken == "" || refreshToken == "" {
		return false
	}

	if m.IsExpired() {
		// Adopt the stored refresh token so the exchange can run
		m.mu.Lock()
		m.session.RefreshToken = refreshToken
		m.mu.Unlock()
		return m.Refresh(ctx)
	}

	m.mu.Lock()
	m.session.AccessToken = accessToken
	m.session.RefreshToken = refreshToken
	m.session.ExpiresAt = m.storedExpiry()
	m.session.Authenticated = true
	needsProfile := m.user == nil
	m.mu.Unlock()

	if needsProfile {
		go func() {
			if err := m.fetchUser(context.WithoutCancel(ctx)); err != nil {
				logger.Debug("background profile fetch failed", "error", err)
			}
		}()
	}

	return true
}

// IsExpired reports whether the stored expiration instant, minus the
// safety margin, has passed. Absent or malformed expiry counts as expired.
func (m *Manager) IsExpired() bool {
	expiry := m.storedExpiry()
	if expiry.IsZero() {
		return true
	}
	return m.now().After(expiry.Add(-expiryMargin))
}

// storedExpiry decodes the persisted epoch-millis expiration instant.
func (m *Manager) storedExpiry() time.Time {
	raw, ok := m.store.Get(session.KeyTokenExpiration)
	if !ok {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// Logout clears the session and the token store. Always succeeds and is
// safe to call repeatedly.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.session = models.Session{}
	m.user = nil
	m.errMsg = ""
	m.mu.Unlock()

	m.store.Clear()
}

// setAuthData installs tokens from a successful exchange and persists them.
func (m *Manager) setAuthData(resp *TokenResponse) {
	expiresAt := m.now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	m.mu.Lock()
	m.session.AccessToken = resp.AccessToken
	m.session.RefreshToken = resp.RefreshToken
	m.session.ExpiresAt = expiresAt
	m.session.Authenticated = true
	m.mu.Unlock()

	// Persistence failures degrade silently inside the store
	m.store.Put(session.KeyAccessToken, resp.AccessToken)
	m.store.Put(session.KeyRefreshToken, resp.RefreshToken)
	m.store.Put(session.KeyTokenExpiration, strconv.FormatInt(expiresAt.UnixMilli(), 10))
}

// fetchUser loads the user profile and caches it.
func (m *Manager) fetchUser(ctx context.Context) error {
	token := m.AccessToken()
	user, err := fetchProfile(ctx, m.client, m.cfg.BaseURL, token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = user
	hook := m.onProfile
	m.mu.Unlock()

	if hook != nil {
		hook(user)
	}
	return nil
}
