package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/backoffice/core/authapi"
	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/core/store"
	"github.com/dmitrymomot/backoffice/pkg/async"
	"github.com/dmitrymomot/backoffice/pkg/broadcast"
	"github.com/dmitrymomot/backoffice/pkg/jwt"
)

// ReasonReconnect is stored when a failed silent refresh forces a logout.
const ReasonReconnect = "reconnect"

// refreshCallTimeout bounds a refresh call that outlives every waiting caller.
const refreshCallTimeout = 30 * time.Second

// AuthAPI is the backend the manager exchanges credentials with.
// *authapi.Client implements it.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (authapi.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (authapi.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

var _ AuthAPI = (*authapi.Client)(nil)

// Manager owns the session of one client. It is safe for concurrent use.
//
// Tokens and the last refresh time live in the durable store; the manager
// keeps a decoded copy in memory and re-reads the store after every write,
// so derived permissions and roles always match what is persisted.
type Manager struct {
	api            AuthAPI
	store          store.Store
	nav            Navigator
	log            *slog.Logger
	now            func() time.Time
	metrics        *Metrics
	staleAfter     time.Duration
	refreshTimeout time.Duration

	// writeMu orders store writes together with the reload that follows them.
	writeMu sync.Mutex

	mu          sync.RWMutex
	access      string
	refresh     string
	lastRefresh time.Time
	claims      jwt.Claims
	decoded     bool
	permissions []string
	roles       []string
	refreshing  bool
	commits     uint64

	state  *broadcast.Value[State]
	flight singleflight.Group
}

// New creates a Manager and restores the session persisted in st.
// A nil st keeps the session in memory only. Store failures never surface:
// reads degrade to absent and writes to no-ops.
func New(api AuthAPI, st store.Store, opts ...Option) (*Manager, error) {
	if api == nil {
		return nil, ErrMissingAuthAPI
	}
	if st == nil {
		st = store.NewMemory()
	}

	m := &Manager{
		api:            api,
		nav:            nopNavigator{},
		log:            slog.Default(),
		now:            time.Now,
		staleAfter:     DefaultStaleAfter,
		refreshTimeout: DefaultRefreshTimeout,
		state:          broadcast.NewValue(State{Status: StatusAnonymous}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	m.store = store.Tolerant(st, m.log)

	m.Reload()
	return m, nil
}

// Login exchanges credentials for a token pair without committing it.
// Any 4xx is reported as ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, username, password string) (authapi.TokenPair, error) {
	pair, err := m.api.Login(ctx, username, password)
	if err == nil {
		m.metrics.login("success")
		return pair, nil
	}

	switch status := authapi.StatusOf(err); {
	case status >= 400 && status < 500:
		m.metrics.login("invalid")
		return authapi.TokenPair{}, errors.Join(ErrInvalidCredentials, err)
	case status == 0:
		m.metrics.login("unreachable")
		return authapi.TokenPair{}, errors.Join(ErrTransportUnreachable, err)
	default:
		m.metrics.login("error")
		return authapi.TokenPair{}, err
	}
}

// LoginWithCredentials calls Login and commits the result.
func (m *Manager) LoginWithCredentials(ctx context.Context, username, password string) error {
	pair, err := m.Login(ctx, username, password)
	if err != nil {
		return err
	}
	m.CommitLoginResult(pair.AccessToken, pair.RefreshToken)
	m.log.InfoContext(ctx, "logged in", logger.Subject(m.State().Subject))
	return nil
}

// CommitLoginResult persists a token pair and stamps the refresh time.
func (m *Manager) CommitLoginResult(accessToken, refreshToken string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.commitLocked(context.Background(), accessToken, refreshToken)
}

// commitLocked requires writeMu.
func (m *Manager) commitLocked(ctx context.Context, accessToken, refreshToken string) {
	m.set(ctx, store.KeyAccessToken, accessToken)
	if refreshToken != "" {
		m.set(ctx, store.KeyRefreshToken, refreshToken)
	} else {
		m.del(ctx, store.KeyRefreshToken)
	}
	m.set(ctx, store.KeyLastRefresh, strconv.FormatInt(m.now().UnixMilli(), 10))

	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	m.reload(ctx)
}

// IsAuthenticated reports whether the access token is unexpired, or expired
// with a refresh token present. It never touches the network.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticatedLocked(m.now())
}

func (m *Manager) authenticatedLocked(now time.Time) bool {
	if !m.decoded {
		return false
	}
	return !m.claims.Expired(now) || m.refresh != ""
}

func (m *Manager) validLocked(now time.Time) bool {
	return m.decoded && !m.claims.Expired(now)
}

// EnsureAuthenticated resolves true at once for a valid access token.
// Otherwise it refreshes when a refresh token exists and resolves to the
// outcome; a failed refresh forces a logout with ReasonReconnect. Without a
// refresh token it resolves false without any network call. When ctx ends
// first the future fails with ctx.Err() and the session is left as is: the
// refresh completes in the background and commits its result.
func (m *Manager) EnsureAuthenticated(ctx context.Context) *async.Future[bool] {
	m.mu.RLock()
	valid := m.validLocked(m.now())
	canRefresh := m.refresh != ""
	m.mu.RUnlock()

	if valid {
		return async.Resolved(true)
	}
	if !canRefresh {
		m.metrics.refresh(RefreshSkipped)
		return async.Resolved(false)
	}

	return async.Async(ctx, m.refreshTimeout, func(ctx context.Context, timeout time.Duration) (bool, error) {
		if m.TryRefreshWithTimeout(ctx, timeout) {
			return true, nil
		}
		// A caller that went away leaves the refresh to finish on its own.
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		m.ForceLogoutToLogin(ctx, ReasonReconnect)
		return false, nil
	})
}

// IsRefreshStale reports whether the last successful refresh is absent or
// older than the staleness threshold.
func (m *Manager) IsRefreshStale() bool {
	m.mu.RLock()
	last := m.lastRefresh
	m.mu.RUnlock()
	return last.IsZero() || m.now().Sub(last) > m.staleAfter
}

// TryRefreshWithTimeout spends the refresh token and reports success.
// A zero timeout means the configured default. Errors and timeouts yield
// false. The call races the timeout instead of being canceled by it: the
// request keeps running and its late result is not reported to this caller.
// Concurrent callers share one in-flight request.
func (m *Manager) TryRefreshWithTimeout(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = m.refreshTimeout
	}

	m.mu.RLock()
	token := m.refresh
	gen := m.commits
	m.mu.RUnlock()

	if token == "" {
		m.metrics.refresh(RefreshSkipped)
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	start := m.now()
	fut := async.Async(context.WithoutCancel(ctx), token, func(ctx context.Context, token string) (bool, error) {
		v, err, _ := m.flight.Do("refresh", func() (any, error) {
			return m.refreshOnce(ctx, token, gen)
		})
		if err != nil {
			return false, err
		}
		return v.(bool), nil
	})

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := fut.AwaitContext(waitCtx)
	switch {
	case err != nil && ctx.Err() != nil:
		m.metrics.refresh(RefreshCanceled)
		m.log.DebugContext(ctx, "token refresh abandoned by caller", logger.Error(ctx.Err()))
		return false
	case errors.Is(err, context.DeadlineExceeded):
		m.metrics.refresh(RefreshTimeout)
		m.log.WarnContext(ctx, "token refresh timed out", logger.Duration(timeout))
		return false
	case err != nil:
		m.metrics.refresh(RefreshFailure)
		m.log.WarnContext(ctx, "token refresh failed", logger.Error(err))
		return false
	case !ok:
		m.metrics.refresh(RefreshFailure)
		return false
	}

	m.metrics.refresh(RefreshSuccess)
	m.log.DebugContext(ctx, "token refreshed", logger.Elapsed(start))
	return true
}

// refreshOnce runs inside the single flight. gen is the commit counter seen
// by the caller; if a commit happened since, the session was already
// refreshed and no request is made.
func (m *Manager) refreshOnce(ctx context.Context, token string, gen uint64) (bool, error) {
	m.mu.Lock()
	if m.commits != gen {
		valid := m.validLocked(m.now())
		m.mu.Unlock()
		return valid, nil
	}
	m.refreshing = true
	m.publishLocked()
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, refreshCallTimeout)
	defer cancel()
	pair, err := m.api.Refresh(ctx, token)

	m.mu.Lock()
	m.refreshing = false
	m.publishLocked()
	m.mu.Unlock()

	if err != nil {
		return false, errors.Join(ErrRefreshFailed, err)
	}

	next := pair.RefreshToken
	if next == "" {
		next = token
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	// A logout or another login while the request was in flight wins.
	m.mu.RLock()
	current := m.refresh
	m.mu.RUnlock()
	if current != token {
		m.log.DebugContext(ctx, "dropping refresh result for replaced session")
		return false, nil
	}

	m.commitLocked(ctx, pair.AccessToken, next)
	return true, nil
}

// ForceLogoutToLogin is a system initiated Logout with a reason for the login view.
func (m *Manager) ForceLogoutToLogin(ctx context.Context, reason string) {
	m.metrics.forcedLogout(reason)
	m.log.WarnContext(ctx, "forcing logout", logger.Reason(reason))
	m.Logout(ctx, reason)
}

// Logout tears the session down and navigates to the login view.
// The backend is told to revoke the refresh token in the background and
// its outcome is ignored. An empty reason clears any pending reason.
func (m *Manager) Logout(ctx context.Context, reason string) {
	// Teardown is unconditional, even for a canceled caller.
	ctx = context.WithoutCancel(ctx)

	m.writeMu.Lock()
	m.mu.RLock()
	refresh := m.refresh
	m.mu.RUnlock()

	if refresh != "" {
		m.notifyLogout(ctx, refresh)
	}

	m.del(ctx, store.KeyAccessToken)
	m.del(ctx, store.KeyRefreshToken)
	m.del(ctx, store.KeyLastRefresh)
	if reason != "" {
		m.set(ctx, store.KeyLogoutReason, reason)
	} else {
		m.del(ctx, store.KeyLogoutReason)
	}
	m.reload(ctx)
	m.writeMu.Unlock()

	m.log.InfoContext(ctx, "logged out", logger.Reason(reason))

	if err := m.nav.ToLogin(ctx); err != nil {
		m.log.WarnContext(ctx, "navigation to login failed, redirecting", logger.Error(err))
		m.nav.HardRedirect(ctx)
	}
}

func (m *Manager) notifyLogout(ctx context.Context, refreshToken string) {
	async.Exec(ctx, refreshToken, func(ctx context.Context, token string) error {
		ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
		defer cancel()
		if err := m.api.Logout(ctx, token); err != nil {
			m.log.DebugContext(ctx, "logout notification failed", logger.Error(err))
		}
		return nil
	})
}

// ConsumeLogoutMessage returns the pending logout reason once and deletes it.
func (m *Manager) ConsumeLogoutMessage() (string, bool) {
	ctx := context.Background()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	reason := m.get(ctx, store.KeyLogoutReason)
	if reason == "" {
		return "", false
	}
	m.del(ctx, store.KeyLogoutReason)
	return reason, true
}

// HandleTransportError escalates a request that never got an HTTP response:
// an authenticated session with a stale refresh is logged out with
// ReasonReconnect. It reports whether it escalated.
func (m *Manager) HandleTransportError(ctx context.Context, err error) bool {
	if err == nil || authapi.StatusOf(err) != 0 {
		return false
	}
	if !m.IsAuthenticated() || !m.IsRefreshStale() {
		return false
	}
	m.ForceLogoutToLogin(ctx, ReasonReconnect)
	return true
}

// HasAny reports whether the session holds at least one of required.
// No requirement means a public resource and is always true.
func (m *Manager) HasAny(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, perm := range required {
		if slices.Contains(m.permissions, perm) {
			return true
		}
	}
	return false
}

// Permissions returns the permissions of the current access token.
func (m *Manager) Permissions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.permissions)
}

// Roles returns the roles of the current access token.
func (m *Manager) Roles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.roles)
}

// Claims returns the decoded access token claims.
func (m *Manager) Claims() (jwt.Claims, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims, m.decoded
}

// DisplayName returns the most readable identity of the signed in user.
func (m *Manager) DisplayName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims.DisplayName()
}

// AccessToken returns the stored access token, "" when absent.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

// LastRefresh returns when the last login or refresh was committed.
func (m *Manager) LastRefresh() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRefresh
}

// State returns a snapshot evaluated against the current time.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// Subscribe streams state snapshots until ctx is done. The current state is
// delivered first; slow readers only see the latest one.
func (m *Manager) Subscribe(ctx context.Context) <-chan State {
	return m.state.Subscribe(ctx)
}

// Reload re-reads the durable store, e.g. after another process changed it.
func (m *Manager) Reload() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.reload(context.Background())
}

type persisted struct {
	access      string
	refresh     string
	lastRefresh time.Time
}

// reload requires writeMu.
func (m *Manager) reload(ctx context.Context) {
	p := persisted{
		access:  m.get(ctx, store.KeyAccessToken),
		refresh: m.get(ctx, store.KeyRefreshToken),
	}
	if raw := m.get(ctx, store.KeyLastRefresh); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.lastRefresh = time.UnixMilli(ms)
		}
	}
	if p.access == "" && p.refresh == "" && !p.lastRefresh.IsZero() {
		p.lastRefresh = time.Time{}
		m.del(ctx, store.KeyLastRefresh)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(ctx, p)
	m.publishLocked()
}

func (m *Manager) applyLocked(ctx context.Context, p persisted) {
	m.access = p.access
	m.refresh = p.refresh
	m.lastRefresh = p.lastRefresh
	m.claims = jwt.Claims{}
	m.decoded = false
	m.permissions = nil
	m.roles = nil

	if m.access == "" {
		return
	}
	claims, err := jwt.Decode(m.access)
	if err != nil {
		m.log.WarnContext(ctx, "stored access token is not decodable", logger.Error(errors.Join(ErrDecode, err)))
		return
	}
	m.claims = claims
	m.decoded = true
	m.permissions = uniq(claims.Permissions)
	m.roles = uniq(claims.Roles)
}

func (m *Manager) stateLocked() State {
	now := m.now()
	st := State{
		Status:        StatusAnonymous,
		Authenticated: m.authenticatedLocked(now),
		Subject:       m.claims.Subject,
		DisplayName:   m.claims.DisplayName(),
		Roles:         slices.Clone(m.roles),
		Permissions:   slices.Clone(m.permissions),
		LastRefresh:   m.lastRefresh,
	}
	switch {
	case m.refreshing:
		st.Status = StatusRefreshing
	case m.validLocked(now):
		st.Status = StatusValid
	case st.Authenticated:
		st.Status = StatusExpired
	}
	return st
}

func (m *Manager) publishLocked() {
	m.state.Store(m.stateLocked())
}

func (m *Manager) get(ctx context.Context, key string) string {
	v, err := m.store.Get(ctx, key)
	if err != nil {
		return ""
	}
	return v
}

func (m *Manager) set(ctx context.Context, key, value string) {
	_ = m.store.Set(ctx, key, value)
}

func (m *Manager) del(ctx context.Context, key string) {
	_ = m.store.Delete(ctx, key)
}

func uniq(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
