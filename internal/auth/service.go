// Package auth is the single source of truth for "who is logged in". It
// bridges the hosted session store to the rest of the application: explicit
// login/register/logout, silent session restore at startup, a background
// token refresher, and auth-change events for dependent components.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/notify"
	"github.com/mkurbatov/landledger/internal/registry/repositories/users"
	"github.com/mkurbatov/landledger/internal/session"
)

// State tracks the session lifecycle of this service instance.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateChecking      State = "checking"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// refreshLeeway is how long before token expiry we renew the session.
const refreshLeeway = 30 * time.Second

// Service owns the current user and session. All mutation happens through
// its methods; every asynchronous completion carries the generation at issue
// time and is dropped if a newer resolution superseded it.
type Service struct {
	store    session.Store
	users    users.Repository
	vault    TokenVault
	log      logging.Logger
	notifier notify.Notifier

	now func() time.Time

	mu      sync.Mutex
	state   State
	sess    *session.Session
	user    *User
	loading bool
	gen     uint64

	subs    map[int]chan Event
	nextSub int

	stopCh chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewService wires an auth service. vault may be nil, in which case sessions
// are not restored across process restarts.
func NewService(store session.Store, usersRepo users.Repository, vault TokenVault, log logging.Logger, notifier notify.Notifier) *Service {
	return &Service{
		store:    store,
		users:    usersRepo,
		vault:    vault,
		log:      log,
		notifier: notifier,
		now:      time.Now,
		state:    StateUninitialized,
		subs:     map[int]chan Event{},
		stopCh:   make(chan struct{}),
	}
}

// Start performs the one-time initial session check: if the vault holds a
// refresh token, the session is silently re-established and user metadata
// fetched. Always leaves the service in StateAuthenticated or StateAnonymous.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.state = StateChecking
	s.loading = true
	s.mu.Unlock()

	token := ""
	if s.vault != nil {
		t, err := s.vault.LoadRefreshToken(ctx)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "loading stored session failed", "error", err)
		}
		token = t
	}

	if token == "" {
		s.settleAnonymous()
		return
	}

	sess, err := s.store.RefreshSession(ctx, token)
	if err != nil {
		s.log.Warn(ctx, "stored session could not be restored", "error", err)
		if s.vault != nil {
			_ = s.vault.ClearRefreshToken(ctx)
		}
		s.settleAnonymous()
		return
	}

	gen := s.adoptSession(sess)
	s.saveRefreshToken(sess.RefreshToken)
	s.resolveUser(gen, sess)
	s.scheduleRefresh(gen)
}

func (s *Service) settleAnonymous() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.sess = nil
	s.loading = false
	s.mu.Unlock()
}

// adoptSession installs sess and invalidates all in-flight resolutions by
// bumping the generation. The user is NOT set here; callers follow up with
// resolveUser, matching the asynchronous handoff contract of Login.
func (s *Service) adoptSession(sess *session.Session) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.sess = sess
	return s.gen
}

// Login verifies credentials against the session store. On success it
// returns true and resolves the user asynchronously; callers must not assume
// CurrentUser is non-nil immediately after. On failure it returns false and
// leaves user state untouched.
func (s *Service) Login(ctx context.Context, email, password string) bool {
	email = common.NormalizeEmail(email)

	s.setLoading(true)

	sess, err := s.store.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login rejected", "email", email, "error", err)
		if errors.Is(err, session.ErrInvalidCredentials) {
			s.notifier.Error("Invalid email or password")
		} else {
			s.notifier.Error("An error occurred during login")
		}
		s.setLoading(false)
		return false
	}

	gen := s.adoptSession(sess)
	s.saveRefreshToken(sess.RefreshToken)

	go s.resolveUser(gen, sess)
	s.scheduleRefresh(gen)
	return true
}

// Register creates an account with immutable name/role metadata. Success
// means the account exists, not that the user is signed in: the store
// requires email verification before the first login.
func (s *Service) Register(ctx context.Context, name, email, password string, role common.Role) bool {
	email = common.NormalizeEmail(email)

	s.setLoading(true)
	defer s.setLoading(false)

	if !common.ValidRole(role) {
		s.notifier.Error("Unknown role")
		return false
	}

	_, err := s.store.SignUp(ctx, email, password, session.Metadata{Name: name, Role: string(role)})
	if err != nil {
		s.log.Info(ctx, "registration failed", "email", email, "error", err)
		s.notifier.Error("An error occurred during registration")
		return false
	}

	s.notifier.Success("Registration successful! Please check your email for verification.")
	return true
}

// Logout signs out upstream and clears local state. The local clear happens
// unconditionally: even when the store reports an error the user is logged
// out of this application's view.
func (s *Service) Logout(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.Lock()
	token := ""
	if s.sess != nil {
		token = s.sess.AccessToken
	}
	s.mu.Unlock()

	if token != "" {
		if err := s.store.SignOut(ctx, token); err != nil {
			s.log.Warn(ctx, "upstream sign-out failed", "error", err)
			s.notifier.Error("An error occurred during logout")
		}
	}

	if s.vault != nil {
		_ = s.vault.ClearRefreshToken(ctx)
	}

	s.clearSession()
}

// clearSession drops session and user, bumps the generation so in-flight
// resolutions are discarded, and notifies subscribers.
func (s *Service) clearSession() {
	s.mu.Lock()
	s.gen++
	s.sess = nil
	s.user = nil
	s.state = StateAnonymous
	s.mu.Unlock()

	s.emit(Event{Kind: EventSignedOut})
}

// UpdateUserWallet persists the wallet address for the current user and
// replaces local user state with a copy carrying the new address. A nil
// address records a disconnect. No-op when nobody is logged in; a persistence
// failure is surfaced but not rolled back or retried.
func (s *Service) UpdateUserWallet(ctx context.Context, address *string) {
	s.mu.Lock()
	u := s.user.clone()
	s.mu.Unlock()
	if u == nil {
		return
	}

	if err := s.users.UpdateWalletAddress(ctx, u.ID, address); err != nil {
		s.log.Error(ctx, "wallet address update failed", "user_id", u.ID, "error", err)
		s.notifier.Error("Failed to update wallet address")
		return
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID == u.ID {
		updated := s.user.clone()
		updated.WalletAddress = address
		s.user = updated
	}
	s.mu.Unlock()

	if address != nil {
		s.notifier.Success("Wallet address updated")
	} else {
		s.notifier.Success("Wallet disconnected")
	}
}

// CheckSession reports whether a live session exists right now. It is a pure
// local read (token presence plus expiry claim) so guards can gate without a
// network round trip and without racing the event pipeline.
func (s *Service) CheckSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess != nil && session.TokenAlive(s.sess.AccessToken, s.now())
}

// CurrentUser returns a copy of the logged-in user, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.clone()
}

// IsAuthenticated is derived from user presence, never stored separately.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Service) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the current access token, or "" when signed out.
func (s *Service) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.AccessToken
}

// Subscribe registers for auth-change events. The returned cancel func must
// be called to release the subscription. Events are delivered best-effort:
// a subscriber that stops draining loses events rather than blocking the
// service.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Close stops the refresher and closes all subscriptions.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stopCh)
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Service) saveRefreshToken(token string) {
	if s.vault == nil {
		return
	}
	if err := s.vault.SaveRefreshToken(context.Background(), token); err != nil {
		s.log.Warn(context.Background(), "persisting refresh token failed", "error", err)
	}
}

func (s *Service) emit(ev Event) {
	s.mu.Lock()
	chans := make([]chan Event, 0, len(s.subs))
	for _, ch := range s.subs {
		chans = append(chans, ch)
	}
	s.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- ev:
		default:
		}
	}
}

// resolveUser fetches user metadata for the adopted session and applies it
// if gen is still the latest generation. The loading flag is cleared on all
// exits belonging to the current generation.
func (s *Service) resolveUser(gen uint64, sess *session.Session) {
	ctx := context.Background()

	su, err := s.store.GetUser(ctx, sess.AccessToken)
	if err != nil {
		s.log.Error(ctx, "fetching user after auth change failed", "error", err)
		s.mu.Lock()
		if gen == s.gen {
			s.user = nil
			s.state = StateAnonymous
			s.loading = false
		}
		s.mu.Unlock()
		return
	}

	u := userFromStore(su)

	// wallet address and last-login live in our own users table, not in the
	// store metadata; the row is provisioned here on first sight
	if s.users != nil {
		if err := s.users.Ensure(ctx, u.ID, u.Name, u.Email, u.Role); err != nil {
			s.log.Warn(ctx, "user row provisioning failed", "user_id", u.ID, "error", err)
		}
		if addr, err := s.users.GetWalletAddress(ctx, u.ID); err == nil {
			u.WalletAddress = addr
		} else if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "wallet address lookup failed", "user_id", u.ID, "error", err)
		}
		if at, ip, err := s.users.GetLastLogin(ctx, u.ID); err == nil && at != nil {
			u.LastLogin = &LoginInfo{Time: *at, IP: ip}
		}
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.user = u
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.emit(Event{Kind: EventSignedIn, User: u.clone()})
}

// scheduleRefresh runs a per-generation refresher that renews the session
// shortly before expiry. It exits as soon as its generation is superseded.
func (s *Service) scheduleRefresh(gen uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			s.mu.Lock()
			if s.closed || gen != s.gen || s.sess == nil {
				s.mu.Unlock()
				return
			}
			wait := time.Until(s.sess.ExpiresAt.Add(-refreshLeeway))
			refreshToken := s.sess.RefreshToken
			s.mu.Unlock()

			if wait < time.Second {
				wait = time.Second
			}

			timer := time.NewTimer(wait)
			select {
			case <-s.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}

			sess, err := s.store.RefreshSession(context.Background(), refreshToken)
			if err != nil {
				s.log.Warn(context.Background(), "session refresh failed", "error", err)
				s.mu.Lock()
				stale := gen != s.gen
				s.mu.Unlock()
				if !stale {
					s.clearSession()
				}
				return
			}

			s.mu.Lock()
			if gen != s.gen {
				s.mu.Unlock()
				return
			}
			s.sess = sess
			u := s.user.clone()
			s.mu.Unlock()

			s.saveRefreshToken(sess.RefreshToken)
			s.emit(Event{Kind: EventTokenRefreshed, User: u})
		}
	}()
}
