package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/notify"
	"github.com/mkurbatov/landledger/internal/session"
)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlog(slog.NewTextHandler(io.Discard, nil))
}

func liveToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

// ---- fake session store ----

type fakeStore struct {
	mu sync.Mutex

	SignInRet *session.Session
	SignInErr error

	SignUpRet *session.StoreUser
	SignUpErr error

	SignOutErr error

	RefreshRet *session.Session
	RefreshErr error

	GetUserRet  *session.StoreUser
	GetUserErr  error
	GetUserGate chan struct{} // when non-nil, GetUser blocks until closed

	LastSignInEmail    string
	LastSignInPassword string
	LastSignUpEmail    string
	LastSignUpMeta     session.Metadata
	SignOutCalls       int
}

func (f *fakeStore) SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error) {
	f.mu.Lock()
	f.LastSignInEmail = email
	f.LastSignInPassword = password
	f.mu.Unlock()
	return f.SignInRet, f.SignInErr
}

func (f *fakeStore) SignUp(ctx context.Context, email, password string, meta session.Metadata) (*session.StoreUser, error) {
	f.mu.Lock()
	f.LastSignUpEmail = email
	f.LastSignUpMeta = meta
	f.mu.Unlock()
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeStore) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	f.SignOutCalls++
	f.mu.Unlock()
	return f.SignOutErr
}

func (f *fakeStore) RefreshSession(ctx context.Context, refreshToken string) (*session.Session, error) {
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeStore) GetUser(ctx context.Context, accessToken string) (*session.StoreUser, error) {
	f.mu.Lock()
	gate := f.GetUserGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.GetUserRet, f.GetUserErr
}

// ---- fake users repo ----

type fakeUsersRepo struct {
	mu sync.Mutex

	Wallet    *string
	WalletErr error

	LastLoginAt *time.Time
	LastLoginIP string

	UpdateErr error

	EnsureCalls       int
	LastEnsureUserID  string
	LastEnsureEmail   string
	LastEnsureRole    common.Role
	LastUpdateUserID  string
	LastUpdateAddress *string
	UpdateCalls       int
}

func (f *fakeUsersRepo) Ensure(ctx context.Context, userID, name, email string, role common.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EnsureCalls++
	f.LastEnsureUserID = userID
	f.LastEnsureEmail = email
	f.LastEnsureRole = role
	return nil
}

func (f *fakeUsersRepo) GetLastLogin(ctx context.Context, userID string) (*time.Time, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LastLoginAt, f.LastLoginIP, nil
}

func (f *fakeUsersRepo) UpdateWalletAddress(ctx context.Context, userID string, address *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastUpdateUserID = userID
	f.LastUpdateAddress = address
	return f.UpdateErr
}

func (f *fakeUsersRepo) GetWalletAddress(ctx context.Context, userID string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WalletErr != nil {
		return nil, f.WalletErr
	}
	return f.Wallet, nil
}

func (f *fakeUsersRepo) TouchLastLogin(ctx context.Context, userID string, ip string) error {
	return nil
}

// ---- fake vault ----

type fakeVault struct {
	mu    sync.Mutex
	Token string
}

func (f *fakeVault) LoadRefreshToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Token == "" {
		return "", common.ErrNotFound
	}
	return f.Token, nil
}

func (f *fakeVault) SaveRefreshToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Token = token
	return nil
}

func (f *fakeVault) ClearRefreshToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Token = ""
	return nil
}

// ---- setup ----

func newTestService(t *testing.T, store *fakeStore) (*Service, *fakeUsersRepo, *notify.Recorder) {
	t.Helper()
	repo := &fakeUsersRepo{}
	rec := &notify.Recorder{}
	svc := NewService(store, repo, nil, testLogger(), rec)
	t.Cleanup(svc.Close)
	return svc, repo, rec
}

func officialSession(t *testing.T) (*session.Session, *session.StoreUser) {
	t.Helper()
	su := &session.StoreUser{
		ID:    "u-1",
		Email: "foo@bar.com",
		Metadata: session.Metadata{
			Name: "Foo",
			Role: "official",
		},
	}
	sess := &session.Session{
		AccessToken:  liveToken(t),
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         su,
	}
	return sess, su
}

// ---- tests ----

func TestLogin_SuccessResolvesUserAsynchronously(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, _, _ := newTestService(t, store)

	events, cancel := svc.Subscribe()
	defer cancel()

	ok := svc.Login(context.Background(), "foo@bar.com", "pw")
	require.True(t, ok)

	select {
	case ev := <-events:
		require.Equal(t, EventSignedIn, ev.Kind)
		require.Equal(t, common.RoleOfficial, ev.User.Role)
	case <-time.After(2 * time.Second):
		t.Fatal("no SIGNED_IN event")
	}

	require.True(t, svc.IsAuthenticated())
	require.Equal(t, StateAuthenticated, svc.State())
	require.False(t, svc.IsLoading())
	u := svc.CurrentUser()
	require.Equal(t, "Foo", u.Name)
	require.Equal(t, common.RoleOfficial, u.Role)
}

func TestLogin_NormalizesEmailBeforeForwarding(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, _, _ := newTestService(t, store)

	svc.Login(context.Background(), "  Foo@Bar.com ", "pw")

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, "foo@bar.com", store.LastSignInEmail)
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	store := &fakeStore{SignInErr: session.ErrInvalidCredentials}
	svc, _, rec := newTestService(t, store)

	ok := svc.Login(context.Background(), "foo@bar.com", "bad")
	require.False(t, ok)
	require.False(t, svc.IsAuthenticated())
	require.False(t, svc.IsLoading(), "loading must be cleared on failure")
	require.False(t, svc.CheckSession())
	require.Contains(t, rec.Errors, "Invalid email or password")
}

func TestLogin_ProvisionsUserRowAndLoadsLastLogin(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, repo, _ := newTestService(t, store)

	at := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	repo.LastLoginAt = &at
	repo.LastLoginIP = "10.0.0.7"

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	require.Equal(t, 1, repo.EnsureCalls)
	require.Equal(t, "u-1", repo.LastEnsureUserID)
	require.Equal(t, "foo@bar.com", repo.LastEnsureEmail)
	require.Equal(t, common.RoleOfficial, repo.LastEnsureRole)
	repo.mu.Unlock()

	u := svc.CurrentUser()
	require.NotNil(t, u.LastLogin)
	require.True(t, u.LastLogin.Time.Equal(at))
	require.Equal(t, "10.0.0.7", u.LastLogin.IP)
}

func TestCheckSession_Lifecycle(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, _, _ := newTestService(t, store)

	require.False(t, svc.CheckSession(), "no session before login")

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.True(t, svc.CheckSession(), "session exists right after login")

	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	svc.Logout(context.Background())
	require.False(t, svc.CheckSession(), "no session after logout")
}

func TestLogout_ClearsUserEvenWhenUpstreamFails(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su, SignOutErr: errors.New("store down")}
	svc, _, rec := newTestService(t, store)

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	svc.Logout(context.Background())

	require.Nil(t, svc.CurrentUser())
	require.False(t, svc.IsAuthenticated())
	require.False(t, svc.IsLoading())
	require.Contains(t, rec.Errors, "An error occurred during logout")
}

func TestLogout_EmitsSignedOut(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, _, _ := newTestService(t, store)

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	events, cancel := svc.Subscribe()
	defer cancel()

	svc.Logout(context.Background())

	select {
	case ev := <-events:
		require.Equal(t, EventSignedOut, ev.Kind)
		require.Nil(t, ev.User)
	case <-time.After(2 * time.Second):
		t.Fatal("no SIGNED_OUT event")
	}
}

func TestStaleResolutionIsDropped(t *testing.T) {
	sess, su := officialSession(t)
	gate := make(chan struct{})
	store := &fakeStore{SignInRet: sess, GetUserRet: su, GetUserGate: gate}
	svc, _, _ := newTestService(t, store)

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))

	// logout supersedes the in-flight user resolution
	svc.Logout(context.Background())
	close(gate)

	// the stale completion must never re-authenticate the user
	time.Sleep(100 * time.Millisecond)
	require.False(t, svc.IsAuthenticated())
	require.Nil(t, svc.CurrentUser())
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	store := &fakeStore{SignUpRet: &session.StoreUser{ID: "u-2", Email: "new@user.com"}}
	svc, _, rec := newTestService(t, store)

	ok := svc.Register(context.Background(), "New User", " New@User.com ", "pw", common.RoleOwner)
	require.True(t, ok)
	require.False(t, svc.IsAuthenticated(), "registration must not sign the user in")
	require.False(t, svc.CheckSession())

	store.mu.Lock()
	require.Equal(t, "new@user.com", store.LastSignUpEmail)
	require.Equal(t, "New User", store.LastSignUpMeta.Name)
	require.Equal(t, "owner", store.LastSignUpMeta.Role)
	store.mu.Unlock()

	require.NotEmpty(t, rec.Successes)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	store := &fakeStore{}
	svc, _, _ := newTestService(t, store)

	require.False(t, svc.Register(context.Background(), "X", "x@y.z", "pw", common.Role("admin")))
}

func TestUpdateUserWallet_NoopWithoutUser(t *testing.T) {
	store := &fakeStore{}
	svc, repo, _ := newTestService(t, store)

	addr := "0xabc"
	svc.UpdateUserWallet(context.Background(), &addr)
	require.Zero(t, repo.UpdateCalls)
}

func TestUpdateUserWallet_PersistsAndReplacesUser(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, repo, rec := newTestService(t, store)

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	addr := "0xabc0000000000000000000000000000000000001"
	svc.UpdateUserWallet(context.Background(), &addr)

	require.Equal(t, 1, repo.UpdateCalls)
	require.Equal(t, "u-1", repo.LastUpdateUserID)
	u := svc.CurrentUser()
	require.NotNil(t, u.WalletAddress)
	require.Equal(t, addr, *u.WalletAddress)
	require.Contains(t, rec.Successes, "Wallet address updated")

	// disconnect path
	svc.UpdateUserWallet(context.Background(), nil)
	require.Nil(t, svc.CurrentUser().WalletAddress)
	require.Contains(t, rec.Successes, "Wallet disconnected")
}

func TestUpdateUserWallet_FailureKeepsOldState(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{SignInRet: sess, GetUserRet: su}
	svc, repo, rec := newTestService(t, store)
	repo.UpdateErr = errors.New("db down")

	require.True(t, svc.Login(context.Background(), "foo@bar.com", "pw"))
	require.Eventually(t, svc.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	addr := "0xabc"
	svc.UpdateUserWallet(context.Background(), &addr)

	require.Nil(t, svc.CurrentUser().WalletAddress)
	require.Contains(t, rec.Errors, "Failed to update wallet address")
}

func TestStart_RestoresStoredSession(t *testing.T) {
	sess, su := officialSession(t)
	store := &fakeStore{RefreshRet: sess, GetUserRet: su}
	repo := &fakeUsersRepo{}
	vault := &fakeVault{Token: "stored-rt"}
	svc := NewService(store, repo, vault, testLogger(), &notify.Recorder{})
	t.Cleanup(svc.Close)

	svc.Start(context.Background())

	require.True(t, svc.IsAuthenticated())
	require.Equal(t, StateAuthenticated, svc.State())
	require.False(t, svc.IsLoading())
	require.Equal(t, "rt-1", vault.Token, "rotated refresh token must be stored")
}

func TestStart_NoStoredSessionSettlesAnonymous(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakeUsersRepo{}, &fakeVault{}, testLogger(), &notify.Recorder{})
	t.Cleanup(svc.Close)

	svc.Start(context.Background())

	require.Equal(t, StateAnonymous, svc.State())
	require.False(t, svc.IsLoading())
	require.False(t, svc.CheckSession())
}

func TestStart_BrokenStoredSessionClearsVault(t *testing.T) {
	store := &fakeStore{RefreshErr: errors.New("revoked")}
	vault := &fakeVault{Token: "stale-rt"}
	svc := NewService(store, &fakeUsersRepo{}, vault, testLogger(), &notify.Recorder{})
	t.Cleanup(svc.Close)

	svc.Start(context.Background())

	require.Equal(t, StateAnonymous, svc.State())
	require.Empty(t, vault.Token)
}
