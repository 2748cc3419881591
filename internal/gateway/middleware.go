package gateway

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/registry/repositories/users"
	"github.com/mkurbatov/landledger/internal/session"
)

const (
	accessTokenCookie  = "ll_access_token"
	refreshTokenCookie = "ll_refresh_token"
	privacyCookie      = "ll_privacy_accepted"
	flashCookie        = "ll_flash"
)

// privacyAllowList are the paths reachable before the privacy policy has
// been accepted.
var privacyAllowList = map[string]bool{
	"/":                          true,
	"/login":                     true,
	"/register":                  true,
	"/privacy-policy":            true,
	"/api/login":                 true,
	"/api/register":              true,
	"/api/privacy-policy/accept": true,
}

// Guard resolves caller identity and enforces the route-guard rules.
type Guard struct {
	store  session.Store
	users  users.Repository
	logger logging.Logger
}

func NewGuard(store session.Store, users users.Repository, logger logging.Logger) *Guard {
	return &Guard{store: store, users: users, logger: logger}
}

// RequireSession resolves the caller's session exactly once per request.
// Without a live token the request is redirected to /login carrying the
// attempted path, so login can return the caller afterwards.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" || !session.TokenAlive(token, time.Now()) {
			redirectToLogin(w, r)
			return
		}

		su, err := g.store.GetUser(r.Context(), token)
		if err != nil {
			g.logger.Warn(r.Context(), "session resolution failed", "error", err)
			redirectToLogin(w, r)
			return
		}

		id := identityFromStoreUser(su)
		if addr, err := g.users.GetWalletAddress(r.Context(), id.UserID); err == nil {
			id.WalletAddress = addr
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// RequireRole gates a route to the given roles. It must be mounted after
// RequireSession; a caller with a valid session but the wrong role is sent
// to /dashboard with a warning flash, never back to /login.
func (g *Guard) RequireRole(roles ...common.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				redirectToLogin(w, r)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.logger.Warn(r.Context(), "role denied", "user_id", id.UserID, "role", id.Role, "path", r.URL.Path)
			setFlash(w, "You do not have permission to access this page")
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
	}
}

// PrivacyPolicy redirects to the policy page until the acceptance cookie is
// present, except for the public allow-list.
func PrivacyPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if privacyAllowList[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}
		if c, err := r.Cookie(privacyCookie); err == nil && c.Value == "true" {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "/privacy-policy", http.StatusFound)
	})
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.Path), http.StatusFound)
}

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:  flashCookie,
		Value: url.QueryEscape(msg),
		Path:  "/",
	})
}
