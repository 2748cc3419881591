package gateway

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/documents"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/registry/models"
	"github.com/mkurbatov/landledger/internal/registry/repositories/properties"
	"github.com/mkurbatov/landledger/internal/registry/repositories/transactions"
	"github.com/mkurbatov/landledger/internal/registry/repositories/users"
	"github.com/mkurbatov/landledger/internal/session"
)

// AuthHandler serves login, registration, logout and session lookup.
type AuthHandler struct {
	store  session.Store
	users  users.Repository
	logger logging.Logger
}

func NewAuthHandler(store session.Store, users users.Repository, logger logging.Logger) *AuthHandler {
	return &AuthHandler{store: store, users: users, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges an email/password pair for a session. The tokens are set
// as cookies so browser navigation passes the guards without extra headers.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.store.SignInWithPassword(r.Context(), common.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "sign-in failed", "error", err)
		http.Error(w, "sign-in unavailable", http.StatusBadGateway)
		return
	}

	setSessionCookies(w, sess)

	id := identityFromStoreUser(sess.User)
	if sess.User != nil {
		if err := h.users.Ensure(r.Context(), id.UserID, id.Name, id.Email, id.Role); err != nil {
			h.logger.Warn(r.Context(), "user row provisioning failed", "user_id", id.UserID, "error", err)
		}
		ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
		if splitErr != nil {
			ip = r.RemoteAddr
		}
		if err := h.users.TouchLastLogin(r.Context(), id.UserID, ip); err != nil {
			h.logger.Warn(r.Context(), "last-login update failed", "user_id", id.UserID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, id)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account. It never issues a session: the store may
// still require email verification before the account is usable.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !common.ValidRole(common.Role(req.Role)) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	su, err := h.store.SignUp(r.Context(), common.NormalizeEmail(req.Email), req.Password,
		session.Metadata{Name: req.Name, Role: req.Role})
	if err != nil {
		h.logger.Error(r.Context(), "sign-up failed", "error", err)
		http.Error(w, "registration failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, identityFromStoreUser(su))
}

// Logout signs the session out upstream and clears the cookies regardless
// of the upstream result. The caller is logged out of this application's
// view either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := requestToken(r); token != "" {
		if err := h.store.SignOut(r.Context(), token); err != nil {
			h.logger.Warn(r.Context(), "upstream sign-out failed", "error", err)
		}
	}
	clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the resolved caller identity. Mounted behind RequireSession.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IdentityFromContext(r.Context()))
}

// AcceptPrivacyPolicy records the acceptance flag the PrivacyPolicy
// middleware checks.
func (h *AuthHandler) AcceptPrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     privacyCookie,
		Value:    "true",
		Path:     "/",
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// RegistryHandler serves the cached property and transaction rows.
type RegistryHandler struct {
	props  properties.Repository
	txs    transactions.Repository
	logger logging.Logger
}

func NewRegistryHandler(props properties.Repository, txs transactions.Repository, logger logging.Logger) *RegistryHandler {
	return &RegistryHandler{props: props, txs: txs, logger: logger}
}

// ListProperties returns the properties visible to the caller: officials
// see every row, owners only rows matching their wallet address.
func (h *RegistryHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())

	wallet := ""
	if id.WalletAddress != nil {
		wallet = *id.WalletAddress
	}
	props, err := h.props.List(r.Context(), id.Role, wallet)
	if err != nil {
		h.logger.Error(r.Context(), "property list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (h *RegistryHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	prop, err := h.props.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "property not found", http.StatusNotFound)
			return
		}
		h.logger.Error(r.Context(), "property lookup failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

type createPropertyRequest struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Size         float64  `json:"size"`
	Price        string   `json:"price"`
	Owner        string   `json:"owner"`
	DocumentHash string   `json:"document_hash"`
	ImageURL     *string  `json:"image_url"`
	Description  *string  `json:"description"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// CreateProperty inserts a cached property row. Mounted behind
// RequireRole(official).
func (h *RegistryHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Owner == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	prop := &models.Property{
		ID:           req.ID,
		Title:        req.Title,
		Location:     req.Location,
		Size:         req.Size,
		Price:        req.Price,
		Owner:        req.Owner,
		DocumentHash: req.DocumentHash,
		ImageURL:     req.ImageURL,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if err := h.props.Insert(r.Context(), prop); err != nil {
		h.logger.Error(r.Context(), "property insert failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, prop)
}

// ListTransactions returns audit rows visible to the caller, optionally
// filtered by property or limited to the most recent entries.
func (h *RegistryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())

	wallet := ""
	if id.WalletAddress != nil {
		wallet = *id.WalletAddress
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		rows, err := h.txs.Recent(r.Context(), id.Role, wallet, limit)
		if err != nil {
			h.logger.Error(r.Context(), "recent transactions failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}

	rows, err := h.txs.List(r.Context(), id.Role, wallet, r.URL.Query().Get("property_id"))
	if err != nil {
		h.logger.Error(r.Context(), "transaction list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// DocumentsHandler uploads deed documents and hands out presigned links.
type DocumentsHandler struct {
	docs   *documents.Service
	logger logging.Logger
}

func NewDocumentsHandler(docs *documents.Service, logger logging.Logger) *DocumentsHandler {
	return &DocumentsHandler{docs: docs, logger: logger}
}

// Upload stores the request body as a document and returns the storage key
// and the sha256 hash to put on chain.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key, hash, err := h.docs.Upload(r.Context(), r.Body)
	if err != nil {
		h.logger.Error(r.Context(), "document upload failed", "error", err)
		http.Error(w, "upload failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"key":           key,
		"document_hash": hash,
	})
}

// DownloadURL returns a short-lived presigned link for a stored document.
func (h *DocumentsHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}
	url, err := h.docs.PresignGet(r.Context(), key)
	if err != nil {
		h.logger.Error(r.Context(), "presign failed", "key", key, "error", err)
		http.Error(w, "presign failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func setSessionCookies(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    sess.RefreshToken,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
