package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// HTTPStore talks to a GoTrue-style authentication REST API (the flavor
// Supabase hosts): POST /token, POST /signup, POST /logout, GET /user.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore builds a store client for the given base URL (no trailing
// slash) and service API key. A nil httpClient falls back to a client with
// a 15s timeout.
func NewHTTPStore(baseURL, apiKey string, httpClient *http.Client) *HTTPStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPStore{baseURL: baseURL, apiKey: apiKey, client: httpClient}
}

// apiError is the store's error envelope. Older deployments use
// msg/code, newer ones error/error_description.
type apiError struct {
	Msg              string `json:"msg"`
	Error_           string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error_
	}
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	User         *StoreUser `json:"user"`
}

func (t *tokenResponse) session(now time.Time) *Session {
	return &Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(t.ExpiresIn) * time.Second),
		User:         t.User,
	}
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body any, bearer string) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, b, nil
}

func decodeError(status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)

	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		if msg := e.message(); msg != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
		}
		return ErrInvalidCredentials
	}
	if status >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
	return fmt.Errorf("session store: status %d: %s", status, e.message())
}

func (s *HTTPStore) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}

	status, body, err := s.do(ctx, http.MethodPost, "/token?grant_type=password", payload, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(status, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return tr.session(time.Now()), nil
}

func (s *HTTPStore) SignUp(ctx context.Context, email, password string, meta Metadata) (*StoreUser, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	}

	status, body, err := s.do(ctx, http.MethodPost, "/signup", payload, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(status, body)
	}

	var user StoreUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	return &user, nil
}

func (s *HTTPStore) SignOut(ctx context.Context, accessToken string) error {
	status, body, err := s.do(ctx, http.MethodPost, "/logout", nil, accessToken)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return decodeError(status, body)
	}
	return nil
}

func (s *HTTPStore) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	status, body, err := s.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", payload, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(status, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return tr.session(time.Now()), nil
}

// GetUser is a read, so transient store failures are retried with a short
// fibonacci backoff before giving up.
func (s *HTTPStore) GetUser(ctx context.Context, accessToken string) (*StoreUser, error) {
	var user StoreUser

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, body, err := s.do(ctx, http.MethodGet, "/user", nil, accessToken)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status >= 500 {
			return retry.RetryableError(decodeError(status, body))
		}
		if status != http.StatusOK {
			return decodeError(status, body)
		}
		if err := json.Unmarshal(body, &user); err != nil {
			return fmt.Errorf("decode user response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

var _ Store = (*HTTPStore)(nil)
