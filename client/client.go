package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	auth "github.com/goliatone/go-authflow"
)

// AuthPayload is the token plus user snapshot returned by signup and signin.
type AuthPayload struct {
	Token string           `json:"token"`
	User  *auth.PublicUser `json:"user"`
}

// APIClient talks to the auth HTTP endpoints. Tokens ride in the
// Authorization header using the Bearer scheme.
type APIClient struct {
	baseURL string
	http    *http.Client
	logger  auth.Logger
}

type APIClientOption func(*APIClient)

func WithHTTPClient(hc *http.Client) APIClientOption {
	return func(c *APIClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithClientLogger(l auth.Logger) APIClientOption {
	return func(c *APIClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewAPIClient(baseURL string, opts ...APIClientOption) *APIClient {
	c := &APIClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SignUp registers a new account. The server signs the new user in, so the
// payload carries a ready-to-use token.
func (c *APIClient) SignUp(ctx context.Context, email, fullName, password string) (*AuthPayload, error) {
	body := map[string]string{
		"email":     email,
		"full_name": fullName,
		"password":  password,
	}

	payload := &AuthPayload{}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// SignIn exchanges credentials for a token.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*AuthPayload, error) {
	body := map[string]string{
		"identifier": email,
		"password":   password,
	}

	payload := &AuthPayload{}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// Me fetches the account behind the token.
func (c *APIClient) Me(ctx context.Context, token string) (*auth.PublicUser, error) {
	out := &struct {
		User *auth.PublicUser `json:"user"`
	}{}

	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, out); err != nil {
		return nil, err
	}

	return out.User, nil
}

// SignOut notifies the server. The server cannot revoke bearer tokens, so
// this is best effort bookkeeping.
func (c *APIClient) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

// VerifyToken asks the server to validate the token without side effects.
func (c *APIClient) VerifyToken(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.do(ctx, http.MethodPost, "/auth/verify-token", token, body, nil)
}

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data,omitempty"`
	Message  string          `json:"message,omitempty"`
	TextCode string          `json:"text_code,omitempty"`
}

func (c *APIClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token != "" {
		req.Header.Set(router.HeaderAuthorization, "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("request failed", "path", path, "error", err)
		}
		return errors.Wrap(err, ErrNetworkFailure.Category, ErrNetworkFailure.Message).
			WithTextCode(ErrNetworkFailure.TextCode)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read response body")
	}

	env := envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			env = envelope{Message: string(raw)}
		}
	}

	if res.StatusCode >= 400 {
		return c.mapStatus(res.StatusCode, env)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to decode response data")
		}
	}

	return nil
}

func (c *APIClient) mapStatus(status int, env envelope) error {
	message := env.Message
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	meta := map[string]any{
		"status":    status,
		"text_code": env.TextCode,
	}

	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized.Clone().WithMetadata(meta)
	case http.StatusConflict:
		return ErrConflict.Clone().WithMetadata(meta)
	case http.StatusBadRequest:
		return errors.New(message, errors.CategoryValidation).
			WithTextCode(env.TextCode).
			WithCode(errors.CodeBadRequest).
			WithMetadata(meta)
	default:
		return errors.New(message, errors.CategoryInternal).
			WithTextCode(env.TextCode).
			WithCode(errors.CodeInternal).
			WithMetadata(meta)
	}
}
