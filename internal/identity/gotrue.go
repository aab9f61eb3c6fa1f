package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

const maxResponseBytes = 1 << 20

// GoTrueConfig configures a GoTrue client.
type GoTrueConfig struct {
	// BaseURL is the provider root, e.g. https://project.supabase.co.
	BaseURL string

	// AnonKey authenticates public endpoints. ServiceKey is used for
	// admin endpoints and as a fallback when AnonKey is empty.
	AnonKey    string
	ServiceKey string

	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
}

// GoTrue is a Provider backed by the GoTrue REST API.
type GoTrue struct {
	base       string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewGoTrue creates a GoTrue client.
func NewGoTrue(cfg GoTrueConfig) (*GoTrue, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity provider URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid identity provider URL: %w", err)
	}
	if cfg.AnonKey == "" && cfg.ServiceKey == "" {
		return nil, fmt.Errorf("an anon key or service key is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &GoTrue{
		base:       strings.TrimRight(cfg.BaseURL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		httpClient: client,
	}, nil
}

func (g *GoTrue) publicKey() string {
	if g.anonKey != "" {
		return g.anonKey
	}
	return g.serviceKey
}

// SignIn implements Provider.
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	err := g.do(ctx, "SignIn", http.MethodPost, "/token?grant_type=password", g.publicKey(), body, &session)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" || session.User == nil {
		return nil, newError("SignIn", ierrors.ErrUnauthorized, ErrInvalidCredentials, http.StatusOK, "no session returned")
	}
	return &session, nil
}

// SignUp implements Provider. GoTrue returns the bare user when
// confirmation is pending and a session wrapping it otherwise.
func (g *GoTrue) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}
	var resp struct {
		User
		Wrapped *User `json:"user"`
	}
	if err := g.do(ctx, "SignUp", http.MethodPost, "/signup", g.publicKey(), body, &resp); err != nil {
		return nil, err
	}
	if resp.Wrapped != nil && resp.Wrapped.ID != "" {
		return resp.Wrapped, nil
	}
	if resp.ID == "" {
		return nil, newError("SignUp", ierrors.ErrBadRequest, ErrRejected, http.StatusOK, "no user returned")
	}
	return &resp.User, nil
}

// ResetPassword implements Provider.
func (g *GoTrue) ResetPassword(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return g.do(ctx, "ResetPassword", http.MethodPost, path, g.publicKey(), map[string]string{"email": email}, nil)
}

// UpdatePassword implements Provider using the admin API.
func (g *GoTrue) UpdatePassword(ctx context.Context, userID, password string) error {
	if g.serviceKey == "" {
		return newError("UpdatePassword", ierrors.ErrUnavailable, ErrNotConfigured, 0, "service key not set")
	}
	return g.do(ctx, "UpdatePassword", http.MethodPut, "/admin/users/"+url.PathEscape(userID), g.serviceKey,
		map[string]string{"password": password}, nil)
}

// InviteByEmail implements Provider using the admin API.
func (g *GoTrue) InviteByEmail(ctx context.Context, email string) error {
	if g.serviceKey == "" {
		return newError("InviteByEmail", ierrors.ErrUnavailable, ErrNotConfigured, 0, "service key not set")
	}
	return g.do(ctx, "InviteByEmail", http.MethodPost, "/invite", g.serviceKey, map[string]string{"email": email}, nil)
}

// ResendConfirmation implements Provider.
func (g *GoTrue) ResendConfirmation(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": email}
	return g.do(ctx, "ResendConfirmation", http.MethodPost, "/resend", g.publicKey(), body, nil)
}

// SignOut implements Provider. A 4xx response means the token is already
// unusable and counts as success.
func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	err := g.doAs(ctx, "SignOut", http.MethodPost, "/logout", g.publicKey(), accessToken, nil, nil)
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrRejected) {
		return nil
	}
	return err
}

func (g *GoTrue) do(ctx context.Context, op, method, path, apiKey string, body, out any) error {
	return g.doAs(ctx, op, method, path, apiKey, apiKey, body, out)
}

// doAs sends one request authenticated with apiKey and bearer, decoding a
// 2xx body into out when out is non-nil.
func (g *GoTrue) doAs(ctx context.Context, op, method, path, apiKey, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return ierrors.New(domainIdentity, op, ierrors.ErrInternal, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return ierrors.New(domainIdentity, op, ierrors.ErrInternal, err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return newError(op, ierrors.ErrUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err), 0, "")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(op, ierrors.ErrUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err), resp.StatusCode, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(op, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(op, ierrors.ErrUnavailable, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err), resp.StatusCode, "")
	}
	return nil
}

// apiError covers both the legacy OAuth-style and the current GoTrue error shapes.
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// classify maps a non-2xx response onto the sentinel taxonomy.
func classify(op string, status int, raw []byte) error {
	var body apiError
	_ = json.Unmarshal(raw, &body)
	msg := body.text()
	lower := strings.ToLower(msg)
	code := strings.ToLower(body.ErrorCode)

	switch {
	case status >= 500 || status == http.StatusTooManyRequests:
		return newError(op, ierrors.ErrUnavailable, ErrUnavailable, status, msg)
	case code == "email_not_confirmed" || strings.Contains(lower, "email not confirmed"):
		return newError(op, ierrors.ErrForbidden, ErrEmailNotConfirmed, status, msg)
	case code == "invalid_credentials" || body.Error == "invalid_grant" ||
		strings.Contains(lower, "invalid login credentials"):
		return newError(op, ierrors.ErrUnauthorized, ErrInvalidCredentials, status, msg)
	case code == "user_already_exists" || code == "email_exists" ||
		strings.Contains(lower, "already registered") || strings.Contains(lower, "already been registered"):
		return newError(op, ierrors.ErrConflict, ErrAlreadyRegistered, status, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(op, ierrors.ErrUnauthorized, ErrInvalidCredentials, status, msg)
	default:
		return newError(op, ierrors.ErrBadRequest, ErrRejected, status, msg)
	}
}
