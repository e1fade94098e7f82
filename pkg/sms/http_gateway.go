package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tokens are refreshed this long before they expire
const tokenRefreshMargin = 5 * time.Minute

// HTTPGateway sends SMS through a token-authenticated JSON API.
// It logs in with username/password, caches the bearer token until shortly
// before expiry and posts one message per request.
type HTTPGateway struct {
	apiURL   string
	username string
	password string
	sender   string
	client   *http.Client

	tokenMutex  sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// HTTPConfig holds configuration for the HTTP SMS gateway
type HTTPConfig struct {
	APIURL   string
	Username string
	Password string
	Sender   string
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(config HTTPConfig) *HTTPGateway {
	return &HTTPGateway{
		apiURL:   strings.TrimRight(config.APIURL, "/"),
		username: config.Username,
		password: config.Password,
		sender:   config.Sender,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status     string `json:"status"`
	Comment    string `json:"comment"`
	Token      string `json:"token"`
	Expiration int    `json:"expiration"` // seconds
	ErrCode    string `json:"errCode"`
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

type sendResponse struct {
	Status    string `json:"status"`
	Comment   string `json:"comment"`
	MessageID string `json:"message_id"`
	ErrCode   string `json:"errCode"`
}

// Send posts one message, logging in first when the cached token is missing or stale
func (g *HTTPGateway) Send(ctx context.Context, msisdn, message string) (string, error) {
	token, err := g.ensureValidToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}

	var resp sendResponse
	err = g.postJSON(ctx, "/sms", token, sendRequest{To: msisdn, Message: message, Sender: g.sender}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp.Status != "success" {
		return "", fmt.Errorf("SMS sending failed: %s (error code: %s)", resp.Comment, resp.ErrCode)
	}
	return resp.MessageID, nil
}

// Name returns the name of this SMS gateway
func (g *HTTPGateway) Name() string {
	return "http"
}

func (g *HTTPGateway) ensureValidToken(ctx context.Context) (string, error) {
	g.tokenMutex.RLock()
	token, expiry := g.token, g.tokenExpiry
	g.tokenMutex.RUnlock()

	if token != "" && time.Now().Before(expiry.Add(-tokenRefreshMargin)) {
		return token, nil
	}
	return g.login(ctx)
}

func (g *HTTPGateway) login(ctx context.Context) (string, error) {
	var resp loginResponse
	if err := g.postJSON(ctx, "/login", "", loginRequest{Username: g.username, Password: g.password}, &resp); err != nil {
		return "", err
	}
	if resp.Status != "success" || resp.Token == "" {
		return "", fmt.Errorf("login failed: %s (error code: %s)", resp.Comment, resp.ErrCode)
	}

	g.tokenMutex.Lock()
	g.token = resp.Token
	g.tokenExpiry = time.Now().Add(time.Duration(resp.Expiration) * time.Second)
	g.tokenMutex.Unlock()

	return resp.Token, nil
}

func (g *HTTPGateway) postJSON(ctx context.Context, path, token string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
