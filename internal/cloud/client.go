// Package cloud talks to the Village backend and keeps a sober view of
// the link: reachable or not, token standing, quota standing, and how
// long to back off after failures. Nothing here is fatal; every
// degradation maps to a sentinel the caller can absorb.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lazypower/hearth/internal/soul"
)

// One sentinel per degradation class.
var (
	// ErrNotConfigured means no backend has been paired yet.
	ErrNotConfigured = errors.New("cloud: not configured")
	// ErrAuthRevoked means the device token was rejected. Terminal
	// until Reconfigure; a revoked token is never retried.
	ErrAuthRevoked = errors.New("cloud: device token revoked")
	// ErrQuotaExceeded means the message allowance ran out. Chat
	// suspends; care and sync keep flowing.
	ErrQuotaExceeded = errors.New("cloud: message quota exceeded")
	// ErrUnavailable covers transport failures, server errors, and
	// the backoff window.
	ErrUnavailable = errors.New("cloud: backend unavailable")
)

const (
	apiPrefix = "/api/v1/pocket"

	apiTimeout = 15 * time.Second
	// Care is fire-and-forget at the call site, so it gets a short leash.
	careTimeout = 5 * time.Second

	backoffBase = 5 * time.Second
	backoffMax  = 60 * time.Second

	// Two straight failures flip the degraded flag.
	offlineThreshold = 2
)

// Config identifies this device to the backend.
type Config struct {
	BaseURL  string
	Token    string
	DeviceID string
	Firmware string
}

func (c Config) configured() bool {
	return c.BaseURL != "" && c.Token != ""
}

// Status is a point-in-time copy of the link state.
type Status struct {
	Configured          bool
	Connected           bool
	TokenValid          bool
	BillingOK           bool
	ConsecutiveFailures int
	Backoff             time.Duration
	LastSuccess         time.Time
	LastAttempt         time.Time
	ToolsAvailable      int
	MessagesUsed        int
	MessagesLimit       int
	Tier                string
	MOTD                string
}

// ChatResult is a cloud chat reply with its side-channel hints.
type ChatResult struct {
	Text       string
	Expression string
	CareValue  float64
}

// Client is the resilience wrapper around the pocket API. Safe for
// concurrent use; the state machine lives behind one mutex and no
// network call runs under it.
type Client struct {
	httpClient *http.Client

	mu          sync.Mutex
	cfg         Config
	connected   bool
	tokenValid  bool
	billingOK   bool
	failures    int
	backoff     time.Duration
	lastSuccess time.Time
	lastAttempt time.Time

	toolsAvailable int
	messagesUsed   int
	messagesLimit  int
	tier           string
	motd           string
}

// New builds a client. An empty config is fine; every call then
// reports ErrNotConfigured until Reconfigure pairs the device.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		tokenValid: true,
		billingOK:  true,
	}
}

// Reconfigure swaps credentials and clears the terminal flags, the
// failure count, and the backoff. The next call starts clean.
func (c *Client) Reconfigure(cfg Config) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.tokenValid = true
	c.billingOK = true
	c.failures = 0
	c.backoff = 0
	c.connected = false
	if cfg.configured() {
		log.Printf("cloud: configured for %s", cfg.BaseURL)
	}
}

// gate decides whether a call may go out right now. Caller holds mu.
func (c *Client) gate() error {
	if !c.cfg.configured() {
		return ErrNotConfigured
	}
	if !c.tokenValid {
		return ErrAuthRevoked
	}
	if c.backoff > 0 && time.Since(c.lastAttempt) < c.backoff {
		return fmt.Errorf("%w: backing off %s", ErrUnavailable, c.backoff)
	}
	return nil
}

// ShouldAttempt reports whether a call would be allowed to go out.
func (c *Client) ShouldAttempt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate() == nil
}

// handleResult runs every response through the same classifier, no
// matter which endpoint produced it. Caller holds mu.
func (c *Client) handleResult(code int, err error) {
	switch {
	case err != nil:
		c.connected = false
		c.failures++
		c.applyBackoff()
		log.Printf("cloud: network error (failure #%d): %v", c.failures, err)
	case code >= 200 && code < 300:
		c.connected = true
		c.failures = 0
		c.backoff = 0
		c.lastSuccess = time.Now()
	case code == http.StatusUnauthorized:
		c.tokenValid = false
		log.Printf("cloud: 401, token revoked; device needs re-pairing")
	case code == http.StatusPaymentRequired:
		c.billingOK = false
		log.Printf("cloud: 402, message limit reached")
	case code >= 500:
		c.failures++
		c.applyBackoff()
		log.Printf("cloud: %d server error (failure #%d)", code, c.failures)
	default:
		log.Printf("cloud: unexpected status %d", code)
	}
}

// applyBackoff doubles from the base per failure: 5s, 10s, 20s, 40s,
// then pinned at 60s. Caller holds mu.
func (c *Client) applyBackoff() {
	d := backoffBase
	for i := 1; i < c.failures && i < 5; i++ {
		d *= 2
	}
	if d > backoffMax {
		d = backoffMax
	}
	c.backoff = d
}

// opError maps a non-2xx status to its sentinel.
func opError(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrAuthRevoked
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
}

// do sends one JSON request and returns the status code and body.
// Classification is the caller's job.
func (c *Client) do(ctx context.Context, cfg Config, method, endpoint string, payload any, timeout time.Duration) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, cfg.BaseURL+apiPrefix+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// begin runs the gate, stamps the attempt, and hands back a config
// snapshot to call with. extra gates (like billing for chat) run
// inside the same critical section.
func (c *Client) begin(needsBilling bool) (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gate(); err != nil {
		return Config{}, err
	}
	if needsBilling && !c.billingOK {
		return Config{}, ErrQuotaExceeded
	}
	c.lastAttempt = time.Now()
	return c.cfg, nil
}

// finish classifies the outcome and maps it to a caller error.
func (c *Client) finish(code int, err error) error {
	c.mu.Lock()
	c.handleResult(code, err)
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if code < 200 || code >= 300 {
		return opError(code)
	}
	return nil
}

// FetchStatus probes GET /status and refreshes quota, tier, and MOTD.
// A fresh quota reading also rederives the billing flag, so a refilled
// allowance recovers without a restart.
func (c *Client) FetchStatus(ctx context.Context) (Status, error) {
	cfg, err := c.begin(false)
	if err != nil {
		return c.CurrentStatus(), err
	}

	code, body, err := c.do(ctx, cfg, http.MethodGet, "/status", nil, apiTimeout)
	if ferr := c.finish(code, err); ferr != nil {
		return c.CurrentStatus(), ferr
	}

	var result struct {
		ToolsAvailable int    `json:"tools_available"`
		MessagesUsed   int    `json:"messages_used"`
		MessagesLimit  int    `json:"messages_limit"`
		Tier           string `json:"tier"`
		MOTD           string `json:"motd"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return c.CurrentStatus(), fmt.Errorf("decode status: %w", err)
	}

	c.mu.Lock()
	c.toolsAvailable = result.ToolsAvailable
	c.messagesUsed = result.MessagesUsed
	c.messagesLimit = result.MessagesLimit
	if result.Tier != "" {
		c.tier = result.Tier
	}
	if result.MOTD != "" {
		c.motd = result.MOTD
	}
	c.billingOK = result.MessagesLimit <= 0 || result.MessagesUsed < result.MessagesLimit
	c.mu.Unlock()

	return c.CurrentStatus(), nil
}

// Chat sends a message with the soul's context and returns the reply.
// Gated on billing in addition to the usual link gate.
func (c *Client) Chat(ctx context.Context, message string, e float64, state, agent string) (ChatResult, error) {
	cfg, err := c.begin(true)
	if err != nil {
		return ChatResult{}, err
	}

	payload := map[string]any{
		"message":   message,
		"E":         e,
		"state":     state,
		"device_id": cfg.DeviceID,
		"agent":     agent,
		"firmware":  cfg.Firmware,
	}

	code, body, err := c.do(ctx, cfg, http.MethodPost, "/chat", payload, apiTimeout)
	if ferr := c.finish(code, err); ferr != nil {
		return ChatResult{}, ferr
	}

	var result struct {
		Response     *string  `json:"response"`
		Expression   *string  `json:"expression"`
		CareValue    *float64 `json:"care_value"`
		MessagesUsed *int     `json:"messages_used"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return ChatResult{}, fmt.Errorf("decode chat: %w", err)
	}

	// Backend omissions get the device defaults.
	out := ChatResult{Text: "...", Expression: "neutral", CareValue: 0.5}
	if result.Response != nil {
		out.Text = *result.Response
	}
	if result.Expression != nil {
		out.Expression = *result.Expression
	}
	if result.CareValue != nil {
		out.CareValue = *result.CareValue
	}
	if result.MessagesUsed != nil {
		c.mu.Lock()
		c.messagesUsed = *result.MessagesUsed
		c.mu.Unlock()
	}

	return out, nil
}

// Care telemeters a care event. Not gated on billing; love still
// counts when the quota is gone. Failures here feed the same failure
// counter as everything else, a dead link should look dead.
func (c *Client) Care(ctx context.Context, careType string, intensity, e float64) error {
	cfg, err := c.begin(false)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"care_type": careType,
		"intensity": intensity,
		"E":         e,
		"device_id": cfg.DeviceID,
	}

	code, _, err := c.do(ctx, cfg, http.MethodPost, "/care", payload, careTimeout)
	return c.finish(code, err)
}

// Sync pushes the full soul snapshot. Idempotent on the backend, safe
// to retry. A returned MOTD is adopted.
func (c *Client) Sync(ctx context.Context, snap soul.Snapshot, state, agent string) error {
	cfg, err := c.begin(false)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"E":            snap.E,
		"E_floor":      snap.Floor,
		"E_peak":       snap.Peak,
		"interactions": snap.Interactions,
		"total_care":   snap.TotalCare,
		"device_id":    cfg.DeviceID,
		"state":        state,
		"agent":        agent,
		"curiosity":    snap.Curiosity,
		"playfulness":  snap.Playfulness,
		"wisdom":       snap.Wisdom,
		"firmware":     cfg.Firmware,
	}

	code, body, err := c.do(ctx, cfg, http.MethodPost, "/sync", payload, apiTimeout)
	if ferr := c.finish(code, err); ferr != nil {
		return ferr
	}

	var result struct {
		MOTD string `json:"motd"`
	}
	if err := json.Unmarshal(body, &result); err == nil && result.MOTD != "" {
		c.mu.Lock()
		c.motd = result.MOTD
		c.mu.Unlock()
	}
	return nil
}

// ListPersonas fetches the roster of available agents.
func (c *Client) ListPersonas(ctx context.Context) ([]string, error) {
	cfg, err := c.begin(false)
	if err != nil {
		return nil, err
	}

	code, body, err := c.do(ctx, cfg, http.MethodGet, "/agents", nil, apiTimeout)
	if ferr := c.finish(code, err); ferr != nil {
		return nil, ferr
	}

	var result struct {
		Agents []string `json:"agents"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return result.Agents, nil
}

// CurrentStatus snapshots the link state without touching the network.
func (c *Client) CurrentStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Configured:          c.cfg.configured(),
		Connected:           c.connected,
		TokenValid:          c.tokenValid,
		BillingOK:           c.billingOK,
		ConsecutiveFailures: c.failures,
		Backoff:             c.backoff,
		LastSuccess:         c.lastSuccess,
		LastAttempt:         c.lastAttempt,
		ToolsAvailable:      c.toolsAvailable,
		MessagesUsed:        c.messagesUsed,
		MessagesLimit:       c.messagesLimit,
		Tier:                c.tier,
		MOTD:                c.motd,
	}
}

// Configured reports whether the device has been paired.
func (c *Client) Configured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.configured()
}

// TokenValid reports whether the token has not been revoked.
func (c *Client) TokenValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenValid
}

// BillingOK reports whether chat quota remains.
func (c *Client) BillingOK() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.billingOK
}

// Offline reports the degraded flag: two or more straight failures.
// Independent of the backoff timer.
func (c *Client) Offline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures >= offlineThreshold
}

// MOTD returns the last message of the day the Village sent.
func (c *Client) MOTD() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motd
}
