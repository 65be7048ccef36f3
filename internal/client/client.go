// Package client is the HTTP client the CLI and the watch screen use
// to talk to a running hearth daemon on loopback.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:37878"
	httpTimeout      = 5 * time.Second
)

// Client talks to the hearth daemon.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a console client. Respects the HEARTH_URL env var,
// falls back to http://127.0.0.1:37878.
func New() *Client {
	url := os.Getenv("HEARTH_URL")
	if url == "" {
		url = defaultServerURL
	}
	return NewWithURL(url)
}

// NewWithURL creates a console client against an explicit base URL.
func NewWithURL(url string) *Client {
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: url,
	}
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	resp, err := c.http.Post(c.serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// Healthy checks if the daemon is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// CloudStatus is the link portion of a status report.
type CloudStatus struct {
	Configured    bool    `json:"configured"`
	Connected     bool    `json:"connected"`
	Offline       bool    `json:"offline"`
	TokenValid    bool    `json:"token_valid"`
	BillingOK     bool    `json:"billing_ok"`
	Failures      int     `json:"failures"`
	BackoffSecs   float64 `json:"backoff_secs"`
	Tools         int     `json:"tools"`
	MessagesUsed  int     `json:"messages_used"`
	MessagesLimit int     `json:"messages_limit"`
	Tier          string  `json:"tier"`
	MOTD          string  `json:"motd"`
}

// QueueStatus is the offline-queue portion of a status report.
type QueueStatus struct {
	Pending  int `json:"pending"`
	Capacity int `json:"capacity"`
	Archived int `json:"archived"`
}

// CareTotal aggregates the care events of one kind.
type CareTotal struct {
	Kind      string  `json:"kind"`
	Count     int64   `json:"count"`
	Intensity float64 `json:"intensity"`
}

// StatusReport is the daemon's full /api/status document.
type StatusReport struct {
	E            float64     `json:"e"`
	EFloor       float64     `json:"e_floor"`
	EPeak        float64     `json:"e_peak"`
	State        string      `json:"state"`
	Expression   string      `json:"expression"`
	Agent        string      `json:"agent"`
	Interactions uint32      `json:"interactions"`
	TotalCare    float64     `json:"total_care"`
	DaysTogether float64     `json:"days_together"`
	Chats        uint32      `json:"chats"`
	Syncs        uint32      `json:"syncs"`
	Curiosity    float64     `json:"curiosity"`
	Playfulness  float64     `json:"playfulness"`
	Wisdom       float64     `json:"wisdom"`
	Salience     float64     `json:"salience"`
	Creativity   float64     `json:"creativity"`
	TokenScale   float64     `json:"token_scale"`
	Cloud        CloudStatus `json:"cloud"`
	Queue        QueueStatus `json:"queue"`
	CareTotals   []CareTotal `json:"care_totals"`
}

// Status fetches and decodes /api/status.
func (c *Client) Status() (*StatusReport, error) {
	body, err := c.Get("/api/status")
	if err != nil {
		return nil, err
	}
	var report StatusReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &report, nil
}

// Interaction is the daemon's reply to a care press or a chat.
type Interaction struct {
	Reply      string  `json:"reply"`
	Expression string  `json:"expression"`
	Agent      string  `json:"agent"`
	E          float64 `json:"e"`
	State      string  `json:"state"`
	Offline    bool    `json:"offline"`
}

// Care sends a love or poke press.
func (c *Client) Care(kind string) (*Interaction, error) {
	body, err := json.Marshal(map[string]string{"kind": kind})
	if err != nil {
		return nil, err
	}
	data, err := c.Post("/api/care", body)
	if err != nil {
		return nil, err
	}
	var res Interaction
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode care: %w", err)
	}
	return &res, nil
}

// Chat sends one message through the daemon's ladder.
func (c *Client) Chat(message string) (*Interaction, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	data, err := c.Post("/api/chat", body)
	if err != nil {
		return nil, err
	}
	var res Interaction
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}
	return &res, nil
}

// Sync asks the daemon for an immediate cloud sync.
func (c *Client) Sync() ([]byte, error) {
	return c.Post("/api/sync", []byte("{}"))
}
