// internal/agent/client.go

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// Client talks to the collector's HTTP API. Login and registration use a
// bearer token; the steady-state sync and ingest calls use the agent api
// key minted at registration.
type Client struct {
	baseURL     string
	keyHeader   string
	apiKey      string
	bearerToken string
	httpClient  *http.Client
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func NewClient(baseURL, keyHeader string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyHeader:  keyHeader,
		httpClient: httpClient,
	}
}

func (c *Client) SetAPIKey(key string) { c.apiKey = key }

// HealthCheck verifies the collector is reachable and its database is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: collector not ready (status %d)", resp.StatusCode)
	}
	return nil
}

// Login exchanges credentials for a bearer token, kept for the subsequent
// agent registration call.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	data, err := c.post(ctx, "/api/v1/auth/login", body, false)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("login response: %w", err)
	}
	if payload.Token == "" {
		return fmt.Errorf("login response: empty token")
	}
	c.bearerToken = payload.Token
	return nil
}

// RegisterAgent mints and stores this process's api key.
func (c *Client) RegisterAgent(ctx context.Context, name string) error {
	data, err := c.post(ctx, "/api/v1/agents/register", map[string]string{"name": name}, false)
	if err != nil {
		return fmt.Errorf("register agent: %w", err)
	}
	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("register agent response: %w", err)
	}
	if payload.APIKey == "" {
		return fmt.Errorf("register agent response: empty api key")
	}
	c.apiKey = payload.APIKey
	return nil
}

// Ping verifies the stored api key against the collector.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/agents/ping", nil)
	if err != nil {
		return err
	}
	req.Header.Set(c.keyHeader, c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: api key rejected (status %d)", resp.StatusCode)
	}
	return nil
}

func (c *Client) SyncDevices(ctx context.Context, devices []models.DeviceSnapshot) (*models.SyncResult, error) {
	data, err := c.post(ctx, "/api/v1/agents/devices", models.SyncDevicesRequest{Devices: devices}, true)
	if err != nil {
		return nil, fmt.Errorf("sync devices: %w", err)
	}
	var result models.SyncResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("sync devices response: %w", err)
	}
	return &result, nil
}

func (c *Client) IngestStats(ctx context.Context, samples []models.StatSample) (*models.IngestResult, error) {
	data, err := c.post(ctx, "/api/v1/agents/stats", models.IngestStatsRequest{Stats: samples}, true)
	if err != nil {
		return nil, fmt.Errorf("ingest stats: %w", err)
	}
	var result models.IngestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ingest stats response: %w", err)
	}
	return &result, nil
}

// post sends a JSON body and unwraps the collector's response envelope.
func (c *Client) post(ctx context.Context, path string, body any, asAgent bool) (json.RawMessage, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if asAgent {
		req.Header.Set(c.keyHeader, c.apiKey)
	} else if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || env.Status != "success" {
		return nil, fmt.Errorf("collector rejected request (status %d): %s", resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
