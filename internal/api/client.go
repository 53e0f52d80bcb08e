// Package api is the dashboard's client for the backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prabalesh/aideck/internal/models"
)

const (
	PathModels     = "/api/models"
	PathConfig     = "/api/config"
	PathSystemInfo = "/api/system/info"
	PathSystemLogs = "/api/system/logs"
)

// Client talks to one backend. It holds no state beyond the connection pool.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListModels(ctx context.Context) ([]models.Model, error) {
	var out []models.Model
	if err := c.do(ctx, http.MethodGet, PathModels, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigureModel submits the whole per-model configuration.
func (c *Client) ConfigureModel(ctx context.Context, cfg models.ModelConfig) error {
	return c.do(ctx, http.MethodPost, PathConfig, cfg.Payload(), nil)
}

func (c *Client) GetConfig(ctx context.Context) (models.Config, error) {
	var out models.Config
	if err := c.do(ctx, http.MethodGet, PathConfig, nil, &out); err != nil {
		return models.Config{}, err
	}
	return out, nil
}

// SaveConfig overwrites the backend document with cfg. There is no merge.
func (c *Client) SaveConfig(ctx context.Context, cfg models.Config) error {
	return c.do(ctx, http.MethodPost, PathConfig, cfg, nil)
}

func (c *Client) GetSystemInfo(ctx context.Context) (models.SystemInfo, error) {
	var out models.SystemInfo
	if err := c.do(ctx, http.MethodGet, PathSystemInfo, nil, &out); err != nil {
		return models.SystemInfo{}, err
	}
	return out, nil
}

func (c *Client) GetSystemLogs(ctx context.Context) ([]models.LogEntry, error) {
	var out []models.LogEntry
	if err := c.do(ctx, http.MethodGet, PathSystemLogs, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}
