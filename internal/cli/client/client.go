// Package client talks to a RestWell server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/restwell/internal/baseline"
	"github.com/ashureev/restwell/internal/domain"
)

const (
	defaultTimeout = 90 * time.Second
	maxErrorBody   = 64 << 10
)

// ChartFormat selects the chart encoding.
type ChartFormat string

// Chart formats served by the API.
const (
	ChartSVG ChartFormat = "svg"
	ChartPNG ChartFormat = "png"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ServerConfig mirrors GET /api/config.
type ServerConfig struct {
	ChatEnabled bool   `json:"chat_enabled"`
	Model       string `json:"model"`
}

type chatRequest struct {
	Messages domain.History `json:"messages"`
}

type chatResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// APIClient wraps net/http for communication with the server.
type APIClient struct {
	http   *http.Client
	server string
}

// NewAPIClient creates a new API client.
func NewAPIClient(server string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	return &APIClient{
		http:   &http.Client{Timeout: defaultTimeout},
		server: normalized,
	}, nil
}

// Server returns the normalized server base URL.
func (c *APIClient) Server() string {
	return c.server
}

// normalizeServerURL adds a scheme when missing and strips trailing slashes.
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", errors.New("invalid server URL")
	}
	return strings.TrimRight(fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path), "/"), nil
}

// Assess posts the form values and returns the comparison report.
func (c *APIClient) Assess(ctx context.Context, in baseline.Input) (*baseline.Report, error) {
	var report baseline.Report
	if err := c.do(ctx, http.MethodPost, endpointAssess, in, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Baselines returns the full baseline table.
func (c *APIClient) Baselines(ctx context.Context) ([]baseline.Baseline, error) {
	var resp struct {
		Baselines []baseline.Baseline `json:"baselines"`
	}
	if err := c.do(ctx, http.MethodGet, endpointBaselines, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Baselines, nil
}

// Chart downloads the rendered chart for the given input.
func (c *APIClient) Chart(ctx context.Context, format ChartFormat, in baseline.Input) ([]byte, error) {
	endpoint := endpointChartSVG
	if format == ChartPNG {
		endpoint = endpointChartPNG
	}

	q := url.Values{}
	q.Set("age", strconv.Itoa(in.Age))
	q.Set("gender", in.Gender)
	q.Set("sleep", strconv.FormatFloat(in.SleepHours, 'f', -1, 64))
	if in.CaffeineMg != nil {
		q.Set("caffeine", strconv.FormatFloat(*in.CaffeineMg, 'f', -1, 64))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart: %w", err)
	}
	return data, nil
}

// Chat sends the full history and returns the reply text.
func (c *APIClient) Chat(ctx context.Context, history domain.History) (string, error) {
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, endpointChat, chatRequest{Messages: history}, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("empty reply")
	}
	return resp.Content[0].Text, nil
}

// Config returns what the server reports about itself.
func (c *APIClient) Config(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := c.do(ctx, http.MethodGet, endpointConfig, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Stats returns the chat audit aggregate for the last day, plus up to recent
// of the newest records when recent is positive.
func (c *APIClient) Stats(ctx context.Context, recent int) (*domain.ChatStats, error) {
	endpoint := endpointStats
	if recent > 0 {
		endpoint += "?recent=" + strconv.Itoa(recent)
	}
	var stats domain.ChatStats
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *APIClient) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
