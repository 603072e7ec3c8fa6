package cpa

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

// ExternalError marks which management endpoint failed.
type ExternalError struct {
	API string
}

func (e ExternalError) Error() string {
	return fmt.Sprintf("Could not fetch data from %s", e.API)
}

// Client talks to the CLIProxyAPI management API. All calls carry the
// management password as a bearer token.
type Client struct {
	baseURL  string
	password string
	http     *http.Client
}

// NewClient builds a management client. verifySSL=false skips certificate
// verification, matching self-hosted proxies running on self-signed certs.
func NewClient(baseURL, password string, verifySSL bool) *Client {
	transport := http.DefaultTransport
	if !verifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		password: password,
		http:     &http.Client{Transport: transport},
	}
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("cpa: management GET returned non-200", logger.Fields{"path": path, "status": resp.StatusCode})
		return fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Usage fetches the accumulated usage ledger.
func (c *Client) Usage(ctx context.Context) (*UsageReport, error) {
	var env usageEnvelope
	if err := c.get(ctx, "/v0/management/usage", 30*time.Second, &env); err != nil {
		logger.Warn("cpa: fetching usage failed", logger.WithError(err))
		return nil, ExternalError{API: "usage"}
	}
	return &env.Usage, nil
}

// AuthFiles fetches the registered credential list.
func (c *Client) AuthFiles(ctx context.Context) ([]AuthFile, error) {
	var env authFilesEnvelope
	if err := c.get(ctx, "/v0/management/auth-files", 30*time.Second, &env); err != nil {
		logger.Warn("cpa: fetching auth-files failed", logger.WithError(err))
		return nil, ExternalError{API: "auth-files"}
	}
	return env.Files, nil
}

// APICallRequest describes one proxied upstream call routed through the
// management api-call endpoint with a specific credential.
type APICallRequest struct {
	AuthIndex string            `json:"auth_index"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Header    map[string]string `json:"header"`
	Data      string            `json:"data"`
}

// APICallResult is the proxy's verdict on a forwarded call. Body is kept
// raw: depending on the proxy version it is either the upstream JSON
// object inline or that object re-encoded as a JSON string.
type APICallResult struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// DecodeBody unmarshals the response body into v, unwrapping the
// string-encoded variant when present.
func (r *APICallResult) DecodeBody(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty body")
	}
	var wrapped string
	if err := json.Unmarshal(r.Body, &wrapped); err == nil {
		return json.Unmarshal([]byte(wrapped), v)
	}
	return json.Unmarshal(r.Body, v)
}

// errorBody is the common upstream error envelope.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts a human-readable message from a failed call,
// falling back to the HTTP status.
func (r *APICallResult) errorMessage() string {
	var eb errorBody
	if err := r.DecodeBody(&eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return fmt.Sprintf("HTTP %d", r.StatusCode)
}

// APICall forwards an upstream request through the management proxy.
func (c *Client) APICall(ctx context.Context, call APICallRequest) (*APICallResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	payload, err := json.Marshal(call)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v0/management/api-call", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("cpa: api-call request failed", logger.WithError(err))
		return nil, ExternalError{API: "api-call"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("cpa: api-call returned non-200", logger.Fields{"status": resp.StatusCode})
		return nil, ExternalError{API: "api-call"}
	}

	var result APICallResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Warn("cpa: decoding api-call response failed", logger.WithError(err))
		return nil, ExternalError{API: "api-call"}
	}
	return &result, nil
}
