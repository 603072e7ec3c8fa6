package cpa

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

// Antigravity quota endpoints (fetchAvailableModels), probed in order.
var antigravityQuotaURLs = []string{
	"https://daily-cloudcode-pa.googleapis.com/v1internal:fetchAvailableModels",
	"https://daily-cloudcode-pa.sandbox.googleapis.com/v1internal:fetchAvailableModels",
	"https://cloudcode-pa.googleapis.com/v1internal:fetchAvailableModels",
}

const (
	geminiCLIQuotaURL = "https://cloudcode-pa.googleapis.com/v1internal:retrieveUserQuota"
	codexQuotaURL     = "https://chatgpt.com/backend-api/wham/usage"
)

var antigravityHeaders = map[string]string{
	"Authorization": "Bearer $TOKEN$",
	"Content-Type":  "application/json",
	"User-Agent":    "antigravity/1.11.5 windows/amd64",
}

// The retrieveUserQuota WebUI path only sends auth and content type.
var geminiCLIHeaders = map[string]string{
	"Authorization": "Bearer $TOKEN$",
	"Content-Type":  "application/json",
}

var codexHeaders = map[string]string{
	"Authorization": "Bearer $TOKEN$",
	"Content-Type":  "application/json",
}

// QuotaError is a per-account quota failure. The message surfaces on the
// rendered card, so it is user-facing text, not a diagnostic.
type QuotaError struct {
	Code    int
	Message string
}

func (e *QuotaError) Error() string { return e.Message }

func quotaFailure(code int, msg string) *QuotaError {
	return &QuotaError{Code: code, Message: msg}
}

// quotaInfo tolerates both key casings the upstream has shipped.
type quotaInfo struct {
	RemainingFraction      *float64 `json:"remainingFraction"`
	RemainingFractionSnake *float64 `json:"remaining_fraction"`
	ResetTime              string   `json:"resetTime"`
	ResetTimeSnake         string   `json:"reset_time"`
}

// ModelQuota is one model entry of the antigravity fetchAvailableModels
// response.
type ModelQuota struct {
	QuotaInfo      *quotaInfo `json:"quotaInfo"`
	QuotaInfoSnake *quotaInfo `json:"quota_info"`
}

// Remaining returns the remaining fraction (0..1), nil when the entry
// carries no quota data.
func (m ModelQuota) Remaining() *float64 {
	if qi := m.info(); qi != nil {
		if qi.RemainingFraction != nil {
			return qi.RemainingFraction
		}
		return qi.RemainingFractionSnake
	}
	return nil
}

// ResetTime returns the RFC3339 reset time, empty when absent.
func (m ModelQuota) ResetTime() string {
	if qi := m.info(); qi != nil {
		if qi.ResetTime != "" {
			return qi.ResetTime
		}
		return qi.ResetTimeSnake
	}
	return ""
}

func (m ModelQuota) info() *quotaInfo {
	if m.QuotaInfo != nil {
		return m.QuotaInfo
	}
	return m.QuotaInfoSnake
}

// QuotaBucket is one model entry of the gemini-cli retrieveUserQuota
// response.
type QuotaBucket struct {
	ModelID           string   `json:"modelId"`
	RemainingFraction *float64 `json:"remainingFraction"`
	ResetTime         string   `json:"resetTime"`
	TokenType         string   `json:"tokenType"`
}

// RateWindow is one codex rate-limit window.
type RateWindow struct {
	UsedPercent        float64 `json:"used_percent"`
	ResetAt            int64   `json:"reset_at"`
	LimitWindowSeconds int64   `json:"limit_window_seconds"`
}

// CodexQuota is the codex usage endpoint response.
type CodexQuota struct {
	RateLimit struct {
		PrimaryWindow   *RateWindow `json:"primary_window"`
		SecondaryWindow *RateWindow `json:"secondary_window"`
	} `json:"rate_limit"`
	PlanType string `json:"plan_type"`
}

var geminiProjectPattern = regexp.MustCompile(`^gemini-[^@]+@[^-]+-(.+)$`)

// ExtractProject pulls the GCP project out of a gemini-cli credential
// filename of the form gemini-{email}-{project}.json.
func ExtractProject(filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.TrimSuffix(filename, ".json")

	if m := geminiProjectPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}

	// Fallback: everything after the first dash following the last @.
	if at := strings.LastIndex(name, "@"); at >= 0 {
		afterAt := name[at+1:]
		if dash := strings.Index(afterAt, "-"); dash >= 0 {
			return afterAt[dash+1:]
		}
	}
	return ""
}

// AntigravityQuota fetches per-model quota for an antigravity credential.
// The endpoint list is probed in order; the first 200 with a models map
// wins, a 403 aborts immediately as unsupported.
func (c *Client) AntigravityQuota(ctx context.Context, authIndex string) (map[string]ModelQuota, error) {
	var lastErr *QuotaError

	for _, url := range antigravityQuotaURLs {
		result, err := c.APICall(ctx, APICallRequest{
			AuthIndex: authIndex,
			Method:    http.MethodPost,
			URL:       url,
			Header:    antigravityHeaders,
			Data:      "{}",
		})
		if err != nil {
			logger.Warn("cpa: antigravity quota call failed", logger.Fields{"url": url}, logger.WithError(err))
			continue
		}

		switch {
		case result.StatusCode == http.StatusOK:
			var body struct {
				Models map[string]ModelQuota `json:"models"`
			}
			if err := result.DecodeBody(&body); err == nil && body.Models != nil {
				return body.Models, nil
			}
		case result.StatusCode == http.StatusForbidden:
			return nil, quotaFailure(http.StatusForbidden, "权限不足")
		default:
			lastErr = quotaFailure(result.StatusCode, result.errorMessage())
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, quotaFailure(0, "获取配额失败")
}

// GeminiCLIQuota fetches quota buckets for a gemini-cli credential. The
// project comes out of the credential filename.
func (c *Client) GeminiCLIQuota(ctx context.Context, authIndex, filename string) ([]QuotaBucket, error) {
	project := ExtractProject(filename)
	if project == "" {
		return nil, quotaFailure(0, "无法从文件名提取项目名称")
	}

	data, _ := json.Marshal(map[string]string{"project": project})
	result, err := c.APICall(ctx, APICallRequest{
		AuthIndex: authIndex,
		Method:    http.MethodPost,
		URL:       geminiCLIQuotaURL,
		Header:    geminiCLIHeaders,
		Data:      string(data),
	})
	if err != nil {
		return nil, quotaFailure(0, "获取配额失败")
	}

	switch result.StatusCode {
	case http.StatusOK:
		var body struct {
			Buckets []QuotaBucket `json:"buckets"`
		}
		if err := result.DecodeBody(&body); err != nil {
			return nil, nil
		}
		return body.Buckets, nil
	case http.StatusForbidden:
		return nil, quotaFailure(http.StatusForbidden, "权限不足")
	default:
		return nil, quotaFailure(result.StatusCode, result.errorMessage())
	}
}

// CodexQuota fetches the codex rate-limit windows.
func (c *Client) CodexQuota(ctx context.Context, authIndex string) (*CodexQuota, error) {
	result, err := c.APICall(ctx, APICallRequest{
		AuthIndex: authIndex,
		Method:    http.MethodGet,
		URL:       codexQuotaURL,
		Header:    codexHeaders,
	})
	if err != nil {
		return nil, quotaFailure(0, "获取配额失败")
	}

	switch result.StatusCode {
	case http.StatusOK:
		var raw map[string]json.RawMessage
		if err := result.DecodeBody(&raw); err != nil {
			return nil, quotaFailure(0, "响应格式无效")
		}
		if _, ok := raw["rate_limit"]; !ok {
			return nil, quotaFailure(0, "响应格式无效")
		}
		var quota CodexQuota
		if err := result.DecodeBody(&quota); err != nil {
			return nil, quotaFailure(0, "响应格式无效")
		}
		return &quota, nil
	case http.StatusUnauthorized:
		return nil, quotaFailure(http.StatusUnauthorized, "认证失败，Token 可能已过期")
	case http.StatusForbidden:
		return nil, quotaFailure(http.StatusForbidden, "权限不足")
	default:
		return nil, quotaFailure(result.StatusCode, result.errorMessage())
	}
}
