package cpa

import "strings"

// usageEnvelope is the top-level shape of GET /v0/management/usage.
type usageEnvelope struct {
	Usage UsageReport `json:"usage"`
}

// UsageReport is the accumulated usage ledger of the proxy.
type UsageReport struct {
	TotalRequests int                 `json:"total_requests"`
	SuccessCount  int                 `json:"success_count"`
	FailureCount  int                 `json:"failure_count"`
	TotalTokens   int64               `json:"total_tokens"`
	APIs          map[string]APIUsage `json:"apis"`
	RequestsByDay map[string]int      `json:"requests_by_day"`
	TokensByDay   map[string]int64    `json:"tokens_by_day"`
}

// APIUsage is one upstream API family with its per-model request logs.
type APIUsage struct {
	TotalRequests int                   `json:"total_requests"`
	TotalTokens   int64                 `json:"total_tokens"`
	Models        map[string]ModelUsage `json:"models"`
}

// ModelUsage carries the raw request log for one model.
type ModelUsage struct {
	Details []RequestDetail `json:"details"`
}

// RequestDetail is a single proxied request.
type RequestDetail struct {
	Timestamp string      `json:"timestamp"`
	Tokens    TokenCounts `json:"tokens"`
	Failed    bool        `json:"failed"`
	AuthIndex string      `json:"auth_index"`
}

// TokenCounts breaks one request's tokens down by class.
type TokenCounts struct {
	Input     int64 `json:"input_tokens"`
	Output    int64 `json:"output_tokens"`
	Reasoning int64 `json:"reasoning_tokens"`
	Cached    int64 `json:"cached_tokens"`
	Total     int64 `json:"total_tokens"`
}

// authFilesEnvelope is the top-level shape of GET /v0/management/auth-files.
type authFilesEnvelope struct {
	Files []AuthFile `json:"files"`
}

// AuthFile is one registered credential. Older proxy versions report the
// provider under "type", newer ones under "provider".
type AuthFile struct {
	AuthIndex   string `json:"auth_index"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Provider    string `json:"provider"`
	Type        string `json:"type"`
	Disabled    bool   `json:"disabled"`
	Unavailable bool   `json:"unavailable"`
}

// ProviderKey returns the lowercased provider, falling back to the legacy
// type field.
func (f AuthFile) ProviderKey() string {
	if f.Provider != "" {
		return strings.ToLower(f.Provider)
	}
	if f.Type != "" {
		return strings.ToLower(f.Type)
	}
	return "unknown"
}

// Available reports whether the credential can currently serve requests.
func (f AuthFile) Available() bool {
	return !f.Disabled && !f.Unavailable
}

// DisplayName prefers the email, then the file name, then the id.
func (f AuthFile) DisplayName() string {
	if f.Email != "" {
		return f.Email
	}
	if f.Name != "" {
		return f.Name
	}
	if f.ID != "" {
		return f.ID
	}
	return "未知"
}
