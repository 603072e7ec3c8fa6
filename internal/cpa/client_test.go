package cpa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUsageAndAuthFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/v0/management/usage":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"usage": map[string]interface{}{
					"total_requests": 42,
					"success_count":  40,
					"failure_count":  2,
					"total_tokens":   123456,
					"requests_by_day": map[string]int{
						"2026-08-23": 10,
					},
				},
			})
		case "/v0/management/auth-files":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"files": []map[string]interface{}{
					{"auth_index": "0", "email": "a@b.com", "provider": "Antigravity"},
					{"auth_index": "1", "name": "legacy", "type": "codex", "disabled": true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)

	usage, err := client.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.TotalRequests != 42 || usage.SuccessCount != 40 {
		t.Errorf("unexpected usage: %+v", usage)
	}
	if usage.RequestsByDay["2026-08-23"] != 10 {
		t.Errorf("requests_by_day lost: %+v", usage.RequestsByDay)
	}

	files, err := client.AuthFiles(context.Background())
	if err != nil {
		t.Fatalf("AuthFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d auth files, want 2", len(files))
	}
	if files[0].ProviderKey() != "antigravity" {
		t.Errorf("provider key = %q, want antigravity", files[0].ProviderKey())
	}
	if files[1].ProviderKey() != "codex" {
		t.Errorf("legacy type field not used: %q", files[1].ProviderKey())
	}
	if files[1].Available() {
		t.Error("disabled credential reported available")
	}
}

func TestUsageUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	if _, err := client.Usage(context.Background()); err == nil {
		t.Fatal("expected error on non-200")
	} else if _, ok := err.(ExternalError); !ok {
		t.Fatalf("error type = %T, want ExternalError", err)
	}
}

func TestDecodeBodyStringWrapped(t *testing.T) {
	// The proxy sometimes re-encodes the upstream body as a JSON string.
	inline := &APICallResult{Body: json.RawMessage(`{"models":{"m":{}}}`)}
	wrapped := &APICallResult{Body: json.RawMessage(`"{\"models\":{\"m\":{}}}"`)}

	for _, result := range []*APICallResult{inline, wrapped} {
		var body struct {
			Models map[string]ModelQuota `json:"models"`
		}
		if err := result.DecodeBody(&body); err != nil {
			t.Fatalf("DecodeBody: %v", err)
		}
		if _, ok := body.Models["m"]; !ok {
			t.Errorf("models lost in decode: %+v", body)
		}
	}
}

func TestAntigravityQuotaURLFallback(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call APICallRequest
		json.NewDecoder(r.Body).Decode(&call)
		seen = append(seen, call.URL)

		if len(seen) < 2 {
			// First endpoint has no quota data.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status_code": 500,
				"body":        map[string]interface{}{"error": map[string]string{"message": "internal"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status_code": 200,
			"body": map[string]interface{}{
				"models": map[string]interface{}{
					"gemini-3-pro-high": map[string]interface{}{
						"quotaInfo": map[string]interface{}{"remainingFraction": 0.72, "resetTime": "2026-08-24T00:00:00Z"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	models, err := client.AntigravityQuota(context.Background(), "0")
	if err != nil {
		t.Fatalf("AntigravityQuota: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("probed %d endpoints, want 2", len(seen))
	}

	q, ok := models["gemini-3-pro-high"]
	if !ok {
		t.Fatalf("model missing: %v", models)
	}
	if r := q.Remaining(); r == nil || *r != 0.72 {
		t.Errorf("remaining = %v, want 0.72", r)
	}
	if q.ResetTime() != "2026-08-24T00:00:00Z" {
		t.Errorf("reset time = %q", q.ResetTime())
	}
}

func TestAntigravityQuotaForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 403, "body": "{}"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	_, err := client.AntigravityQuota(context.Background(), "0")
	qe, ok := err.(*QuotaError)
	if !ok {
		t.Fatalf("error type = %T, want *QuotaError", err)
	}
	if qe.Code != 403 {
		t.Errorf("code = %d, want 403", qe.Code)
	}
}

func TestGeminiCLIQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call APICallRequest
		json.NewDecoder(r.Body).Decode(&call)

		var payload map[string]string
		if err := json.Unmarshal([]byte(call.Data), &payload); err != nil {
			t.Errorf("api-call data is not JSON: %q", call.Data)
		}
		if payload["project"] != "focused-brace-480503-c1" {
			t.Errorf("project = %q", payload["project"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status_code": 200,
			"body": map[string]interface{}{
				"buckets": []map[string]interface{}{
					{"modelId": "gemini-2.5-pro", "remainingFraction": 0.4, "resetTime": "2026-08-24T00:00:00Z"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	buckets, err := client.GeminiCLIQuota(context.Background(), "1", "gemini-user@gmail.com-focused-brace-480503-c1.json")
	if err != nil {
		t.Fatalf("GeminiCLIQuota: %v", err)
	}
	if len(buckets) != 1 || buckets[0].ModelID != "gemini-2.5-pro" {
		t.Errorf("unexpected buckets: %+v", buckets)
	}
}

func TestGeminiCLIQuotaMissingProject(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "secret", true)
	_, err := client.GeminiCLIQuota(context.Background(), "1", "not-a-gemini-file.json")
	if err == nil {
		t.Fatal("expected error when no project can be extracted")
	}
}

func TestCodexQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call APICallRequest
		json.NewDecoder(r.Body).Decode(&call)
		if call.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", call.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status_code": 200,
			"body": map[string]interface{}{
				"plan_type": "team",
				"rate_limit": map[string]interface{}{
					"primary_window":   map[string]interface{}{"used_percent": 35.0, "reset_at": 1787700000, "limit_window_seconds": 18000},
					"secondary_window": map[string]interface{}{"used_percent": 10.0, "reset_at": 1788000000, "limit_window_seconds": 604800},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	quota, err := client.CodexQuota(context.Background(), "2")
	if err != nil {
		t.Fatalf("CodexQuota: %v", err)
	}
	if quota.PlanType != "team" {
		t.Errorf("plan type = %q", quota.PlanType)
	}
	if quota.RateLimit.PrimaryWindow == nil || quota.RateLimit.PrimaryWindow.UsedPercent != 35 {
		t.Errorf("primary window lost: %+v", quota.RateLimit.PrimaryWindow)
	}
}

func TestCodexQuotaNoRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 200, "body": map[string]interface{}{"plan_type": "free"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", true)
	if _, err := client.CodexQuota(context.Background(), "2"); err == nil {
		t.Fatal("expected error when rate_limit is absent")
	}
}

func TestExtractProject(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"gemini-user@gmail.com-focused-brace-480503-c1.json", "focused-brace-480503-c1"},
		{"gemini-a.b@example.org-my-project.json", "my-project"},
		{"claude-user@gmail.com.json", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractProject(tc.filename); got != tc.want {
			t.Errorf("ExtractProject(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
