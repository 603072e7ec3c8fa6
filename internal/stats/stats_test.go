package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"
)

func TestFormatTokens(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.00K"},
		{45300, "45.30K"},
		{999999, "1000.00K"},
		{1000000, "1.00M"},
		{1234567, "1.23M"},
	}
	for _, tc := range cases {
		if got := FormatTokens(tc.in); got != tc.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatResetTime(t *testing.T) {
	if got := FormatResetTime(""); got != "-" {
		t.Errorf("empty reset time = %q, want -", got)
	}
	got := FormatResetTime("2026-08-24T00:00:00Z")
	if len(got) != len("08/24 00:00") {
		t.Errorf("formatted reset time = %q, want MM/DD HH:MM shape", got)
	}
	// Unparseable input passes through clipped.
	if got := FormatResetTime("soon-ish"); got != "soon-ish" {
		t.Errorf("passthrough = %q", got)
	}
}

func fraction(v float64) *float64 { return &v }

func TestNormalizeAntigravitySorted(t *testing.T) {
	models := map[string]cpa.ModelQuota{}
	raw := map[string]string{
		"gemini-3-pro-high": `{"quotaInfo":{"remainingFraction":0.9,"resetTime":"2026-08-24T00:00:00Z"}}`,
		"claude-sonnet-4-5": `{"quota_info":{"remaining_fraction":0.1,"reset_time":"2026-08-24T00:00:00Z"}}`,
		"no-quota-model":    `{}`,
	}
	for name, body := range raw {
		var m cpa.ModelQuota
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			t.Fatal(err)
		}
		models[name] = m
	}

	groups := NormalizeAntigravity(models)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (entry without quota dropped): %+v", len(groups), groups)
	}
	if groups[0].Label != "claude-sonnet-4-5" || groups[0].RemainingPercent != 10 {
		t.Errorf("lowest remaining not first: %+v", groups[0])
	}
	if groups[1].RemainingPercent != 90 {
		t.Errorf("snake/camel casing mix lost data: %+v", groups)
	}
}

func TestNormalizeGeminiCLI(t *testing.T) {
	buckets := []cpa.QuotaBucket{
		{ModelID: "gemini-2.5-pro", RemainingFraction: fraction(0.42), ResetTime: "2026-08-24T00:00:00Z"},
		{ModelID: "", RemainingFraction: fraction(1)},
		{ModelID: "gemini-3-pro-preview", RemainingFraction: nil},
		{ModelID: "gemini-2.0-flash", RemainingFraction: fraction(1)},
	}

	groups := NormalizeGeminiCLI(buckets)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}
	if groups[0].RemainingPercent != 42 || groups[1].RemainingPercent != 100 {
		t.Errorf("not sorted ascending: %+v", groups)
	}
}

func TestNormalizeCodexWindows(t *testing.T) {
	quota := &cpa.CodexQuota{PlanType: "team"}
	quota.RateLimit.PrimaryWindow = &cpa.RateWindow{UsedPercent: 35, ResetAt: 1787700000, LimitWindowSeconds: 18000}
	quota.RateLimit.SecondaryWindow = &cpa.RateWindow{UsedPercent: 80, ResetAt: 1788000000, LimitWindowSeconds: 604800}

	groups := NormalizeCodex(quota)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Secondary (20% remaining) sorts before primary (65%).
	if groups[0].Label != "周限额" || groups[0].RemainingPercent != 20 {
		t.Errorf("weekly window wrong: %+v", groups[0])
	}
	if groups[1].Label != "日限额" || groups[1].RemainingPercent != 65 {
		t.Errorf("daily window wrong: %+v", groups[1])
	}
}

func TestQuotaTier(t *testing.T) {
	cases := []struct {
		percent int
		icon    string
		level   string
	}{
		{100, "🟢", "high"},
		{80, "🟢", "high"},
		{79, "🟡", "medium"},
		{50, "🟡", "medium"},
		{49, "🟠", "medium"},
		{20, "🟠", "medium"},
		{19, "🔴", "low"},
	}
	for _, tc := range cases {
		icon, _, level := quotaTier(tc.percent)
		if icon != tc.icon || level != tc.level {
			t.Errorf("quotaTier(%d) = %s/%s, want %s/%s", tc.percent, icon, level, tc.icon, tc.level)
		}
	}
}

func TestFoldTimeSlots(t *testing.T) {
	var hours [24]int
	hours[1] = 2
	hours[7] = 5
	hours[13] = 7
	hours[23] = 1

	slots := foldTimeSlots(hours)

	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	total := 0
	for _, s := range slots {
		total += s.Count
	}
	if total != 15 {
		t.Errorf("slot counts sum to %d, want 15", total)
	}
	if slots[2].Count != 7 {
		t.Errorf("afternoon slot = %d, want 7", slots[2].Count)
	}

	if foldTimeSlots([24]int{}) != nil {
		t.Error("empty day should yield nil slots")
	}
}

func TestHourOf(t *testing.T) {
	if h, ok := hourOf("2026-08-23T14:05:00Z"); !ok || h != 14 {
		t.Errorf("hourOf = %d/%v", h, ok)
	}
	if h, ok := hourOf("2026-08-23 09:05:00"); !ok || h != 9 {
		t.Errorf("hourOf space-separated = %d/%v", h, ok)
	}
	if _, ok := hourOf("bogus"); ok {
		t.Error("short timestamp should not parse")
	}
}

func usageFixture(today string) map[string]interface{} {
	detail := func(hour string, total int64, failed bool, auth string) map[string]interface{} {
		return map[string]interface{}{
			"timestamp":  today + "T" + hour + ":00:00Z",
			"failed":     failed,
			"auth_index": auth,
			"tokens": map[string]interface{}{
				"input_tokens":  total / 2,
				"output_tokens": total / 2,
				"total_tokens":  total,
			},
		}
	}
	return map[string]interface{}{
		"usage": map[string]interface{}{
			"total_requests":  100,
			"success_count":   97,
			"failure_count":   3,
			"total_tokens":    2500000,
			"requests_by_day": map[string]int{today: 3},
			"tokens_by_day":   map[string]int64{today: 30000},
			"apis": map[string]interface{}{
				"gemini": map[string]interface{}{
					"total_requests": 60,
					"total_tokens":   1500000,
					"models": map[string]interface{}{
						"gemini-2.5-pro": map[string]interface{}{
							"details": []interface{}{
								detail("08", 10000, false, "auth-0"),
								detail("14", 10000, true, "auth-0"),
							},
						},
					},
				},
				"claude": map[string]interface{}{
					"total_requests": 40,
					"total_tokens":   1000000,
					"models": map[string]interface{}{
						"claude-sonnet-4": map[string]interface{}{
							"details": []interface{}{
								detail("20", 10000, false, "auth-1"),
								// Yesterday's entry must be ignored.
								map[string]interface{}{
									"timestamp": "2000-01-01T10:00:00Z",
									"tokens":    map[string]interface{}{"total_tokens": 999},
								},
							},
						},
					},
				},
			},
		},
	}
}

func newTestBuilder(t *testing.T, handler http.Handler) (*Builder, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	b := NewBuilder(cpa.NewClient(srv.URL, "pw", true), map[string]int{"antigravity": 10, "gemini-cli": 10, "codex": 10})
	b.now = func() time.Time {
		return time.Date(2026, 8, 23, 14, 0, 5, 0, time.Local)
	}
	return b, srv.Close
}

func TestBuildOverview(t *testing.T) {
	b, closeSrv := newTestBuilder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/management/usage":
			json.NewEncoder(w).Encode(usageFixture("2026-08-23"))
		case "/v0/management/auth-files":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"files": []map[string]interface{}{
					{"auth_index": "0", "email": "a@b.com", "provider": "antigravity"},
					{"auth_index": "1", "email": "c@d.com", "provider": "antigravity", "disabled": true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer closeSrv()

	p, err := b.BuildOverview(context.Background())
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}

	if p.TotalRequests != 100 || p.SuccessRate != 97 {
		t.Errorf("totals wrong: %+v", p)
	}
	if p.TotalTokens != "2.50M" {
		t.Errorf("total tokens = %q", p.TotalTokens)
	}
	if len(p.APIs) != 2 || p.APIs[0].Name != "gemini" {
		t.Errorf("apis not ranked by requests: %+v", p.APIs)
	}
	if p.AuthInfo == nil || p.AuthInfo.Active != 1 || p.AuthInfo.Total != 2 {
		t.Errorf("auth info wrong: %+v", p.AuthInfo)
	}
	if p.QueryTime != "14:00:05" {
		t.Errorf("query time = %q", p.QueryTime)
	}
}

func TestBuildToday(t *testing.T) {
	b, closeSrv := newTestBuilder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(usageFixture("2026-08-23"))
	}))
	defer closeSrv()

	p, err := b.BuildToday(context.Background())
	if err != nil {
		t.Fatalf("BuildToday: %v", err)
	}

	if p.TodayRequests != 3 {
		t.Errorf("today requests = %d, want 3", p.TodayRequests)
	}
	if len(p.ModelStats) != 2 || p.ModelStats[0].Name != "gemini-2.5-pro" {
		t.Fatalf("model stats wrong: %+v", p.ModelStats)
	}
	if p.ModelStats[0].Requests != 2 || p.ModelStats[0].Failed != 1 {
		t.Errorf("gemini aggregation wrong: %+v", p.ModelStats[0])
	}
	// 1 failure out of 3 requests.
	if p.SuccessRate != 66.7 {
		t.Errorf("success rate = %v, want 66.7", p.SuccessRate)
	}
	if len(p.AuthStats) != 2 || p.AuthStats[0].AuthIndex != "auth-0" {
		t.Errorf("auth stats wrong: %+v", p.AuthStats)
	}

	total := 0
	for _, s := range p.TimeSlots {
		total += s.Count
	}
	if total != 3 {
		t.Errorf("time slots sum to %d, want 3 (yesterday's detail leaked in)", total)
	}
	if p.TokenBreakdown == nil || p.TokenBreakdown.Input != "15.00K" {
		t.Errorf("token breakdown wrong: %+v", p.TokenBreakdown)
	}
}

func TestBuildQuotaTruncation(t *testing.T) {
	b, closeSrv := newTestBuilder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/management/auth-files":
			files := make([]map[string]interface{}, 0, 4)
			for i := 0; i < 3; i++ {
				files = append(files, map[string]interface{}{
					"auth_index": "ag-" + string(rune('0'+i)),
					"email":      "ag" + string(rune('0'+i)) + "@x.com",
					"provider":   "antigravity",
				})
			}
			files = append(files, map[string]interface{}{
				"auth_index": "", "email": "broken@x.com", "provider": "codex",
			})
			json.NewEncoder(w).Encode(map[string]interface{}{"files": files})
		case "/v0/management/api-call":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status_code": 200,
				"body": map[string]interface{}{
					"models": map[string]interface{}{
						"gemini-3-pro-high": map[string]interface{}{
							"quotaInfo": map[string]interface{}{"remainingFraction": 0.55, "resetTime": "2026-08-24T00:00:00Z"},
						},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer closeSrv()

	b.maxRenderCount = map[string]int{"antigravity": 2}

	p, err := b.BuildQuota(context.Background())
	if err != nil {
		t.Fatalf("BuildQuota: %v", err)
	}

	if len(p.ProviderGroups) != 2 || p.ProviderGroups[0] != "antigravity" {
		t.Errorf("provider groups: %v", p.ProviderGroups)
	}
	// 3 antigravity accounts capped at 2, plus the codex one.
	if len(p.Accounts) != 3 {
		t.Fatalf("got %d accounts after truncation, want 3", len(p.Accounts))
	}
	if p.Truncated["antigravity"] != 1 {
		t.Errorf("truncated = %v, want antigravity:1", p.Truncated)
	}

	ag := p.Accounts[0]
	if len(ag.Quotas) != 1 || ag.Quotas[0].Percent != 55 {
		t.Errorf("quota bars wrong: %+v", ag.Quotas)
	}
	if ag.Quotas[0].Icon != "🟡" || ag.Quotas[0].Level != "medium" {
		t.Errorf("tier metadata wrong: %+v", ag.Quotas[0])
	}

	codex := p.Accounts[2]
	if codex.Error == "" {
		t.Error("account without auth_index should carry an error line")
	}
}
