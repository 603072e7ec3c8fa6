package render

// Payload is the closed set of card inputs. Each variant maps to one
// rendered card; dispatch is a type switch in Renderer.Render so a new
// card kind is a compile-time visible change.
//
// All list fields arrive pre-sorted and pre-capped by the caller; the
// planners draw them in the given order and never re-rank. Token and
// percentage fields that are display strings arrive already formatted.
type Payload interface {
	card()
}

// Overview is the all-time summary card.
type Overview struct {
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	TotalRequests int       `json:"total_requests"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
	SuccessRate   float64   `json:"success_rate"`
	TotalTokens   string    `json:"total_tokens"`
	APIs          []APIStat `json:"apis,omitempty"`
	AuthInfo      *AuthInfo `json:"auth_info,omitempty"`
	QueryTime     string    `json:"query_time"`
}

// APIStat is one per-endpoint row of the overview card (caller caps at 8).
type APIStat struct {
	Name     string `json:"name"`
	Requests int    `json:"requests"`
	Tokens   string `json:"tokens"`
}

// AuthInfo summarizes credential availability across providers.
type AuthInfo struct {
	Active    int             `json:"active"`
	Total     int             `json:"total"`
	Providers []ProviderCount `json:"providers"`
}

// ProviderCount is the active/total pair for one credential provider.
type ProviderCount struct {
	Name   string `json:"name"`
	Active int    `json:"active"`
	Total  int    `json:"total"`
}

// Today is the current-day statistics card.
type Today struct {
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle"`
	TodayRequests  int             `json:"today_requests"`
	TodayTokens    string          `json:"today_tokens"`
	SuccessRate    float64         `json:"success_rate"`
	ModelStats     []ModelStat     `json:"model_stats,omitempty"`
	TimeSlots      []TimeSlot      `json:"time_slots,omitempty"`
	AuthStats      []AuthStat      `json:"auth_stats,omitempty"`
	TokenBreakdown *TokenBreakdown `json:"token_breakdown,omitempty"`
	QueryTime      string          `json:"query_time"`
}

// ModelStat is one per-model row (caller caps at 15).
type ModelStat struct {
	Name            string `json:"name"`
	Requests        int    `json:"requests"`
	Tokens          string `json:"tokens"`
	Failed          int    `json:"failed"`
	InputTokens     int64  `json:"input_tokens"`
	OutputTokens    int64  `json:"output_tokens"`
	ReasoningTokens int64  `json:"reasoning_tokens"`
	CachedTokens    int64  `json:"cached_tokens"`
}

// TimeSlot is one of the four fixed time-of-day buckets.
type TimeSlot struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AuthStat is one per-credential usage row (caller caps at 10).
type AuthStat struct {
	AuthIndex string `json:"auth_index"`
	Requests  int    `json:"requests"`
	Tokens    string `json:"tokens"`
	Failed    int    `json:"failed"`
}

// TokenBreakdown holds the four pre-formatted token class totals.
type TokenBreakdown struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Reasoning string `json:"reasoning"`
	Cached    string `json:"cached"`
}

// Quota is the per-account quota status card.
type Quota struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Accounts []Account `json:"accounts"`
	// ProviderGroups fixes the drawing order of provider sections.
	ProviderGroups []string `json:"provider_groups"`
	QueryTime      string   `json:"query_time"`
	// MaxRenderCount is advisory metadata: the caps the builder already
	// applied (0 = unlimited). The renderer never re-filters with it.
	MaxRenderCount map[string]int `json:"max_render_count,omitempty"`
	// Truncated reports, per provider, how many accounts the builder cut
	// when applying MaxRenderCount. Drives the footnote line only.
	Truncated map[string]int `json:"truncated,omitempty"`
}

// Account is one credential with its normalized quota rows. Active is the
// binary status glyph of the source payload (drawn as a green/red dot).
type Account struct {
	Active        bool       `json:"active"`
	Email         string     `json:"email"`
	Provider      string     `json:"provider"`
	ProviderName  string     `json:"provider_name"`
	ProviderIcon  string     `json:"provider_icon"`
	ProviderColor string     `json:"provider_color"`
	Error         string     `json:"error,omitempty"`
	Quotas        []QuotaBar `json:"quotas,omitempty"`
}

// QuotaBar is one normalized quota row: label, remaining percent
// (pre-clamped to 0..100 by the builder) and a display reset time.
type QuotaBar struct {
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	Percent   int    `json:"percent"`
	Color     string `json:"color"`
	Level     string `json:"level"`
	ResetTime string `json:"reset_time"`
}

// Dashboard composes today stats, quota status and an optional free-form
// analysis text into one tall card.
type Dashboard struct {
	Today     Today  `json:"today"`
	Quota     Quota  `json:"quota"`
	Analysis  string `json:"analysis,omitempty"`
	QueryTime string `json:"query_time"`
}

func (*Overview) card()  {}
func (*Today) card()     {}
func (*Quota) card()     {}
func (*Dashboard) card() {}
