// Package stats turns raw management-API data into render payloads. The
// builders do all ranking, capping and normalization here so the renderer
// can stay a pure drawing function.
package stats

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"
	"github.com/muyouzhi6/cliproxy-stats/internal/render"
	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

const (
	overviewAPICap = 8
	todayModelCap  = 15
	todayAuthCap   = 10
)

// Builder assembles card payloads from the management API.
type Builder struct {
	client         *cpa.Client
	maxRenderCount map[string]int
	now            func() time.Time
}

// NewBuilder wires a payload builder. maxRenderCount caps rendered quota
// accounts per provider config key (0 = unlimited).
func NewBuilder(client *cpa.Client, maxRenderCount map[string]int) *Builder {
	return &Builder{
		client:         client,
		maxRenderCount: maxRenderCount,
		now:            time.Now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BuildOverview assembles the all-time summary payload.
func (b *Builder) BuildOverview(ctx context.Context) (*render.Overview, error) {
	usage, err := b.client.Usage(ctx)
	if err != nil {
		return nil, err
	}

	successRate := 0.0
	if usage.TotalRequests > 0 {
		successRate = round1(float64(usage.SuccessCount) / float64(usage.TotalRequests) * 100)
	}

	p := &render.Overview{
		Title:         "📊 CLIProxyAPI 统计",
		Subtitle:      "总览",
		TotalRequests: usage.TotalRequests,
		SuccessCount:  usage.SuccessCount,
		FailureCount:  usage.FailureCount,
		SuccessRate:   successRate,
		TotalTokens:   FormatTokens(usage.TotalTokens),
		APIs:          topAPIs(usage.APIs, overviewAPICap),
		QueryTime:     b.now().Format("15:04:05"),
	}

	// Auth summary is best-effort: the overview still renders without it.
	if files, err := b.client.AuthFiles(ctx); err == nil && len(files) > 0 {
		p.AuthInfo = summarizeAuth(files)
	}
	return p, nil
}

// topAPIs ranks API families by request count and keeps the first max.
func topAPIs(apis map[string]cpa.APIUsage, max int) []render.APIStat {
	if len(apis) == 0 {
		return nil
	}
	names := make([]string, 0, len(apis))
	for name := range apis {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := apis[names[i]], apis[names[j]]
		if a.TotalRequests != b.TotalRequests {
			return a.TotalRequests > b.TotalRequests
		}
		return names[i] < names[j]
	})
	if len(names) > max {
		names = names[:max]
	}

	out := make([]render.APIStat, 0, len(names))
	for _, name := range names {
		out = append(out, render.APIStat{
			Name:     name,
			Requests: apis[name].TotalRequests,
			Tokens:   FormatTokens(apis[name].TotalTokens),
		})
	}
	return out
}

// summarizeAuth folds the credential list into active/total counts per
// provider.
func summarizeAuth(files []cpa.AuthFile) *render.AuthInfo {
	info := &render.AuthInfo{Total: len(files)}

	type counts struct{ active, total int }
	perProvider := make(map[string]*counts)
	var order []string
	for _, f := range files {
		key := f.ProviderKey()
		c, ok := perProvider[key]
		if !ok {
			c = &counts{}
			perProvider[key] = c
			order = append(order, key)
		}
		c.total++
		if f.Available() {
			c.active++
			info.Active++
		}
	}

	for _, key := range order {
		c := perProvider[key]
		info.Providers = append(info.Providers, render.ProviderCount{
			Name:   providerDisplay(key),
			Active: c.active,
			Total:  c.total,
		})
	}
	return info
}

type modelAgg struct {
	requests  int
	tokens    int64
	failed    int
	input     int64
	output    int64
	reasoning int64
	cached    int64
}

type authAgg struct {
	requests int
	tokens   int64
	failed   int
}

// BuildToday assembles today's statistics payload by replaying the raw
// request log for the current date.
func (b *Builder) BuildToday(ctx context.Context) (*render.Today, error) {
	usage, err := b.client.Usage(ctx)
	if err != nil {
		return nil, err
	}

	today := b.now().Format("2006-01-02")
	todayRequests := usage.RequestsByDay[today]
	todayTokens := usage.TokensByDay[today]

	models := make(map[string]*modelAgg)
	auths := make(map[string]*authAgg)
	var hours [24]int
	var breakdown render.TokenBreakdown
	var totalInput, totalOutput, totalReasoning, totalCached int64

	for _, api := range usage.APIs {
		for modelName, model := range api.Models {
			for _, d := range model.Details {
				if !strings.HasPrefix(d.Timestamp, today) {
					continue
				}

				m, ok := models[modelName]
				if !ok {
					m = &modelAgg{}
					models[modelName] = m
				}
				m.requests++
				m.tokens += d.Tokens.Total
				m.input += d.Tokens.Input
				m.output += d.Tokens.Output
				m.reasoning += d.Tokens.Reasoning
				m.cached += d.Tokens.Cached
				if d.Failed {
					m.failed++
				}

				totalInput += d.Tokens.Input
				totalOutput += d.Tokens.Output
				totalReasoning += d.Tokens.Reasoning
				totalCached += d.Tokens.Cached

				authIndex := d.AuthIndex
				if authIndex == "" {
					authIndex = "unknown"
				}
				a, ok := auths[authIndex]
				if !ok {
					a = &authAgg{}
					auths[authIndex] = a
				}
				a.requests++
				a.tokens += d.Tokens.Total
				if d.Failed {
					a.failed++
				}

				if h, ok := hourOf(d.Timestamp); ok {
					hours[h]++
				}
			}
		}
	}

	modelStats := rankModels(models, todayModelCap)
	authStats := rankAuths(auths, todayAuthCap)
	slots := foldTimeSlots(hours)

	totalFailed := 0
	for _, m := range modelStats {
		totalFailed += m.Failed
	}
	successRate := 100.0
	if todayRequests > 0 {
		successRate = round1(float64(todayRequests-totalFailed) / float64(todayRequests) * 100)
	}

	breakdown = render.TokenBreakdown{
		Input:     FormatTokens(totalInput),
		Output:    FormatTokens(totalOutput),
		Reasoning: FormatTokens(totalReasoning),
		Cached:    FormatTokens(totalCached),
	}

	return &render.Today{
		Title:          "📅 今日使用统计",
		Subtitle:       today,
		TodayRequests:  todayRequests,
		TodayTokens:    FormatTokens(todayTokens),
		SuccessRate:    successRate,
		ModelStats:     modelStats,
		TimeSlots:      slots,
		AuthStats:      authStats,
		TokenBreakdown: &breakdown,
		QueryTime:      b.now().Format("15:04:05"),
	}, nil
}

// hourOf pulls the hour out of a "2006-01-02T15:..." or
// "2006-01-02 15:..." timestamp.
func hourOf(timestamp string) (int, bool) {
	if len(timestamp) < 13 {
		return 0, false
	}
	h := timestamp[11:13]
	if h[0] < '0' || h[0] > '9' || h[1] < '0' || h[1] > '9' {
		return 0, false
	}
	hour := int(h[0]-'0')*10 + int(h[1]-'0')
	if hour > 23 {
		return 0, false
	}
	return hour, true
}

func rankModels(models map[string]*modelAgg, max int) []render.ModelStat {
	if len(models) == 0 {
		return nil
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := models[names[i]], models[names[j]]
		if a.requests != b.requests {
			return a.requests > b.requests
		}
		return names[i] < names[j]
	})
	if len(names) > max {
		names = names[:max]
	}

	out := make([]render.ModelStat, 0, len(names))
	for _, name := range names {
		m := models[name]
		out = append(out, render.ModelStat{
			Name:            name,
			Requests:        m.requests,
			Tokens:          FormatTokens(m.tokens),
			Failed:          m.failed,
			InputTokens:     m.input,
			OutputTokens:    m.output,
			ReasoningTokens: m.reasoning,
			CachedTokens:    m.cached,
		})
	}
	return out
}

func rankAuths(auths map[string]*authAgg, max int) []render.AuthStat {
	if len(auths) == 0 {
		return nil
	}
	ids := make([]string, 0, len(auths))
	for id := range auths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := auths[ids[i]], auths[ids[j]]
		if a.requests != b.requests {
			return a.requests > b.requests
		}
		return ids[i] < ids[j]
	})
	if len(ids) > max {
		ids = ids[:max]
	}

	out := make([]render.AuthStat, 0, len(ids))
	for _, id := range ids {
		a := auths[id]
		out = append(out, render.AuthStat{
			AuthIndex: id,
			Requests:  a.requests,
			Tokens:    FormatTokens(a.tokens),
			Failed:    a.failed,
		})
	}
	return out
}

// foldTimeSlots collapses the 24 hour buckets into the four fixed
// day-part slots. Nil when the day saw no requests.
func foldTimeSlots(hours [24]int) []render.TimeSlot {
	sum := func(from, to int) int {
		total := 0
		for h := from; h < to; h++ {
			total += hours[h]
		}
		return total
	}
	slots := []render.TimeSlot{
		{Label: "凌晨 0-6", Count: sum(0, 6)},
		{Label: "上午 6-12", Count: sum(6, 12)},
		{Label: "下午 12-18", Count: sum(12, 18)},
		{Label: "晚间 18-24", Count: sum(18, 24)},
	}
	if slots[0].Count+slots[1].Count+slots[2].Count+slots[3].Count == 0 {
		return nil
	}
	return slots
}

// BuildQuota assembles the per-account quota payload. Quota fetches run
// sequentially; each failure degrades to an error line on that account
// instead of failing the card.
func (b *Builder) BuildQuota(ctx context.Context) (*render.Quota, error) {
	files, err := b.client.AuthFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	// Group quota-capable credentials by display provider; gemini-cli
	// folds into gemini.
	groups := make(map[string][]cpa.AuthFile)
	var order []string
	for _, f := range files {
		provider := f.ProviderKey()
		if !quotaSupported[provider] {
			continue
		}
		display := provider
		if display == "gemini-cli" {
			display = "gemini"
		}
		if _, ok := groups[display]; !ok {
			order = append(order, display)
		}
		groups[display] = append(groups[display], f)
	}
	if len(order) == 0 {
		return nil, nil
	}

	var accounts []render.Account
	for _, provider := range order {
		info := lookupProvider(provider)
		for _, f := range groups[provider] {
			accounts = append(accounts, b.buildAccount(ctx, provider, info, f))
		}
	}

	// Provider summary for the subtitle uses pre-truncation counts.
	var summary []string
	for _, provider := range order {
		info := lookupProvider(provider)
		summary = append(summary, info.Icon+" "+info.Name+" ("+strconv.Itoa(len(groups[provider]))+")")
	}

	p := &render.Quota{
		Title:          "📊 OAuth 配额状态",
		Subtitle:       strings.Join(summary, " | "),
		Accounts:       accounts,
		ProviderGroups: order,
		QueryTime:      b.now().Format("15:04:05"),
		MaxRenderCount: b.maxRenderCount,
	}
	b.truncateQuota(p)
	return p, nil
}

// buildAccount fetches and normalizes one credential's quota.
func (b *Builder) buildAccount(ctx context.Context, displayProvider string, info ProviderInfo, f cpa.AuthFile) render.Account {
	account := render.Account{
		Active:        f.Available(),
		Email:         truncateDisplay(f.DisplayName()),
		Provider:      displayProvider,
		ProviderName:  info.Name,
		ProviderIcon:  info.Icon,
		ProviderColor: info.Color,
	}

	if f.AuthIndex == "" {
		account.Error = "无法获取配额（缺少 auth_index）"
		return account
	}
	if !f.Available() {
		account.Error = "账号已禁用或不可用"
		return account
	}

	provider := f.ProviderKey()
	logger.Debug("stats: fetching quota", logger.Fields{"provider": provider, "name": f.Name, "auth_index": f.AuthIndex})

	var groups []QuotaGroup
	var qerr error
	switch provider {
	case "codex":
		quota, err := b.client.CodexQuota(ctx, f.AuthIndex)
		if err != nil {
			qerr = err
			break
		}
		groups = NormalizeCodex(quota)
	case "gemini", "gemini-cli":
		buckets, err := b.client.GeminiCLIQuota(ctx, f.AuthIndex, f.Name)
		if err != nil {
			qerr = err
			break
		}
		groups = NormalizeGeminiCLI(buckets)
	default:
		models, err := b.client.AntigravityQuota(ctx, f.AuthIndex)
		if err != nil {
			qerr = err
			break
		}
		groups = NormalizeAntigravity(models)
	}

	if qerr != nil {
		if qe, ok := qerr.(*cpa.QuotaError); ok && qe.Code == 403 {
			account.Error = "不支持配额查询"
		} else {
			account.Error = qerr.Error()
		}
		return account
	}
	if len(groups) == 0 {
		account.Error = "无配额信息"
		return account
	}

	account.Quotas = quotaBars(groups)
	return account
}

// truncateQuota applies the per-provider render caps and records how many
// accounts each cap dropped.
func (b *Builder) truncateQuota(p *render.Quota) {
	if len(b.maxRenderCount) == 0 {
		return
	}

	kept := p.Accounts[:0]
	seen := make(map[string]int)
	truncated := make(map[string]int)
	for _, a := range p.Accounts {
		configKey := a.Provider
		if configKey == "gemini" {
			configKey = "gemini-cli"
		}
		max := b.maxRenderCount[configKey]
		seen[a.Provider]++
		if max > 0 && seen[a.Provider] > max {
			truncated[a.Provider]++
			continue
		}
		kept = append(kept, a)
	}
	p.Accounts = kept
	if len(truncated) > 0 {
		p.Truncated = truncated
	}
}

// BuildDashboard composes the today and quota payloads. Analysis text is
// attached by the caller when enabled; a quota failure degrades to an
// empty quota section rather than losing the card.
func (b *Builder) BuildDashboard(ctx context.Context) (*render.Dashboard, error) {
	today, err := b.BuildToday(ctx)
	if err != nil {
		return nil, err
	}

	d := &render.Dashboard{
		Today:     *today,
		QueryTime: b.now().Format("15:04:05"),
	}
	if quota, err := b.BuildQuota(ctx); err == nil && quota != nil {
		d.Quota = *quota
	} else if err != nil {
		logger.Warn("stats: quota section unavailable for dashboard", logger.WithError(err))
	}
	return d, nil
}
