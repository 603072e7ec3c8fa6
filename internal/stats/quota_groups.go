package stats

import (
	"math"
	"sort"

	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"
	"github.com/muyouzhi6/cliproxy-stats/internal/render"
)

// QuotaGroup is one normalized quota line, independent of which provider
// shape it came from. ResetTime is already display-formatted.
type QuotaGroup struct {
	ID               string
	Label            string
	RemainingPercent int
	ResetTime        string
}

func percentOf(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// sortByRemaining orders groups lowest-remaining first so the tightest
// quota is the one the eye lands on.
func sortByRemaining(groups []QuotaGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].RemainingPercent < groups[j].RemainingPercent
	})
}

// NormalizeAntigravity flattens the fetchAvailableModels map into sorted
// quota groups, one per model that reports quota data.
func NormalizeAntigravity(models map[string]cpa.ModelQuota) []QuotaGroup {
	var groups []QuotaGroup
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		remaining := models[name].Remaining()
		if remaining == nil {
			continue
		}
		groups = append(groups, QuotaGroup{
			ID:               name,
			Label:            name,
			RemainingPercent: percentOf(*remaining),
			ResetTime:        FormatResetTime(models[name].ResetTime()),
		})
	}
	sortByRemaining(groups)
	return groups
}

// NormalizeGeminiCLI flattens retrieveUserQuota buckets into sorted quota
// groups.
func NormalizeGeminiCLI(buckets []cpa.QuotaBucket) []QuotaGroup {
	var groups []QuotaGroup
	for _, b := range buckets {
		if b.ModelID == "" || b.RemainingFraction == nil {
			continue
		}
		groups = append(groups, QuotaGroup{
			ID:               b.ModelID,
			Label:            b.ModelID,
			RemainingPercent: percentOf(*b.RemainingFraction),
			ResetTime:        FormatResetTime(b.ResetTime),
		})
	}
	sortByRemaining(groups)
	return groups
}

// NormalizeCodex converts the two rate-limit windows into quota groups.
// Window labels follow the window length: a primary window of six hours
// or less is the daily cap, a secondary window of a week or more is the
// weekly cap.
func NormalizeCodex(quota *cpa.CodexQuota) []QuotaGroup {
	var groups []QuotaGroup

	if w := quota.RateLimit.PrimaryWindow; w != nil {
		label := "主限额"
		if w.LimitWindowSeconds <= 21600 {
			label = "日限额"
		}
		groups = append(groups, QuotaGroup{
			ID:               "codex-primary",
			Label:            label,
			RemainingPercent: int(math.Round(100 - w.UsedPercent)),
			ResetTime:        FormatCodexResetTime(w.ResetAt),
		})
	}
	if w := quota.RateLimit.SecondaryWindow; w != nil {
		label := "次限额"
		if w.LimitWindowSeconds >= 604800 {
			label = "周限额"
		}
		groups = append(groups, QuotaGroup{
			ID:               "codex-secondary",
			Label:            label,
			RemainingPercent: int(math.Round(100 - w.UsedPercent)),
			ResetTime:        FormatCodexResetTime(w.ResetAt),
		})
	}
	sortByRemaining(groups)
	return groups
}

// quotaBars converts normalized groups into renderable rows with the
// shared tier metadata.
func quotaBars(groups []QuotaGroup) []render.QuotaBar {
	bars := make([]render.QuotaBar, 0, len(groups))
	for _, g := range groups {
		icon, color, level := quotaTier(g.RemainingPercent)
		bars = append(bars, render.QuotaBar{
			Label:     g.Label,
			Icon:      icon,
			Percent:   g.RemainingPercent,
			Color:     color,
			Level:     level,
			ResetTime: g.ResetTime,
		})
	}
	return bars
}

// quotaTier maps remaining percent to the status icon/color/level triple.
func quotaTier(percent int) (icon, color, level string) {
	switch {
	case percent >= 80:
		return "🟢", "#10b981", "high"
	case percent >= 50:
		return "🟡", "#f59e0b", "medium"
	case percent >= 20:
		return "🟠", "#f97316", "medium"
	default:
		return "🔴", "#ef4444", "low"
	}
}
