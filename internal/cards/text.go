package cards

import (
	"fmt"
	"strings"

	"github.com/muyouzhi6/cliproxy-stats/internal/render"
)

// TextSummary renders a payload as markdown-flavored plain text, the
// fallback surface when an image cannot be produced.
func TextSummary(p render.Payload) string {
	switch v := p.(type) {
	case *render.Overview:
		return overviewText(v)
	case *render.Today:
		return todayText(v)
	case *render.Quota:
		return quotaText(v)
	case *render.Dashboard:
		parts := []string{todayText(&v.Today)}
		if len(v.Quota.Accounts) > 0 {
			parts = append(parts, quotaText(&v.Quota))
		}
		if v.Analysis != "" {
			parts = append(parts, "# 🤖 AI 智能分析\n\n"+v.Analysis)
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}

func overviewText(p *render.Overview) string {
	var lines []string
	title := p.Title
	if title == "" {
		title = "CLIProxyAPI 统计"
	}
	lines = append(lines,
		"# "+title,
		"",
		"## 总体统计",
		fmt.Sprintf("- 总请求数: **%d**", p.TotalRequests),
		fmt.Sprintf("- 成功率: **%s%%**", formatRate(p.SuccessRate)),
		fmt.Sprintf("- 成功/失败: %d / %d", p.SuccessCount, p.FailureCount),
		fmt.Sprintf("- 总 Token: **%s**", p.TotalTokens),
	)

	if len(p.APIs) > 0 {
		lines = append(lines, "", "## 各接口统计")
		apis := p.APIs
		if len(apis) > 8 {
			apis = apis[:8]
		}
		for _, api := range apis {
			lines = append(lines, fmt.Sprintf("- %s: %d 次 / %s", api.Name, api.Requests, api.Tokens))
		}
	}

	if p.AuthInfo != nil {
		lines = append(lines, "", fmt.Sprintf("## OAuth 账号: %d/%d 可用", p.AuthInfo.Active, p.AuthInfo.Total))
		for _, prov := range p.AuthInfo.Providers {
			lines = append(lines, fmt.Sprintf("- %s: %d/%d", prov.Name, prov.Active, prov.Total))
		}
	}
	return strings.Join(lines, "\n")
}

func todayText(p *render.Today) string {
	var lines []string
	title := p.Title
	if title == "" {
		title = "今日统计"
	}
	lines = append(lines,
		"# "+title,
		"日期: "+p.Subtitle,
		"",
		fmt.Sprintf("- 请求数: **%d**", p.TodayRequests),
		fmt.Sprintf("- Token: **%s**", p.TodayTokens),
	)

	if len(p.ModelStats) > 0 {
		lines = append(lines, "", "## 各模型详情")
		models := p.ModelStats
		if len(models) > 10 {
			models = models[:10]
		}
		for _, m := range models {
			fail := ""
			if m.Failed > 0 {
				fail = fmt.Sprintf(" (失败%d)", m.Failed)
			}
			lines = append(lines, fmt.Sprintf("- %s: %d 次%s / %s", m.Name, m.Requests, fail, m.Tokens))
		}
	}

	if len(p.TimeSlots) > 0 {
		lines = append(lines, "", "## 时段分布")
		for _, s := range p.TimeSlots {
			lines = append(lines, fmt.Sprintf("- %s: %d", s.Label, s.Count))
		}
	}
	return strings.Join(lines, "\n")
}

func quotaText(p *render.Quota) string {
	var lines []string
	title := p.Title
	if title == "" {
		title = "OAuth 配额状态"
	}
	lines = append(lines, "# "+title, "")

	for i := range p.Accounts {
		a := &p.Accounts[i]
		icon := "❌"
		if a.Active {
			icon = "✅"
		}
		lines = append(lines, fmt.Sprintf("### %s %s", icon, a.Email))
		if a.Error != "" {
			lines = append(lines, "  ⚠️ "+a.Error)
		} else {
			for _, q := range a.Quotas {
				lines = append(lines, fmt.Sprintf("  - %s %s: **%d%%** | 刷新: %s", q.Icon, q.Label, q.Percent, q.ResetTime))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, "> 💡 配额每日自动刷新，百分比为剩余额度")
	return strings.Join(lines, "\n")
}

func formatRate(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
