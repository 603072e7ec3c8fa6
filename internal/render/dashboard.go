package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

const (
	dashboardWidth    = 800
	dashboardPadding  = 24
	dashboardModelCap = 12
)

// dashboardHeight sums every section the draw pass will emit, including
// the already-wrapped analysis lines, so the canvas never needs a guess
// allocation.
func dashboardHeight(p *Dashboard, analysisLines []string) int {
	h := dashboardPadding + 52 // top margin + title block
	h += 54 + 16               // metric strip

	h += 28 // models header
	if n := len(p.Today.ModelStats); n > 0 {
		if n > dashboardModelCap {
			n = dashboardModelCap
		}
		h += n * 22
	}
	if p.Today.TokenBreakdown != nil {
		h += 38
	}
	h += 16

	h += 28 // quota header
	order, groups := groupAccounts(&p.Quota)
	for _, provider := range order {
		h += 22
		for _, a := range groups[provider] {
			h += 16 + len(a.Quotas)*16 + 6
		}
		if p.Quota.Truncated[provider] > 0 {
			h += 18
		}
		h += 8
	}
	h += 8

	if slotTotal(p.Today.TimeSlots) > 0 {
		h += 28 + 88
	}
	h += 8

	if len(analysisLines) > 0 {
		h += 28
		for _, line := range analysisLines {
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "###"):
				h += 24
			case strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**"):
				h += 16
			case trimmed != "":
				h += 14
			default:
				h += 8
			}
		}
	}

	h += 16 + 8 // tail + crop pad
	return h
}

func (r *Renderer) renderDashboard(p *Dashboard) image.Image {
	// The analysis text is wrapped before the canvas exists so the exact
	// line count feeds the height computation.
	var analysisLines []string
	if p.Analysis != "" {
		tiny := fontFace(float64(10 * r.scale))
		maxW := float64((dashboardWidth - dashboardPadding*2 - 16) * r.scale)
		analysisLines = wrapChars(tiny, p.Analysis, maxW)
	}

	c := newCanvas(dashboardWidth*r.scale, dashboardHeight(p, analysisLines)*r.scale, r.scale)

	width := c.w
	padding := c.sc(dashboardPadding)

	fontTitle := c.font(24)
	fontSection := c.font(16)
	fontSmall := c.font(12)
	fontTiny := c.font(10)

	y := padding

	c.text(padding, y, "📊 CLIProxyAPI 综合仪表盘", textPrimary, fontTitle)
	if p.QueryTime != "" {
		c.textRight(width-padding, y+c.sc(4), "⏱️ "+p.QueryTime, accentCyan, fontSmall)
	}
	if p.Today.Subtitle != "" {
		c.text(padding, y+c.sc(30), "📅 "+p.Today.Subtitle, textSecondary, fontSmall)
	}
	y += c.sc(52)

	// Five compact metric tiles in one strip.
	cardGap := c.sc(10)
	cardWidth := (width - padding*2 - cardGap*4) / 5
	cardHeight := c.sc(54)
	metrics := []struct {
		label, value string
		col          color.RGBA
	}{
		{"请求", strconv.Itoa(p.Today.TodayRequests), accentPurple},
		{"Token", orZero(p.Today.TodayTokens), accentCyan},
		{"成功率", formatPercent(p.Today.SuccessRate) + "%", thresholdColor(p.Today.SuccessRate)},
		{"模型", strconv.Itoa(len(p.Today.ModelStats)), accentBlue},
		{"账号", strconv.Itoa(len(p.Quota.Accounts)), accentOrange},
	}
	for i, m := range metrics {
		x := padding + float64(i)*(cardWidth+cardGap)
		c.roundedRect(x, y, cardWidth, cardHeight, c.sc(8), cardBg, cardBorder, float64(c.scale))
		c.text(x+c.sc(8), y+c.sc(6), m.label, textMuted, fontTiny)
		c.text(x+c.sc(8), y+c.sc(22), m.value, m.col, fontSection)
	}
	y += cardHeight + c.sc(16)

	c.text(padding, y, "🔥 模型使用 TOP", textPrimary, fontSection)
	y += c.sc(28)
	if len(p.Today.ModelStats) > 0 {
		models := p.Today.ModelStats
		if len(models) > dashboardModelCap {
			models = models[:dashboardModelCap]
		}
		for _, m := range models {
			name := truncateToWidth(fontSmall.f, m.Name, width-padding*2-c.sc(150))
			c.text(padding+c.sc(8), y, name, textSecondary, fontSmall)
			c.textRight(width-padding, y+c.sc(2), fmt.Sprintf("%d | %s", m.Requests, orZero(m.Tokens)), textMuted, fontTiny)
			y += c.sc(22)
		}
	}

	if tb := p.Today.TokenBreakdown; tb != nil {
		y += c.sc(8)
		c.line(padding, y, width-padding, y, 1, dividerColor)
		y += c.sc(10)

		items := []struct {
			label, value string
			col          color.RGBA
		}{
			{"输入", orZero(tb.Input), accentBlue},
			{"输出", orZero(tb.Output), accentGreen},
			{"推理", orZero(tb.Reasoning), accentPurple},
			{"缓存", orZero(tb.Cached), accentCyan},
		}
		itemWidth := (width - padding*2) / 4
		for i, item := range items {
			ix := padding + float64(i)*itemWidth
			c.text(ix, y, item.label, textMuted, fontTiny)
			c.text(ix+c.sc(36), y, item.value, item.col, fontSmall)
		}
		y += c.sc(20)
	}
	y += c.sc(16)

	c.text(padding, y, "⚡ 配额状态", textPrimary, fontSection)
	y += c.sc(28)

	order, groups := groupAccounts(&p.Quota)
	for _, provider := range order {
		accs := groups[provider]
		provColor := providerColor(provider)
		provName := accs[0].ProviderName
		if provName == "" {
			provName = provider
		}
		provIcon := accs[0].ProviderIcon
		if provIcon == "" {
			provIcon = "📦"
		}

		c.text(padding+c.sc(8), y, provIcon+" "+provName, provColor, fontSmall)
		y += c.sc(22)

		for _, a := range accs {
			dotColor := accentRed
			if a.Active {
				dotColor = accentGreen
			}
			c.statusDot(padding+c.sc(19), y+c.sc(6), c.sc(3), dotColor)
			email := truncateToWidth(fontTiny.f, a.Email, c.sc(200))
			c.text(padding+c.sc(28), y, email, textMuted, fontTiny)
			y += c.sc(16)

			for _, q := range a.Quotas {
				barColor := thresholdColor(float64(q.Percent))

				label := truncateToWidth(fontTiny.f, q.Label, c.sc(144))
				c.text(padding+c.sc(28), y, label, textMuted, fontTiny)

				barX := padding + c.sc(180)
				barW := c.sc(80)
				c.progressBar(barX, y+c.sc(2), barW, c.sc(8), float64(q.Percent), barColor)
				c.text(barX+barW+c.sc(8), y, strconv.Itoa(q.Percent)+"%", barColor, fontTiny)

				if q.ResetTime != "" {
					c.textRight(width-padding, y, q.ResetTime, textMuted, fontTiny)
				}
				y += c.sc(16)
			}
			y += c.sc(6)
		}

		if n := p.Quota.Truncated[provider]; n > 0 {
			c.text(padding+c.sc(28), y, fmt.Sprintf("⋯ 还有 %d 个账号未显示", n), textMuted, fontTiny)
			y += c.sc(18)
		}
		y += c.sc(8)
	}
	y += c.sc(8)

	if slotTotal(p.Today.TimeSlots) > 0 {
		c.text(padding, y, "📈 时段分布", textPrimary, fontSection)
		y += c.sc(28)
		y = c.drawTimeSlots(p.Today.TimeSlots, padding, y, (width-padding*2-c.sc(36))/4, c.sc(12), c.sc(6), fontTiny, fontSmall)
		y += c.sc(8)
	}
	y += c.sc(8)

	if len(analysisLines) > 0 {
		c.text(padding, y, "🤖 AI 智能分析", textPrimary, fontSection)
		y += c.sc(28)

		for _, line := range analysisLines {
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "###"):
				y += c.sc(6)
				c.text(padding+c.sc(8), y, strings.TrimSpace(strings.ReplaceAll(trimmed, "###", "")), accentCyan, fontSmall)
				y += c.sc(18)
			case strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**"):
				c.text(padding+c.sc(8), y, strings.Trim(trimmed, "*"), textPrimary, fontSmall)
				y += c.sc(16)
			case trimmed != "":
				c.text(padding+c.sc(8), y, line, textSecondary, fontTiny)
				y += c.sc(14)
			default:
				y += c.sc(8)
			}
		}
	}
	y += c.sc(16)

	return c.finish(y, c.sc(8))
}
