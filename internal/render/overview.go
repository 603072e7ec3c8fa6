package render

import (
	"fmt"
	"image"
	"strconv"
)

const overviewWidth = 520

// overviewHeight computes the logical canvas height from the payload
// shape before anything is drawn.
func overviewHeight(p *Overview) int {
	h := 320
	if n := len(p.APIs); n > 0 {
		if n > 8 {
			n = 8
		}
		h += 40 + n*36
	}
	if p.AuthInfo != nil {
		h += 60 + len(p.AuthInfo.Providers)*28
	}
	h += 50 // query-time footer
	return h
}

func (r *Renderer) renderOverview(p *Overview) image.Image {
	c := newCanvas(overviewWidth*r.scale, overviewHeight(p)*r.scale, r.scale)

	width := c.w
	padding := c.sc(r.padding)

	fontTitle := c.font(24)
	fontLarge := c.font(28)
	fontMedium := c.font(16)
	fontSmall := c.font(14)
	fontTiny := c.font(12)

	y := padding

	title := p.Title
	if title == "" {
		title = "CLIProxyAPI 统计"
	}
	c.text(padding, y, title, textPrimary, fontTitle)
	y += c.sc(40)

	// Metric tiles: total requests and success rate side by side.
	cardWidth := (width - padding*3) / 2
	cardHeight := c.sc(90)

	c.roundedRect(padding, y, cardWidth, cardHeight, c.sc(12), cardBg, cardBorder, float64(c.scale))
	c.text(padding+c.sc(16), y+c.sc(12), "总请求", textSecondary, fontSmall)
	c.text(padding+c.sc(16), y+c.sc(34), strconv.Itoa(p.TotalRequests), textPrimary, fontLarge)

	cardX2 := padding*2 + cardWidth
	c.roundedRect(cardX2, y, cardWidth, cardHeight, c.sc(12), cardBg, cardBorder, float64(c.scale))
	c.text(cardX2+c.sc(16), y+c.sc(12), "成功率", textSecondary, fontSmall)
	c.text(cardX2+c.sc(16), y+c.sc(34), formatPercent(p.SuccessRate)+"%", thresholdColor(p.SuccessRate), fontLarge)

	y += cardHeight + c.sc(16)

	// Token total and success/failure split share one wide tile.
	c.roundedRect(padding, y, width-padding*2, c.sc(70), c.sc(12), cardBg, cardBorder, float64(c.scale))
	c.text(padding+c.sc(16), y+c.sc(12), "总 Token", textSecondary, fontSmall)
	c.text(padding+c.sc(16), y+c.sc(32), orZero(p.TotalTokens), accentCyan, fontMedium)

	midX := width/2 + c.sc(20)
	c.text(midX, y+c.sc(12), "成功 / 失败", textSecondary, fontSmall)
	successText := strconv.Itoa(p.SuccessCount)
	c.text(midX, y+c.sc(32), successText, accentGreen, fontMedium)
	successW, _ := c.textSize(successText, fontMedium)
	c.text(midX+successW, y+c.sc(32), fmt.Sprintf(" / %d", p.FailureCount), accentRed, fontMedium)

	y += c.sc(86)

	if len(p.APIs) > 0 {
		c.text(padding, y, "各接口统计", textSecondary, fontSmall)
		y += c.sc(28)

		maxRequests := 1
		for _, api := range p.APIs {
			if api.Requests > maxRequests {
				maxRequests = api.Requests
			}
		}

		for _, api := range capAPIs(p.APIs, 8) {
			name := truncateToWidth(fontSmall.f, api.Name, width-padding*2-c.sc(200))
			c.text(padding+c.sc(8), y, name, textPrimary, fontSmall)

			infoText := fmt.Sprintf("%d 次 / %s", api.Requests, orZero(api.Tokens))
			infoW, _ := c.textSize(infoText, fontTiny)
			c.text(width-padding-infoW-c.sc(8), y+c.sc(2), infoText, textMuted, fontTiny)

			barWidth := c.sc(60)
			barX := width - padding - infoW - barWidth - c.sc(20)
			percent := float64(api.Requests) / float64(maxRequests) * 100
			c.progressBar(barX, y+c.sc(6), barWidth, c.sc(8), percent, accentBlue)

			y += c.sc(32)
		}
		y += c.sc(8)
	}

	if p.AuthInfo != nil {
		c.text(padding, y, fmt.Sprintf("OAuth 账号 (%d/%d 可用)", p.AuthInfo.Active, p.AuthInfo.Total), textSecondary, fontSmall)
		y += c.sc(28)

		for _, prov := range p.AuthInfo.Providers {
			statusColor := accentRed
			switch {
			case prov.Active == prov.Total:
				statusColor = accentGreen
			case prov.Active > 0:
				statusColor = accentYellow
			}
			c.statusDot(padding+c.sc(12), y+c.sc(8), c.sc(4), statusColor)
			c.text(padding+c.sc(24), y, fmt.Sprintf("%s: %d/%d", prov.Name, prov.Active, prov.Total), textPrimary, fontSmall)
			y += c.sc(26)
		}
	}

	if p.QueryTime != "" {
		y += c.sc(8)
		c.textRight(width-padding, y, "🔄 查询时间: "+p.QueryTime, accentCyan, fontSmall)
		y += c.sc(20)
	}

	return c.finish(y, c.sc(16))
}

// capAPIs bounds the drawn rows without re-sorting (ranking is upstream).
func capAPIs(apis []APIStat, max int) []APIStat {
	if len(apis) > max {
		return apis[:max]
	}
	return apis
}

// formatPercent renders a rate with up to one decimal, trimming ".0".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
