package render

import (
	"fmt"
	"image"
	"strconv"
)

const quotaWidth = 880

// accountHeight is the logical height one account card needs: an
// error-only account is a header plus one line, otherwise header plus two
// lines (label/percent, bar/reset) per quota row.
func accountHeight(a *Account) int {
	if a.Error != "" {
		return 70
	}
	return 48 + len(a.Quotas)*44
}

// accountRow is one row of the responsive 2-column grid. Right is nil for
// a trailing odd account; Height is the max of the pair.
type accountRow struct {
	left, right *Account
	height      int
}

// pairAccounts folds a provider's accounts into grid rows.
func pairAccounts(accs []*Account) []accountRow {
	var rows []accountRow
	for i := 0; i < len(accs); i += 2 {
		row := accountRow{left: accs[i], height: accountHeight(accs[i])}
		if i+1 < len(accs) {
			row.right = accs[i+1]
			if h := accountHeight(row.right); h > row.height {
				row.height = h
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// groupAccounts splits accounts by provider, keeping payload order inside
// each group. Group order follows p.ProviderGroups, with unseen providers
// appended in first-appearance order.
func groupAccounts(p *Quota) ([]string, map[string][]*Account) {
	groups := make(map[string][]*Account)
	var order []string
	seen := make(map[string]bool)
	for _, key := range p.ProviderGroups {
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	for i := range p.Accounts {
		a := &p.Accounts[i]
		if !seen[a.Provider] {
			seen[a.Provider] = true
			order = append(order, a.Provider)
		}
		groups[a.Provider] = append(groups[a.Provider], a)
	}
	// Drop declared groups that ended up empty.
	var present []string
	for _, key := range order {
		if len(groups[key]) > 0 {
			present = append(present, key)
		}
	}
	return present, groups
}

func quotaHeight(p *Quota) int {
	order, groups := groupAccounts(p)
	h := 90
	for _, provider := range order {
		h += 44
		for _, row := range pairAccounts(groups[provider]) {
			h += row.height + 16
		}
		if p.Truncated[provider] > 0 {
			h += 32
		}
		h += 12
	}
	h += 50
	return h
}

func (r *Renderer) renderQuota(p *Quota) image.Image {
	c := newCanvas(quotaWidth*r.scale, quotaHeight(p)*r.scale, r.scale)

	width := c.w
	padding := c.sc(r.padding)
	cardGap := c.sc(16)
	cardWidth := (width - padding*2 - cardGap) / 2

	fontTitle := c.font(24)
	fontSection := c.font(17)
	fontMedium := c.font(15)
	fontSmall := c.font(13)
	fontTiny := c.font(11)

	y := padding

	title := p.Title
	if title == "" {
		title = "OAuth 配额状态"
	}
	c.text(padding, y, title, textPrimary, fontTitle)
	if p.QueryTime != "" {
		c.textRight(width-padding, y+c.sc(6), "⏱️ "+p.QueryTime, accentCyan, fontSmall)
	}
	if p.Subtitle != "" {
		c.text(padding, y+c.sc(36), p.Subtitle, textSecondary, fontSmall)
	}
	y += c.sc(70)

	order, groups := groupAccounts(p)
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

		c.line(padding, y, width-padding, y, float64(2*c.scale), provColor)
		c.text(padding, y+c.sc(10), fmt.Sprintf("%s %s (%d)", provIcon, provName, len(accs)), provColor, fontSection)
		y += c.sc(40)

		for _, row := range pairAccounts(accs) {
			c.accountCard(padding, y, cardWidth, c.sc(accountHeight(row.left)), row.left, fontMedium, fontSmall, fontTiny)
			if row.right != nil {
				c.accountCard(padding+cardWidth+cardGap, y, cardWidth, c.sc(accountHeight(row.right)), row.right, fontMedium, fontSmall, fontTiny)
			}
			y += c.sc(row.height) + c.sc(14)
		}

		if n := p.Truncated[provider]; n > 0 {
			c.text(padding, y, fmt.Sprintf("⋯ 还有 %d 个 %s 账号未显示", n, provName), textMuted, fontSmall)
			y += c.sc(28)
		}
		y += c.sc(8)
	}

	c.text(padding, y, "💡 配额每日自动刷新，百分比为剩余额度", textMuted, fontSmall)
	y += c.sc(24)

	return c.finish(y, c.sc(16))
}

// accountCard draws one account tile: status dot, display name, then
// either the error line or the quota rows (label/percent line followed by
// progress bar and reset time).
func (c *canvas) accountCard(x, y, w, h float64, a *Account, fontMedium, fontSmall, fontTiny typeface) {
	pad := c.sc(14)

	c.roundedRect(x, y, w, h, c.sc(10), cardBg, cardBorder, float64(c.scale))

	dotColor := accentRed
	if a.Active {
		dotColor = accentGreen
	}
	c.statusDot(x+pad+c.sc(5), y+pad+c.sc(7), c.sc(5), dotColor)

	email := truncateToWidth(fontMedium.f, a.Email, w-pad*3-c.sc(10))
	c.text(x+pad+c.sc(16), y+pad, email, textPrimary, fontMedium)

	innerY := y + pad + c.sc(28)

	if a.Error != "" {
		c.text(x+pad, innerY, "⚠️ "+a.Error, accentYellow, fontSmall)
		return
	}

	for _, q := range a.Quotas {
		barColor := thresholdColor(float64(q.Percent))

		label := truncateToWidth(fontSmall.f, q.Label, w-pad*2-c.sc(80))
		c.text(x+pad, innerY, label, textSecondary, fontSmall)
		c.textRight(x+w-pad, innerY, strconv.Itoa(q.Percent)+"%", barColor, fontSmall)
		innerY += c.sc(18)

		barWidth := w - pad*2 - c.sc(100)
		c.progressBar(x+pad, innerY, barWidth, c.sc(10), float64(q.Percent), barColor)
		if q.ResetTime != "" {
			c.textRight(x+w-pad, innerY-c.sc(2), q.ResetTime, textMuted, fontTiny)
		}
		innerY += c.sc(22)
	}
}
