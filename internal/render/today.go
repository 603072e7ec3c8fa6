package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
)

const todayWidth = 680

const (
	todayModelCap = 15
	todayAuthCap  = 8
)

func todayHeight(p *Today) int {
	h := 240 // title block + metric tiles
	if p.TokenBreakdown != nil {
		h += 80
	}
	if n := len(p.ModelStats); n > 0 {
		if n > todayModelCap {
			n = todayModelCap
		}
		h += 50 + n*36
	}
	if n := len(p.AuthStats); n > 0 {
		if n > todayAuthCap {
			n = todayAuthCap
		}
		h += 50 + n*32
	}
	if len(p.TimeSlots) > 0 {
		h += 120
	}
	h += 60
	return h
}

func (r *Renderer) renderToday(p *Today) image.Image {
	c := newCanvas(todayWidth*r.scale, todayHeight(p)*r.scale, r.scale)

	width := c.w
	padding := c.sc(r.padding)

	fontTitle := c.font(26)
	fontLarge := c.font(36)
	fontSmall := c.font(15)
	fontTiny := c.font(13)

	y := padding

	title := p.Title
	if title == "" {
		title = "今日统计"
	}
	c.text(padding, y, title, textPrimary, fontTitle)

	rateText := fmt.Sprintf("成功率 %s%%", formatPercent(p.SuccessRate))
	c.textRight(width-padding, y+c.sc(8), rateText, thresholdColor(p.SuccessRate), fontSmall)

	c.text(padding, y+c.sc(36), p.Subtitle, textSecondary, fontSmall)
	y += c.sc(70)

	// Three metric tiles: requests, tokens, active models.
	cardWidth := (width - padding*4) / 3
	cardHeight := c.sc(90)
	tiles := []struct {
		label, value string
		col          color.RGBA
	}{
		{"今日请求", strconv.Itoa(p.TodayRequests), accentPurple},
		{"今日 Token", orZero(p.TodayTokens), accentCyan},
		{"活跃模型", strconv.Itoa(len(p.ModelStats)), accentBlue},
	}
	for i, tile := range tiles {
		x := padding + float64(i)*(cardWidth+padding)
		c.roundedRect(x, y, cardWidth, cardHeight, c.sc(14), cardBg, cardBorder, float64(c.scale))
		c.text(x+c.sc(18), y+c.sc(14), tile.label, textSecondary, fontSmall)
		c.text(x+c.sc(18), y+c.sc(40), tile.value, tile.col, fontLarge)
	}
	y += cardHeight + c.sc(20)

	if tb := p.TokenBreakdown; tb != nil {
		c.text(padding, y, "Token 分解", textSecondary, fontSmall)
		y += c.sc(28)

		items := []struct {
			label, value string
			col          color.RGBA
		}{
			{"输入", orZero(tb.Input), accentBlue},
			{"输出", orZero(tb.Output), accentGreen},
			{"推理", orZero(tb.Reasoning), accentPurple},
			{"缓存", orZero(tb.Cached), accentCyan},
		}
		itemWidth := (width - padding*5) / 4
		for i, item := range items {
			x := padding + float64(i)*(itemWidth+padding)
			c.roundedRect(x, y, itemWidth, c.sc(48), c.sc(10), cardBgLight, nil, 0)
			c.text(x+c.sc(12), y+c.sc(8), item.label, textMuted, fontTiny)
			c.text(x+c.sc(12), y+c.sc(26), item.value, item.col, fontSmall)
		}
		y += c.sc(64)
	}

	if len(p.ModelStats) > 0 {
		c.text(padding, y, "各模型详情", textSecondary, fontSmall)
		y += c.sc(30)

		maxRequests := 1
		for _, m := range p.ModelStats {
			if m.Requests > maxRequests {
				maxRequests = m.Requests
			}
		}

		models := p.ModelStats
		if len(models) > todayModelCap {
			models = models[:todayModelCap]
		}
		for _, m := range models {
			name := truncateToWidth(fontSmall.f, m.Name, width-padding*2-c.sc(230))
			c.text(padding+c.sc(10), y, name, textPrimary, fontSmall)

			infoText := fmt.Sprintf("%d 次", m.Requests)
			if m.Failed > 0 {
				infoText += fmt.Sprintf(" | 失败 %d", m.Failed)
			}
			infoText += " | " + orZero(m.Tokens)
			infoW, _ := c.textSize(infoText, fontTiny)

			infoColor := textMuted
			barColor := accentPurple
			if m.Failed > 0 {
				infoColor = accentOrange
				barColor = accentOrange
			}
			c.text(width-padding-infoW-c.sc(10), y+c.sc(3), infoText, infoColor, fontTiny)

			barWidth := c.sc(60)
			barX := width - padding - infoW - barWidth - c.sc(24)
			percent := float64(m.Requests) / float64(maxRequests) * 100
			c.progressBar(barX, y+c.sc(6), barWidth, c.sc(10), percent, barColor)

			y += c.sc(34)
		}
		y += c.sc(12)
	}

	if len(p.AuthStats) > 0 {
		c.text(padding, y, "凭证使用", textSecondary, fontSmall)
		y += c.sc(28)

		auths := p.AuthStats
		if len(auths) > todayAuthCap {
			auths = auths[:todayAuthCap]
		}
		for _, a := range auths {
			id := truncateToWidth(fontTiny.f, a.AuthIndex, width-padding*2-c.sc(220))
			c.text(padding+c.sc(10), y, id, textPrimary, fontTiny)

			infoText := fmt.Sprintf("%d 次 | %s", a.Requests, orZero(a.Tokens))
			if a.Failed > 0 {
				infoText += fmt.Sprintf(" | 失败 %d", a.Failed)
			}
			infoColor := textMuted
			if a.Failed > 0 {
				infoColor = accentOrange
			}
			infoW, _ := c.textSize(infoText, fontTiny)
			c.text(width-padding-infoW-c.sc(10), y+c.sc(2), infoText, infoColor, fontTiny)

			y += c.sc(30)
		}
		y += c.sc(10)
	}

	if slotTotal(p.TimeSlots) > 0 {
		c.text(padding, y, "时段分布", textSecondary, fontSmall)
		y += c.sc(30)
		y = c.drawTimeSlots(p.TimeSlots, padding, y, (width-padding*2-c.sc(36))/4, c.sc(12), c.sc(8), fontTiny, fontTiny)
		y += c.sc(12)
	}

	if p.QueryTime != "" {
		c.textRight(width-padding, y, "🔄 "+p.QueryTime, accentCyan, fontSmall)
		y += c.sc(20)
	}

	return c.finish(y, c.sc(16))
}

var slotColors = [4]color.RGBA{accentBlue, accentCyan, accentPurple, accentOrange}

func slotTotal(slots []TimeSlot) int {
	total := 0
	for _, s := range slots {
		total += s.Count
	}
	return total
}

// drawTimeSlots renders the 4-bucket time-of-day bar chart and returns
// the cursor below it (labels included).
func (c *canvas) drawTimeSlots(slots []TimeSlot, x0, y, slotWidth, gap, radius float64, labelFont, countFont typeface) float64 {
	barHeight := c.sc(60)
	maxCount := 1
	for _, s := range slots {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}

	if len(slots) > 4 {
		slots = slots[:4]
	}
	for i, slot := range slots {
		x := x0 + float64(i)*(slotWidth+gap)
		c.roundedRect(x, y, slotWidth, barHeight, radius, progressBg, nil, 0)

		fillHeight := barHeight * float64(slot.Count) / float64(maxCount)
		if fillHeight > 0 {
			fillRadius := radius
			if fillHeight < c.sc(6) {
				fillRadius = 0 // too thin for rounded caps
			} else if half := fillHeight / 2; fillRadius > half {
				fillRadius = half
			}
			c.roundedRect(x, y+barHeight-fillHeight, slotWidth, fillHeight, fillRadius, slotColors[i], nil, 0)
		}

		label := []rune(slot.Label)
		if len(label) > 4 {
			label = label[:4]
		}
		c.text(x+c.sc(6), y+barHeight+c.sc(8), string(label), textMuted, labelFont)
		c.textRight(x+slotWidth-c.sc(6), y+barHeight+c.sc(8), strconv.Itoa(slot.Count), slotColors[i], countFont)
	}
	return y + barHeight + c.sc(20)
}
