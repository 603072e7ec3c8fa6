package render

import "image/color"

// Dark card palette.
var (
	bgGradientStart = color.RGBA{24, 32, 48, 255}
	bgGradientEnd   = color.RGBA{12, 18, 32, 255}
	cardBg          = color.RGBA{38, 50, 72, 255}
	cardBgLight     = color.RGBA{48, 62, 88, 255}
	cardBorder      = color.RGBA{58, 75, 100, 255}
	textPrimary     = color.RGBA{248, 250, 252, 255}
	textSecondary   = color.RGBA{156, 172, 196, 255}
	textMuted       = color.RGBA{108, 126, 152, 255}
	accentBlue      = color.RGBA{66, 138, 255, 255}
	accentGreen     = color.RGBA{52, 211, 120, 255}
	accentYellow    = color.RGBA{250, 190, 40, 255}
	accentOrange    = color.RGBA{255, 128, 48, 255}
	accentRed       = color.RGBA{248, 80, 80, 255}
	accentPurple    = color.RGBA{178, 102, 255, 255}
	accentCyan      = color.RGBA{56, 220, 248, 255}
	accentIndigo    = color.RGBA{108, 112, 255, 255}
	accentPink      = color.RGBA{248, 96, 168, 255}
	progressBg      = color.RGBA{28, 36, 52, 255}
	dividerColor    = color.RGBA{58, 75, 100, 255}
)

// providerColors keys accent colors by credential provider.
var providerColors = map[string]color.RGBA{
	"antigravity": accentPurple,
	"gemini":      accentIndigo,
	"gemini-cli":  accentIndigo,
	"claude":      accentOrange,
	"codex":       {52, 200, 140, 255},
	"iflow":       {56, 200, 224, 255},
	"qwen":        accentPink,
}

func providerColor(provider string) color.RGBA {
	if c, ok := providerColors[provider]; ok {
		return c
	}
	return accentBlue
}

// thresholdColor maps a percentage to the shared 4-tier scale. It applies
// to every percent-driven color on the cards: remaining quota and success
// rates alike. The upper boundary is inclusive (80 is healthy).
func thresholdColor(percent float64) color.RGBA {
	switch {
	case percent >= 80:
		return accentGreen
	case percent >= 50:
		return accentYellow
	case percent >= 20:
		return accentOrange
	default:
		return accentRed
	}
}
