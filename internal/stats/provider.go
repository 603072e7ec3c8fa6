package stats

// ProviderInfo is the display metadata for one credential provider.
type ProviderInfo struct {
	Name          string
	Icon          string
	Color         string
	SupportsQuota bool
}

var providerInfo = map[string]ProviderInfo{
	"antigravity": {Name: "Antigravity", Icon: "🚀", Color: "#8b5cf6", SupportsQuota: true},
	"gemini":      {Name: "GeminiCLI", Icon: "💎", Color: "#3b82f6", SupportsQuota: true},
	"gemini-cli":  {Name: "GeminiCLI", Icon: "💎", Color: "#3b82f6", SupportsQuota: true},
	"claude":      {Name: "Claude", Icon: "🤖", Color: "#f59e0b"},
	"codex":       {Name: "Codex", Icon: "🔮", Color: "#10b981", SupportsQuota: true},
	"iflow":       {Name: "iFlow", Icon: "🌊", Color: "#06b6d4"},
	"qwen":        {Name: "Qwen", Icon: "🌙", Color: "#ec4899"},
}

// lookupProvider returns the display metadata, with a neutral fallback for
// providers the table does not know.
func lookupProvider(provider string) ProviderInfo {
	if info, ok := providerInfo[provider]; ok {
		return info
	}
	return ProviderInfo{Name: titleCase(provider), Icon: "📦", Color: "#6b7280"}
}

// providerDisplay is the short name used on the overview auth section.
func providerDisplay(provider string) string {
	switch provider {
	case "gemini":
		return "Gemini"
	case "claude":
		return "Claude"
	case "codex":
		return "OpenAI/Codex"
	case "antigravity":
		return "Antigravity"
	case "iflow":
		return "iFlow"
	case "qwen":
		return "Qwen"
	}
	return provider
}

// quotaSupported lists the providers whose quota can be queried.
var quotaSupported = map[string]bool{
	"antigravity": true,
	"gemini":      true,
	"gemini-cli":  true,
	"codex":       true,
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
