package stats

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// FormatTokens renders a token count compactly: 1.23M, 45.30K, or the
// plain number below a thousand.
func FormatTokens(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.2fK", float64(tokens)/1_000)
	default:
		return strconv.FormatInt(tokens, 10)
	}
}

// FormatResetTime converts an RFC3339 quota reset time to local
// "01/02 15:04". Unparseable values pass through clipped to 16 chars.
func FormatResetTime(resetTime string) string {
	if resetTime == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, resetTime)
	if err != nil {
		if utf8.RuneCountInString(resetTime) > 16 {
			return string([]rune(resetTime)[:16])
		}
		return resetTime
	}
	return t.Local().Format("01/02 15:04")
}

// FormatCodexResetTime converts a unix-seconds reset time the same way.
func FormatCodexResetTime(resetAt int64) string {
	if resetAt == 0 {
		return "-"
	}
	return time.Unix(resetAt, 0).Format("01/02 15:04")
}

// truncateDisplay clips an account display name to 30 runes.
func truncateDisplay(s string) string {
	r := []rune(s)
	if len(r) > 30 {
		return string(r[:27]) + "..."
	}
	return s
}
