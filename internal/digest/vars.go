package digest

import (
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for template strings
// used in config-provided text fields (e.g., title, preface, postscript).
//
// Supported variables:
// - {.CurrentDate} => formatted as YYYY-MM-DD (UTC)
// - {.Channel}     => the digest channel name
func ExpandVars(s, channel string, now time.Time) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	out := strings.ReplaceAll(s, "{.CurrentDate}", now.UTC().Format("2006-01-02"))
	out = strings.ReplaceAll(out, "{.Channel}", channel)
	return out
}
