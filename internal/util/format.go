package util //nolint:revive // package name util hosts shared formatting helpers used across display surfaces

import (
	"fmt"
	"strings"
	"time"
)

// FormatProcessingDuration formats a time.Duration for display, handling edge cases.
// Returns "—" for zero or negative durations, truncates to milliseconds for readability.
func FormatProcessingDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "—"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}

// FormatNumber renders n with comma thousands separators.
func FormatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// FormatCurrency renders an amount with a currency symbol and two decimal
// places, e.g. FormatCurrency(1234.5, "USD") == "$1,234.50". Unrecognized
// currency codes are prefixed verbatim.
func FormatCurrency(amount float64, currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := int64(amount)
	cents := int64(amount*100+0.5) - whole*100
	if cents >= 100 {
		whole++
		cents -= 100
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, FormatNumber(whole), cents)
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatRelativeTime describes how long ago t was, e.g. "2 hours ago".
// Times in the future or less than a minute old read "just now".
func FormatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}
	switch {
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month")
	default:
		return plural(int(diff/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatBytes renders a byte count using binary multiples, rounded to two
// decimal places, e.g. FormatBytes(1536) == "1.5 KB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(bytes)
	idx := -1
	for value >= unit && idx < len(units)-1 {
		value /= unit
		idx++
	}
	s := fmt.Sprintf("%.2f", value)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + " " + units[idx]
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. A max below one returns the empty string.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Capitalize upper-cases the first rune and lower-cases the remainder.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// Slugify lowercases s and collapses runs of whitespace, underscores and
// hyphens into single hyphens, dropping every other non-word rune.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '_' || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}
