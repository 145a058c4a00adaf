package cli

import (
	"fmt"
	"time"

	"tradeplan/pkg/utils"
)

// FormatDate formats a date for display.
func FormatDate(t time.Time) string {
	return t.Local().Format("02-Jan-2006")
}

// FormatDateTime formats a datetime for display.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04")
}

// FormatAge formats how long ago a timestamp was.
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return utils.FormatDuration(time.Since(t)) + " ago"
}

// FormatRiskReward formats a risk-reward ratio.
func FormatRiskReward(rr float64) string {
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatSize formats a frozen position size.
func FormatSize(size float64) string {
	return utils.FormatAmount(size)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
