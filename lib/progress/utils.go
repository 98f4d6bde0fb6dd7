// Package progress provides utility functions for progress calculation and tracking.
package progress

import (
	"fmt"
	"time"
)

const (
	percentageMultiplier = 100 // Multiplier to convert decimal to percentage
)

// CalculatePercentage calculates the percentage of a given value relative to a total, formatted to two decimal places.
// It returns "0.00%" if the total is zero to prevent division by zero errors.
func CalculatePercentage(value, total float64) string {
	if total == 0 {
		return "0.00%"
	}

	percentage := (value / total) * percentageMultiplier

	return fmt.Sprintf("%.2f%%", percentage)
}

// Rate returns count per second over elapsed. It returns 0 when elapsed is not positive.
func Rate(count uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}

	return float64(count) / elapsed.Seconds()
}

// FormatDuration renders an elapsed time as "12.34s", "3m 7.5s" or "1h 2m 3s".
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()

	switch {
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 3600:
		mins := int(seconds / 60)
		return fmt.Sprintf("%dm %.1fs", mins, seconds-float64(mins*60))
	default:
		hours := int(seconds / 3600)
		rest := seconds - float64(hours*3600)
		mins := int(rest / 60)
		return fmt.Sprintf("%dh %dm %.0fs", hours, mins, rest-float64(mins*60))
	}
}
