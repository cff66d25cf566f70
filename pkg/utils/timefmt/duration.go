// Package timefmt renders durations for humans.
package timefmt

import (
	"fmt"
	"strings"
)

// FormatDuration renders seconds as "1 hour, 2 minutes and 3 seconds".
// Zero units are omitted; zero or negative input yields an empty string.
func FormatDuration(totalSeconds int64) string {
	if totalSeconds <= 0 {
		return ""
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var sb strings.Builder
	if hours > 0 {
		sb.WriteString(unit(hours, "hour"))
	}
	if minutes > 0 {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(unit(minutes, "minute"))
	}
	if seconds > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" and ")
		}
		sb.WriteString(unit(seconds, "second"))
	}

	return sb.String()
}

func unit(n int64, name string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
