package service

import (
	"math"
	"time"
)

// RemainingHours computes how many whole hours remain before a user may
// view an ad again. It returns 0 when the ad was never viewed or the
// window has elapsed; otherwise the remaining fractional hours rounded
// half-up. Pure function over the supplied now.
func RemainingHours(lastView *time.Time, cooldownHours int, now time.Time) int {
	if lastView == nil {
		return 0
	}

	remaining := lastView.Add(time.Duration(cooldownHours) * time.Hour).Sub(now)
	if remaining <= 0 {
		return 0
	}

	return int(math.Round(remaining.Hours()))
}
