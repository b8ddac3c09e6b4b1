package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingHours(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	hoursAgo := func(h float64) *time.Time {
		ts := now.Add(-time.Duration(h * float64(time.Hour)))
		return &ts
	}

	tests := []struct {
		name          string
		lastView      *time.Time
		cooldownHours int
		expected      int
	}{
		{
			name:          "Never viewed",
			lastView:      nil,
			cooldownHours: 24,
			expected:      0,
		},
		{
			name:          "Window elapsed exactly",
			lastView:      hoursAgo(24),
			cooldownHours: 24,
			expected:      0,
		},
		{
			name:          "Window long elapsed",
			lastView:      hoursAgo(48),
			cooldownHours: 24,
			expected:      0,
		},
		{
			name:          "One hour remaining",
			lastView:      hoursAgo(23),
			cooldownHours: 24,
			expected:      1,
		},
		{
			name:          "Full window remaining",
			lastView:      hoursAgo(0),
			cooldownHours: 24,
			expected:      24,
		},
		{
			name:          "Half hour remaining rounds up",
			lastView:      hoursAgo(23.5),
			cooldownHours: 24,
			expected:      1,
		},
		{
			name:          "Under half hour remaining rounds down",
			lastView:      hoursAgo(23.8),
			cooldownHours: 24,
			expected:      0,
		},
		{
			name:          "Zero cooldown always eligible",
			lastView:      hoursAgo(0),
			cooldownHours: 0,
			expected:      0,
		},
		{
			name:          "Shorter window",
			lastView:      hoursAgo(5),
			cooldownHours: 12,
			expected:      7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemainingHours(tt.lastView, tt.cooldownHours, now))
		})
	}
}
