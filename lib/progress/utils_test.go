package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestCalculatePercentage tests the CalculatePercentage function.
func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected string
	}{
		{
			name:     "50% progress",
			value:    50,
			total:    100,
			expected: "50.00%",
		},
		{
			name:     "25% progress",
			value:    25,
			total:    100,
			expected: "25.00%",
		},
		{
			name:     "0% progress",
			value:    0,
			total:    100,
			expected: "0.00%",
		},
		{
			name:     "100% progress",
			value:    100,
			total:    100,
			expected: "100.00%",
		},
		{
			name:     "division by zero - returns 0.00%",
			value:    50,
			total:    0,
			expected: "0.00%",
		},
		{
			name:     "fractional percentage",
			value:    33.33,
			total:    100,
			expected: "33.33%",
		},
		{
			name:     "value greater than total",
			value:    150,
			total:    100,
			expected: "150.00%",
		},
		{
			name:     "very small values",
			value:    0.01,
			total:    1,
			expected: "1.00%",
		},
		{
			name:     "large numbers",
			value:    1000000,
			total:    10000000,
			expected: "10.00%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		count    uint64
		elapsed  time.Duration
		expected float64
	}{
		{name: "zero elapsed", count: 100, elapsed: 0, expected: 0},
		{name: "negative elapsed", count: 100, elapsed: -time.Second, expected: 0},
		{name: "one per second", count: 10, elapsed: 10 * time.Second, expected: 1},
		{name: "fractional second", count: 50, elapsed: 500 * time.Millisecond, expected: 100},
		{name: "no attempts", count: 0, elapsed: time.Second, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Rate(tt.count, tt.elapsed), 1e-9)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "zero", d: 0, expected: "0.00s"},
		{name: "seconds", d: 12500 * time.Millisecond, expected: "12.50s"},
		{name: "minutes", d: 187500 * time.Millisecond, expected: "3m 7.5s"},
		{name: "exact minute", d: time.Minute, expected: "1m 0.0s"},
		{name: "hours", d: time.Hour + 2*time.Minute + 3*time.Second, expected: "1h 2m 3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}
