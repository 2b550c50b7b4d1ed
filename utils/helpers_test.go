package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		decimals int
		want     string
	}{
		{"zero", 0, 2, "0.00 B"},
		{"just below a kilobyte", 1023, 2, "1023.00 B"},
		{"one kilobyte", 1024, 2, "1.00 KB"},
		{"fractional kilobytes", 1536, 1, "1.5 KB"},
		{"one megabyte", 1024 * 1024, 2, "1.00 MB"},
		{"one gigabyte", 1024 * 1024 * 1024, 0, "1 GB"},
		{"one terabyte", 1024 * 1024 * 1024 * 1024, 2, "1.00 TB"},
		{"past the table stays in terabytes", 3 * 1024 * 1024 * 1024 * 1024 * 1024, 2, "3.00 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanSize(tt.size, tt.decimals))
		})
	}
}

func TestHumanSizeUnitChoice(t *testing.T) {
	// The chosen unit is always the largest one keeping the value < 1024.
	sizes := []float64{1, 999, 1024, 4096, 1 << 20, 1 << 30, 1 << 40}
	for _, size := range sizes {
		got := HumanSize(size, 2)
		assert.NotContains(t, got, "1024.00", "size %f rendered as %s", size, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.mp4", "plain.mp4"},
		{"a/b\\c:d", "a_b_c_d"},
		{"what? \"why\" <now> | *", "what_ _why_ _now_ _ _"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}
