package size_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idelchi/dirsize/internal/size"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   uint64
		want string
	}{
		{"zero", 0, "0 Bytes"},
		{"one byte", 1, "1 Bytes"},
		{"exactly one kilobyte stays in bytes", 1024, "1024 Bytes"},
		{"just above one kilobyte", 1025, "1 KB"},
		{"truncates kilobytes", 2047, "1 KB"},
		{"two kilobytes", 2048, "2 KB"},
		{"exactly one megabyte stays in kilobytes", 1_048_576, "1,024 KB"},
		{"just above one megabyte", 1_048_577, "1 MB"},
		{"truncates megabytes", 3*size.MB - 1, "2 MB"},
		{"groups megabytes", 1_234_567 * size.MB, "1,234,567 MB"},
		{"max", math.MaxUint64, "17,592,186,044,415 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, size.Format(tt.in))
		})
	}
}

func TestFormatUsesExactlyOneUnit(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 7, 1023, 1024, 1025, 99_999, 1_048_576, 1_048_577, 5 << 30, math.MaxUint64} {
		got := size.Format(n)

		units := 0
		for _, suffix := range []string{" Bytes", " KB", " MB"} {
			if strings.HasSuffix(got, suffix) {
				units++
			}
		}

		assert.Equal(t, 1, units, "format(%d) = %q", n, got)
		assert.NotContains(t, got, ".", "format(%d) = %q", n, got)
	}
}
