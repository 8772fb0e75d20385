// Package size renders byte counts as short display strings.
package size

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	// KB is the number of bytes in a kilobyte.
	KB = 1024
	// MB is the number of bytes in a megabyte.
	MB = KB * KB
)

// Format converts a byte count to a display string.
//
// Sizes strictly above one megabyte are shown in whole megabytes, sizes strictly
// above one kilobyte in whole kilobytes, anything else in bytes. Division truncates,
// so 1024 renders as "1024 Bytes" and 1048576 as "1,024 KB".
func Format(size uint64) string {
	switch {
	case size > MB:
		return fmt.Sprintf("%s MB", group(size/MB))
	case size > KB:
		return fmt.Sprintf("%s KB", group(size/KB))
	default:
		return fmt.Sprintf("%d Bytes", size)
	}
}

// group inserts thousands separators. Callers only pass quotients of a division by KB,
// which always fit in an int64.
func group(n uint64) string {
	return humanize.Comma(int64(n)) //nolint:gosec // n <= MaxUint64/1024
}
