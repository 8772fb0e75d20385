package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dirsize/internal/aggregate"
	"github.com/idelchi/dirsize/internal/catalog"
	"github.com/idelchi/dirsize/internal/fsys"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Row is one listed entry as rendered.
type Row struct {
	fsys.Entry

	// Size is the size in bytes, zero while unresolved.
	Size uint64 `json:"size"`
	// Label is the display size.
	Label string `json:"label"`
	// Resolved reports whether Size is known.
	Resolved bool `json:"resolved"`
}

// Listing is the rendered result of one run.
type Listing struct {
	// Path is the listed location, empty for drives.
	Path string `json:"path"`
	// Rows holds directories and drives first, then files.
	Rows []Row `json:"entries"`
	// TotalBytes is the sum of all resolved sizes.
	TotalBytes uint64 `json:"total_bytes"`
	// Scanned holds the walker counters.
	Scanned aggregate.Progress `json:"scanned"`
	// Elapsed is the total time taken.
	Elapsed time.Duration `json:"elapsed"`
}

func newListing(path string, items []catalog.Item, progress aggregate.Progress, elapsed time.Duration) *Listing {
	listing := &Listing{
		Path:    path,
		Rows:    make([]Row, 0, len(items)),
		Scanned: progress,
		Elapsed: elapsed,
	}

	for _, item := range items {
		size, ok := item.Size.Size()

		listing.Rows = append(listing.Rows, Row{
			Entry:    item.Entry,
			Size:     size,
			Label:    item.Size.Label(),
			Resolved: ok,
		})

		listing.TotalBytes += size
	}

	return listing
}

// PrintJSON outputs the listing in JSON format.
func PrintJSON(listing *Listing, writer io.Writer) error {
	data, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTSV outputs one "kind<TAB>label<TAB>path" line per entry, for piping into other tools.
func PrintTSV(listing *Listing, writer io.Writer) error {
	for _, row := range listing.Rows {
		if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\n", row.Kind, row.Label, row.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs the listing in human-readable table format.
func PrintTable(listing *Listing, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	if listing.Path == "" {
		fmt.Fprintln(w, "\nDrives:\t\t")
	} else {
		fmt.Fprintf(w, "\n%s:\t\t\n", listing.Path)
	}

	for _, row := range listing.Rows {
		pct := 0.0
		if listing.TotalBytes > 0 {
			pct = 100.0 * float64(row.Size) / float64(listing.TotalBytes)
		}

		fmt.Fprintf(w, "  %s\t%s\t%s (%.1f%%)\n", row.Name, row.Kind, row.Label, pct)
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Entries:\t%d\n", len(listing.Rows))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(listing.TotalBytes), listing.TotalBytes)
	fmt.Fprintf(w, "Files scanned:\t%d\n", listing.Scanned.Files)

	if listing.Scanned.Errors > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d\n", listing.Scanned.Errors)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", listing.Elapsed)

	return w.Flush()
}
