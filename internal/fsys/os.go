package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/shirou/gopsutil/v3/disk"
)

// OS is a Provider backed by the local filesystem.
// Symbolic links are neither followed nor reported.
type OS struct{}

// LogicalDrives returns the mount points of all physical partitions, sorted.
// When none can be discovered the filesystem root is returned.
func (OS) LogicalDrives() ([]string, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	drives := make([]string, 0, len(partitions))

	for _, p := range partitions {
		if !slices.Contains(drives, p.Mountpoint) {
			drives = append(drives, p.Mountpoint)
		}
	}

	if len(drives) == 0 {
		drives = append(drives, root())
	}

	slices.Sort(drives)

	return drives, nil
}

// Directories returns the subdirectories directly under path.
func (OS) Directories(path string) ([]string, error) {
	return list(path, "directories", fs.DirEntry.IsDir)
}

// Files returns the regular files directly under path.
func (OS) Files(path string) ([]string, error) {
	return list(path, "files", func(d fs.DirEntry) bool { return d.Type().IsRegular() })
}

// Name returns the leaf name of path. Roots are returned unchanged.
func (OS) Name(path string) string {
	clean := filepath.Clean(path)
	if clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return clean
	}

	return filepath.Base(clean)
}

// FileSize returns the size of the file at path.
func (OS) FileSize(path string) (uint64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, classify("reading size of", path, err)
	}

	return uint64(info.Size()), nil //nolint:gosec // Sizes reported by the OS are never negative
}

func list(path, what string, keep func(fs.DirEntry) bool) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, classify("listing "+what+" of", path, err)
	}

	paths := make([]string, 0, len(entries))

	for _, e := range entries {
		if keep(e) {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}

	return paths, nil
}

// classify wraps err with the matching sentinel so callers can use errors.Is
// with both ErrPermissionDenied/ErrNotFound and the underlying fs errors.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %q: %w: %w", op, path, ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %q: %w: %w", op, path, ErrNotFound, err)
	default:
		return fmt.Errorf("%s %q: %w", op, path, err)
	}
}

func root() string {
	if wd, err := os.Getwd(); err == nil {
		if vol := filepath.VolumeName(wd); vol != "" {
			return vol + string(filepath.Separator)
		}
	}

	return string(filepath.Separator)
}
