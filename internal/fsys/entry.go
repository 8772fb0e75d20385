package fsys

import (
	"errors"
	"fmt"
)

// Kind is the type of a filesystem entry.
type Kind uint8

const (
	KindDrive Kind = iota
	KindDirectory
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDrive:
		return "drive"
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, kind := range []Kind{KindDrive, KindDirectory, KindFile} {
		if kind.String() == string(text) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf("unknown kind %q", text)
}

// Entry is one filesystem object. Entries are never mutated once produced.
type Entry struct {
	// Path is the full path of the entry.
	Path string `json:"path"`
	// Name is the leaf name of the entry.
	Name string `json:"name"`
	// Kind is the entry type.
	Kind Kind `json:"kind"`
}

var (
	// ErrPermissionDenied reports that a path exists but may not be read.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound reports that a path does not exist.
	ErrNotFound = errors.New("not found")
)

// Provider enumerates and measures filesystem entries.
// Listing methods return full child paths.
type Provider interface {
	LogicalDrives() ([]string, error)
	Directories(path string) ([]string, error)
	Files(path string) ([]string, error)
	Name(path string) string
	FileSize(path string) (uint64, error)
}
