// Package fsys is the filesystem collaborator used by the size aggregator.
//
// It enumerates drives, directories and files and reads file sizes. Failures are
// classified as ErrPermissionDenied or ErrNotFound so callers can decide how much
// of a listing they are willing to lose.
package fsys
