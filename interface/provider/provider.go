package provider

import (
	"context"
	"fmt"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
)

// ProgressFunc receives the transferred and total byte counts of an ongoing
// fetch at a bounded rate. It is cosmetic: a nil observer never changes the
// outcome of a fetch.
type ProgressFunc func(complete, total int64)

// FetchOptions tunes a single fetch
type FetchOptions struct {
	// Overwrite forces a re-download even if the final file already exists
	// with the expected size
	Overwrite bool
	// Unarchive unpacks zipped granules into the destination directory
	Unarchive bool
	// Progress is an optional observer
	Progress ProgressFunc
}

// FileProvider is the interface of a granule download service
type FileProvider interface {
	// Fetch downloads the granule into localDir and returns the local path.
	// The final file only appears on success; partial transfers are never
	// visible under the final name.
	Fetch(ctx context.Context, granule common.Granule, localDir string, opts FetchOptions) (string, error)

	// Name of the provider
	Name() string
}

// ErrGranuleNotFound is an error returned when a granule is not found or available
type ErrGranuleNotFound struct {
	Granule string
}

func (e ErrGranuleNotFound) Error() string {
	return fmt.Sprintf("granule not found or unavailable: %s", e.Granule)
}

// ErrDownload is an error returned on per-file transport failure
type ErrDownload struct {
	URL string
	Err error
}

func (e ErrDownload) Error() string {
	return fmt.Sprintf("download failed [%s]: %v", e.URL, e.Err)
}

func (e ErrDownload) Unwrap() error { return e.Err }

// ErrDisk is an error returned on local write failure
type ErrDisk struct {
	Path string
	Err  error
}

func (e ErrDisk) Error() string {
	return fmt.Sprintf("write failed [%s]: %v", e.Path, e.Err)
}

func (e ErrDisk) Unwrap() error { return e.Err }
