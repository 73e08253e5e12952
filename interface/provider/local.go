package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
)

// LocalProvider implements FileProvider for a local mirror of the archive
// (e.g. a pre-populated disk or a mounted share)
type LocalProvider struct {
	path string
}

// NewLocalProvider creates a new FileProvider from local storage
func NewLocalProvider(path string) *LocalProvider {
	return &LocalProvider{path: path}
}

// Name implements FileProvider
func (ip *LocalProvider) Name() string {
	return "FileSystem (" + ip.path + ")"
}

// Fetch implements FileProvider
func (ip *LocalProvider) Fetch(ctx context.Context, granule common.Granule, localDir string, opts FetchOptions) (string, error) {
	src := filepath.Join(ip.path, granule.Name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", ErrGranuleNotFound{Granule: granule.Name}
		}
		return "", fmt.Errorf("LocalProvider: %w", err)
	}

	localFile := granuleFilePath(localDir, granule)
	if !opts.Overwrite && alreadyFetched(localFile, granule.Size) {
		return localFile, nil
	}
	if err := os.MkdirAll(localDir, 0766); err != nil {
		return "", ErrDisk{Path: localDir, Err: err}
	}

	tmpFile := tmpFilePath(localDir, granule)
	if err := fileCopy(src, tmpFile); err != nil {
		os.Remove(tmpFile)
		return "", fmt.Errorf("LocalProvider.%w", err)
	}
	if err := os.Rename(tmpFile, localFile); err != nil {
		os.Remove(tmpFile)
		return "", ErrDisk{Path: localFile, Err: err}
	}
	return localFile, nil
}

// fileCopy copies a single file from src to dst
func fileCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fileCopy.Open: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return ErrDisk{Path: dst, Err: err}
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return ErrDisk{Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return ErrDisk{Path: dst, Err: err}
	}
	return nil
}
