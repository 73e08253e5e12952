package provider

import (
	"context"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/jlaffaye/ftp"
)

// FTPProvider implements FileProvider for granules served over ftp://
// (legacy archive links still returned by some catalogs)
type FTPProvider struct {
	user  string
	pword string
}

// NewFTPProvider creates a new FileProvider for ftp download links.
// Empty credentials fall back to anonymous login.
func NewFTPProvider(creds common.Credentials) *FTPProvider {
	user, pword := creds.Username, creds.Password
	if user == "" {
		user, pword = "anonymous", "anonymous"
	}
	return &FTPProvider{user: user, pword: pword}
}

// Name implements FileProvider
func (ip *FTPProvider) Name() string {
	return "FTP"
}

// WriteCounter counts the number of bytes written to it. It implements the io.Writer interface
// and we can pass this into io.TeeReader() which will report progress on each write cycle.
type WriteCounter struct {
	total    int64
	written  int64
	lastCall time.Time
	observer ProgressFunc
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += int64(n)
	if wc.observer != nil && time.Since(wc.lastCall) >= time.Second {
		wc.lastCall = time.Now()
		wc.observer(wc.written, wc.total)
	}
	return n, nil
}

// Fetch implements FileProvider
func (ip *FTPProvider) Fetch(ctx context.Context, granule common.Granule, localDir string, opts FetchOptions) (string, error) {
	url, err := neturl.Parse(granule.DownloadURL)
	if err != nil || url.Scheme != "ftp" {
		return "", fmt.Errorf("FTPProvider: not an ftp url: %s", granule.DownloadURL)
	}

	localFile := granuleFilePath(localDir, granule)
	if !opts.Overwrite && alreadyFetched(localFile, granule.Size) {
		return localFile, nil
	}
	if err := os.MkdirAll(localDir, 0766); err != nil {
		return "", ErrDisk{Path: localDir, Err: err}
	}

	host := url.Host
	if !strings.Contains(host, ":") {
		host += ":21"
	}

	// Connection to FTP
	c, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(5*time.Second))
	if err != nil {
		return "", ErrDownload{URL: granule.DownloadURL, Err: fmt.Errorf("Dial: %w", err)}
	}
	defer c.Quit()

	if err = c.Login(ip.user, ip.pword); err != nil {
		return "", ErrDownload{URL: granule.DownloadURL, Err: fmt.Errorf("Login: %w", err)}
	}

	// Get file size
	size, _ := c.FileSize(url.Path)

	// Get file stream
	r, err := c.Retr(url.Path)
	if err != nil {
		return "", ErrDownload{URL: granule.DownloadURL, Err: fmt.Errorf("Retr: %w", err)}
	}
	defer r.Close()

	// Download to a temporary file, rename on success
	tmpFile := tmpFilePath(localDir, granule)
	destFile, err := os.Create(tmpFile)
	if err != nil {
		return "", ErrDisk{Path: tmpFile, Err: err}
	}

	_, err = io.Copy(destFile, io.TeeReader(r, &WriteCounter{total: size, observer: opts.Progress}))
	if cerr := destFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpFile)
		return "", wrapFetchError(granule.DownloadURL, tmpFile, err)
	}
	if opts.Progress != nil {
		opts.Progress(size, size)
	}

	if err := os.Rename(tmpFile, localFile); err != nil {
		os.Remove(tmpFile)
		return "", ErrDisk{Path: localFile, Err: err}
	}
	return localFile, nil
}
