package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cavaliercoder/grab"
	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/service"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mholt/archiver"
)

// granuleFilePath returns the final path of the granule in the destination directory
func granuleFilePath(dir string, granule common.Granule) string {
	return filepath.Join(dir, granule.Name)
}

// tmpFilePath returns a unique hidden path in the destination directory.
// The temporary file lives on the same filesystem as the final file so that
// the closing rename is atomic.
func tmpFilePath(dir string, granule common.Granule) string {
	return filepath.Join(dir, "."+granule.Name+"."+uuid.New().String()+".part")
}

// alreadyFetched returns true if the final file exists and matches the
// expected size (existence only when the size is unknown)
func alreadyFetched(path string, size int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return size == 0 || info.Size() == size
}

func displayProgress(ctx context.Context, prefix string, resp *grab.Response, progressPeriod float64, observer ProgressFunc) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	progress, lastBytes, seconds := 0.0, int64(0), int64(0)
	for {
		select {
		case <-t.C:
			seconds++
			if observer != nil {
				observer(resp.BytesComplete(), resp.Size)
			}
			if resp.Progress() > progress {
				log.Logger(ctx).Sugar().Debugf("%s: %.2f%% %s/%s (%s/s)", prefix, 100*resp.Progress(),
					humanize.IBytes(uint64(resp.BytesComplete())), humanize.IBytes(uint64(resp.Size)),
					humanize.IBytes(uint64((resp.BytesComplete()-lastBytes)/seconds)))
				seconds = 0
				progress += progressPeriod
				lastBytes = resp.BytesComplete()
			}

		case <-resp.Done:
			if observer != nil {
				observer(resp.BytesComplete(), resp.Size)
			}
			return
		}
	}
}

// downloadWithAuth streams the granule to a temporary file in localDir and
// atomically renames it to the final name on success. The temporary file is
// removed on failure.
func downloadWithAuth(ctx context.Context, granule common.Granule, localDir, providerName string, user, pword *string, headerKey string, headerValue *string, copyAuthOnRedirect bool, opts FetchOptions) (string, error) {
	localFile := granuleFilePath(localDir, granule)
	if !opts.Overwrite && alreadyFetched(localFile, granule.Size) {
		log.Logger(ctx).Sugar().Infof("%s already downloaded, skipping", granule.Name)
		return localFile, nil
	}

	if err := os.MkdirAll(localDir, 0766); err != nil {
		return "", ErrDisk{Path: localDir, Err: err}
	}

	tmpFile := tmpFilePath(localDir, granule)
	req, err := grab.NewRequest(tmpFile, granule.DownloadURL)
	if err != nil {
		return "", ErrDownload{URL: granule.DownloadURL, Err: fmt.Errorf("NewRequest: %w", err)}
	}
	req = req.WithContext(ctx)

	// If Basic Auth
	if user != nil && pword != nil {
		req.HTTPRequest.SetBasicAuth(*user, *pword)
	}

	// If key/val Auth
	if headerValue != nil {
		req.HTTPRequest.Header.Add(headerKey, *headerValue)
	}

	if err := download(ctx, req, providerName+":"+granule.Name, copyAuthOnRedirect, opts.Progress); err != nil {
		os.Remove(tmpFile)
		return "", wrapFetchError(granule.DownloadURL, tmpFile, err)
	}

	if opts.Unarchive && strings.HasSuffix(strings.ToLower(granule.Name), ".zip") {
		defer os.Remove(tmpFile)
		if err := unarchive(tmpFile, localDir); err != nil {
			return "", fmt.Errorf("downloadWithAuth.Unarchive: %w", err)
		}
		return localDir, nil
	}

	if err := os.Rename(tmpFile, localFile); err != nil {
		os.Remove(tmpFile)
		return "", ErrDisk{Path: localFile, Err: err}
	}
	return localFile, nil
}

func checkRedirectAndCopyAuth(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	if auth, ok := via[0].Header["Authorization"]; ok {
		req.Header.Add("Authorization", auth[0])
	}
	return nil
}

// download a file with display every 5%
func download(ctx context.Context, req *grab.Request, displayPrefix string, copyAuthOnRedirect bool, observer ProgressFunc) error {
	client := grab.NewClient()
	if copyAuthOnRedirect {
		client.HTTPClient.CheckRedirect = checkRedirectAndCopyAuth
	}
	resp := client.Do(req)

	displayProgress(ctx, displayPrefix, resp, 0.05, observer)

	if err := resp.Err(); err != nil {
		err = fmt.Errorf("download[%s]: %w", req.URL(), err)
		if resp.HTTPResponse == nil {
			return service.MakeTemporary(err)
		}
		switch resp.HTTPResponse.StatusCode {
		case 404, 410:
			return ErrGranuleNotFound{Granule: req.URL().String()}
		case 408, 429, 500, 501, 502, 503, 504:
			return service.MakeTemporary(err)
		default:
			return err
		}
	}
	return nil
}

// wrapFetchError sorts a fetch failure into a disk or a transport error
func wrapFetchError(url, path string, err error) error {
	var perr *os.PathError
	if errors.As(err, &perr) {
		return ErrDisk{Path: path, Err: err}
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ENOSPC {
		return ErrDisk{Path: path, Err: err}
	}
	return ErrDownload{URL: url, Err: err}
}

// unarchive file with basic check. All errors are temporary.
func unarchive(localZip, localDir string) error {
	tmpdir, err := os.MkdirTemp(localDir, filepath.Base(localZip))
	if err != nil {
		return service.MakeTemporary(err)
	}
	defer os.RemoveAll(tmpdir)
	if err := archiver.Unarchive(localZip, tmpdir); err != nil {
		return service.MakeTemporary(err)
	}
	files, err := os.ReadDir(tmpdir)
	if err != nil {
		return service.MakeTemporary(err)
	}
	if len(files) == 0 {
		return service.MakeTemporary(fmt.Errorf("empty zip"))
	}
	for _, f := range files {
		os.Rename(filepath.Join(tmpdir, f.Name()), filepath.Join(localDir, f.Name()))
	}
	return nil
}
