package downloader

import (
	"context"
	"fmt"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/provider"
	"github.com/ductran27/LIS-landsurface-toolkit/service"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/go-spatial/geom/encoding/geojson"
	"golang.org/x/sync/errgroup"
)

// Downloader is the capability interface shared by all data-source
// downloaders (MODIS today; SMAP, ERA5, SRTM are future variants)
type Downloader interface {
	// ListProducts returns the registered products in a stable order
	ListProducts() []common.Product

	// GetProductInfo returns the descriptor of a registered product code
	GetProductInfo(code string) (common.Product, error)

	// DownloadProduct searches the catalog for granules matching the product,
	// bounding box and date range, downloads them to opts.OutputDir and
	// returns the local paths in search order
	DownloadProduct(ctx context.Context, product string, bbox common.BoundingBox, startDate, endDate string, opts Options) (Result, error)
}

// Options tunes a DownloadProduct call
type Options struct {
	// OutputDir is the destination directory. A per-product subdirectory is
	// created when empty.
	OutputDir string
	// AOI optionally refines the search to a polygon inside the bounding box
	AOI *geojson.Geometry
	// MaxFiles caps the number of granules to fetch (0 = no cap),
	// preserving search order
	MaxFiles int
	// Overwrite re-fetches granules whose final file already exists
	Overwrite bool
	// Unarchive unpacks zipped granules
	Unarchive bool
	// AbortOnError stops at the first failed granule instead of the
	// best-effort default of recording the failure and continuing
	AbortOnError bool
	// Concurrency is the fixed number of parallel fetches (<=1 = sequential)
	Concurrency int
	// Progress is an optional transfer observer
	Progress provider.ProgressFunc
}

// Failure records one granule that could not be fetched
type Failure struct {
	Granule common.Granule `json:"granule"`
	Err     error          `json:"-"`
	Message string         `json:"error"`
}

// Result is the outcome of a bulk download. Paths holds the files actually
// written, ordered by search order; Failures the granules that failed.
type Result struct {
	Paths    []string  `json:"paths"`
	Failures []Failure `json:"failures,omitempty"`
}

// FetchGranules downloads the granules with the first successful provider,
// sequentially or with a fixed number of workers. The result preserves the
// granule order regardless of completion order. Unless opts.AbortOnError is
// set, a failed granule is recorded and the remaining ones are still fetched.
func FetchGranules(ctx context.Context, fileProviders []provider.FileProvider, granules []common.Granule, localDir string, opts Options) (Result, error) {
	if len(fileProviders) == 0 {
		return Result{}, fmt.Errorf("FetchGranules: no file provider configured")
	}

	fetchOpts := provider.FetchOptions{Overwrite: opts.Overwrite, Unarchive: opts.Unarchive, Progress: opts.Progress}
	paths := make([]string, len(granules))
	errs := make([]error, len(granules))

	g, gctx := errgroup.WithContext(ctx)
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i, granule := range granules {
		g.Go(func() error {
			log.Logger(gctx).Sugar().Infof("downloading %s (%d/%d)", granule.Name, i+1, len(granules))
			paths[i], errs[i] = fetchGranule(gctx, fileProviders, granule, localDir, fetchOpts)
			if errs[i] != nil && opts.AbortOnError {
				return errs[i]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("FetchGranules.%w", err)
	}

	result := Result{}
	for i, granule := range granules {
		if errs[i] != nil {
			log.Logger(ctx).Sugar().Warnf("failed to download %s: %v", granule.Name, errs[i])
			result.Failures = append(result.Failures, Failure{Granule: granule, Err: errs[i], Message: errs[i].Error()})
			continue
		}
		result.Paths = append(result.Paths, paths[i])
	}
	return result, nil
}

// fetchGranule downloads with the first successful provider
func fetchGranule(ctx context.Context, fileProviders []provider.FileProvider, granule common.Granule, localDir string, opts provider.FetchOptions) (string, error) {
	var err error
	for _, fileProvider := range fileProviders {
		path, e := fileProvider.Fetch(ctx, granule, localDir, opts)
		if err = service.MergeErrors(false, err, e); err == nil {
			return path, nil
		}
		log.Logger(ctx).Sugar().Debugf("%s: %v", fileProvider.Name(), e)
	}
	return "", err
}
