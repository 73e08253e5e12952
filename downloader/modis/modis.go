// Package modis downloads MODIS land products from the NASA Earthdata
// archive: granules are searched in the CMR catalog and fetched over the
// Earthdata URS-authenticated links.
//
// Register at https://urs.earthdata.nasa.gov for credentials.
package modis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/catalog"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/catalog/cmr"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/provider"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"go.uber.org/zap"
)

// DefaultOutputDir is the destination when no output directory is given
const DefaultOutputDir = "./data/modis"

// Downloader implements downloader.Downloader for MODIS land products.
// It is not safe for concurrent use from multiple goroutines.
type Downloader struct {
	// Catalog is the granule search service (the NASA CMR by default)
	Catalog catalog.GranuleProvider
	// Providers are tried in order until one serves the granule
	Providers []provider.FileProvider
	// OutputDir is the root of the per-product destination directories
	OutputDir string

	creds common.Credentials
}

// NewDownloader creates a MODIS downloader. Empty credentials are resolved
// from the EARTHDATA_* environment variables; a missing credential is not an
// error until a network operation requires it, so that a downloader without
// credentials can still serve product metadata.
func NewDownloader(username, password string) *Downloader {
	d := &Downloader{OutputDir: DefaultOutputDir}
	d.SetCredentials(username, password)
	return d
}

// SetCredentials updates the authentication material and rebuilds the
// catalog and the file providers
func (d *Downloader) SetCredentials(username, password string) {
	d.creds = common.ResolveCredentials(username, password)
	d.Catalog = cmr.NewProvider(d.creds)
	d.Providers = []provider.FileProvider{
		provider.NewEarthdataProvider(d.creds),
		provider.NewFTPProvider(d.creds),
	}
}

// ListProducts implements downloader.Downloader
func (d *Downloader) ListProducts() []common.Product {
	list := make([]common.Product, len(products))
	copy(list, products)
	return list
}

// GetProductInfo implements downloader.Downloader
func (d *Downloader) GetProductInfo(code string) (common.Product, error) {
	product, ok := productsByCode[code]
	if !ok {
		return common.Product{}, common.ErrUnknownProduct{Code: code}
	}
	return product, nil
}

// DownloadProduct implements downloader.Downloader.
// Inputs are validated before any network call; per-granule failures are
// recorded in the result and do not abort the bulk download unless
// opts.AbortOnError is set.
func (d *Downloader) DownloadProduct(ctx context.Context, product string, bbox common.BoundingBox, startDate, endDate string, opts downloader.Options) (downloader.Result, error) {
	// Validate inputs, no network is touched on failure
	if _, err := d.GetProductInfo(product); err != nil {
		return downloader.Result{}, err
	}
	if err := bbox.Validate(); err != nil {
		return downloader.Result{}, err
	}
	dates, err := common.ParseDateRange(startDate, endDate)
	if err != nil {
		return downloader.Result{}, err
	}

	// Resolve credentials before querying
	if d.creds.Empty() {
		return downloader.Result{}, catalog.ErrAuthentication{
			Reason: fmt.Sprintf("no credentials: pass them explicitly or set %s and %s", common.EnvUsername, common.EnvPassword),
		}
	}

	ctx = log.With(ctx, zap.String("product", product))
	log.Logger(ctx).Sugar().Infof("searching %s granules, area %s, period %s to %s", product, bbox,
		dates.Start.Format("2006-01-02"), dates.End.Format("2006-01-02"))

	granules, err := d.Catalog.SearchGranules(ctx, catalog.Query{Product: product, BBox: bbox, AOI: opts.AOI, Dates: dates})
	if err != nil {
		return downloader.Result{}, fmt.Errorf("DownloadProduct.%w", err)
	}
	if len(granules) == 0 {
		log.Logger(ctx).Warn("no granules found for the specified parameters")
		return downloader.Result{}, nil
	}
	log.Logger(ctx).Sugar().Infof("found %d granules", len(granules))

	// Cap the number of files, preserving search order
	if opts.MaxFiles > 0 && len(granules) > opts.MaxFiles {
		log.Logger(ctx).Sugar().Infof("limiting download to %d files", opts.MaxFiles)
		granules = granules[:opts.MaxFiles]
	}

	localDir := opts.OutputDir
	if localDir == "" {
		localDir = filepath.Join(d.OutputDir, strings.ToLower(product))
	}

	result, err := downloader.FetchGranules(ctx, d.Providers, granules, localDir, opts)
	if err != nil {
		return downloader.Result{}, fmt.Errorf("DownloadProduct.%w", err)
	}
	log.Logger(ctx).Sugar().Infof("downloaded %d/%d files", len(result.Paths), len(granules))
	return result, nil
}
