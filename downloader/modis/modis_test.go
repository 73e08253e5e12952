package modis_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader/modis"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/catalog"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/provider"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeCatalog struct {
	granules  []common.Granule
	err       error
	searches  int
	lastQuery catalog.Query
}

func (c *fakeCatalog) Name() string { return "fakeCatalog" }

func (c *fakeCatalog) SearchGranules(ctx context.Context, query catalog.Query) ([]common.Granule, error) {
	c.searches++
	c.lastQuery = query
	return c.granules, c.err
}

type fakeFileProvider struct {
	fetched []string
	err     error
}

func (p *fakeFileProvider) Name() string { return "fakeProvider" }

func (p *fakeFileProvider) Fetch(ctx context.Context, granule common.Granule, localDir string, opts provider.FetchOptions) (string, error) {
	p.fetched = append(p.fetched, granule.Name)
	if p.err != nil {
		return "", p.err
	}
	return filepath.Join(localDir, granule.Name), nil
}

func fakeGranules(n int) []common.Granule {
	granules := make([]common.Granule, n)
	for i := range n {
		granules[i] = common.Granule{
			ID:          fmt.Sprintf("G%04d", i),
			Name:        fmt.Sprintf("MOD13A2.A20240%02d.h08v05.061.hdf", i+1),
			Product:     "MOD13A2",
			DownloadURL: fmt.Sprintf("https://example.com/granule%d.hdf", i),
		}
	}
	return granules
}

var _ = Describe("DownloadProduct", func() {
	var (
		d        *modis.Downloader
		cat      *fakeCatalog
		files    *fakeFileProvider
		bbox     common.BoundingBox
		opts     downloader.Options
		result  downloader.Result
		ctx     context.Context
		err     error
		product string
		start   string
		end     string
	)

	BeforeEach(func() {
		ctx = context.Background()
		cat = &fakeCatalog{granules: fakeGranules(5)}
		files = &fakeFileProvider{}
		d = modis.NewDownloader("user", "pword")
		d.Catalog = cat
		d.Providers = []provider.FileProvider{files}
		d.OutputDir = "/data/modis"

		product = "MOD13A2"
		bbox = common.BoundingBox{West: -120, South: 35, East: -115, North: 40}
		start, end = "2024-01-01", "2024-12-31"
		opts = downloader.Options{}
	})

	JustBeforeEach(func() {
		result, err = d.DownloadProduct(ctx, product, bbox, start, end, opts)
	})

	Context("with valid parameters", func() {
		It("downloads every granule the catalog returned", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Paths).To(HaveLen(5))
			Expect(result.Failures).To(BeEmpty())
			Expect(cat.searches).To(Equal(1))
		})

		It("scopes the search to the requested product and area", func() {
			Expect(cat.lastQuery.Product).To(Equal("MOD13A2"))
			Expect(cat.lastQuery.BBox).To(Equal(bbox))
		})

		It("writes into a per-product subdirectory by default", func() {
			Expect(result.Paths[0]).To(HavePrefix("/data/modis/mod13a2/"))
		})
	})

	Context("with an explicit output directory", func() {
		BeforeEach(func() {
			opts.OutputDir = "/elsewhere"
		})
		It("writes there", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Paths[0]).To(HavePrefix("/elsewhere/"))
		})
	})

	Context("with a file cap", func() {
		BeforeEach(func() {
			opts.MaxFiles = 3
		})
		It("fetches the first granules in search order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Paths).To(HaveLen(3))
			Expect(files.fetched).To(Equal([]string{
				"MOD13A2.A2024001.h08v05.061.hdf",
				"MOD13A2.A2024002.h08v05.061.hdf",
				"MOD13A2.A2024003.h08v05.061.hdf",
			}))
		})
	})

	Context("when the catalog has no match", func() {
		BeforeEach(func() {
			cat.granules = nil
		})
		It("returns an empty result without fetching", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Paths).To(BeEmpty())
			Expect(files.fetched).To(BeEmpty())
		})
	})

	Context("when the catalog fails", func() {
		BeforeEach(func() {
			cat.err = catalog.ErrQuery{Catalog: cat.Name(), Err: fmt.Errorf("boom")}
		})
		It("propagates the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(files.fetched).To(BeEmpty())
		})
	})

	Context("when a granule fails to download", func() {
		BeforeEach(func() {
			files.err = provider.ErrDownload{URL: "https://example.com", Err: fmt.Errorf("boom")}
		})
		It("records the failures without aborting", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Paths).To(BeEmpty())
			Expect(result.Failures).To(HaveLen(5))
		})
	})

	Context("without credentials", func() {
		var savedEnv map[string]string
		BeforeEach(func() {
			savedEnv = map[string]string{}
			for _, key := range []string{common.EnvUsername, common.EnvPassword, common.EnvToken} {
				savedEnv[key] = os.Getenv(key)
				os.Unsetenv(key)
			}
			d = modis.NewDownloader("", "")
			d.Catalog = cat
			d.Providers = []provider.FileProvider{files}
		})
		AfterEach(func() {
			for key, value := range savedEnv {
				os.Setenv(key, value)
			}
		})
		It("fails without querying the catalog", func() {
			Expect(err).To(HaveOccurred())
			var auth catalog.ErrAuthentication
			Expect(errors.As(err, &auth)).To(BeTrue())
			Expect(cat.searches).To(BeZero())
		})
	})

	Context("with an unknown product", func() {
		BeforeEach(func() {
			product = "INVALID"
		})
		It("fails without querying the catalog", func() {
			Expect(err).To(MatchError(common.ErrUnknownProduct{Code: "INVALID"}))
			Expect(cat.searches).To(BeZero())
		})
	})

	Context("with an invalid bounding box", func() {
		BeforeEach(func() {
			bbox = common.BoundingBox{West: -115, South: 35, East: -120, North: 40}
		})
		It("fails without querying the catalog", func() {
			Expect(err).To(HaveOccurred())
			Expect(cat.searches).To(BeZero())
		})
	})

	Context("with an invalid date range", func() {
		BeforeEach(func() {
			start, end = "2024-12-31", "2024-01-01"
		})
		It("fails without querying the catalog", func() {
			Expect(err).To(HaveOccurred())
			Expect(cat.searches).To(BeZero())
		})
	})
})
