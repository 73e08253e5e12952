package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader/modis"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/dustin/go-humanize"
	"github.com/go-spatial/geom/encoding/geojson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type config struct {
	ListProducts bool   `yaml:"-"`
	ProductInfo  string `yaml:"-"`

	Product      string `yaml:"product"`
	BBox         string `yaml:"bbox"`
	AOIFile      string `yaml:"aoi_file"`
	StartDate    string `yaml:"start_date"`
	EndDate      string `yaml:"end_date"`
	OutputDir    string `yaml:"output_dir"`
	MaxFiles     int    `yaml:"max_files"`
	Overwrite    bool   `yaml:"overwrite"`
	Unarchive    bool   `yaml:"unarchive"`
	Workers      int    `yaml:"workers"`
	AbortOnError bool   `yaml:"abort_on_error"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func newAppConfig() (*config, error) {
	config := config{}
	configFile := flag.String("config", "", "optional yaml configuration file (flags take precedence)")

	flag.BoolVar(&config.ListProducts, "list-products", false, "list the supported products and exit")
	flag.StringVar(&config.ProductInfo, "product-info", "", "print the descriptor of the given product code and exit")

	flag.StringVar(&config.Product, "product", "", "product code to download (e.g. MOD13A2)")
	flag.StringVar(&config.BBox, "bbox", "", "bounding box as west,south,east,north in decimal degrees")
	flag.StringVar(&config.AOIFile, "aoi", "", "optional geojson file with a polygon refining the bounding box")
	flag.StringVar(&config.StartDate, "start-date", "", "start date (e.g. 2024-01-01)")
	flag.StringVar(&config.EndDate, "end-date", "", "end date (e.g. 2024-12-31)")
	flag.StringVar(&config.OutputDir, "output-dir", "", "destination directory (default: ./data/modis/<product>)")
	flag.IntVar(&config.MaxFiles, "max-files", 0, "maximum number of files to download (0 = no limit)")
	flag.BoolVar(&config.Overwrite, "overwrite", false, "re-download files that already exist")
	flag.BoolVar(&config.Unarchive, "unarchive", false, "unpack zipped granules into the destination directory")
	flag.IntVar(&config.Workers, "workers", 1, "number of parallel downloads")
	flag.BoolVar(&config.AbortOnError, "abort-on-error", false, "stop at the first failed granule instead of continuing")

	flag.StringVar(&config.Username, "username", "", "Earthdata account username (optional, $"+common.EnvUsername+" is the fallback)")
	flag.StringVar(&config.Password, "password", "", "Earthdata account password (optional, $"+common.EnvPassword+" is the fallback)")

	flag.Parse()

	if *configFile != "" {
		if err := loadConfigFile(*configFile, &config); err != nil {
			return nil, err
		}
	}

	if config.ListProducts || config.ProductInfo != "" {
		return &config, nil
	}
	if config.Product == "" {
		return nil, fmt.Errorf("missing product config flag")
	}
	if config.BBox == "" {
		return nil, fmt.Errorf("missing bbox config flag")
	}
	if config.StartDate == "" || config.EndDate == "" {
		return nil, fmt.Errorf("missing start-date/end-date config flags")
	}
	return &config, nil
}

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	dl := modis.NewDownloader(config.Username, config.Password)

	if config.ListProducts {
		for _, product := range dl.ListProducts() {
			fmt.Printf("%-9s %s\n", product.Code, product.Description)
		}
		return nil
	}
	if config.ProductInfo != "" {
		product, err := dl.GetProductInfo(config.ProductInfo)
		if err != nil {
			return err
		}
		out, _ := json.MarshalIndent(product, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	bbox, err := common.ParseBoundingBox(config.BBox)
	if err != nil {
		return err
	}

	var aoi *geojson.Geometry
	if config.AOIFile != "" {
		data, err := os.ReadFile(config.AOIFile)
		if err != nil {
			return fmt.Errorf("read aoi: %w", err)
		}
		aoi = &geojson.Geometry{}
		if err := json.Unmarshal(data, aoi); err != nil {
			return fmt.Errorf("parse aoi: %w", err)
		}
	}

	result, err := dl.DownloadProduct(ctx, config.Product, bbox, config.StartDate, config.EndDate, downloader.Options{
		OutputDir:    config.OutputDir,
		AOI:          aoi,
		MaxFiles:     config.MaxFiles,
		Overwrite:    config.Overwrite,
		Unarchive:    config.Unarchive,
		AbortOnError: config.AbortOnError,
		Concurrency:  config.Workers,
	})
	if err != nil {
		return err
	}

	var totalSize uint64
	for _, path := range result.Paths {
		if info, err := os.Stat(path); err == nil {
			totalSize += uint64(info.Size())
		}
		fmt.Println(path)
	}
	fmt.Printf("%d files (%s)", len(result.Paths), humanize.IBytes(totalSize))
	if len(result.Failures) > 0 {
		fmt.Printf(", %d failed", len(result.Failures))
		for _, failure := range result.Failures {
			log.Logger(ctx).Sugar().Warnf("failed: %s: %v", failure.Granule.Name, failure.Err)
		}
	}
	fmt.Println()
	return nil
}

// loadConfigFile fills from the yaml file the options that were not
// explicitly set on the command line
func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	fileConfig := config{}
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["product"] && fileConfig.Product != "" {
		cfg.Product = fileConfig.Product
	}
	if !set["bbox"] && fileConfig.BBox != "" {
		cfg.BBox = fileConfig.BBox
	}
	if !set["aoi"] && fileConfig.AOIFile != "" {
		cfg.AOIFile = fileConfig.AOIFile
	}
	if !set["start-date"] && fileConfig.StartDate != "" {
		cfg.StartDate = fileConfig.StartDate
	}
	if !set["end-date"] && fileConfig.EndDate != "" {
		cfg.EndDate = fileConfig.EndDate
	}
	if !set["output-dir"] && fileConfig.OutputDir != "" {
		cfg.OutputDir = fileConfig.OutputDir
	}
	if !set["max-files"] && fileConfig.MaxFiles != 0 {
		cfg.MaxFiles = fileConfig.MaxFiles
	}
	if !set["overwrite"] {
		cfg.Overwrite = cfg.Overwrite || fileConfig.Overwrite
	}
	if !set["unarchive"] {
		cfg.Unarchive = cfg.Unarchive || fileConfig.Unarchive
	}
	if !set["workers"] && fileConfig.Workers != 0 {
		cfg.Workers = fileConfig.Workers
	}
	if !set["abort-on-error"] {
		cfg.AbortOnError = cfg.AbortOnError || fileConfig.AbortOnError
	}
	if !set["username"] && fileConfig.Username != "" {
		cfg.Username = fileConfig.Username
	}
	if !set["password"] && fileConfig.Password != "" {
		cfg.Password = fileConfig.Password
	}
	return nil
}
