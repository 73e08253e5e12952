package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ductran27/LIS-landsurface-toolkit/downloader/modis"
	"github.com/ductran27/LIS-landsurface-toolkit/server"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type config struct {
	Port     int
	Username string
	Password string
}

func newAppConfig() (*config, error) {
	config := config{}
	flag.IntVar(&config.Port, "port", 8080, "port to listen on")
	flag.StringVar(&config.Username, "username", "", "Earthdata account username (optional)")
	flag.StringVar(&config.Password, "password", "", "Earthdata account password (optional)")
	flag.Parse()

	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", config.Port)
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
	handler := server.New(dl, dl.Catalog)

	router := mux.NewRouter()
	handler.AddHandler(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handlers.CombinedLoggingHandler(os.Stdout, handlers.CompressHandler(router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // downloads are long-running
	}

	log.Logger(ctx).Sugar().Infof("listening on %s", srv.Addr)
	return srv.ListenAndServe()
}
