package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/uber-go/tally"

	"github.com/bitmark-inc/covid-dashboard/api"
	"github.com/bitmark-inc/covid-dashboard/config"
	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/external/covid19api"
	"github.com/bitmark-inc/covid-dashboard/refresher"
	"github.com/bitmark-inc/covid-dashboard/store"
)

var (
	server        *api.Server
	caseStore     store.CaseStore
	metricsCloser io.Closer
)

func main() {
	var configFile string

	initialCtx, cancelInitialization := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")

		if initialCtx != nil && cancelInitialization != nil {
			log.Info("Cancelling initialization")
			cancelInitialization()
			<-initialCtx.Done()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdown(ctx)

		sentry.Flush(5 * time.Second)
		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	config.LoadConfig(configFile)

	config.InitLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	var err error
	caseStore, err = store.Open(initialCtx, config.StoreOptions())
	if err != nil {
		log.Panic(err)
	}
	log.WithField("prefix", "init").Infof("Opened %s case store", viper.GetString("store.driver"))

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "covid_dashboard",
		Tags:     map[string]string{"country": viper.GetString("source.country")},
		Reporter: tally.NullStatsReporter,
	}, 10*time.Second)
	metricsCloser = closer

	refresherConfig, err := config.RefresherConfig()
	if err != nil {
		log.Panic(err)
	}
	refresherConfig.Scope = scope.SubScope("refresh")
	r := refresher.New(caseStore, covid19api.New(config.SourceConfig()), refresherConfig)

	result, err := r.Refresh(initialCtx)
	if err != nil {
		log.Panic(err)
	}
	log.WithFields(log.Fields{
		"prefix":    "init",
		"records":   len(result.Records),
		"refreshed": result.Refreshed,
		"stale":     result.Stale,
	}).Info("Loaded case data")

	// Init http server
	server = api.NewServer(caseStore, r, result, api.Config{
		Country:  viper.GetString("source.country"),
		Window:   consts.MovingAverageWindow,
		AdminKey: viper.GetString("server.apikey.admin"),
		Version:  viper.GetString("server.version"),
	})
	log.WithField("prefix", "init").Info("Initialized http server")

	// Remove initial context
	initialCtx = nil
	cancelInitialization = nil

	err = server.Run(":" + viper.GetString("server.port"))
	if closeErr := closer.Close(); closeErr != nil {
		log.Error(closeErr)
	}
	log.Fatal(err)
}

// shutdown stops the http server, then flushes metrics and closes the store
func shutdown(ctx context.Context) {
	if server != nil {
		log.Info("Shutdown dashboard server")
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server Shutdown:", err)
		}
	}

	if metricsCloser != nil {
		log.Info("Closing metrics scope")
		if err := metricsCloser.Close(); err != nil {
			log.Error(err)
		}
	}

	if caseStore != nil {
		log.Info("Shutting down case store")
		if err := caseStore.Close(); err != nil {
			log.Error(err)
		}
	}
}
