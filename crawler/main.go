package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bitmark-inc/covid-dashboard/config"
	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/external/covid19api"
	"github.com/bitmark-inc/covid-dashboard/refresher"
	"github.com/bitmark-inc/covid-dashboard/series"
	"github.com/bitmark-inc/covid-dashboard/share/casecsv"
	"github.com/bitmark-inc/covid-dashboard/store"
)

const logPrefix = "crawler"

func main() {
	var configFile, output string
	var force bool

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.BoolVar(&force, "f", false, "[optional] refresh even if the cache is fresh")
	flag.StringVar(&output, "o", "", "[optional] export the case records as csv to this path")
	flag.Parse()

	config.LoadConfig(configFile)
	config.InitLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.WithField("prefix", logPrefix).Info("Cancelling refresh")
		cancel()
	}()

	if err := run(ctx, force, output); err != nil {
		log.WithField("prefix", logPrefix).WithError(err).Error("crawler failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, force bool, output string) error {
	caseStore, err := store.Open(ctx, config.StoreOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := caseStore.Close(); err != nil {
			log.WithField("prefix", logPrefix).WithError(err).Warn("fail to close case store")
		}
	}()

	cfg, err := config.RefresherConfig()
	if err != nil {
		return err
	}
	r := refresher.New(caseStore, covid19api.New(config.SourceConfig()), cfg)

	var result *refresher.Result
	if force {
		result, err = r.ForceRefresh(ctx)
	} else {
		result, err = r.Refresh(ctx)
	}
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"prefix":    logPrefix,
		"records":   len(result.Records),
		"refreshed": result.Refreshed,
		"stale":     result.Stale,
	}).Info("refresh finished")

	if result.FetchError != nil {
		log.WithField("prefix", logPrefix).WithError(result.FetchError).Warn("serving cached case data")
	}

	records, rejected := series.DropDecreasing(result.Records)
	if len(rejected) > 0 {
		log.WithField("prefix", logPrefix).Warnf("dropped %d inconsistent records", len(rejected))
	}

	daily := series.DailyOf(records, consts.MovingAverageWindow)
	summary, ok := series.Summarize(records, daily, consts.MovingAverageWindow)
	if !ok {
		fmt.Println("No case data available yet.")
	} else {
		printSummary(os.Stdout, viper.GetString("source.country"), summary.Rows(consts.MovingAverageWindow))
	}

	if output == "" {
		return nil
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := casecsv.Write(f, records); err != nil {
		return err
	}
	log.WithField("prefix", logPrefix).Infof("exported %d records to %s", len(records), output)
	return nil
}

func printSummary(w io.Writer, country string, rows []series.SummaryRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Stat", country})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		table.Append([]string{row.Stat, row.Value})
	}
	table.Render()
}
