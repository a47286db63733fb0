package main

import (
	"flag"

	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bitmark-inc/covid-dashboard/config"
	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/store"
)

func main() {
	var configFile string

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	config.LoadConfig(configFile)
	config.InitLog()

	driver := viper.GetString("store.driver")
	switch driver {
	case store.DriverMongo:
		schema.NewMongoDBIndexer(viper.GetString("mongo.conn"), viper.GetString("mongo.database")).IndexAll()
	case store.DriverSQLite, store.DriverPostgres:
		// OpenORMStore migrates the case table
		s, err := store.OpenORMStore(driver, viper.GetString("store.conn"))
		if err != nil {
			panic(err)
		}
		if err := s.Close(); err != nil {
			panic(err)
		}
	default:
		log.Panicf("unsupported store driver %q", driver)
	}

	log.WithField("prefix", "migrate").Infof("migrated %s case store", driver)
}
