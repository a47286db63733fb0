package config

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/external/covid19api"
	"github.com/bitmark-inc/covid-dashboard/refresher"
	"github.com/bitmark-inc/covid-dashboard/store"
	"github.com/bitmark-inc/covid-dashboard/utils"
)

func InitLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func LoadConfig(file string) {
	SetDefaults()

	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covid")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func SetDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.port", consts.DefaultPort)
	viper.SetDefault("source.url", consts.DefaultSourceURL)
	viper.SetDefault("source.country", consts.DefaultCountry)
	viper.SetDefault("source.timeout", consts.DefaultFetchTimeout)
	viper.SetDefault("source.retry", consts.DefaultFetchRetry)
	viper.SetDefault("store.driver", store.DriverSQLite)
	viper.SetDefault("store.conn", "covid.db")
	viper.SetDefault("mongo.conn", "mongodb://127.0.0.1:27017")
	viper.SetDefault("mongo.database", "covid")
	viper.SetDefault("mongo.pool", 5)
	viper.SetDefault("refresh.rule", string(refresher.RuleCalendar))
	viper.SetDefault("refresh.threshold", consts.StaleThresholdDays)
	viper.SetDefault("refresh.timezone", consts.DefaultTimezone)
}

// StoreOptions reads the case store settings
func StoreOptions() store.Options {
	return store.Options{
		Driver:        viper.GetString("store.driver"),
		Conn:          viper.GetString("store.conn"),
		MongoConn:     viper.GetString("mongo.conn"),
		MongoDatabase: viper.GetString("mongo.database"),
		MongoPool:     viper.GetUint64("mongo.pool"),
	}
}

// SourceConfig reads the remote source settings
func SourceConfig() covid19api.Config {
	return covid19api.Config{
		URL:     viper.GetString("source.url"),
		Country: viper.GetString("source.country"),
		Timeout: viper.GetDuration("source.timeout"),
		Retry:   viper.GetInt("source.retry"),
	}
}

// RefresherConfig reads the staleness settings
func RefresherConfig() (refresher.Config, error) {
	rule, err := refresher.ParseRule(viper.GetString("refresh.rule"))
	if err != nil {
		return refresher.Config{}, err
	}

	timezone := viper.GetString("refresh.timezone")
	loc := utils.GetLocation(timezone)
	if loc == nil {
		return refresher.Config{}, fmt.Errorf("unknown timezone %q", timezone)
	}

	return refresher.Config{
		Rule:      rule,
		Threshold: viper.GetInt("refresh.threshold"),
		Location:  loc,
	}, nil
}
