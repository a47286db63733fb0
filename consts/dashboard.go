package consts

import "time"

const (
	DefaultCountry   = "Malaysia"
	DefaultSourceURL = "https://api.covid19api.com/all"
	SourceHomepage   = "https://api.covid19api.com/"

	DefaultFetchTimeout = 30 * time.Second
	DefaultFetchRetry   = 1

	// StaleThresholdDays is the day gap at which the cache gets refreshed
	StaleThresholdDays = 2

	MovingAverageWindow = 7

	DefaultTimezone = "GMT+8"
	DefaultPort     = "8050"
)
