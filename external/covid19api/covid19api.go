package covid19api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/utils"
)

const logPrefix = "covid19api"

var (
	ErrFetchFailed = errors.New("fetch remote case data fail")
	ErrParseFailed = errors.New("parse remote case data fail")
)

// Fetcher - interface to pull the case records of the target country
type Fetcher interface {
	Fetch(ctx context.Context) ([]schema.CaseRecord, error)
}

// Config of the remote case-tracking API
type Config struct {
	URL     string
	Country string
	Timeout time.Duration

	// Retry is the number of extra attempts on a transient failure
	Retry        int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// the API answers with capitalised keys
type dailyRecord struct {
	Country     string `json:"Country"`
	CountryCode string `json:"CountryCode"`
	Province    string `json:"Province"`
	City        string `json:"City"`
	Confirmed   int64  `json:"Confirmed"`
	Deaths      int64  `json:"Deaths"`
	Recovered   int64  `json:"Recovered"`
	Active      int64  `json:"Active"`
	Date        string `json:"Date"`
}

// Client is a Fetcher on top of the covid19api.com daily feed
type Client struct {
	url     string
	country string
	client  *resty.Client
}

// New - new covid19api client
func New(cfg Config) *Client {
	u := consts.DefaultSourceURL
	if cfg.URL != "" {
		u = cfg.URL
	}
	country := consts.DefaultCountry
	if cfg.Country != "" {
		country = cfg.Country
	}
	timeout := consts.DefaultFetchTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	retryWait := 500 * time.Millisecond
	if cfg.RetryWait > 0 {
		retryWait = cfg.RetryWait
	}
	retryMaxWait := 5 * time.Second
	if cfg.RetryMaxWait > 0 {
		retryMaxWait = cfg.RetryMaxWait
	}

	client := resty.NewWithClient(cleanhttp.DefaultClient())
	client.SetTimeout(timeout)
	client.SetRetryCount(cfg.Retry)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(retryMaxWait)
	client.AddRetryCondition(isTransient)
	client.SetHeader("Accept", "application/json")

	return &Client{
		url:     u,
		country: country,
		client:  client,
	}
}

// Country returns the country the client filters on
func (c *Client) Country() string {
	return c.country
}

// Fetch issues a single GET and returns the records of the target country
// in the order the API sent them.
func (c *Client) Fetch(ctx context.Context) ([]schema.CaseRecord, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "url": c.url, "error": err}).Error("get daily case data")
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err)
	}

	if !resp.IsSuccess() {
		log.WithFields(log.Fields{"prefix": logPrefix, "url": c.url, "status": resp.StatusCode()}).Error("get daily case data")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode())
	}

	records, err := Parse(resp.Body(), c.country)
	if err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "url": c.url, "error": err}).Error("decode daily case data")
		return nil, err
	}

	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"country": c.country,
		"records": len(records),
		"elapsed": resp.Time().String(),
	}).Debug("data from covid19api")

	return records, nil
}

// Parse decodes a JSON array of daily records and keeps only the rows of
// country. Country level rows are returned in the order the API sent them
// and must have strictly ascending dates. A country the API only reports by
// province or city is summed up per date, at the coarsest level given.
func Parse(data []byte, country string) ([]schema.CaseRecord, error) {
	var arr []dailyRecord
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, err)
	}

	target := strings.TrimSpace(country)
	rows := make([]regionRecord, 0)
	level := cityLevel
	for i, d := range arr {
		if !strings.EqualFold(strings.TrimSpace(d.Country), target) {
			continue
		}

		if d.Date == "" {
			return nil, fmt.Errorf("%w: record %d has no date", ErrParseFailed, i)
		}
		t, err := dateparse.ParseIn(d.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d date %q: %s", ErrParseFailed, i, d.Date, err)
		}

		if d.Confirmed < 0 || d.Deaths < 0 || d.Recovered < 0 || d.Active < 0 {
			return nil, fmt.Errorf("%w: record %d has a negative counter", ErrParseFailed, i)
		}

		r := regionRecord{
			CaseRecord: schema.CaseRecord{
				Country:   d.Country,
				Date:      utils.CalendarDay(t, time.UTC),
				Confirmed: d.Confirmed,
				Deaths:    d.Deaths,
				Recovered: d.Recovered,
				Active:    d.Active,
			},
			level: d.level(),
		}
		if r.level < level {
			level = r.level
		}
		rows = append(rows, r)
	}

	if level == countryLevel {
		return countryRecords(rows)
	}
	return sumByDate(rows, level), nil
}

const (
	countryLevel = iota
	provinceLevel
	cityLevel
)

type regionRecord struct {
	schema.CaseRecord
	level int
}

func (d dailyRecord) level() int {
	switch {
	case d.City != "":
		return cityLevel
	case d.Province != "":
		return provinceLevel
	}
	return countryLevel
}

func countryRecords(rows []regionRecord) ([]schema.CaseRecord, error) {
	records := make([]schema.CaseRecord, 0, len(rows))
	for _, r := range rows {
		if r.level != countryLevel {
			continue
		}
		if n := len(records); n > 0 && !r.Date.After(records[n-1].Date) {
			return nil, fmt.Errorf("%w: date %s after %s", ErrParseFailed, r.Day(), records[n-1].Day())
		}
		records = append(records, r.CaseRecord)
	}
	return records, nil
}

func sumByDate(rows []regionRecord, level int) []schema.CaseRecord {
	days := map[time.Time]int{}
	records := make([]schema.CaseRecord, 0)
	for _, r := range rows {
		if r.level != level {
			continue
		}
		i, ok := days[r.Date]
		if !ok {
			days[r.Date] = len(records)
			records = append(records, r.CaseRecord)
			continue
		}
		records[i].Confirmed += r.Confirmed
		records[i].Deaths += r.Deaths
		records[i].Recovered += r.Recovered
		records[i].Active += r.Active
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records
}

func isTransient(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
