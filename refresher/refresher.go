package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/external/covid19api"
	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/store"
)

const logPrefix = "refresher"

var ErrNoRecords = fmt.Errorf("%w: no records of the target country", covid19api.ErrParseFailed)

// Config of a Refresher. Zero values fall back to the defaults.
type Config struct {
	Rule      Rule
	Threshold int
	Location  *time.Location
	Now       func() time.Time
	Scope     tally.Scope
}

// Refresher keeps the local case cache up to date with the remote source
type Refresher struct {
	store   store.CaseStore
	fetcher covid19api.Fetcher

	rule      Rule
	threshold int
	location  *time.Location
	now       func() time.Time
	scope     tally.Scope
}

// Result of a refresh
type Result struct {
	Records []schema.CaseRecord

	// Refreshed is set when Records come from the remote source
	Refreshed bool

	// Stale is set when the cache was due for a refresh but the fetch
	// failed, so Records are the old cached ones. A failed forced refresh
	// of a fresh cache only sets FetchError.
	Stale      bool
	FetchError error

	CheckedAt time.Time
}

// LastDate returns the date of the last record, zero when there is none
func (r Result) LastDate() time.Time {
	if len(r.Records) == 0 {
		return time.Time{}
	}
	return r.Records[len(r.Records)-1].Date
}

func New(s store.CaseStore, f covid19api.Fetcher, cfg Config) *Refresher {
	r := &Refresher{
		store:     s,
		fetcher:   f,
		rule:      cfg.Rule,
		threshold: cfg.Threshold,
		location:  cfg.Location,
		now:       cfg.Now,
		scope:     cfg.Scope,
	}

	if r.rule == "" {
		r.rule = RuleCalendar
	}
	if r.threshold <= 0 {
		r.threshold = consts.StaleThresholdDays
	}
	if r.location == nil {
		r.location = time.UTC
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.scope == nil {
		r.scope = tally.NoopScope
	}
	return r
}

// LoadCached reads the full cached table
func (r *Refresher) LoadCached(ctx context.Context) ([]schema.CaseRecord, error) {
	return r.store.LoadCases(ctx)
}

// FetchRemote pulls the full history of the target country
func (r *Refresher) FetchRemote(ctx context.Context) ([]schema.CaseRecord, error) {
	r.scope.Counter("fetch").Inc(1)
	records, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// Persist overwrites the cached table with records
func (r *Refresher) Persist(ctx context.Context, records []schema.CaseRecord) error {
	return r.store.ReplaceCases(ctx, records)
}

// Refresh returns the cached records when they are fresh, otherwise it
// fetches, persists and returns the remote records. When the fetch fails
// the cached records are served with Result.Stale set, unless there are
// none.
func (r *Refresher) Refresh(ctx context.Context) (*Result, error) {
	return r.refresh(ctx, false)
}

// ForceRefresh fetches regardless of the cache age
func (r *Refresher) ForceRefresh(ctx context.Context) (*Result, error) {
	return r.refresh(ctx, true)
}

func (r *Refresher) refresh(ctx context.Context, force bool) (*Result, error) {
	logger := log.WithFields(log.Fields{"prefix": logPrefix, "run": uuid.New().String()})
	result := &Result{CheckedAt: r.now()}

	cached, err := r.LoadCached(ctx)
	if err != nil {
		logger.WithError(err).Error("load cached cases")
		sentry.CaptureException(err)
		return nil, err
	}

	stale := r.IsStale(cached)
	if !force && !stale {
		logger.WithField("records", len(cached)).Info("cached cases are fresh")
		r.scope.Counter("skipped").Inc(1)
		r.scope.Gauge("records").Update(float64(len(cached)))
		result.Records = cached
		return result, nil
	}

	logger.WithFields(log.Fields{"records": len(cached), "force": force}).Info("refresh cached cases")
	fetched, err := r.FetchRemote(ctx)
	if err != nil {
		r.scope.Counter("fetch_failed").Inc(1)
		sentry.CaptureException(err)

		if len(cached) == 0 {
			logger.WithError(err).Error("fetch cases with nothing cached")
			return nil, err
		}

		logger.WithError(err).WithField("stale", stale).Warn("fetch cases fail, serve cache")
		r.scope.Counter("fallback").Inc(1)
		r.scope.Gauge("records").Update(float64(len(cached)))
		result.Records = cached
		result.Stale = stale
		result.FetchError = err
		return result, nil
	}

	if err := r.Persist(ctx, fetched); err != nil {
		logger.WithError(err).Error("persist cases")
		sentry.CaptureException(err)
		return nil, err
	}

	r.scope.Gauge("records").Update(float64(len(fetched)))
	result.Records = fetched
	result.Refreshed = true
	logger.WithFields(log.Fields{
		"records":   len(fetched),
		"last_date": result.LastDate().Format("2006-01-02"),
	}).Info("cached cases replaced")
	return result, nil
}
