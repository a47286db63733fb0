package store

import (
	"context"
	"errors"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

var (
	ErrStorageUnavailable = errors.New("case storage unavailable")
)

// CaseStore - interface for the local case cache. The cache holds exactly
// the latest full pull, so it only supports a full read and a full replace.
type CaseStore interface {
	LoadCases(ctx context.Context) ([]schema.CaseRecord, error)
	ReplaceCases(ctx context.Context, records []schema.CaseRecord) error
	Pinger
	Closer
}

// Closer - close db connection
type Closer interface {
	Close() error
}

// Pinger - ping database
type Pinger interface {
	Ping() error
}
