package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options to open a CaseStore
type Options struct {
	Driver string

	// Conn is the sqlite file or the postgres connection string
	Conn string

	MongoConn     string
	MongoDatabase string
	MongoPool     uint64
}

// Open returns the CaseStore of opts.Driver. The sql dialects have to be
// registered by the caller.
func Open(ctx context.Context, opts Options) (CaseStore, error) {
	switch opts.Driver {
	case "", DriverSQLite, DriverPostgres:
		dialect := opts.Driver
		if dialect == "" {
			dialect = DriverSQLite
		}
		return OpenORMStore(dialect, opts.Conn)
	case DriverMongo:
		clientOpts := options.Client().ApplyURI(opts.MongoConn)
		if opts.MongoPool > 0 {
			clientOpts.SetMaxPoolSize(opts.MongoPool)
		}
		client, err := mongo.NewClient(clientOpts)
		if nil != err {
			return nil, fmt.Errorf("%w: create mongo client with error: %s", ErrStorageUnavailable, err)
		}
		if err := client.Connect(ctx); nil != err {
			return nil, fmt.Errorf("%w: connect mongo database with error: %s", ErrStorageUnavailable, err)
		}
		return NewMongoStore(client, opts.MongoDatabase), nil
	}
	return nil, fmt.Errorf("%w: unknown driver %q", ErrStorageUnavailable, opts.Driver)
}
