package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

const (
	mongoLogPrefix = "mongo"
	defaultTimeout = 5 * time.Second
)

type mongoDB struct {
	client   *mongo.Client
	database string
}

// NewMongoStore - return a CaseStore on mongo db
func NewMongoStore(client *mongo.Client, database string) CaseStore {
	return &mongoDB{
		client:   client,
		database: database,
	}
}

func (m *mongoDB) collection() *mongo.Collection {
	return m.client.Database(m.database).Collection(schema.CaseCollection)
}

// LoadCases reads every case record sorted by date
func (m *mongoDB) LoadCases(ctx context.Context) ([]schema.CaseRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"date": 1})
	cur, err := m.collection().Find(ctx, bson.M{}, opts)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("case data find error: %s", err)
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	defer cur.Close(ctx)

	records := []schema.CaseRecord{}
	for cur.Next(ctx) {
		var r schema.CaseRecord
		if errDecode := cur.Decode(&r); errDecode != nil {
			log.WithField("prefix", mongoLogPrefix).Errorf("case data decode error: %s", errDecode)
			return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, errDecode)
		}
		r.Date = r.Date.UTC()
		records = append(records, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	return records, nil
}

// ReplaceCases drops every stored record then inserts records in order
func (m *mongoDB) ReplaceCases(ctx context.Context, records []schema.CaseRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.collection()
	res, err := c.DeleteMany(ctx, bson.M{})
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Warnf("case data delete with error: %s", err)
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": res.DeletedCount}).Debug("ReplaceCases delete data")

	if len(records) == 0 {
		return nil
	}

	data := make([]interface{}, len(records))
	for i, r := range records {
		data[i] = r
	}
	opts := options.InsertMany().SetOrdered(true)
	inserted, err := c.InsertMany(ctx, data, opts)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("case data insert with error: %s", err)
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": len(inserted.InsertedIDs)}).Debug("ReplaceCases insert data")
	return nil
}

// Ping - ping mongo db
func (m *mongoDB) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// Close - close mongo db connections
func (m *mongoDB) Close() error {
	log.WithField("prefix", mongoLogPrefix).Info("closing mongo db connections")
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
