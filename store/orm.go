package store

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

const ormLogPrefix = "orm"

// ORMStore is a CaseStore on a sql database. Row order is carried by the
// auto increment id.
type ORMStore struct {
	ormDB *gorm.DB
}

// OpenORMStore opens dialect (sqlite3 or postgres) and makes sure the
// case table exists.
func OpenORMStore(dialect, conn string) (*ORMStore, error) {
	db, err := gorm.Open(dialect, conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	s := NewORMStore(db)
	if err := s.Migrate(); err != nil {
		var result error
		result = multierror.Append(result, err)
		if closeErr := db.Close(); closeErr != nil {
			result = multierror.Append(result, closeErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, result)
	}
	return s, nil
}

func NewORMStore(ormDB *gorm.DB) *ORMStore {
	return &ORMStore{
		ormDB: ormDB,
	}
}

// Migrate creates or updates the case table
func (s *ORMStore) Migrate() error {
	return s.ormDB.AutoMigrate(&schema.CaseRecord{}).Error
}

// LoadCases reads the whole case table in row order
func (s *ORMStore) LoadCases(ctx context.Context) ([]schema.CaseRecord, error) {
	records := []schema.CaseRecord{}
	if err := s.ormDB.Order("id asc").Find(&records).Error; err != nil {
		log.WithFields(log.Fields{"prefix": ormLogPrefix, "error": err}).Error("load cases")
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	for i := range records {
		records[i].Date = records[i].Date.UTC()
	}
	return records, nil
}

// ReplaceCases overwrites the whole case table in a single transaction
func (s *ORMStore) ReplaceCases(ctx context.Context, records []schema.CaseRecord) error {
	tx := s.ormDB.Begin()
	if err := tx.Error; err != nil {
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", schema.CaseTable)).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	for _, r := range records {
		r.ID = 0
		if err := tx.Create(&r).Error; err != nil {
			tx.Rollback()
			log.WithFields(log.Fields{"prefix": ormLogPrefix, "date": r.Day(), "error": err}).Error("insert case")
			return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	log.WithFields(log.Fields{"prefix": ormLogPrefix, "records": len(records)}).Debug("replace cases")
	return nil
}

// Ping is to check the storage health status
func (s *ORMStore) Ping() error {
	return s.ormDB.DB().Ping()
}

// Close - close db connections
func (s *ORMStore) Close() error {
	log.WithField("prefix", ormLogPrefix).Info("closing orm db connections")
	return s.ormDB.Close()
}
