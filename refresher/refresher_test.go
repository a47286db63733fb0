package refresher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
	"github.com/uber-go/tally"

	"github.com/bitmark-inc/covid-dashboard/external/covid19api"
	"github.com/bitmark-inc/covid-dashboard/mocks"
	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/store"
)

func history(first time.Time, days int) []schema.CaseRecord {
	records := make([]schema.CaseRecord, days)
	for i := range records {
		records[i] = schema.CaseRecord{
			Country:   "Malaysia",
			Date:      first.AddDate(0, 0, i),
			Confirmed: int64(100 + 10*i),
			Deaths:    int64(i),
			Recovered: int64(50 + 5*i),
			Active:    int64(50 + 4*i),
		}
	}
	return records
}

type RefresherTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	storeMock   *mocks.MockCaseStore
	fetcherMock *mocks.MockFetcher
	scope       tally.TestScope
	now         time.Time
}

func (s *RefresherTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.storeMock = mocks.NewMockCaseStore(s.mockCtrl)
	s.fetcherMock = mocks.NewMockFetcher(s.mockCtrl)
	s.scope = tally.NewTestScope("", map[string]string{})
	s.now = date(2020, 7, 3).Add(9 * time.Hour)
}

func (s *RefresherTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *RefresherTestSuite) refresher(rule Rule) *Refresher {
	return New(s.storeMock, s.fetcherMock, Config{
		Rule:  rule,
		Now:   func() time.Time { return s.now },
		Scope: s.scope,
	})
}

func (s *RefresherTestSuite) counter(name string) int64 {
	for _, c := range s.scope.Snapshot().Counters() {
		if c.Name() == name {
			return c.Value()
		}
	}
	return 0
}

func (s *RefresherTestSuite) TestFreshCacheIsServedWithoutFetch() {
	cached := history(date(2020, 6, 3), 30) // ends 2020-07-02
	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.Equal(cached, result.Records)
	s.False(result.Refreshed)
	s.False(result.Stale)
	s.Equal(s.now, result.CheckedAt)
	s.Equal(int64(1), s.counter("skipped"))
	s.Equal(int64(0), s.counter("fetch"))
}

func (s *RefresherTestSuite) TestStaleCacheIsReplaced() {
	cached := history(date(2020, 6, 1), 30) // ends 2020-06-30
	fetched := history(date(2020, 6, 1), 33)

	gomock.InOrder(
		s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil),
		s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(fetched, nil).Times(1),
		s.storeMock.EXPECT().ReplaceCases(gomock.Any(), fetched).Return(nil).Times(1),
	)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.Equal(fetched, result.Records)
	s.True(result.Refreshed)
	s.False(result.Stale)
	s.Equal(date(2020, 7, 3), result.LastDate())
	s.Equal(int64(1), s.counter("fetch"))
}

func (s *RefresherTestSuite) TestDayOfMonthRuleMissesMonthBoundary() {
	// 2020-06-30 -> 2020-07-03 is three days, but 3 - 30 < 2
	cached := history(date(2020, 6, 1), 30)
	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)

	result, err := s.refresher(RuleDayOfMonth).Refresh(context.Background())
	s.NoError(err)
	s.Equal(cached, result.Records)
	s.False(result.Refreshed)
}

func (s *RefresherTestSuite) TestDayOfMonthRuleWithinMonth() {
	s.now = date(2020, 6, 25)
	cached := history(date(2020, 6, 1), 20) // ends 2020-06-20
	fetched := history(date(2020, 6, 1), 24)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), fetched).Return(nil)

	result, err := s.refresher(RuleDayOfMonth).Refresh(context.Background())
	s.NoError(err)
	s.True(result.Refreshed)
	s.Equal(fetched, result.Records)
}

func (s *RefresherTestSuite) TestEmptyCacheIsFetched() {
	fetched := history(date(2020, 6, 1), 3)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return([]schema.CaseRecord{}, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), fetched).Return(nil)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.True(result.Refreshed)
	s.Len(result.Records, 3)
}

func (s *RefresherTestSuite) TestFetchFailureServesStaleCache() {
	cached := history(date(2020, 6, 1), 30)
	fetchErr := fmt.Errorf("%w: connection refused", covid19api.ErrFetchFailed)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(nil, fetchErr)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.Equal(cached, result.Records)
	s.True(result.Stale)
	s.False(result.Refreshed)
	s.True(errors.Is(result.FetchError, covid19api.ErrFetchFailed))
	s.Equal(int64(1), s.counter("fetch_failed"))
	s.Equal(int64(1), s.counter("fallback"))
}

func (s *RefresherTestSuite) TestParseFailureServesStaleCache() {
	cached := history(date(2020, 6, 1), 30)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(nil, covid19api.ErrParseFailed)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.True(result.Stale)
	s.True(errors.Is(result.FetchError, covid19api.ErrParseFailed))
}

func (s *RefresherTestSuite) TestEmptyPullDoesNotWipeCache() {
	cached := history(date(2020, 6, 1), 30)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return([]schema.CaseRecord{}, nil)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.True(result.Stale)
	s.True(errors.Is(result.FetchError, ErrNoRecords))
	s.Equal(cached, result.Records)
}

func (s *RefresherTestSuite) TestFetchFailureWithoutCache() {
	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(nil, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(nil, covid19api.ErrFetchFailed)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.Nil(result)
	s.True(errors.Is(err, covid19api.ErrFetchFailed))
}

func (s *RefresherTestSuite) TestLoadFailureAborts() {
	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(nil, store.ErrStorageUnavailable)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.Nil(result)
	s.True(errors.Is(err, store.ErrStorageUnavailable))
}

func (s *RefresherTestSuite) TestPersistFailureAborts() {
	cached := history(date(2020, 6, 1), 30)
	fetched := history(date(2020, 6, 1), 33)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), fetched).Return(store.ErrStorageUnavailable)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.Nil(result)
	s.True(errors.Is(err, store.ErrStorageUnavailable))
}

func (s *RefresherTestSuite) TestRemoteWithoutNewerData() {
	// cache ends at D, now is D+3 and the remote has nothing after D
	cached := history(date(2020, 6, 1), 30)
	s.now = date(2020, 6, 30).AddDate(0, 0, 3)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(cached, nil).Times(1)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), cached).Return(nil).Times(1)

	result, err := s.refresher(RuleCalendar).Refresh(context.Background())
	s.NoError(err)
	s.True(result.Refreshed)
	s.Equal(date(2020, 6, 30), result.LastDate())
	s.Equal(int64(1), s.counter("fetch"))
}

func (s *RefresherTestSuite) TestForceRefreshIgnoresAge() {
	cached := history(date(2020, 6, 3), 30) // fresh
	fetched := history(date(2020, 6, 3), 31)

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), fetched).Return(nil)

	result, err := s.refresher(RuleCalendar).ForceRefresh(context.Background())
	s.NoError(err)
	s.True(result.Refreshed)
	s.Equal(fetched, result.Records)
}

func (s *RefresherTestSuite) TestForceRefreshFailureKeepsFreshCache() {
	cached := history(date(2020, 6, 3), 30) // fresh

	s.storeMock.EXPECT().LoadCases(gomock.Any()).Return(cached, nil)
	s.fetcherMock.EXPECT().Fetch(gomock.Any()).Return(nil, covid19api.ErrFetchFailed)
	s.storeMock.EXPECT().ReplaceCases(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.refresher(RuleCalendar).ForceRefresh(context.Background())
	s.NoError(err)
	s.Equal(cached, result.Records)
	s.False(result.Stale)
	s.False(result.Refreshed)
	s.True(errors.Is(result.FetchError, covid19api.ErrFetchFailed))
	s.Equal(int64(1), s.counter("fallback"))
}

func TestRefresherTestSuite(t *testing.T) {
	suite.Run(t, new(RefresherTestSuite))
}
