package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

var day0 = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

func record(day int, confirmed, deaths, recovered, active int64) schema.CaseRecord {
	return schema.CaseRecord{
		Country:   "Malaysia",
		Date:      day0.AddDate(0, 0, day),
		Confirmed: confirmed,
		Deaths:    deaths,
		Recovered: recovered,
		Active:    active,
	}
}

func TestDropDecreasing(t *testing.T) {
	records := []schema.CaseRecord{
		record(0, 10, 0, 0, 10),
		record(1, 15, 1, 2, 12),
		record(2, 14, 1, 2, 11), // confirmed goes down
		record(3, 20, 1, 1, 18), // recovered goes down
		record(4, 22, 2, 4, 16),
		record(4, 23, 2, 4, 17), // duplicate date
		record(5, 25, 2, 5, 18),
	}

	kept, rejected := DropDecreasing(records)
	assert.Equal(t, []schema.CaseRecord{records[0], records[1], records[4], records[6]}, kept)
	assert.Equal(t, []schema.CaseRecord{records[2], records[3], records[5]}, rejected)

	// active is not cumulative
	kept, rejected = DropDecreasing([]schema.CaseRecord{record(0, 10, 0, 0, 10), record(1, 11, 0, 5, 6)})
	assert.Len(t, kept, 2)
	assert.Len(t, rejected, 0)

	kept, rejected = DropDecreasing(nil)
	assert.Len(t, kept, 0)
	assert.Len(t, rejected, 0)
}

func confirmed(values ...int64) []schema.CaseRecord {
	records := make([]schema.CaseRecord, len(values))
	for i, v := range values {
		records[i] = record(i, v, 0, 0, v)
	}
	return records
}

func confirmedOf(records []schema.CaseRecord) []int64 {
	values := make([]int64, len(records))
	for i, r := range records {
		values[i] = r.Confirmed
	}
	return values
}

func TestDropDecreasingSpike(t *testing.T) {
	kept, rejected := DropDecreasing(confirmed(10, 20, 1000, 30, 40, 50))
	assert.Equal(t, []int64{10, 20, 30, 40, 50}, confirmedOf(kept))
	assert.Equal(t, []int64{1000}, confirmedOf(rejected))

	// too close to the end to tell a spike apart
	kept, rejected = DropDecreasing(confirmed(10, 20, 1000, 1100))
	assert.Equal(t, []int64{10, 20, 1000, 1100}, confirmedOf(kept))
	assert.Len(t, rejected, 0)
}

func TestDropDecreasingDip(t *testing.T) {
	kept, rejected := DropDecreasing(confirmed(10, 20, 5, 30, 40))
	assert.Equal(t, []int64{10, 20, 30, 40}, confirmedOf(kept))
	assert.Equal(t, []int64{5}, confirmedOf(rejected))
}

func TestDropDecreasingPermanentDrop(t *testing.T) {
	records := []schema.CaseRecord{
		record(0, 10, 0, 5, 5),
		record(1, 12, 0, 6, 6),
		record(2, 15, 1, 7, 7),
		record(3, 18, 1, 0, 17), // recovered is no longer reported
		record(4, 20, 1, 0, 19),
		record(5, 25, 2, 0, 23),
	}

	kept, rejected := DropDecreasing(records)
	assert.Equal(t, records, kept)
	assert.Len(t, rejected, 0)

	// a drop on the latest day waits for the next day
	kept, rejected = DropDecreasing(records[:4])
	assert.Equal(t, records[:3], kept)
	assert.Equal(t, records[3:4], rejected)
}

func TestDailyOf(t *testing.T) {
	records := []schema.CaseRecord{
		record(0, 10, 0, 0, 10),
		record(1, 15, 1, 2, 12),
		record(2, 15, 1, 4, 10),
		record(3, 20, 2, 4, 14),
	}

	d := DailyOf(records, 2)
	assert.Len(t, d.Dates, 4)
	assert.Equal(t, []Value{{}, Of(5), Of(0), Of(5)}, d.NewConfirmed)
	assert.Equal(t, []Value{{}, Of(1), Of(0), Of(1)}, d.NewDeaths)
	assert.Equal(t, []Value{{}, Of(2), Of(2), Of(0)}, d.NewRecovered)
	assert.Equal(t, []Value{{}, Of(2), Of(-2), Of(4)}, d.ActiveChange)
	assert.Equal(t, []Value{{}, {}, Of(2.5), Of(2.5)}, d.NewConfirmedMA)
	assert.Equal(t, []Value{{}, {}, Of(2), Of(1)}, d.NewRecoveredMA)
}

func TestSummarize(t *testing.T) {
	_, ok := Summarize(nil, Daily{}, 7)
	assert.False(t, ok)

	records := []schema.CaseRecord{
		record(0, 10, 0, 0, 10),
		record(1, 12, 0, 0, 12),
		record(2, 16, 0, 0, 16),
		record(3, 22, 0, 1, 21),
	}
	d := DailyOf(records, 1)
	s, ok := Summarize(records, d, 1)
	assert.True(t, ok)
	assert.Equal(t, records[3].Date, s.Date)
	assert.Equal(t, int64(22), s.Confirmed)
	assert.Equal(t, int64(21), s.Active)
	assert.Equal(t, Of(6), s.NewConfirmed)
	assert.Equal(t, Of(0), s.NewDeaths)
	assert.Equal(t, Of(1), s.NewRecovered)
	assert.Equal(t, Of(5), s.ActiveChange)
	// 6 new cases against 4 the day before
	assert.Equal(t, Of(50), s.WeeklyChange)

	s, ok = Summarize(records[:1], DailyOf(records[:1], 7), 7)
	assert.True(t, ok)
	assert.False(t, s.NewConfirmed.Valid)
	assert.False(t, s.WeeklyChange.Valid)
}

func TestSummaryRows(t *testing.T) {
	s := Summary{
		Date:         day0,
		Confirmed:    8639,
		Deaths:       121,
		Recovered:    8354,
		Active:       164,
		NewConfirmed: Of(1234),
		NewDeaths:    Of(0),
		ActiveChange: Of(-4),
		WeeklyChange: Of(12.5),
	}

	rows := s.Rows(7)
	assert.Len(t, rows, 10)
	assert.Equal(t, SummaryRow{"Confirmed", "8,639"}, rows[0])
	assert.Equal(t, SummaryRow{"Date", "2020-06-01"}, rows[4])
	assert.Equal(t, SummaryRow{"New confirmed cases", "1,234"}, rows[5])
	assert.Equal(t, SummaryRow{"New deaths", "0"}, rows[6])
	assert.Equal(t, SummaryRow{"New recoveries", "-"}, rows[7])
	assert.Equal(t, SummaryRow{"Change in active cases today", "-4"}, rows[8])
	assert.Equal(t, SummaryRow{"New cases (7 day MA) change", "+12.5%"}, rows[9])
}
