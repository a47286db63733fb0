package series

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

// DropDecreasing rejects the records that break the cumulative counters
// (Confirmed, Deaths, Recovered) for a single day: a dip below the last
// kept record that the next day recovers from, or a spike above the next
// two days. A drop the next day confirms is a new level and is kept. A drop
// on the latest day is rejected until the following day confirms it.
// Records whose date is not after the last kept one are rejected too. It
// returns the kept and the rejected records, both in input order.
func DropDecreasing(records []schema.CaseRecord) ([]schema.CaseRecord, []schema.CaseRecord) {
	kept := make([]schema.CaseRecord, 0, len(records))
	var rejected []schema.CaseRecord

	for i, r := range records {
		if len(kept) > 0 {
			last := kept[len(kept)-1]
			if !r.Date.After(last.Date) || outlier(last, r, records[i+1:]) {
				rejected = append(rejected, r)
				continue
			}
		}
		kept = append(kept, r)
	}
	return kept, rejected
}

func counters(r schema.CaseRecord) [3]int64 {
	return [3]int64{r.Confirmed, r.Deaths, r.Recovered}
}

// outlier reports whether any counter of cur is a single day dip or spike
// between prev and the records following cur
func outlier(prev, cur schema.CaseRecord, following []schema.CaseRecord) bool {
	p, c := counters(prev), counters(cur)
	var next [][3]int64
	for j := 0; j < len(following) && j < 2; j++ {
		next = append(next, counters(following[j]))
	}

	for k := range c {
		if c[k] < p[k] {
			// dip, or a drop nothing confirms yet
			if len(next) == 0 || next[0][k] >= p[k] {
				return true
			}
			continue
		}
		// spike, the following days carry on from prev
		if len(next) == 2 && c[k] > next[0][k] && next[0][k] >= p[k] && c[k] > next[1][k] {
			return true
		}
	}
	return false
}

// Columns is a column view over case records
type Columns struct {
	Dates     []time.Time
	Confirmed []int64
	Deaths    []int64
	Recovered []int64
	Active    []int64
}

func ColumnsOf(records []schema.CaseRecord) Columns {
	c := Columns{
		Dates:     make([]time.Time, len(records)),
		Confirmed: make([]int64, len(records)),
		Deaths:    make([]int64, len(records)),
		Recovered: make([]int64, len(records)),
		Active:    make([]int64, len(records)),
	}
	for i, r := range records {
		c.Dates[i] = r.Date
		c.Confirmed[i] = r.Confirmed
		c.Deaths[i] = r.Deaths
		c.Recovered[i] = r.Recovered
		c.Active[i] = r.Active
	}
	return c
}

// Daily holds the day to day changes and their moving averages
type Daily struct {
	Dates          []time.Time
	NewConfirmed   []Value
	NewDeaths      []Value
	NewRecovered   []Value
	ActiveChange   []Value
	NewConfirmedMA []Value
	NewDeathsMA    []Value
	NewRecoveredMA []Value
}

// DailyOf derives the daily series of records with a window-day moving average
func DailyOf(records []schema.CaseRecord, window int) Daily {
	c := ColumnsOf(records)
	d := Daily{
		Dates:        c.Dates,
		NewConfirmed: Delta(c.Confirmed),
		NewDeaths:    Delta(c.Deaths),
		NewRecovered: Delta(c.Recovered),
		ActiveChange: Delta(c.Active),
	}
	d.NewConfirmedMA = MovingAverage(d.NewConfirmed, window)
	d.NewDeathsMA = MovingAverage(d.NewDeaths, window)
	d.NewRecoveredMA = MovingAverage(d.NewRecovered, window)
	return d
}

// Summary is the situation of the latest day
type Summary struct {
	Date         time.Time
	Confirmed    int64
	Deaths       int64
	Recovered    int64
	Active       int64
	NewConfirmed Value
	NewDeaths    Value
	NewRecovered Value
	ActiveChange Value

	// WeeklyChange is the change rate in percent of the new cases moving
	// average against one window earlier
	WeeklyChange Value
}

// Summarize returns the summary of the last day of daily. ok is false when
// there are no records.
func Summarize(records []schema.CaseRecord, daily Daily, window int) (Summary, bool) {
	n := len(records)
	if n == 0 || len(daily.NewConfirmed) != n {
		return Summary{}, false
	}

	last := records[n-1]
	s := Summary{
		Date:         last.Date,
		Confirmed:    last.Confirmed,
		Deaths:       last.Deaths,
		Recovered:    last.Recovered,
		Active:       last.Active,
		NewConfirmed: daily.NewConfirmed[n-1],
		NewDeaths:    daily.NewDeaths[n-1],
		NewRecovered: daily.NewRecovered[n-1],
		ActiveChange: daily.ActiveChange[n-1],
	}

	if window > 0 && n-1-window >= 0 {
		now, before := daily.NewConfirmedMA[n-1], daily.NewConfirmedMA[n-1-window]
		if now.Valid && before.Valid {
			s.WeeklyChange = Of(ChangeRate(now.Float, before.Float))
		}
	}
	return s, true
}

// SummaryRow is a formatted line of the summary table
type SummaryRow struct {
	Stat  string `json:"stat"`
	Value string `json:"value"`
}

// Rows formats the summary with thousands separators
func (s Summary) Rows(window int) []SummaryRow {
	p := message.NewPrinter(language.English)
	count := func(v Value) string {
		if !v.Valid {
			return "-"
		}
		return p.Sprintf("%.0f", v.Float)
	}

	rows := []SummaryRow{
		{"Confirmed", p.Sprintf("%d", s.Confirmed)},
		{"Deaths", p.Sprintf("%d", s.Deaths)},
		{"Recovered", p.Sprintf("%d", s.Recovered)},
		{"Active", p.Sprintf("%d", s.Active)},
		{"Date", s.Date.Format("2006-01-02")},
		{"New confirmed cases", count(s.NewConfirmed)},
		{"New deaths", count(s.NewDeaths)},
		{"New recoveries", count(s.NewRecovered)},
		{"Change in active cases today", count(s.ActiveChange)},
	}

	change := "-"
	if s.WeeklyChange.Valid {
		change = p.Sprintf("%+.1f%%", s.WeeklyChange.Float)
	}
	return append(rows, SummaryRow{fmt.Sprintf("New cases (%d day MA) change", window), change})
}
