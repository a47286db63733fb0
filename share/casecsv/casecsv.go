package casecsv

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/bitmark-inc/covid-dashboard/schema"
)

// Row is the csv layout of a case record, with the column names of the
// upstream API
type Row struct {
	Country   string `csv:"Country"`
	Date      string `csv:"Date"`
	Confirmed int64  `csv:"Confirmed"`
	Deaths    int64  `csv:"Deaths"`
	Recovered int64  `csv:"Recovered"`
	Active    int64  `csv:"Active"`
}

func rows(records []schema.CaseRecord) []*Row {
	out := make([]*Row, len(records))
	for i, r := range records {
		out[i] = &Row{
			Country:   r.Country,
			Date:      r.Day(),
			Confirmed: r.Confirmed,
			Deaths:    r.Deaths,
			Recovered: r.Recovered,
			Active:    r.Active,
		}
	}
	return out
}

// Marshal returns records as csv with a header line
func Marshal(records []schema.CaseRecord) ([]byte, error) {
	return gocsv.MarshalBytes(rows(records))
}

// Write writes records as csv with a header line into w
func Write(w io.Writer, records []schema.CaseRecord) error {
	return gocsv.Marshal(rows(records), w)
}
