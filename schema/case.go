package schema

import "time"

const (
	CaseCollection = "covidCases"
	CaseTable      = "covid_cases"
)

// CaseRecord is a daily snapshot of the epidemic counters of one country.
// Confirmed, Deaths and Recovered are cumulative. Active is derived upstream.
type CaseRecord struct {
	ID        uint      `gorm:"primary_key" json:"-" bson:"-"`
	Country   string    `gorm:"not null" json:"country" bson:"country"`
	Date      time.Time `gorm:"not null" json:"date" bson:"date"`
	Confirmed int64     `json:"confirmed" bson:"confirmed"`
	Deaths    int64     `json:"deaths" bson:"deaths"`
	Recovered int64     `json:"recovered" bson:"recovered"`
	Active    int64     `json:"active" bson:"active"`
}

// TableName overrides the gorm default table name
func (CaseRecord) TableName() string {
	return CaseTable
}

// Day returns the calendar day of the record formatted as yyyy-mm-dd
func (r CaseRecord) Day() string {
	return r.Date.Format("2006-01-02")
}
