package api

import (
	"fmt"
	"html/template"
	"time"

	"github.com/bitmark-inc/covid-dashboard/consts"
	"github.com/bitmark-inc/covid-dashboard/refresher"
	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/series"
)

const dateLayout = "2006-01-02"

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(dateLayout)
	},
}

// trace is a plotly.js trace
type trace struct {
	Type    string        `json:"type"`
	Mode    string        `json:"mode,omitempty"`
	Name    string        `json:"name,omitempty"`
	X       []string      `json:"x,omitempty"`
	Y       []interface{} `json:"y,omitempty"`
	XAxis   string        `json:"xaxis,omitempty"`
	YAxis   string        `json:"yaxis,omitempty"`
	Visible string        `json:"visible,omitempty"`
	Header  *tableCells   `json:"header,omitempty"`
	Cells   *tableCells   `json:"cells,omitempty"`
}

type tableCells struct {
	Values [][]string `json:"values"`
	Align  string     `json:"align"`
}

type figure struct {
	ID     string                 `json:"id"`
	Data   []trace                `json:"data"`
	Layout map[string]interface{} `json:"layout"`
}

// dashboard is everything the page and the api serve. It is rebuilt on
// every refresh.
type dashboard struct {
	Country   string
	Records   []schema.CaseRecord
	Rejected  []schema.CaseRecord
	Daily     series.Daily
	Summary   series.Summary
	Rows      []series.SummaryRow
	Figures   []figure
	Stale     bool
	FetchErr  string
	CheckedAt time.Time
	Source    string
}

func newDashboard(country string, result *refresher.Result, window int) *dashboard {
	if window <= 0 {
		window = consts.MovingAverageWindow
	}
	d := &dashboard{
		Country: country,
		Source:  consts.SourceHomepage,
	}
	if result == nil {
		return d
	}

	d.Stale = result.Stale
	if result.FetchError != nil {
		d.FetchErr = result.FetchError.Error()
	}
	d.CheckedAt = result.CheckedAt

	d.Records, d.Rejected = series.DropDecreasing(result.Records)
	for _, r := range d.Rejected {
		log.WithField("date", r.Day()).Warn("drop case record with decreasing counter")
	}

	d.Daily = series.DailyOf(d.Records, window)
	summary, ok := series.Summarize(d.Records, d.Daily, window)
	if !ok {
		return d
	}
	d.Summary = summary
	d.Rows = summary.Rows(window)

	d.Figures = []figure{
		summaryTable(country, d.Rows),
		cumulativeFigure(d.Records),
		dailyFigure("plot_new_cases", "New confirmed cases", d.Daily.Dates, d.Daily.NewConfirmed, d.Daily.NewConfirmedMA, window),
		dailyFigure("plot_new_recovered", "Daily recoveries", d.Daily.Dates, d.Daily.NewRecovered, d.Daily.NewRecoveredMA, window),
		dailyFigure("plot_new_deaths", "Daily deaths", d.Daily.Dates, d.Daily.NewDeaths, d.Daily.NewDeathsMA, window),
	}
	return d
}

// LastDate of the served records
func (d *dashboard) LastDate() time.Time {
	if len(d.Records) == 0 {
		return time.Time{}
	}
	return d.Records[len(d.Records)-1].Date
}

func summaryTable(country string, rows []series.SummaryRow) figure {
	stats := make([]string, len(rows))
	values := make([]string, len(rows))
	for i, r := range rows {
		stats[i] = r.Stat
		values[i] = r.Value
	}

	return figure{
		ID: "summary_table",
		Data: []trace{{
			Type:   "table",
			Header: &tableCells{Values: [][]string{{"Stat"}, {country}}, Align: "left"},
			Cells:  &tableCells{Values: [][]string{stats, values}, Align: "left"},
		}},
		Layout: map[string]interface{}{
			"height": 400,
			"width":  600,
		},
	}
}

func dateLabels(dates []time.Time) []string {
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format(dateLayout)
	}
	return labels
}

func points(values []series.Value) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}

// cumulativeFigure puts one facet per counter side by side, sharing the y axis
func cumulativeFigure(records []schema.CaseRecord) figure {
	c := series.ColumnsOf(records)
	x := dateLabels(c.Dates)
	facets := []struct {
		name   string
		values []int64
	}{
		{"Confirmed", c.Confirmed},
		{"Deaths", c.Deaths},
		{"Recovered", c.Recovered},
		{"Active", c.Active},
	}

	var lo, hi int64
	for i, f := range facets {
		for j, v := range f.values {
			if (i == 0 && j == 0) || v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	layout := map[string]interface{}{
		"hovermode":  "x",
		"showlegend": false,
	}
	data := make([]trace, 0, len(facets))
	annotations := make([]map[string]interface{}, 0, len(facets))
	width := 1.0 / float64(len(facets))
	for i, f := range facets {
		suffix := ""
		if i > 0 {
			suffix = fmt.Sprintf("%d", i+1)
		}
		data = append(data, trace{
			Type:  "scatter",
			Mode:  "lines",
			Name:  f.name,
			X:     x,
			Y:     points(series.Floats(f.values)),
			XAxis: "x" + suffix,
			YAxis: "y" + suffix,
		})

		lower, upper := float64(i)*width+0.01, float64(i+1)*width-0.01
		layout["xaxis"+suffix] = map[string]interface{}{"domain": []float64{lower, upper}, "anchor": "y" + suffix}
		yaxis := map[string]interface{}{
			"anchor":     "x" + suffix,
			"fixedrange": true,
			"range":      []int64{lo, hi},
			"title":      map[string]interface{}{"text": ""},
		}
		if i > 0 {
			yaxis["matches"] = "y"
			yaxis["showticklabels"] = false
		}
		layout["yaxis"+suffix] = yaxis
		annotations = append(annotations, map[string]interface{}{
			"text":      f.name,
			"showarrow": false,
			"xref":      "paper",
			"yref":      "paper",
			"x":         (lower + upper) / 2,
			"y":         1.05,
		})
	}
	layout["annotations"] = annotations

	return figure{ID: "plot_cumulative", Data: data, Layout: layout}
}

// dailyFigure plots a daily series with its moving average hidden by default
func dailyFigure(id, title string, dates []time.Time, daily, average []series.Value, window int) figure {
	x := dateLabels(dates)
	return figure{
		ID: id,
		Data: []trace{
			{Type: "scatter", Mode: "lines", Name: title, X: x, Y: points(daily)},
			{
				Type:    "scatter",
				Mode:    "lines",
				Name:    fmt.Sprintf("%s (%d day MA)", title, window),
				X:       x,
				Y:       points(average),
				Visible: "legendonly",
			},
		},
		Layout: map[string]interface{}{
			"title":  title,
			"legend": map[string]interface{}{"orientation": "h"},
			"yaxis":  map[string]interface{}{"fixedrange": true},
		},
	}
}
