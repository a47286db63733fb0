package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/covid-dashboard/series"
	"github.com/bitmark-inc/covid-dashboard/share/casecsv"
	"github.com/bitmark-inc/covid-dashboard/store"
)

const maxWindow = 60

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.currentView())
}

func (s *Server) getCases(c *gin.Context) {
	v := s.currentView()
	c.JSON(http.StatusOK, gin.H{
		"country":  v.Country,
		"stale":    v.Stale,
		"records":  v.Records,
		"rejected": len(v.Rejected),
	})
}

type dailyPoint struct {
	Date           string       `json:"date"`
	NewConfirmed   series.Value `json:"new_confirmed"`
	NewDeaths      series.Value `json:"new_deaths"`
	NewRecovered   series.Value `json:"new_recovered"`
	ActiveChange   series.Value `json:"active_change"`
	NewConfirmedMA series.Value `json:"new_confirmed_ma"`
	NewDeathsMA    series.Value `json:"new_deaths_ma"`
	NewRecoveredMA series.Value `json:"new_recovered_ma"`
}

// getDaily returns the daily changes. The window query parameter overrides
// the moving average window.
func (s *Server) getDaily(c *gin.Context) {
	v := s.currentView()
	daily := v.Daily
	window := s.window

	if w := c.Query("window"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 || n > maxWindow {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
			return
		}
		window = n
		daily = series.DailyOf(v.Records, window)
	}

	days := make([]dailyPoint, len(daily.Dates))
	for i, d := range daily.Dates {
		days[i] = dailyPoint{
			Date:           d.Format(dateLayout),
			NewConfirmed:   daily.NewConfirmed[i],
			NewDeaths:      daily.NewDeaths[i],
			NewRecovered:   daily.NewRecovered[i],
			ActiveChange:   daily.ActiveChange[i],
			NewConfirmedMA: daily.NewConfirmedMA[i],
			NewDeathsMA:    daily.NewDeathsMA[i],
			NewRecoveredMA: daily.NewRecoveredMA[i],
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"country": v.Country,
		"window":  window,
		"days":    days,
	})
}

func (s *Server) getSummary(c *gin.Context) {
	v := s.currentView()
	if len(v.Rows) == 0 {
		abortWithEncoding(c, http.StatusNotFound, errorNoCaseData)
		return
	}

	lastDate := ""
	if d := v.LastDate(); !d.IsZero() {
		lastDate = d.Format(dateLayout)
	}

	c.JSON(http.StatusOK, gin.H{
		"country":     v.Country,
		"stale":       v.Stale,
		"fetch_error": v.FetchErr,
		"last_date":   lastDate,
		"checked_at":  v.CheckedAt,
		"summary":     v.Rows,
	})
}

func (s *Server) exportCases(c *gin.Context) {
	v := s.currentView()
	b, err := casecsv.Marshal(v.Records)
	if shouldInterupt(err, c) {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cases.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

// refresh re-runs the refresh and rebuilds the dashboard. force=true skips
// the staleness check.
func (s *Server) refresh(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))

	refresh := s.refresher.Refresh
	if force {
		refresh = s.refresher.ForceRefresh
	}

	result, err := refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrStorageUnavailable) {
			abortWithEncoding(c, http.StatusServiceUnavailable, errorStorageUnavailable, err)
			return
		}
		abortWithEncoding(c, http.StatusBadGateway, errorRefreshFail, err)
		return
	}

	s.setView(result)
	v := s.currentView()
	c.JSON(http.StatusOK, gin.H{
		"refreshed": result.Refreshed,
		"stale":     v.Stale,
		"records":   len(v.Records),
		"last_date": v.LastDate().Format(dateLayout),
	})
}
