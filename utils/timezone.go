package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var locations map[string]*time.Location = map[string]*time.Location{}

func init() {
	for i := time.Duration(-12); i < 15; i++ {
		name := fmt.Sprintf("GMT%+d", i)
		locations[name] = time.FixedZone(name, int((i * time.Hour).Seconds()))
	}
}

// GetLocation returns a location of a GMT-X or GMT+X:MM format timezone,
// falling back to the IANA database for names like Asia/Kuala_Lumpur.
func GetLocation(timezone string) *time.Location {
	name := strings.ToUpper(timezone)
	if tz, ok := locations[name]; ok {
		return tz
	}

	if strings.HasPrefix(name, "GMT") {
		return parseGMTOffset(name)
	}

	if tz, err := time.LoadLocation(timezone); err == nil {
		return tz
	}
	return nil
}

func parseGMTOffset(name string) *time.Location {
	offset := strings.TrimPrefix(name, "GMT")
	if len(offset) < 2 || (offset[0] != '+' && offset[0] != '-') {
		return nil
	}
	sign := 1
	if offset[0] == '-' {
		sign = -1
	}

	parts := strings.SplitN(offset[1:], ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours > 14 {
		return nil
	}
	minutes := 0
	if len(parts) == 2 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil || minutes < 0 || minutes >= 60 {
			return nil
		}
	}

	seconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(name, seconds)
}

// CalendarDay truncates t to midnight of its calendar day in loc. The
// result is expressed in UTC so days from different zones compare equal.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b
func DaysBetween(a, b time.Time) int {
	// a and b are both midnights in UTC, so no DST correction is needed
	return int(b.Sub(a).Hours() / 24)
}
