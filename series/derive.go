package series

import (
	"github.com/montanaflynn/stats"
)

// Delta returns the day to day change of a cumulative counter. The first
// point has no previous day and is absent.
func Delta(counter []int64) []Value {
	out := make([]Value, len(counter))
	for i := 1; i < len(counter); i++ {
		out[i] = Of(float64(counter[i] - counter[i-1]))
	}
	return out
}

// MovingAverage returns the trailing mean of window points ending at each
// index. A point is absent until the window is full of valid values.
func MovingAverage(values []Value, window int) []Value {
	out := make([]Value, len(values))
	if window <= 0 {
		return out
	}

	buf := make([]float64, 0, window)
	for i := range values {
		if i < window-1 {
			continue
		}

		buf = buf[:0]
		for _, v := range values[i-window+1 : i+1] {
			if !v.Valid {
				break
			}
			buf = append(buf, v.Float)
		}
		if len(buf) != window {
			continue
		}

		mean, err := stats.Mean(buf)
		if err != nil {
			continue
		}
		out[i] = Of(mean)
	}
	return out
}

// ChangeRate returns the percentage change from old to new
func ChangeRate(new, old float64) float64 {
	if old == 0 {
		if new == 0 {
			return float64(0)
		} else {
			return float64(100)
		}
	}

	return (new - old) / old * 100
}
