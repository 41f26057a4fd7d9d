// Package trends derives the chart series and KPIs shown on the trends and
// goals views. Everything here is a pure function of its input.
package trends

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fittrack-bot/internal/models"
)

// MovingAverageWindow is the trailing window used to smooth weight.
const MovingAverageWindow = 7

// kcal per gram
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

type Range string

const (
	Range7D  Range = "7d"
	Range30D Range = "30d"
	Range90D Range = "90d"
	RangeAll Range = "all"
)

var Ranges = []Range{Range7D, Range30D, Range90D, RangeAll}

func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Ranges {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown range %q, use 7d, 30d, 90d or all", s)
}

// Days returns the number of trailing entries kept, 0 meaning all.
func (r Range) Days() int {
	switch r {
	case Range7D:
		return 7
	case Range30D:
		return 30
	case Range90D:
		return 90
	}
	return 0
}

// Clamp keeps the trailing r.Days() elements of xs in their original order.
func Clamp[T any](xs []T, r Range) []T {
	n := r.Days()
	if n == 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// SortByDate returns a copy of logs ordered by date ascending. Entries with
// equal dates keep their relative order.
func SortByDate(logs []models.DailyLogEntry) []models.DailyLogEntry {
	out := make([]models.DailyLogEntry, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// MovingAverage returns the trailing mean over window values. Positions before
// window-1, and windows containing a NaN, are NaN.
func MovingAverage(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for _, v := range xs[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}

// Average is the mean of the finite values of xs, 0 when there are none.
func Average(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range xs {
		if isFinite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WeightDelta is last minus first finite value, rounded to one decimal.
func WeightDelta(xs []float64) float64 {
	first, last, n := 0.0, 0.0, 0
	for _, v := range xs {
		if !isFinite(v) {
			continue
		}
		if n == 0 {
			first = v
		}
		last = v
		n++
	}
	if n < 2 {
		return 0
	}
	return math.Round((last-first)*10) / 10
}

// EnergySplit is the average daily kcal contributed by each macro.
type EnergySplit struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

func MacroEnergySplit(proteinG, carbsG, fatG float64) EnergySplit {
	return EnergySplit{
		Protein: proteinG * kcalPerGramProtein,
		Carbs:   carbsG * kcalPerGramCarbs,
		Fat:     fatG * kcalPerGramFat,
	}
}

func (e EnergySplit) Total() float64 {
	return e.Protein + e.Carbs + e.Fat
}

// ShortLabel renders YYYY-MM-DD as MM/DD.
func ShortLabel(date string) string {
	if len(date) < 10 {
		return date
	}
	return strings.Replace(date[5:10], "-", "/", 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
