// Package analytics computes metric tables from an immutable transaction
// collection. Every function is pure: the same input and options produce the
// same rows in the same order. Empty input yields empty tables, never an
// error, and every ratio guards its denominator.
package analytics

import (
	"math"
	"slices"
	"time"
)

// Options carries the tunable thresholds passed explicitly into each
// aggregation. Callers normally start from DefaultOptions.
type Options struct {
	// ChurnRecencyThresholdDays marks a customer at risk once this many
	// days pass without a purchase.
	ChurnRecencyThresholdDays int
	// HighValuePercentile (0-100] of lifetime spend above which a customer
	// counts as high value.
	HighValuePercentile float64
	// AnomalyQuantityCap flags any transaction buying more units than this.
	AnomalyQuantityCap int
	// AnomalyPriceStddevMult scales both stddev-based anomaly rules.
	AnomalyPriceStddevMult float64
	// DiscountBucketEdges are ascending bucket boundaries starting at 0.
	DiscountBucketEdges []float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ChurnRecencyThresholdDays: 30,
		HighValuePercentile:       90,
		AnomalyQuantityCap:        50,
		AnomalyPriceStddevMult:    3,
		DiscountBucketEdges:       []float64{0, 0.1, 0.2, 0.3, 0.5, 1.0},
	}
}

const dateLayout = "2006-01-02"

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// wholeDays truncates an elapsed duration to full days, clamped at zero.
func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks, matching the conventional dataframe
// definition. An empty input yields 0.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// meanStddev returns the mean and sample standard deviation. Fewer than two
// values have a stddev of 0.
func meanStddev(values []float64) (mean, stddev float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

// safeDiv divides, resolving a zero denominator to 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
