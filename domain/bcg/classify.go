package bcg

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Category is a BCG matrix quadrant label.
type Category string

const (
	Star         Category = "star"
	CashCow      Category = "cashCow"
	QuestionMark Category = "questionMark"
	Dog          Category = "dog"
)

// Thresholds are the quadrant cutoffs for one dataset, usually the median
// share and growth of the products under analysis.
type Thresholds struct {
	MarketShare float64 `json:"market_share"`
	GrowthRate  float64 `json:"growth_rate"`
}

// Classify maps a share/growth pair onto exactly one quadrant. Pure function,
// thresholds supplied by the caller.
func Classify(marketShare, growthRate, shareThreshold, growthThreshold float64) Category {
	switch {
	case marketShare >= shareThreshold && growthRate >= growthThreshold:
		return Star
	case marketShare >= shareThreshold:
		return CashCow
	case growthRate >= growthThreshold:
		return QuestionMark
	default:
		return Dog
	}
}

// MedianThresholds computes dataset-relative cutoffs from the observed share
// and growth values. Inputs are copied before sorting.
func MedianThresholds(shares, growths []float64) Thresholds {
	return Thresholds{
		MarketShare: median(shares),
		GrowthRate:  median(growths),
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
