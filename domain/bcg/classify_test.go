package bcg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		share  float64
		growth float64
		want   Category
	}{
		{"high share high growth", 25, 18, Star},
		{"high share low growth", 45, 3, CashCow},
		{"low share high growth", 8, 22, QuestionMark},
		{"low share low growth", 5, 2, Dog},
		{"exactly on both thresholds", 20, 10, Star},
		{"on share threshold only", 20, 9.9, CashCow},
		{"on growth threshold only", 19.9, 10, QuestionMark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.share, tt.growth, 20, 10))
		})
	}
}

func TestMedianThresholds(t *testing.T) {
	thresholds := MedianThresholds([]float64{8, 25, 45}, []float64{3, 18, 22})
	assert.Equal(t, 25.0, thresholds.MarketShare)
	assert.Equal(t, 18.0, thresholds.GrowthRate)
}

func TestMedianThresholds_Empty(t *testing.T) {
	thresholds := MedianThresholds(nil, nil)
	assert.Equal(t, 0.0, thresholds.MarketShare)
	assert.Equal(t, 0.0, thresholds.GrowthRate)
}

func TestMedianThresholds_DoesNotMutateInput(t *testing.T) {
	shares := []float64{45, 8, 25}
	MedianThresholds(shares, shares)
	assert.Equal(t, []float64{45, 8, 25}, shares)
}
