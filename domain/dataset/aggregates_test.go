package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_NumericColumn(t *testing.T) {
	ds := &Dataset{
		Columns: []Column{{ID: "price", Type: TypeNumber}},
		Rows: []Row{
			{"price": "10"},
			{"price": "20"},
			{"price": "abc"},
			{"price": ""},
		},
	}

	summary := Summarize(ds)
	assert.Equal(t, 15.0, summary.Numbers["avg_price"], "invalid cells are excluded, not zeroed")
	assert.Equal(t, 10.0, summary.Numbers["min_price"])
	assert.Equal(t, 20.0, summary.Numbers["max_price"])
}

func TestSummarize_NumericColumnWithNoValidValues(t *testing.T) {
	ds := &Dataset{
		Columns: []Column{{ID: "price", Type: TypeNumber}},
		Rows:    []Row{{"price": "n/a"}, {"price": ""}},
	}

	summary := Summarize(ds)
	assert.NotContains(t, summary.Numbers, "avg_price")
	assert.NotContains(t, summary.Numbers, "min_price")
	assert.NotContains(t, summary.Numbers, "max_price")
}

func TestSummarize_FrequencyTable(t *testing.T) {
	ds := &Dataset{
		Columns: []Column{
			{ID: "region", Type: TypeSelect},
			{ID: "notes", Type: TypeTextarea},
		},
		Rows: []Row{
			{"region": "North", "notes": "x"},
			{"region": "North", "notes": "y"},
			{"region": "  ", "notes": "z"},
			{"region": "South", "notes": ""},
		},
	}

	summary := Summarize(ds)
	freq, ok := summary.Frequencies["freq_region"]
	require.True(t, ok)
	assert.Equal(t, 2, freq["North"])
	assert.Equal(t, 1, freq["South"])
	assert.Len(t, freq, 2, "blank values are skipped")
	assert.NotContains(t, summary.Frequencies, "freq_notes", "textarea columns are not tabulated")
}

func TestNumericColumn(t *testing.T) {
	ds := &Dataset{
		Columns: []Column{{ID: "share", Type: TypeNumber}},
		Rows:    []Row{{"share": "25.5"}, {"share": "bad"}, {"share": "8"}},
	}
	assert.Equal(t, []float64{25.5, 8}, ds.NumericColumn("share"))
}
