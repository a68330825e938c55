package dataset

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// AggregateSummary holds per-column summary statistics. Numeric columns get
// avg_/min_/max_ keys, text and select columns get a freq_ frequency table.
// Derived strictly from a Dataset; recompute rather than mutate when the
// source changes.
type AggregateSummary struct {
	Numbers     map[string]float64       `json:"numbers"`
	Frequencies map[string]map[string]int `json:"frequencies"`
}

// Summarize reduces a dataset into aggregates small enough to embed in a
// prompt. Unparsable or empty numeric cells are excluded from the computation,
// never treated as zero; a numeric column with no valid values emits no keys
// at all.
func Summarize(d *Dataset) AggregateSummary {
	summary := AggregateSummary{
		Numbers:     make(map[string]float64),
		Frequencies: make(map[string]map[string]int),
	}

	for _, col := range d.Columns {
		switch col.Type {
		case TypeNumber:
			values := collectNumeric(d.Rows, col.ID)
			if len(values) == 0 {
				continue
			}
			data := stats.Float64Data(values)
			if avg, err := data.Mean(); err == nil {
				summary.Numbers["avg_"+col.ID] = avg
			}
			if min, err := data.Min(); err == nil {
				summary.Numbers["min_"+col.ID] = min
			}
			if max, err := data.Max(); err == nil {
				summary.Numbers["max_"+col.ID] = max
			}
		case TypeText, TypeSelect:
			freq := make(map[string]int)
			for _, row := range d.Rows {
				value := strings.TrimSpace(row[col.ID])
				if value == "" {
					continue
				}
				freq[value]++
			}
			if len(freq) > 0 {
				summary.Frequencies["freq_"+col.ID] = freq
			}
		}
	}

	return summary
}

// NumericColumn extracts the valid float values of one column. Useful for
// threshold computation over share/growth columns.
func (d *Dataset) NumericColumn(id string) []float64 {
	return collectNumeric(d.Rows, id)
}

func collectNumeric(rows []Row, colID string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		raw := strings.TrimSpace(row[colID])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}
