package bcg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"coachlens/domain/dataset"
	"coachlens/internal/errors"
)

// Product is one classified row of a BCG analysis.
type Product struct {
	Name        string   `json:"name"`
	Quantity    float64  `json:"quantity"`
	Category    Category `json:"category"`
	MarketShare float64  `json:"market_share"`
	GrowthRate  float64  `json:"growth_rate"`
}

// Matrix is a computed BCG analysis over one dataset: per-product
// classifications, quadrant counts, and the thresholds that produced them.
type Matrix struct {
	Thresholds  Thresholds        `json:"thresholds"`
	Counts      map[Category]int  `json:"counts"`
	Total       int               `json:"total"`
	Products    []Product         `json:"products"`
	TopProducts []Product         `json:"top_products"`
	ColumnRoles map[string]string `json:"column_roles"`
}

// Column roles resolved by mapColumns.
const (
	roleName     = "name"
	roleShare    = "market_share"
	roleGrowth   = "growth_rate"
	roleQuantity = "quantity"
)

var (
	shareTerms    = []string{"share", "marketshare", "sharerate"}
	growthTerms   = []string{"growth", "marketgrowth", "growthrate"}
	quantityTerms = []string{"quantity", "count", "units", "sold"}
	nameTerms     = []string{"name", "product", "item", "description"}
)

// BuildMatrix classifies every dataset row against median thresholds and
// extracts the top 10 products by quantity. Column roles are resolved by
// header synonyms first, then positionally among the numeric columns; a
// dataset where no share/growth pair can be found is rejected as malformed.
func BuildMatrix(ds *dataset.Dataset) (*Matrix, error) {
	roles, err := mapColumns(ds)
	if err != nil {
		return nil, err
	}

	shareCol, growthCol := roles[roleShare], roles[roleGrowth]
	shares := ds.NumericColumn(shareCol)
	growths := ds.NumericColumn(growthCol)
	if len(shares) == 0 || len(growths) == 0 {
		return nil, errors.MalformedDataset(fmt.Sprintf(
			"columns %q and %q have no numeric values to classify", shareCol, growthCol))
	}
	thresholds := MedianThresholds(shares, growths)

	matrix := &Matrix{
		Thresholds:  thresholds,
		Counts:      map[Category]int{Star: 0, CashCow: 0, QuestionMark: 0, Dog: 0},
		ColumnRoles: roles,
	}

	for i, row := range ds.Rows {
		share, ok := parseCell(row[shareCol])
		if !ok {
			continue
		}
		growth, ok := parseCell(row[growthCol])
		if !ok {
			continue
		}

		product := Product{
			Name:        productName(roles, row, i),
			Quantity:    1,
			Category:    Classify(share, growth, thresholds.MarketShare, thresholds.GrowthRate),
			MarketShare: share,
			GrowthRate:  growth,
		}
		if qtyCol, ok := roles[roleQuantity]; ok {
			if qty, ok := parseCell(row[qtyCol]); ok {
				product.Quantity = qty
			}
		}

		matrix.Products = append(matrix.Products, product)
		matrix.Counts[product.Category]++
	}

	matrix.Total = len(matrix.Products)
	matrix.TopProducts = topByQuantity(matrix.Products, 10)
	return matrix, nil
}

// mapColumns resolves which dataset columns play the share, growth, quantity,
// and name roles. Synonym matching runs on lowercased headers with spaces
// removed; when synonyms find nothing, the first two unclaimed numeric columns
// become share and growth, and the next one quantity.
func mapColumns(ds *dataset.Dataset) (map[string]string, error) {
	roles := make(map[string]string)
	claimed := make(map[string]bool)

	for _, col := range ds.Columns {
		header := normalizeHeader(col)
		switch {
		case roles[roleShare] == "" && containsAny(header, shareTerms):
			roles[roleShare] = col.ID
			claimed[col.ID] = true
		case roles[roleGrowth] == "" && containsAny(header, growthTerms):
			roles[roleGrowth] = col.ID
			claimed[col.ID] = true
		case roles[roleQuantity] == "" && containsAny(header, quantityTerms):
			roles[roleQuantity] = col.ID
			claimed[col.ID] = true
		}
	}

	for _, term := range nameTerms {
		if roles[roleName] != "" {
			break
		}
		for _, col := range ds.Columns {
			if !claimed[col.ID] && strings.Contains(normalizeHeader(col), term) {
				roles[roleName] = col.ID
				claimed[col.ID] = true
				break
			}
		}
	}
	if roles[roleName] == "" {
		for _, col := range ds.Columns {
			if !claimed[col.ID] && col.Type != dataset.TypeNumber {
				roles[roleName] = col.ID
				claimed[col.ID] = true
				break
			}
		}
	}

	if roles[roleShare] == "" || roles[roleGrowth] == "" {
		var numeric []string
		for _, col := range ds.Columns {
			if col.Type == dataset.TypeNumber && !claimed[col.ID] {
				numeric = append(numeric, col.ID)
			}
		}
		for _, id := range numeric {
			if roles[roleShare] == "" {
				roles[roleShare] = id
			} else if roles[roleGrowth] == "" {
				roles[roleGrowth] = id
			} else if roles[roleQuantity] == "" {
				roles[roleQuantity] = id
			}
		}
	}

	if roles[roleShare] == "" || roles[roleGrowth] == "" {
		var headers []string
		for _, col := range ds.Columns {
			headers = append(headers, col.Label)
		}
		return nil, errors.MalformedDataset(fmt.Sprintf(
			"expected market share and growth columns, found %v", headers))
	}
	return roles, nil
}

func normalizeHeader(col dataset.Column) string {
	header := col.Label
	if header == "" {
		header = col.ID
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "")
}

func containsAny(header string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(header, term) {
			return true
		}
	}
	return false
}

func productName(roles map[string]string, row dataset.Row, index int) string {
	if nameCol, ok := roles[roleName]; ok {
		if name := strings.TrimSpace(row[nameCol]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("Product %d", index+1)
}

func parseCell(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return v, err == nil
}

func topByQuantity(products []Product, n int) []Product {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quantity > sorted[j].Quantity
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
