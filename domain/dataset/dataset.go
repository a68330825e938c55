package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"coachlens/internal/errors"
)

// Column types supported by uploaded business datasets.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeSelect   = "select"
	TypeTextarea = "textarea"
)

// Column describes one typed field of a dataset.
type Column struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Row maps column ids to raw string values. Every row carries a value
// (possibly empty) for every column id.
type Row map[string]string

// Dataset is an ordered set of typed columns plus their rows.
type Dataset struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Validate checks the structural invariants: column ids unique, at least one
// column and one row, every row covering every column id.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return errors.MalformedDataset("dataset has no columns")
	}
	if len(d.Rows) == 0 {
		return errors.MalformedDataset("dataset has no rows")
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, col := range d.Columns {
		if col.ID == "" {
			return errors.MalformedDataset("dataset contains a column with an empty id")
		}
		if seen[col.ID] {
			return errors.MalformedDataset(fmt.Sprintf("duplicate column id %q", col.ID))
		}
		seen[col.ID] = true
	}
	for i, row := range d.Rows {
		for _, col := range d.Columns {
			if _, ok := row[col.ID]; !ok {
				return errors.MalformedDataset(fmt.Sprintf("row %d is missing column %q", i, col.ID))
			}
		}
	}
	return nil
}

// Column returns the column with the given id, if present.
func (d *Dataset) Column(id string) (Column, bool) {
	for _, col := range d.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// SampleRows returns up to n rows for prompt interpolation.
func (d *Dataset) SampleRows(n int) []Row {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// ParseContent decodes stored dataset content into a Dataset. Stored content
// arrives in several historical shapes and all of them must be accepted:
//
//   - a JSON string wrapping any of the shapes below
//   - an object with "columns" and "rows" keys
//   - an object with a nested "data" object in that shape
//   - a bare array of record objects, from which columns are inferred
//
// Anything else is a MalformedDataset error naming what was found.
func ParseContent(raw interface{}) (*Dataset, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.MalformedDataset("dataset content is empty")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, errors.MalformedDataset("dataset content is an empty string")
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, errors.MalformedDataset("dataset content is a string but not valid JSON")
		}
		return ParseContent(decoded)
	case []byte:
		return ParseContent(string(v))
	case json.RawMessage:
		return ParseContent(string(v))
	case map[string]interface{}:
		return parseObjectContent(v)
	case []interface{}:
		return inferFromRecords(v)
	default:
		return nil, errors.MalformedDataset(fmt.Sprintf("expected object, array, or JSON string, found %T", raw))
	}
}

func parseObjectContent(obj map[string]interface{}) (*Dataset, error) {
	if nested, ok := obj["data"]; ok {
		if _, hasCols := obj["columns"]; !hasCols {
			return ParseContent(nested)
		}
	}

	rawCols, hasCols := obj["columns"].([]interface{})
	rawRows, hasRows := obj["rows"].([]interface{})
	if !hasCols || !hasRows {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		return nil, errors.MalformedDataset(fmt.Sprintf("expected columns and rows keys, found %v", keys))
	}

	ds := &Dataset{}
	for _, rc := range rawCols {
		colObj, ok := rc.(map[string]interface{})
		if !ok {
			return nil, errors.MalformedDataset("column entry is not an object")
		}
		col := Column{
			ID:    stringField(colObj, "id"),
			Label: stringField(colObj, "label"),
			Type:  stringField(colObj, "type"),
		}
		if col.Label == "" {
			col.Label = col.ID
		}
		if col.Type == "" {
			col.Type = TypeText
		}
		if req, ok := colObj["required"].(bool); ok {
			col.Required = req
		}
		ds.Columns = append(ds.Columns, col)
	}

	for _, rr := range rawRows {
		rowObj, ok := rr.(map[string]interface{})
		if !ok {
			return nil, errors.MalformedDataset("row entry is not an object")
		}
		row := make(Row, len(ds.Columns))
		for _, col := range ds.Columns {
			row[col.ID] = coerceCell(rowObj[col.ID])
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// inferFromRecords builds a dataset from a bare array of record objects,
// deriving the column set from the union of keys and guessing number columns
// when every non-empty value parses as a float.
func inferFromRecords(records []interface{}) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.MalformedDataset("dataset content is an empty array")
	}

	var order []string
	seen := make(map[string]bool)
	rows := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		obj, ok := rec.(map[string]interface{})
		if !ok {
			return nil, errors.MalformedDataset(fmt.Sprintf("record entry is %T, expected object", rec))
		}
		rows = append(rows, obj)
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	// Map key order is nondeterministic, keep column order stable.
	sortByFirstAppearance(order, rows)

	ds := &Dataset{}
	for _, key := range order {
		colType := TypeNumber
		nonEmpty := 0
		for _, obj := range rows {
			cell := coerceCell(obj[key])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				colType = TypeText
				break
			}
		}
		if nonEmpty == 0 {
			colType = TypeText
		}
		ds.Columns = append(ds.Columns, Column{ID: key, Label: key, Type: colType})
	}
	for _, obj := range rows {
		row := make(Row, len(ds.Columns))
		for _, col := range ds.Columns {
			row[col.ID] = coerceCell(obj[col.ID])
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func sortByFirstAppearance(order []string, rows []map[string]interface{}) {
	rank := make(map[string]int, len(order))
	next := 0
	for _, obj := range rows {
		for _, key := range order {
			if _, ok := rank[key]; ok {
				continue
			}
			if _, present := obj[key]; present {
				rank[key] = next
				next++
			}
		}
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if rank[order[j]] < rank[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
}

func stringField(obj map[string]interface{}, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

// coerceCell renders an arbitrary JSON cell value as the row's string form.
func coerceCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprintf("%v", c)
		}
		return string(b)
	}
}
