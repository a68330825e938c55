package excel

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	"coachlens/domain/dataset"
	"coachlens/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader decodes uploaded CSV and XLSX files into datasets. The first row
// is treated as the header; column types are inferred by sampling values.
type DataReader struct {
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given filename's format.
func NewDataReader(filename string) *DataReader {
	fileType := "csv"
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		fileType = "xlsx"
	}
	return &DataReader{fileType: fileType}
}

// Read decodes file content into a dataset.
func (r *DataReader) Read(content io.Reader) (*dataset.Dataset, error) {
	switch r.fileType {
	case "xlsx":
		return r.readExcel(content)
	default:
		return r.readCSV(content)
	}
}

func (r *DataReader) readCSV(content io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(content)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.MalformedDataset("could not parse CSV content: " + err.Error())
	}
	return buildDataset(records)
}

func (r *DataReader) readExcel(content io.Reader) (*dataset.Dataset, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.MalformedDataset("could not read XLSX content: " + err.Error())
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.MalformedDataset("could not open XLSX content: " + err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.MalformedDataset("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.MalformedDataset("could not read sheet " + sheets[0] + ": " + err.Error())
	}
	return buildDataset(rows)
}

// buildDataset converts header+rows cells into a typed dataset. A column is
// numeric when every non-empty sampled value parses as a float.
func buildDataset(records [][]string) (*dataset.Dataset, error) {
	if len(records) < 2 {
		return nil, errors.MalformedDataset("file must have a header row and at least one data row")
	}

	header := records[0]
	body := records[1:]

	ds := &dataset.Dataset{}
	seen := make(map[string]int)
	for i, label := range header {
		label = strings.TrimSpace(label)
		if label == "" {
			label = "column_" + strconv.Itoa(i+1)
		}
		id := label
		// Duplicate headers happen in real uploads; suffix them.
		if n, dup := seen[label]; dup {
			id = label + "_" + strconv.Itoa(n+1)
		}
		seen[label]++

		ds.Columns = append(ds.Columns, dataset.Column{
			ID:    id,
			Label: label,
			Type:  inferColumnType(body, i),
		})
	}

	for _, record := range body {
		row := make(dataset.Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(record) {
				row[col.ID] = strings.TrimSpace(record[i])
			} else {
				row[col.ID] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[DataReader] Parsed %d rows across %d columns", len(ds.Rows), len(ds.Columns))
	return ds, nil
}

func inferColumnType(body [][]string, index int) string {
	nonEmpty := 0
	for _, record := range body {
		if index >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[index])
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return dataset.TypeText
		}
	}
	if nonEmpty == 0 {
		return dataset.TypeText
	}
	return dataset.TypeNumber
}
