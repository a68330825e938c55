package dataset

import (
	"testing"

	"coachlens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent_ColumnsAndRows(t *testing.T) {
	content := map[string]interface{}{
		"columns": []interface{}{
			map[string]interface{}{"id": "name", "label": "Name", "type": "text"},
			map[string]interface{}{"id": "price", "label": "Price", "type": "number"},
		},
		"rows": []interface{}{
			map[string]interface{}{"name": "Alice", "price": 10.5},
			map[string]interface{}{"name": "Bob"},
		},
	}

	ds, err := ParseContent(content)
	require.NoError(t, err)
	require.Len(t, ds.Columns, 2)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "10.5", ds.Rows[0]["price"], "numeric cells are stringified")
	assert.Equal(t, "", ds.Rows[1]["price"], "missing cells become empty strings")
}

func TestParseContent_JSONString(t *testing.T) {
	content := `{"columns":[{"id":"name","label":"Name","type":"text"}],"rows":[{"name":"Alice"}]}`

	ds, err := ParseContent(content)
	require.NoError(t, err)
	assert.Equal(t, "Alice", ds.Rows[0]["name"])
}

func TestParseContent_NestedData(t *testing.T) {
	content := map[string]interface{}{
		"data": map[string]interface{}{
			"columns": []interface{}{
				map[string]interface{}{"id": "name"},
			},
			"rows": []interface{}{
				map[string]interface{}{"name": "Alice"},
			},
		},
	}

	ds, err := ParseContent(content)
	require.NoError(t, err)
	assert.Equal(t, "name", ds.Columns[0].Label, "label falls back to the id")
	assert.Equal(t, TypeText, ds.Columns[0].Type, "type falls back to text")
}

func TestParseContent_RecordArrayInfersColumns(t *testing.T) {
	content := []interface{}{
		map[string]interface{}{"name": "Alice", "price": "10"},
		map[string]interface{}{"name": "Bob", "price": "20", "region": "North"},
	}

	ds, err := ParseContent(content)
	require.NoError(t, err)
	require.Len(t, ds.Columns, 3)

	price, ok := ds.Column("price")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, price.Type)

	name, ok := ds.Column("name")
	require.True(t, ok)
	assert.Equal(t, TypeText, name.Type)

	assert.Equal(t, "", ds.Rows[0]["region"], "rows cover every inferred column")
}

func TestParseContent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content interface{}
	}{
		{"nil", nil},
		{"empty string", ""},
		{"non-JSON string", "not json at all"},
		{"number", 42.0},
		{"empty array", []interface{}{}},
		{"array of scalars", []interface{}{1.0, 2.0}},
		{"object without rows", map[string]interface{}{"columns": []interface{}{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContent(tt.content)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeMalformedDataset))
		})
	}
}

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr bool
	}{
		{
			name: "valid",
			ds: Dataset{
				Columns: []Column{{ID: "a"}},
				Rows:    []Row{{"a": "1"}},
			},
		},
		{
			name:    "no columns",
			ds:      Dataset{Rows: []Row{{"a": "1"}}},
			wantErr: true,
		},
		{
			name:    "no rows",
			ds:      Dataset{Columns: []Column{{ID: "a"}}},
			wantErr: true,
		},
		{
			name: "duplicate column ids",
			ds: Dataset{
				Columns: []Column{{ID: "a"}, {ID: "a"}},
				Rows:    []Row{{"a": "1"}},
			},
			wantErr: true,
		},
		{
			name: "row missing a column",
			ds: Dataset{
				Columns: []Column{{ID: "a"}, {ID: "b"}},
				Rows:    []Row{{"a": "1"}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeMalformedDataset))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleRows(t *testing.T) {
	ds := Dataset{
		Columns: []Column{{ID: "a"}},
		Rows:    []Row{{"a": "1"}, {"a": "2"}, {"a": "3"}},
	}
	assert.Len(t, ds.SampleRows(2), 2)
	assert.Len(t, ds.SampleRows(10), 3)
}
