package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBRaw_DecodeLegacyStringContent(t *testing.T) {
	// Older rows store the dataset as a quoted JSON string, newer rows store
	// the object directly. Decode must surface both shapes.
	legacy := JSONBRaw(`"{\"columns\":[],\"rows\":[]}"`)
	value, err := legacy.Decode()
	require.NoError(t, err)
	_, isString := value.(string)
	assert.True(t, isString)

	direct := JSONBRaw(`{"columns":[],"rows":[]}`)
	value, err = direct.Decode()
	require.NoError(t, err)
	_, isObject := value.(map[string]interface{})
	assert.True(t, isObject)
}

func TestJSONBRaw_DecodeEmpty(t *testing.T) {
	value, err := JSONBRaw(nil).Decode()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestJSONBRaw_ScanCopies(t *testing.T) {
	src := []byte(`{"a":1}`)
	var raw JSONBRaw
	require.NoError(t, raw.Scan(src))
	src[0] = 'X'
	assert.Equal(t, byte('{'), raw[0], "scanned bytes are detached from the driver buffer")
}

func TestJSONBMap_ScanNull(t *testing.T) {
	var m JSONBMap
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestJSONBMap_RoundTrip(t *testing.T) {
	m := JSONBMap{"strategies": []interface{}{map[string]interface{}{"name": "X"}}}
	value, err := m.Value()
	require.NoError(t, err)

	var scanned JSONBMap
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "X", scanned["strategies"].([]interface{})[0].(map[string]interface{})["name"])
}

func TestNewAnalysisRecord(t *testing.T) {
	record := NewAnalysisRecord(uuid.New(), nil, AnalysisStrategy, map[string]interface{}{"k": "v"})
	assert.Equal(t, AnalysisStrategy, record.AnalysisType)
	assert.Nil(t, record.DataID)
	assert.Equal(t, "v", record.Content["k"])
	assert.False(t, record.CreatedAt.IsZero())
}
