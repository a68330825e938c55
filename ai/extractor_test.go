package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FencedJSONBlock(t *testing.T) {
	raw := "Here are the strategies you asked for [see notes]:\n\n" +
		"```json\n{\"name\": \"Win-back Campaign\", \"type\": \"Retention\"}\n```\n\n" +
		"Let me know if you need adjustments."

	value, ok := Extract(raw)
	require.True(t, ok)

	obj, ok := value.(map[string]interface{})
	require.True(t, ok, "fenced block should win over the earlier bracketed span")
	assert.Equal(t, "Win-back Campaign", obj["name"])
	assert.Equal(t, "Retention", obj["type"])
}

func TestExtract_BareArray(t *testing.T) {
	value, ok := Extract(`[{"name": "A"}, {"name": "B"}]`)
	require.True(t, ok)

	arr, ok := value.([]interface{})
	require.True(t, ok)
	assert.Len(t, arr, 2)
}

func TestExtract_StripsControlCharacters(t *testing.T) {
	raw := "\uFEFF{\"name\": \"Launch\x00 Plan\"}"

	value, ok := Extract(raw)
	require.True(t, ok)

	obj := value.(map[string]interface{})
	assert.Equal(t, "Launch Plan", obj["name"])
}

func TestExtract_RepairsTrailingComma(t *testing.T) {
	raw := `{"name": "Upsell Push", "channels": ["Email", "SMS",],}`

	value, ok := Extract(raw)
	require.True(t, ok)

	obj := value.(map[string]interface{})
	assert.Equal(t, "Upsell Push", obj["name"])
}

func TestExtract_UnquotedKeys(t *testing.T) {
	raw := "{name: \"Acquisition Blitz\", type: \"Launch\"}"

	value, ok := Extract(raw)
	require.True(t, ok)

	obj := value.(map[string]interface{})
	assert.Equal(t, "Acquisition Blitz", obj["name"])
}

func TestExtract_ObjectWithArrayFields(t *testing.T) {
	// The span must cover the whole object, not stop at an inner array.
	raw := `{"summary": "Balanced portfolio.", "strengths": ["B holds share"], "weaknesses": ["C growth is flat"]}`

	value, ok := Extract(raw)
	require.True(t, ok)

	obj, ok := value.(map[string]interface{})
	require.True(t, ok, "an object response must not collapse into its first array field")
	assert.Equal(t, "Balanced portfolio.", obj["summary"])
	assert.Equal(t, []interface{}{"B holds share"}, obj["strengths"])
}

func TestExtract_ObjectWithArrayFieldsInProse(t *testing.T) {
	raw := "Here is the assessment:\n\n" +
		`{"summary": "Two stars.", "recommendations": ["Invest in A", "Divest C"]}` +
		"\n\nLet me know."

	value, ok := Extract(raw)
	require.True(t, ok)

	obj, ok := value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Two stars.", obj["summary"])
}

func TestExtract_ObjectBuriedInProse(t *testing.T) {
	raw := "Based on the data I recommend: {\"name\": \"Loyalty Club\"} as a starting point."

	value, ok := Extract(raw)
	require.True(t, ok)

	obj := value.(map[string]interface{})
	assert.Equal(t, "Loyalty Club", obj["name"])
}

func TestExtract_NoPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"plain prose", "The model was unable to produce a structured response at this time."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := Extract(tt.raw)
			assert.False(t, ok)
			assert.Nil(t, value)
		})
	}
}

func TestParseStages_RejectBareString(t *testing.T) {
	// A lenient parse that yields a plain string must not count as success,
	// otherwise prose would never reach the text-heuristic fallback.
	_, ok := parseStrict(`"just a string"`)
	assert.True(t, ok, "strict JSON strings still parse")

	_, ok = parseLenient("unquoted prose with no structure here")
	assert.False(t, ok)
}

func TestBracketedSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"object", `note {"a": 1} end`, `{"a": 1}`},
		{"array first", `[1, 2] and more prose`, `[1, 2]`},
		{"object with inner array", `{"a": [1, 2]}`, `{"a": [1, 2]}`},
		{"no brackets", "plain prose", ""},
		{"unclosed", "open { only", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bracketedSpan(tt.in))
		})
	}
}

func TestIsStructured(t *testing.T) {
	assert.True(t, isStructured(map[string]interface{}{"a": 1}))
	assert.True(t, isStructured([]interface{}{1}))
	assert.False(t, isStructured(map[string]interface{}{}))
	assert.False(t, isStructured([]interface{}{}))
	assert.False(t, isStructured("text"))
	assert.False(t, isStructured(42.0))
	assert.False(t, isStructured(nil))
}
