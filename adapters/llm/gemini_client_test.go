package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coachlens/internal/config"
	"coachlens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		APIKey:          "test-key",
		Model:           "gemini-2.0-flash",
		BaseURL:         baseURL,
		Temperature:     0.7,
		MaxOutputTokens: 2048,
		TopK:            40,
		TopP:            0.95,
		Timeout:         5 * time.Second,
	}
}

func TestGenerateText_RequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "hello"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(testConfig(server.URL))
	text, err := client.GenerateText(context.Background(), "test prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	contents := gotBody["contents"].([]interface{})
	first := contents[0].(map[string]interface{})
	parts := first["parts"].([]interface{})
	assert.Equal(t, "test prompt", parts[0].(map[string]interface{})["text"])

	genCfg := gotBody["generationConfig"].(map[string]interface{})
	assert.Equal(t, 0.7, genCfg["temperature"])
	assert.Equal(t, 2048.0, genCfg["maxOutputTokens"])
}

func TestGenerateText_CandidateShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "content parts",
			body: `{"candidates": [{"content": {"parts": [{"text": "from parts"}]}}]}`,
			want: "from parts",
		},
		{
			name: "bare text field",
			body: `{"candidates": [{"text": "from text"}]}`,
			want: "from text",
		},
		{
			name: "output field",
			body: `{"candidates": [{"output": "from output"}]}`,
			want: "from output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewGeminiClient(testConfig(server.URL))
			text, err := client.GenerateText(context.Background(), "prompt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGenerateText_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`, true},
		{"rate limited", http.StatusTooManyRequests, `{"error": "quota"}`, true},
		{"no candidates", http.StatusOK, `{"candidates": []}`, true},
		{"empty candidate", http.StatusOK, `{"candidates": [{}]}`, true},
		{"invalid json", http.StatusOK, `{{{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewGeminiClient(testConfig(server.URL))
			_, err := client.GenerateText(context.Background(), "prompt")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeUpstreamUnavailable),
				"every transport or shape failure maps to UPSTREAM_UNAVAILABLE")
		})
	}
}

func TestGenerateText_UnreachableEndpoint(t *testing.T) {
	client := NewGeminiClient(testConfig("http://127.0.0.1:1"))
	_, err := client.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUpstreamUnavailable))
}

func TestModelName(t *testing.T) {
	client := NewGeminiClient(testConfig("http://example.invalid"))
	assert.Equal(t, "gemini-2.0-flash", client.ModelName())
}
