package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"coachlens/internal/config"
	"coachlens/internal/errors"
)

// GeminiClient implements ports.TextGenerator against the generateContent
// endpoint. One prompt in, raw response text out; every transport or shape
// failure comes back as UpstreamUnavailable so callers take the fallback path.
type GeminiClient struct {
	config     config.AIConfig
	httpClient *http.Client
}

// NewGeminiClient creates a client from validated configuration.
func NewGeminiClient(cfg config.AIConfig) *GeminiClient {
	return &GeminiClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ModelName identifies the backing model for provenance tagging.
func (c *GeminiClient) ModelName() string {
	return c.config.Model
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
}

// generateResponse covers the candidate shapes the endpoint has been observed
// returning: content.parts[0].text, a bare text field, or an output field.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		Text   string `json:"text"`
		Output string `json:"output"`
	} `json:"candidates"`
}

// GenerateText sends one prompt and returns the raw response text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
			TopK:            c.config.TopK,
			TopP:            c.config.TopP,
		},
	})
	if err != nil {
		return "", errors.UpstreamUnavailable(err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, c.config.Model, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", errors.UpstreamUnavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.UpstreamUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.UpstreamUnavailable(fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.UpstreamUnavailable(err)
	}

	text := extractCandidateText(decoded)
	if text == "" {
		return "", errors.UpstreamUnavailable(fmt.Errorf("response contained no candidate text"))
	}
	return text, nil
}

func extractCandidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) > 0 && candidate.Content.Parts[0].Text != "" {
		return candidate.Content.Parts[0].Text
	}
	if candidate.Text != "" {
		return candidate.Text
	}
	return candidate.Output
}
