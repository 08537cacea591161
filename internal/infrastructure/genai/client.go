package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
)

// Client drafts study listings with the Gemini generateContent API. It is
// best-effort from the product's point of view but fails loudly to the
// caller: a missing key or a bad response surfaces as an error, never as
// silently empty content.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a content-generation client. baseURL is overridable for tests.
func NewClient(apiKey, model, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
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
	ResponseMimeType string          `json:"response_mime_type"`
	ResponseSchema   json.RawMessage `json:"response_schema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// responseSchema constrains the model output to the draft-listing shape.
var responseSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"title": {"type": "STRING"},
		"description": {"type": "STRING"},
		"eligibility": {"type": "STRING"}
	},
	"required": ["title", "description", "eligibility"]
}`)

// GenerateStudyContent asks the model for a professional title, description
// and eligibility criteria for a study about the given topic.
func (c *Client) GenerateStudyContent(ctx context.Context, topic string) (*entities.StudyContent, error) {
	if !c.Configured() {
		return nil, domainerrors.ErrNotConfigured
	}
	if topic == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	prompt := fmt.Sprintf(
		"Help a researcher draft a formal listing for a study about: %s. "+
			"Provide a professional title, a clear description, and strict eligibility criteria.",
		topic,
	)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content generation failed: status %d", resp.StatusCode)
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, err
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("content generation returned no candidates")
	}

	var draft entities.StudyContent
	if err := json.Unmarshal([]byte(generated.Candidates[0].Content.Parts[0].Text), &draft); err != nil {
		return nil, fmt.Errorf("content generation returned malformed JSON: %w", err)
	}
	return &draft, nil
}
