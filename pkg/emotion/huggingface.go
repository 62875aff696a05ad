package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultModel   = "j-hartmann/emotion-english-distilroberta-base"

	// The model truncates long inputs anyway; cap what goes over the wire.
	maxInputRunes = 2000
)

type HuggingFaceClassifier struct {
	apiKey  string
	baseURL string
	model   string
	topK    int
	client  *http.Client
}

type Option func(*HuggingFaceClassifier)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HuggingFaceClassifier) { h.client = c }
}

func WithTopK(k int) Option {
	return func(h *HuggingFaceClassifier) { h.topK = k }
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	TopK int `json:"top_k"`
}

type apiError struct {
	Error string `json:"error"`
}

func NewHuggingFaceClassifier(apiKey, baseURL, model string, opts ...Option) *HuggingFaceClassifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	h := &HuggingFaceClassifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		topK:    3,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (p *HuggingFaceClassifier) Classify(ctx context.Context, text string) ([]Score, error) {
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}

	jsonData, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{TopK: p.topK},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	scores, err := decodeScores(bodyBytes)
	if err != nil {
		return nil, err
	}
	sortScores(scores)
	if p.topK > 0 && len(scores) > p.topK {
		scores = scores[:p.topK]
	}
	return scores, nil
}

// decodeScores accepts both the batched ([[...]]) and flat ([...]) answer shapes.
func decodeScores(body []byte) ([]Score, error) {
	var batched [][]Score
	if err := json.Unmarshal(body, &batched); err == nil {
		if len(batched) == 0 {
			return nil, fmt.Errorf("empty classification result")
		}
		return batched[0], nil
	}

	var flat []Score
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty classification result")
	}
	return flat, nil
}
