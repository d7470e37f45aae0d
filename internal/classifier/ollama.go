// Package classifier provides photo emotion classifiers: an Ollama vision
// model over HTTP and a random stand-in for demos.
package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/justestif/moodtunes/internal/capture"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llava:7b"
)

const visionPrompt = "Look at the face in this photo and name the emotion it shows. " +
	"Answer with exactly one lowercase word from this list: " +
	"joy, sadness, anger, fear, disgust, surprise, shame, calm, excited, neutral. " +
	"No punctuation and no other text."

// Ollama classifies frames with a vision model served by Ollama.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// NewOllama creates a client for the Ollama server at baseURL. Empty
// arguments select the local default server and model.
func NewOllama(baseURL, model string) *Ollama {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classify sends the frame to the model and returns its one-word answer.
// The answer is a raw label; callers normalize it.
func (c *Ollama) Classify(ctx context.Context, frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", fmt.Errorf("ollama: empty frame")
	}

	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []chatMessage{{
			Role:    "user",
			Content: visionPrompt,
			Images:  []string{base64.StdEncoding.EncodeToString(frame)},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	label := firstWord(parsed.Message.Content)
	if label == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return label, nil
}

// firstWord extracts the first word of a model answer, dropping
// surrounding punctuation.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?;:\"'`*")
}

var _ capture.PhotoClassifier = (*Ollama)(nil)
