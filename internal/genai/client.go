// Package genai is the boundary to the external vision/generation service
// that turns photographed worksheet pages into exercise questions. The core
// treats every failure mode (network, malformed response, safety rejection,
// zero items) identically: no questions, a retryable error, never a crash.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"studyquest/internal/models"
)

// ErrGenerationFailed is returned whenever a usable question set could not
// be produced. Callers surface a retry prompt; no state is mutated.
var ErrGenerationFailed = errors.New("question generation failed")

// Generator produces a question set from worksheet page images.
type Generator interface {
	GenerateQuestions(ctx context.Context, images []string, subject models.Subject) ([]models.Question, error)
}

// Client calls a generateContent-style JSON API with inline base64 images.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

// NewClient creates a generation client. The request timeout belongs to the
// transport layer, so it is set here rather than in the orchestrating code.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		apiURL:     apiURL,
		apiKey:     apiKey,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateQuestions sends the worksheet images and subject to the service
// and parses the returned question set.
func (c *Client) GenerateQuestions(ctx context.Context, images []string, subject models.Subject) ([]models.Question, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images provided", ErrGenerationFailed)
	}

	parts := make([]part, 0, len(images)+1)
	parts = append(parts, part{Text: questionPrompt(subject)})
	for _, img := range images {
		parts = append(parts, part{InlineData: &inlineData{MimeType: "image/jpeg", Data: img}})
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Generation service returned status %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrGenerationFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	questions, err := ParseQuestionText(decoded.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseQuestionText extracts the question set from the model's text reply,
// tolerating a markdown code fence around the JSON.
func ParseQuestionText(text string) ([]models.Question, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	questions, err := models.DecodeQuestions([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: zero questions returned", ErrGenerationFailed)
	}
	return questions, nil
}

func questionPrompt(subject models.Subject) string {
	return fmt.Sprintf(`You are generating exercises for a primary school child from photographed worksheet pages.
Subject: %s.
Read the worksheet images and produce a JSON array of questions. Each element:
{"type":"multiple-choice"|"text"|"word-ordering","id":"q1","question":"...","options":["..."],"correct_answer":"...","explanation":"...","complexity":1-5,"translation":"..."}
For multiple-choice, options are the choices. For word-ordering, options are the shuffled words of the correct sentence and correct_answer is the full sentence. Omit options for text questions.
Reply with the JSON array only.`, subject)
}
