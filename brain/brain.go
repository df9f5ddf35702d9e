// Package brain talks to the Gemini API: free-text prompts in, Lego
// Protocol JSON out, plus audio transcription. It never touches the
// animation core; callers feed its output to the layout engine.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swarm2d/swarm"
)

const (
	// DefaultModel is used when the config does not name one.
	DefaultModel = "gemini-1.5-flash"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// APIKeyEnv is the environment variable holding the Gemini key.
	APIKeyEnv = "GEMINI_API_KEY"
)

// systemPrompt teaches the model the Lego Protocol. The model is asked for
// custom coordinate layouts so every prompt produces an actual shape rather
// than one of the preset kinds.
const systemPrompt = `You are a generative shape AI. Generate ACTUAL COORDINATES
that form the requested shape, as a Lego Protocol v1.0 document:

{
  "version": "1.0",
  "layout": {
    "type": "custom",
    "coordinates": [[x1,y1], [x2,y2], ...]
  }
}

Coordinates are [x,y] pairs in normalized screen space (0.0 to 1.0):
[0.5,0.5] is the center, [0.0,0.0] the top-left, [1.0,1.0] the bottom-right.

How to generate:
1. Think about what the object actually looks like.
2. Break it into an outline and key interior points.
3. Emit 50-200 coordinate pairs tracing the form, in drawing order;
   consecutive points are interpolated, so order matters.
4. Use math where it helps (circle: x=0.5+r*cos(t), y=0.5+r*sin(t)).

Rules:
- ALWAYS use type "custom" with a coordinates array.
- Coordinates stay within 0.0-1.0.
- Output ONLY the JSON document. No explanations, no markdown.`

// Brain is a Gemini API client.
type Brain struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     swarm.Logger
}

// New builds a client for the given model. An empty key falls back to the
// GEMINI_API_KEY environment variable; if that is empty too, New fails.
func New(apiKey, model string, log swarm.Logger) (*Brain, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("brain: %s not set", APIKeyEnv)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Brain{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     swarm.OrNop(log),
	}, nil
}

// Wire types for generateContent.

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
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
	Data     string `json:"data"` // base64
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

// Translate turns a natural-language prompt into a Lego Protocol JSON
// string. The result is stripped of markdown fences and checked for JSON
// well-formedness only; schema problems are the layout engine's to tolerate.
func (b *Brain) Translate(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.NewString()
	b.log.Infof("brain: [%s] translating %q", reqID, prompt)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{
			Parts: []part{{Text: systemPrompt}},
		},
	}

	text, err := b.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("brain: [%s] %w", reqID, err)
	}

	cleaned := stripFences(text)
	if !json.Valid([]byte(cleaned)) {
		return "", fmt.Errorf("brain: [%s] model returned invalid JSON: %.200s", reqID, cleaned)
	}

	b.log.Infof("brain: [%s] generated %d bytes of layout JSON", reqID, len(cleaned))
	b.log.Debugf("brain: [%s] %s", reqID, cleaned)
	return cleaned, nil
}

func (b *Brain) generate(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", b.baseURL, b.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", b.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini error (%s): %s", resp.Status, detail)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text), nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag, from a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
