package brain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stripFences(c.in))
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := New("", "", nil)
	assert.Error(t, err)

	b, err := New("key", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, b.model)
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func testBrain(t *testing.T, handler http.HandlerFunc) *Brain {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	b, err := New("test-key", "test-model", nil)
	require.NoError(t, err)
	b.baseURL = server.URL
	return b
}

func TestTranslateStripsFencesAndValidates(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "systemInstruction")
		assert.Contains(t, string(body), "DNA helix")

		io.WriteString(w, candidateResponse("```json\n{\"version\":\"1.0\",\"layout\":{\"type\":\"circle\"}}\n```"))
	})

	out, err := b.Translate(context.Background(), "show me a DNA helix")
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0","layout":{"type":"circle"}}`, out)
}

func TestTranslateRejectsInvalidJSON(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, candidateResponse("here is your shape: {oops"))
	})

	_, err := b.Translate(context.Background(), "a star")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestTranslateSurfacesAPIErrors(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := b.Translate(context.Background(), "a star")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTranslateEmptyResponse(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := b.Translate(context.Background(), "a star")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestTranscribe(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "inline_data")
		assert.Contains(t, string(body), "audio/wav")
		assert.NotContains(t, string(body), "systemInstruction")

		io.WriteString(w, candidateResponse("make a spiral galaxy"))
	})

	text, err := b.Transcribe(context.Background(), []byte("RIFFfakewav"))
	require.NoError(t, err)
	assert.Equal(t, "make a spiral galaxy", text)
}

func TestTranscribeEmptyAudio(t *testing.T) {
	b := testBrain(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty audio")
	})

	_, err := b.Transcribe(context.Background(), nil)
	assert.Error(t, err)
}

func TestSystemPromptTeachesProtocol(t *testing.T) {
	assert.True(t, strings.Contains(systemPrompt, `"version": "1.0"`))
	assert.True(t, strings.Contains(systemPrompt, `"custom"`))
}
