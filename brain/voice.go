package brain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const transcribePrompt = "Transcribe this audio to text. Return ONLY the transcribed text, nothing else."

// Transcribe sends a mono 16 kHz WAV recording to the model and returns the
// transcript. Audio capture itself is the caller's concern.
func (b *Brain) Transcribe(ctx context.Context, wav []byte) (string, error) {
	reqID := uuid.NewString()
	b.log.Infof("brain: [%s] transcribing %d bytes of audio", reqID, len(wav))

	if len(wav) == 0 {
		return "", fmt.Errorf("brain: [%s] empty audio buffer", reqID)
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{
				MimeType: "audio/wav",
				Data:     base64.StdEncoding.EncodeToString(wav),
			}},
			{Text: transcribePrompt},
		}}},
	}

	text, err := b.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("brain: [%s] %w", reqID, err)
	}
	if text == "" {
		return "", fmt.Errorf("brain: [%s] no transcription in response", reqID)
	}

	b.log.Infof("brain: [%s] transcript: %q", reqID, text)
	return text, nil
}
