package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/homilyhq/homily/internal/audio"
	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini Text-to-Speech Service
// Uses the Google Gen AI SDK with the AUDIO response modality. The API
// returns raw PCM (s16le, 24kHz mono) which is wrapped into a WAV container.
// Optional provider, enabled by feature flag while voice quality is evaluated.
// ---------------------------------------------------------------------------

const (
	geminiStandardTTSModel = "gemini-2.5-flash-preview-tts"
	geminiHDTTSModel       = "gemini-2.5-pro-preview-tts"
	geminiDefaultVoice     = "Kore"
	geminiSampleRate       = 24000
)

// GeminiTTSService handles text-to-speech via Gemini's native audio output.
type GeminiTTSService struct {
	apiKey string
}

var _ Synthesizer = (*GeminiTTSService)(nil)

func NewGeminiTTSService(apiKey string) *GeminiTTSService {
	return &GeminiTTSService{apiKey: apiKey}
}

// ModelFor maps quality to a Gemini TTS model.
func (s *GeminiTTSService) ModelFor(quality string) string {
	if quality == QualityHD {
		return geminiHDTTSModel
	}
	return geminiStandardTTSModel
}

// Synthesize converts text to speech. Implements the Synthesizer interface.
// The voice in opts is a Gemini prebuilt voice name (e.g. "Kore", "Puck").
func (s *GeminiTTSService) Synthesize(ctx context.Context, text string, opts SynthesisOptions) (*SpeechResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	voice := opts.Voice
	if voice == "" {
		voice = geminiDefaultVoice
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	}

	log.Printf("[Gemini TTS] Generating speech (voice=%s, model=%s, textLen=%d)",
		voice, opts.Model, len(text))

	resp, err := client.Models.GenerateContent(ctx, opts.Model, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("gemini speech request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no audio candidates")
	}

	var pcm []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			pcm = part.InlineData.Data
			break
		}
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("gemini returned no inline audio data")
	}

	audioData, err := audio.FromPCM16(pcm, geminiSampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap gemini pcm: %w", err)
	}

	duration := time.Duration(len(pcm)/2) * time.Second / geminiSampleRate

	log.Printf("[Gemini TTS] Speech generated (%d bytes, %.2fs)", len(audioData), duration.Seconds())

	return &SpeechResult{
		AudioData:       audioData,
		DurationSeconds: duration.Seconds(),
		Format:          "wav",
	}, nil
}
