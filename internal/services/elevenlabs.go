package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/homilyhq/homily/internal/audio"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses the ElevenLabs REST API. Output is requested as raw PCM (24kHz mono)
// and wrapped into a WAV container so every provider hands the assembly
// engine the same encoding.
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL       = "https://api.elevenlabs.io"
	elevenLabsStandardModel = "eleven_flash_v2_5"       // fast, ~75ms latency
	elevenLabsHDModel       = "eleven_multilingual_v2"  // higher fidelity, slower
	elevenLabsDefaultVoice  = "pNInz6obpgDQGcFmaJgB"
	elevenLabsOutputFormat  = "pcm_24000"               // raw s16le PCM, 24kHz mono
	elevenLabsSampleRate    = 24000
)

// ElevenLabsService handles text-to-speech via the ElevenLabs API.
type ElevenLabsService struct {
	apiKey string
	client *http.Client
}

var _ Synthesizer = (*ElevenLabsService)(nil)

func NewElevenLabsService(apiKey string) *ElevenLabsService {
	return &ElevenLabsService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ModelFor maps quality to an ElevenLabs model id.
func (s *ElevenLabsService) ModelFor(quality string) string {
	if quality == QualityHD {
		return elevenLabsHDModel
	}
	return elevenLabsStandardModel
}

// Synthesize converts text to speech. Implements the Synthesizer interface.
// The voice in opts is an ElevenLabs voice id; empty falls back to a default.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text string, opts SynthesisOptions) (*SpeechResult, error) {
	voice := opts.Voice
	if voice == "" {
		voice = elevenLabsDefaultVoice
	}

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: opts.Model,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       0.60,
			SimilarityBoost: 0.80,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal elevenlabs request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		elevenLabsBaseURL, voice, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create elevenlabs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	log.Printf("[ElevenLabs] Generating speech (voice=%s, model=%s, textLen=%d)",
		voice, opts.Model, len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, string(body))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read elevenlabs audio response: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}

	audioData, err := audio.FromPCM16(pcm, elevenLabsSampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap elevenlabs pcm: %w", err)
	}

	duration := time.Duration(len(pcm)/2) * time.Second / elevenLabsSampleRate

	log.Printf("[ElevenLabs] Speech generated (%d bytes, %.2fs)", len(audioData), duration.Seconds())

	return &SpeechResult{
		AudioData:       audioData,
		DurationSeconds: duration.Seconds(),
		Format:          "wav",
	}, nil
}
