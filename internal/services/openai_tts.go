package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/homilyhq/homily/internal/audio"
	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI Text-to-Speech Service
// Preferred provider. Requests WAV output directly, so the response body
// can be handed to the assembly engine as-is.
// ---------------------------------------------------------------------------

const openAIDefaultVoice = openai.VoiceAlloy

// OpenAITTSService handles text-to-speech via the OpenAI speech endpoint.
type OpenAITTSService struct {
	client *openai.Client
}

var _ Synthesizer = (*OpenAITTSService)(nil)

func NewOpenAITTSService(apiKey string) *OpenAITTSService {
	return &OpenAITTSService{
		client: openai.NewClient(apiKey),
	}
}

// ModelFor maps quality to an OpenAI speech model.
func (s *OpenAITTSService) ModelFor(quality string) string {
	if quality == QualityHD {
		return string(openai.TTSModel1HD)
	}
	return string(openai.TTSModel1)
}

// Synthesize converts text to speech. Implements the Synthesizer interface.
func (s *OpenAITTSService) Synthesize(ctx context.Context, text string, opts SynthesisOptions) (*SpeechResult, error) {
	voice := openai.SpeechVoice(opts.Voice)
	if opts.Voice == "" {
		voice = openAIDefaultVoice
	}

	log.Printf("[OpenAI TTS] Generating speech (voice=%s, model=%s, textLen=%d)",
		voice, opts.Model, len(text))

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(opts.Model),
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read openai audio response: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("openai returned empty audio")
	}

	duration, err := audio.Duration(audioData)
	if err != nil {
		return nil, fmt.Errorf("openai returned undecodable audio: %w", err)
	}

	log.Printf("[OpenAI TTS] Speech generated (%d bytes, %.2fs)", len(audioData), duration.Seconds())

	return &SpeechResult{
		AudioData:       audioData,
		DurationSeconds: duration.Seconds(),
		Format:          "wav",
	}, nil
}
