package services

import "context"

// ---------------------------------------------------------------------------
// Synthesizer — common interface for text-to-speech providers
// OpenAI, ElevenLabs, and Gemini implement this interface so the pipeline
// can use whichever is configured without knowing the underlying provider.
// Every provider returns WAV (PCM16, mono, 24kHz) so the assembly engine
// never needs to transcode within a run.
// ---------------------------------------------------------------------------

// SpeechResult is the common response type from any synthesis provider.
type SpeechResult struct {
	AudioData       []byte
	DurationSeconds float64
	Format          string // always "wav"
}

// SynthesisOptions carries the per-run settings for one synthesis call.
// Model is the provider model id resolved from the request quality.
type SynthesisOptions struct {
	Voice  string
	Model  string
	Format string
}

// Synthesizer is the interface any speech provider must implement.
type Synthesizer interface {
	// Synthesize converts one chunk of text into encoded audio.
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) (*SpeechResult, error)

	// ModelFor maps a request quality ("standard", "hd") to the provider's
	// model identifier. Pure lookup: unknown values fall back to standard.
	ModelFor(quality string) string
}

// QualityHD is the only quality value that selects a premium model;
// anything else resolves to the provider's standard model.
const QualityHD = "hd"
