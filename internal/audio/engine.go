package audio

import (
	"fmt"
	"time"

	gaudio "github.com/go-audio/audio"
)

// ---------------------------------------------------------------------------
// Silence & concatenation engine
// Pure functions over encoded WAV buffers. The encoding is fixed per run
// (every chunk comes from the same provider with the same format), so
// merging never transcodes — it only splices PCM frames and rewrites the
// container length fields.
// ---------------------------------------------------------------------------

// Silence produces an encoded WAV buffer of d worth of zero samples in the
// given format. The result decodes cleanly on its own — a bare zero-length
// byte gap is not valid decoder input and is rejected by construction.
func Silence(d time.Duration, format *gaudio.Format) ([]byte, error) {
	if format == nil {
		return nil, fmt.Errorf("silence requires a target format")
	}
	if d <= 0 {
		return nil, fmt.Errorf("silence duration must be positive, got %v", d)
	}
	frames := int(int64(format.SampleRate) * int64(d) / int64(time.Second))
	if frames == 0 {
		frames = 1
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: format.NumChannels, SampleRate: format.SampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, frames*format.NumChannels),
	}
	return Encode(buf)
}

// InsertSilence inserts one fixed-duration silence buffer between every pair
// of adjacent chunk buffers — not before the first or after the last, so N
// inputs become 2N-1 outputs. The silence format is taken from the first
// buffer; the run's encoding is fixed, so all buffers share it.
func InsertSilence(buffers [][]byte, gap time.Duration) ([][]byte, error) {
	if len(buffers) == 0 {
		return nil, fmt.Errorf("no audio buffers to space")
	}
	if len(buffers) == 1 || gap <= 0 {
		return buffers, nil
	}

	first, err := Decode(buffers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read first chunk format: %w", err)
	}
	pause, err := Silence(gap, first.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build silence buffer: %w", err)
	}

	out := make([][]byte, 0, 2*len(buffers)-1)
	for i, b := range buffers {
		if i > 0 {
			out = append(out, pause)
		}
		out = append(out, b)
	}
	return out, nil
}

// Concatenate merges an ordered list of encoded WAV buffers into one
// self-contained buffer. Total duration equals the sum of input durations.
// A malformed buffer or a format mismatch between buffers is an error —
// never a partial asset.
func Concatenate(buffers [][]byte) ([]byte, error) {
	if len(buffers) == 0 {
		return nil, fmt.Errorf("no audio buffers to concatenate")
	}

	var merged *gaudio.IntBuffer
	for i, b := range buffers {
		buf, err := Decode(b)
		if err != nil {
			return nil, fmt.Errorf("buffer %d is malformed: %w", i, err)
		}
		if merged == nil {
			merged = &gaudio.IntBuffer{
				Format:         buf.Format,
				SourceBitDepth: buf.SourceBitDepth,
			}
		} else if buf.Format.SampleRate != merged.Format.SampleRate ||
			buf.Format.NumChannels != merged.Format.NumChannels {
			return nil, fmt.Errorf(
				"buffer %d encoding mismatch: got %dHz/%dch, want %dHz/%dch",
				i, buf.Format.SampleRate, buf.Format.NumChannels,
				merged.Format.SampleRate, merged.Format.NumChannels)
		}
		merged.Data = append(merged.Data, buf.Data...)
	}

	return Encode(merged)
}
