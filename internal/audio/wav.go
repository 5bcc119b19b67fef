package audio

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// writeSeeker is an in-memory io.WriteSeeker for the wav encoder, which
// seeks back to patch the RIFF length fields on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if need := ws.pos + len(p); need > len(ws.buf) {
		grown := make([]byte, need)
		copy(grown, ws.buf)
		ws.buf = grown
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(ws.pos) + offset
	case io.SeekEnd:
		abs = int64(len(ws.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative seek position %d", abs)
	}
	ws.pos = int(abs)
	return abs, nil
}

// Decode parses an encoded WAV buffer into PCM samples.
func Decode(data []byte) (*gaudio.IntBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav buffer")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	return buf, nil
}

// Encode writes PCM samples into a self-contained WAV buffer.
func Encode(buf *gaudio.IntBuffer) ([]byte, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("nil pcm buffer")
	}
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close wav encoder: %w", err)
	}
	return ws.buf, nil
}

// FromPCM16 wraps raw little-endian 16-bit PCM in a WAV container.
// Used for providers that return bare PCM frames.
func FromPCM16(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm payload not aligned to 16-bit samples")
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(pcm)/2),
	}
	for i := range buf.Data {
		buf.Data[i] = int(int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8))
	}
	return Encode(buf)
}

// Duration reports the playable duration of an encoded WAV buffer.
func Duration(data []byte) (time.Duration, error) {
	buf, err := Decode(data)
	if err != nil {
		return 0, err
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	return time.Duration(frames) * time.Second / time.Duration(buf.Format.SampleRate), nil
}
