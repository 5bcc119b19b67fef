package audio

import (
	"strings"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
)

const testRate = 24000

// makeTone builds an encoded WAV buffer of the given duration filled with a
// constant non-zero sample, so it is distinguishable from silence.
func makeTone(t *testing.T, d time.Duration, rate, channels int) []byte {
	t.Helper()
	frames := int(int64(rate) * int64(d) / int64(time.Second))
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, frames*channels),
	}
	for i := range buf.Data {
		buf.Data[i] = 1000
	}
	data, err := Encode(buf)
	if err != nil {
		t.Fatalf("failed to encode test tone: %v", err)
	}
	return data
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	data := makeTone(t, 100*time.Millisecond, testRate, 1)

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if buf.Format.SampleRate != testRate {
		t.Errorf("expected sample rate %d, got %d", testRate, buf.Format.SampleRate)
	}
	if buf.Format.NumChannels != 1 {
		t.Errorf("expected mono, got %d channels", buf.Format.NumChannels)
	}
	if len(buf.Data) != testRate/10 {
		t.Errorf("expected %d samples, got %d", testRate/10, len(buf.Data))
	}
	if buf.Data[0] != 1000 {
		t.Errorf("expected sample value 1000, got %d", buf.Data[0])
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("not a wav file")); err == nil {
		t.Fatal("expected error decoding garbage")
	}
	if _, err := Decode(nil); err == nil {
		t.Fatal("expected error decoding empty buffer")
	}
}

func TestFromPCM16(t *testing.T) {
	// 0x03E8 little-endian = 1000
	pcm := []byte{0xE8, 0x03, 0xE8, 0x03, 0xE8, 0x03, 0xE8, 0x03}

	data, err := FromPCM16(pcm, testRate, 1)
	if err != nil {
		t.Fatalf("failed to wrap pcm: %v", err)
	}

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("failed to decode wrapped pcm: %v", err)
	}
	if len(buf.Data) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(buf.Data))
	}
	for i, s := range buf.Data {
		if s != 1000 {
			t.Errorf("sample %d: expected 1000, got %d", i, s)
		}
	}
}

func TestFromPCM16Unaligned(t *testing.T) {
	if _, err := FromPCM16([]byte{0x01, 0x02, 0x03}, testRate, 1); err == nil {
		t.Fatal("expected error for odd-length pcm payload")
	}
}

func TestSilenceDecodes(t *testing.T) {
	format := &gaudio.Format{NumChannels: 1, SampleRate: testRate}

	data, err := Silence(500*time.Millisecond, format)
	if err != nil {
		t.Fatalf("failed to build silence: %v", err)
	}

	// The gap must be a self-contained decodable buffer, not bare bytes.
	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("silence buffer does not decode: %v", err)
	}
	if len(buf.Data) != testRate/2 {
		t.Errorf("expected %d samples, got %d", testRate/2, len(buf.Data))
	}
	for i, s := range buf.Data {
		if s != 0 {
			t.Fatalf("sample %d: expected 0, got %d", i, s)
		}
	}
}

func TestSilenceRejectsBadInput(t *testing.T) {
	format := &gaudio.Format{NumChannels: 1, SampleRate: testRate}
	if _, err := Silence(0, format); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := Silence(-time.Second, format); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, err := Silence(time.Second, nil); err == nil {
		t.Fatal("expected error for nil format")
	}
}

func TestInsertSilenceCount(t *testing.T) {
	// N buffers with gaps between adjacent pairs only: 2N-1 outputs.
	for _, n := range []int{2, 3, 5} {
		buffers := make([][]byte, n)
		for i := range buffers {
			buffers[i] = makeTone(t, 50*time.Millisecond, testRate, 1)
		}

		spaced, err := InsertSilence(buffers, 200*time.Millisecond)
		if err != nil {
			t.Fatalf("n=%d: failed to insert silence: %v", n, err)
		}
		if len(spaced) != 2*n-1 {
			t.Errorf("n=%d: expected %d buffers, got %d", n, 2*n-1, len(spaced))
		}
	}
}

func TestInsertSilenceSingleBuffer(t *testing.T) {
	buffers := [][]byte{makeTone(t, 50*time.Millisecond, testRate, 1)}

	spaced, err := InsertSilence(buffers, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	if len(spaced) != 1 {
		t.Errorf("expected single buffer untouched, got %d", len(spaced))
	}
}

func TestInsertSilenceEmpty(t *testing.T) {
	if _, err := InsertSilence(nil, 200*time.Millisecond); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestConcatenateDuration(t *testing.T) {
	gap := 500 * time.Millisecond
	chunks := [][]byte{
		makeTone(t, 100*time.Millisecond, testRate, 1),
		makeTone(t, 200*time.Millisecond, testRate, 1),
		makeTone(t, 300*time.Millisecond, testRate, 1),
	}

	spaced, err := InsertSilence(chunks, gap)
	if err != nil {
		t.Fatalf("failed to insert silence: %v", err)
	}

	asset, err := Concatenate(spaced)
	if err != nil {
		t.Fatalf("failed to concatenate: %v", err)
	}

	got, err := Duration(asset)
	if err != nil {
		t.Fatalf("failed to measure asset: %v", err)
	}

	// Sum of chunk durations plus (N-1) gaps, exact at the sample level.
	want := 600*time.Millisecond + 2*gap
	if got != want {
		t.Errorf("expected duration %v, got %v", want, got)
	}
}

func TestConcatenateSingle(t *testing.T) {
	chunk := makeTone(t, 100*time.Millisecond, testRate, 1)

	asset, err := Concatenate([][]byte{chunk})
	if err != nil {
		t.Fatalf("failed to concatenate: %v", err)
	}

	got, err := Duration(asset)
	if err != nil {
		t.Fatalf("failed to measure asset: %v", err)
	}
	if got != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", got)
	}
}

func TestConcatenateFormatMismatch(t *testing.T) {
	buffers := [][]byte{
		makeTone(t, 100*time.Millisecond, testRate, 1),
		makeTone(t, 100*time.Millisecond, 16000, 1),
	}

	_, err := Concatenate(buffers)
	if err == nil {
		t.Fatal("expected error for sample rate mismatch")
	}
	if !strings.Contains(err.Error(), "encoding mismatch") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConcatenateMalformedBuffer(t *testing.T) {
	buffers := [][]byte{
		makeTone(t, 100*time.Millisecond, testRate, 1),
		[]byte("garbage"),
	}

	if _, err := Concatenate(buffers); err == nil {
		t.Fatal("expected error for malformed buffer")
	}
}

func TestConcatenateEmpty(t *testing.T) {
	if _, err := Concatenate(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestDuration(t *testing.T) {
	data := makeTone(t, 250*time.Millisecond, testRate, 1)

	d, err := Duration(data)
	if err != nil {
		t.Fatalf("failed to measure: %v", err)
	}
	if d != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", d)
	}
}
