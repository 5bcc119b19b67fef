package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

// memSink collects events in order.
type memSink struct {
	events []Event
	failAt int // 0 = never fail
}

func (s *memSink) Emit(ev Event) error {
	s.events = append(s.events, ev)
	if s.failAt > 0 && len(s.events) >= s.failAt {
		return errSinkClosed
	}
	return nil
}

var errSinkClosed = &sinkError{}

type sinkError struct{}

func (e *sinkError) Error() string { return "sink closed" }

func TestEncoderNewlineDelimited(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	events := []Event{
		Progress(1, 2, 40, "Generating audio 1/2"),
		AudioChunk("AAAA", 0),
		DownloadComplete("sermon-audio.wav"),
	}
	for _, ev := range events {
		if err := enc.Emit(ev); err != nil {
			t.Fatalf("emit failed: %v", err)
		}
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	// Every line must parse on its own before the next arrives.
	for i, line := range lines {
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %d does not parse: %v", i, err)
		}
		if ev.Type != events[i].Type {
			t.Errorf("line %d: expected type %q, got %q", i, events[i].Type, ev.Type)
		}
	}
}

func TestEventWireFormat(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Emit(Progress(0, 0, 0, "Starting")); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if err := enc.Emit(AudioChunk("UklGRg==", 0)); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if err := enc.Emit(DownloadComplete("grace-audio.wav")); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	sc := bufio.NewScanner(&buf)

	// percent 0 must be present on the wire, not dropped as empty.
	sc.Scan()
	if !strings.Contains(sc.Text(), `"percent":0`) {
		t.Errorf("progress line missing zero percent: %s", sc.Text())
	}

	// offset 0 likewise.
	sc.Scan()
	if !strings.Contains(sc.Text(), `"offset":0`) {
		t.Errorf("audio_chunk line missing zero offset: %s", sc.Text())
	}

	// audioUrl is always present on download_complete, even when empty.
	sc.Scan()
	if !strings.Contains(sc.Text(), `"audioUrl":""`) {
		t.Errorf("download_complete line missing empty audioUrl: %s", sc.Text())
	}
}

func TestDeliverAssetSlicesAndOffsets(t *testing.T) {
	// ~400KB asset: 13 slices at 32KB.
	asset := make([]byte, 400*1024)
	for i := range asset {
		asset[i] = byte(i)
	}

	sink := &memSink{}
	if err := DeliverAsset(context.Background(), sink, asset); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	wantSlices := (len(asset) + SliceSize - 1) / SliceSize
	if wantSlices <= 10 {
		t.Fatalf("test asset too small to exercise slicing: %d slices", wantSlices)
	}

	var chunks []Event
	var progress []Event
	for _, ev := range sink.events {
		switch ev.Type {
		case EventAudioChunk:
			chunks = append(chunks, ev)
		case EventProgress:
			progress = append(progress, ev)
		default:
			t.Fatalf("unexpected event type %q during delivery", ev.Type)
		}
	}

	if len(chunks) != wantSlices {
		t.Fatalf("expected %d audio_chunk events, got %d", wantSlices, len(chunks))
	}
	if len(progress) != wantSlices {
		t.Fatalf("expected %d interleaved progress events, got %d", wantSlices, len(progress))
	}

	// Offsets strictly ascending, starting at 0, step SliceSize.
	var reassembled []byte
	for i, ev := range chunks {
		if ev.Offset == nil {
			t.Fatalf("chunk %d has no offset", i)
		}
		if *ev.Offset != i*SliceSize {
			t.Errorf("chunk %d: expected offset %d, got %d", i, i*SliceSize, *ev.Offset)
		}
		decoded, err := base64.StdEncoding.DecodeString(ev.Payload)
		if err != nil {
			t.Fatalf("chunk %d payload is not base64: %v", i, err)
		}
		reassembled = append(reassembled, decoded...)
	}

	if !bytes.Equal(reassembled, asset) {
		t.Fatal("reassembled payloads do not match the asset")
	}

	// Delivery climbs 90 to 100 and ends exactly at 100.
	first := progress[0]
	last := progress[len(progress)-1]
	if *first.Percent < 90 {
		t.Errorf("first delivery percent below 90: %d", *first.Percent)
	}
	if *last.Percent != 100 {
		t.Errorf("final delivery percent: expected 100, got %d", *last.Percent)
	}
	for i := 1; i < len(progress); i++ {
		if *progress[i].Percent < *progress[i-1].Percent {
			t.Errorf("delivery percent regressed at %d: %d -> %d",
				i, *progress[i-1].Percent, *progress[i].Percent)
		}
	}
}

func TestDeliverAssetSmall(t *testing.T) {
	asset := []byte("tiny")

	sink := &memSink{}
	if err := DeliverAsset(context.Background(), sink, asset); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	if len(sink.events) != 2 {
		t.Fatalf("expected one chunk and one progress event, got %d events", len(sink.events))
	}
	decoded, err := base64.StdEncoding.DecodeString(sink.events[0].Payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if !bytes.Equal(decoded, asset) {
		t.Errorf("expected payload %q, got %q", asset, decoded)
	}
	if *sink.events[1].Percent != 100 {
		t.Errorf("expected 100 percent, got %d", *sink.events[1].Percent)
	}
}

func TestDeliverAssetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asset := make([]byte, 3*SliceSize)
	sink := &memSink{}
	if err := DeliverAsset(ctx, sink, asset); err != nil {
		t.Fatalf("cancelled delivery should not error: %v", err)
	}

	// Cancellation observed before the first slice: nothing emitted.
	if len(sink.events) != 0 {
		t.Errorf("expected no events after cancellation, got %d", len(sink.events))
	}
}

func TestDeliverAssetSinkFailure(t *testing.T) {
	asset := make([]byte, 3*SliceSize)
	sink := &memSink{failAt: 2}

	if err := DeliverAsset(context.Background(), sink, asset); err == nil {
		t.Fatal("expected sink failure to propagate")
	}
}
