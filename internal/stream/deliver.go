package stream

import (
	"context"
	"encoding/base64"
	"math"
)

// SliceSize is how many asset bytes each audio_chunk event carries.
// An implementation constant, not a protocol guarantee: a typical ~400KB
// sermon asset yields a dozen or so slices.
const SliceSize = 32 * 1024

// Delivery percentages: generation owns 0-80, the fixed assembly stages end
// at 90, and byte delivery climbs the final 90-100 band.
const (
	deliveryBasePercent = 90
	deliveryBandPercent = 10
)

// DeliverAsset slices the assembled asset into audio_chunk events with
// base64 payloads, offset ascending, interleaved with "downloading"
// progress so the caller sees movement through the largest phase of the
// response instead of one blocking write.
//
// The context is the caller's disconnection signal. It is polled before
// each slice; once observed, no further audio_chunk events are emitted and
// delivery stops. The terminal event is the pipeline's responsibility, not
// this function's.
func DeliverAsset(ctx context.Context, sink Sink, asset []byte) error {
	total := len(asset)
	slices := (total + SliceSize - 1) / SliceSize

	for i := 0; i < slices; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		offset := i * SliceSize
		end := offset + SliceSize
		if end > total {
			end = total
		}

		payload := base64.StdEncoding.EncodeToString(asset[offset:end])
		if err := sink.Emit(AudioChunk(payload, offset)); err != nil {
			return err
		}

		percent := deliveryBasePercent + int(math.Round(float64(end)/float64(total)*deliveryBandPercent))
		if err := sink.Emit(Progress(i+1, slices, percent, "Downloading audio")); err != nil {
			return err
		}
	}

	return nil
}
