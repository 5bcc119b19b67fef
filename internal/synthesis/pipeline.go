package synthesis

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/homilyhq/homily/internal/audio"
	"github.com/homilyhq/homily/internal/models"
	"github.com/homilyhq/homily/internal/services"
	"github.com/homilyhq/homily/internal/stream"
)

// The generation phase owns the first 80 percentage points, split
// proportionally across chunks. The remaining 20 cover the fixed
// assembly stages and byte delivery.
const generationPercentBand = 80

// audioExt is the extension of the run encoding. Every provider returns
// WAV, chosen once per request, so concatenation never transcodes.
const audioExt = "wav"

// SermonStore is the slice of the persistence layer the pipeline needs:
// one read at the start, at most one metadata-only write at the end.
type SermonStore interface {
	GetSermon(ctx context.Context, id uuid.UUID) (*models.Sermon, error)
	UpdateSermonAudio(ctx context.Context, id uuid.UUID, meta models.SermonAudioMetadata) error
}

// Pipeline orchestrates one synthesis run: precondition checks, sequential
// per-chunk synthesis, silence insertion, concatenation, and inline
// delivery of the assembled asset as stream events.
type Pipeline struct {
	store        SermonStore
	tts          services.Synthesizer
	gap          time.Duration
	chunkTimeout time.Duration
}

func New(store SermonStore, tts services.Synthesizer, gap, chunkTimeout time.Duration) *Pipeline {
	return &Pipeline{
		store:        store,
		tts:          tts,
		gap:          gap,
		chunkTimeout: chunkTimeout,
	}
}

// Run is a validated synthesis run: the sermon, the selected chunks in
// index order, and the resolved voice/model pair.
type Run struct {
	Sermon *models.Sermon
	Chunks []models.SavedChunk
	Voice  string
	Model  string
}

// Prepare performs the authorization and precondition checks, selects and
// orders the chunks, and resolves the model. Each failure short-circuits
// with a distinct error before any stream event is emitted.
func (p *Pipeline) Prepare(ctx context.Context, sermonID uuid.UUID, req models.GenerateAudioRequest) (*Run, error) {
	if req.OwnerID == "" {
		return nil, ErrUnauthenticated
	}

	sermon, err := p.store.GetSermon(ctx, sermonID)
	if err != nil {
		return nil, ErrSermonNotFound
	}

	if sermon.OwnerID != req.OwnerID {
		return nil, ErrForbidden
	}

	if len(sermon.AudioChunks) == 0 {
		return nil, fmt.Errorf("%w: no saved audio chunks; run the optimize step first", ErrPrecondition)
	}

	selector := req.Section
	if selector == "" {
		selector = models.SectionAll
	}

	chunks := sermon.AudioChunks.Select(selector)
	if selector != models.SectionAll && len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks for section %q", ErrPrecondition, selector)
	}

	return &Run{
		Sermon: sermon,
		Chunks: chunks,
		Voice:  req.Voice,
		Model:  p.tts.ModelFor(req.Quality),
	}, nil
}

// Execute drives a prepared run to its terminal event.
//
// Synthesis calls are sequential in selection order, so the final asset is
// assembled in input order by construction — no re-sort before
// concatenation. They run on a context detached from the caller's
// cancellation: an in-flight chunk is allowed to finish, and cancellation
// is only polled before each outbound byte slice during delivery. A
// cancelled run therefore still closes with a download_complete record so
// the caller's stream ends deterministically.
//
// Any synthesis or assembly failure emits a single error event and
// terminates the run: no partial asset, no metadata write.
func (p *Pipeline) Execute(ctx context.Context, run *Run, sink stream.Sink) error {
	total := len(run.Chunks)
	opts := services.SynthesisOptions{
		Voice:  run.Voice,
		Model:  run.Model,
		Format: audioExt,
	}

	log.Printf("[Pipeline] Starting synthesis run (sermon=%s, chunks=%d, voice=%s, model=%s)",
		run.Sermon.ID, total, run.Voice, run.Model)

	synthCtx := context.WithoutCancel(ctx)

	buffers := make([][]byte, 0, total)
	for i, chunk := range run.Chunks {
		chunkCtx, cancel := context.WithTimeout(synthCtx, p.chunkTimeout)
		result, err := p.tts.Synthesize(chunkCtx, chunk.Text, opts)
		cancel()
		if err != nil {
			return p.fail(sink, fmt.Errorf("chunk %d synthesis failed: %w", chunk.Index, err))
		}
		buffers = append(buffers, result.AudioData)

		current := i + 1
		percent := int(math.Round(float64(current) / float64(total) * generationPercentBand))
		if err := sink.Emit(stream.Progress(current, total, percent,
			fmt.Sprintf("Generating audio %d/%d", current, total))); err != nil {
			return err
		}
	}

	// Fixed post-generation stages, independent of chunk count.
	if err := sink.Emit(stream.Progress(0, 0, 82, "Inserting pauses")); err != nil {
		return err
	}
	spaced, err := audio.InsertSilence(buffers, p.gap)
	if err != nil {
		return p.fail(sink, fmt.Errorf("silence insertion failed: %w", err))
	}

	if err := sink.Emit(stream.Progress(0, 0, 85, "Merging audio")); err != nil {
		return err
	}
	asset, err := audio.Concatenate(spaced)
	if err != nil {
		return p.fail(sink, fmt.Errorf("concatenation failed: %w", err))
	}

	if err := sink.Emit(stream.Progress(0, 0, 90, "Preparing download")); err != nil {
		return err
	}

	log.Printf("[Pipeline] Assembled audio asset (%d bytes from %d chunks)", len(asset), total)

	if err := stream.DeliverAsset(ctx, sink, asset); err != nil {
		return err
	}

	filename := AudioFilename(run.Sermon.Title, audioExt)
	if err := sink.Emit(stream.DownloadComplete(filename)); err != nil {
		return err
	}

	// Metadata write survives caller disconnection: the run's single,
	// all-or-nothing side effect on the sermon record.
	meta := models.SermonAudioMetadata{
		Voice:         run.Voice,
		Model:         run.Model,
		LastGenerated: time.Now(),
	}
	if err := p.store.UpdateSermonAudio(context.WithoutCancel(ctx), run.Sermon.ID, meta); err != nil {
		return fmt.Errorf("failed to persist audio metadata: %w", err)
	}

	log.Printf("[Pipeline] Run complete (sermon=%s, filename=%s)", run.Sermon.ID, filename)
	return nil
}

// fail reports a mid-run failure as the stream's single error record.
// Once streaming has begun, failures must close the stream with a
// well-formed terminal record instead of an HTTP-level error.
func (p *Pipeline) fail(sink stream.Sink, err error) error {
	log.Printf("[Pipeline] Run failed: %v", err)
	if emitErr := sink.Emit(stream.Error(err.Error())); emitErr != nil {
		return fmt.Errorf("%v (and failed to report: %w)", err, emitErr)
	}
	return err
}
