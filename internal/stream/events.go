package stream

// ---------------------------------------------------------------------------
// StreamEvent — the tagged union written to the caller as newline-delimited
// JSON. Field names follow the web client's wire format (camelCase).
// Exactly one terminal event (download_complete or error) per run.
// ---------------------------------------------------------------------------

const (
	EventProgress         = "progress"
	EventAudioChunk       = "audio_chunk"
	EventDownloadComplete = "download_complete"
	EventError            = "error"
)

// Event is one self-delimited stream record. Only the fields of the tagged
// variant are populated; pointers distinguish "absent" from zero values
// (percent can legitimately be 0, offsets start at 0).
type Event struct {
	Type string `json:"type"`

	// progress
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Percent *int   `json:"percent,omitempty"`
	Status  string `json:"status,omitempty"`

	// audio_chunk
	Payload string `json:"payload,omitempty"`
	Offset  *int   `json:"offset,omitempty"`

	// download_complete
	Filename string  `json:"filename,omitempty"`
	AudioURL *string `json:"audioUrl,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// Progress builds a progress event. Current/Total are 1-based position and
// selected-chunk count during generation; both are 0 for fixed stages.
func Progress(current, total, percent int, status string) Event {
	return Event{
		Type:    EventProgress,
		Current: current,
		Total:   total,
		Percent: &percent,
		Status:  status,
	}
}

// AudioChunk wraps one base64-encoded slice of the assembled asset.
func AudioChunk(payload string, offset int) Event {
	return Event{
		Type:    EventAudioChunk,
		Payload: payload,
		Offset:  &offset,
	}
}

// DownloadComplete is the success terminal event. The audio was already
// delivered inline, so audioUrl is always empty — present but blank for
// wire compatibility.
func DownloadComplete(filename string) Event {
	empty := ""
	return Event{
		Type:     EventDownloadComplete,
		Filename: filename,
		AudioURL: &empty,
	}
}

// Error is the failure terminal event.
func Error(message string) Event {
	return Event{
		Type:    EventError,
		Message: message,
	}
}

// Sink receives stream events as they are produced.
type Sink interface {
	Emit(Event) error
}
