package stream

import (
	"encoding/json"
	"io"
	"net/http"
)

// Encoder writes stream events as newline-delimited JSON records, flushing
// after every record so the caller can parse each one as it arrives,
// before the full asset exists.
type Encoder struct {
	enc     *json.Encoder
	flusher http.Flusher
}

var _ Sink = (*Encoder)(nil)

// NewEncoder wraps a response writer. If w supports http.Flusher each
// record is flushed as produced; plain writers (tests, buffers) are fine.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{enc: json.NewEncoder(w)}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Emit writes one event as a single JSON line and flushes it.
func (e *Encoder) Emit(ev Event) error {
	if err := e.enc.Encode(ev); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
