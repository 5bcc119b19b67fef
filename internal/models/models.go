package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SectionAll selects every saved chunk regardless of section.
const SectionAll = "all"

// SavedChunk is one ordered unit of sermon text scheduled for speech
// synthesis. Chunks are produced by the upstream optimize step and are
// immutable once stored. Index is a dense, zero-based sequence over the
// sermon's full chunk set.
type SavedChunk struct {
	Text      string    `json:"text"`
	SectionID string    `json:"sectionId"`
	Index     int       `json:"index"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavedChunkList is a JSONB column holding a sermon's optimized chunks.
type SavedChunkList []SavedChunk

func (l SavedChunkList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(SavedChunkList{})
	}
	return json.Marshal(l)
}

func (l *SavedChunkList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SavedChunkList", value)
	}
	return json.Unmarshal(bytes, l)
}

// Select returns the chunks matching the section selector, sorted by
// index ascending regardless of storage order. The selector is either
// SectionAll or a concrete section identifier.
func (l SavedChunkList) Select(selector string) []SavedChunk {
	var out []SavedChunk
	for _, c := range l {
		if selector == SectionAll || c.SectionID == selector {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Sermon is the stored sermon record. AudioChunks is written by the
// optimize step; the audio_* columns are written only after a fully
// successful synthesis run.
type Sermon struct {
	ID                 uuid.UUID      `json:"id"`
	OwnerID            string         `json:"owner_id"`
	SeriesID           *uuid.UUID     `json:"series_id,omitempty"`
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	AudioChunks        SavedChunkList `json:"audio_chunks,omitempty"`
	AudioVoice         *string        `json:"audio_voice,omitempty"`
	AudioModel         *string        `json:"audio_model,omitempty"`
	AudioLastGenerated *time.Time     `json:"audio_last_generated,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// SermonAudioMetadata is the metadata-only partial update persisted on
// the sermon record after a fully successful synthesis run.
type SermonAudioMetadata struct {
	Voice         string
	Model         string
	LastGenerated time.Time
}

// DTOs for API requests/responses

type CreateSermonRequest struct {
	OwnerID  string     `json:"owner_id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	SeriesID *uuid.UUID `json:"series_id,omitempty"`
}

type UpdateSermonRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// SaveChunksRequest replaces a sermon's optimized chunk set. Sent by the
// chunk-optimization step once it has split the sermon body.
type SaveChunksRequest struct {
	OwnerID string       `json:"owner_id"`
	Chunks  []SavedChunk `json:"chunks"`
}

// GenerateAudioRequest is the body of the synthesis endpoint. Field names
// follow the web client's wire format. Section is either "all" or one
// section identifier; Quality maps to a provider model id.
type GenerateAudioRequest struct {
	OwnerID string `json:"ownerId"`
	Voice   string `json:"voice"`
	Quality string `json:"quality"`
	Section string `json:"sections"`
}

type ListSermonsResponse struct {
	Sermons []Sermon `json:"sermons"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
