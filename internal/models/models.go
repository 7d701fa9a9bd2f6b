package models

import (
	"time"
)

// Document statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Language codes produced by the metadata builder.
const (
	LanguageEnglish = "en"
	LanguageItalian = "it"
	LanguageUnknown = "unknown"
)

// DocumentMetadata holds the values derived from a document's cleaned text.
type DocumentMetadata struct {
	FileType             string  `db:"file_type" json:"file_type" bson:"file_type"`
	FileSize             int64   `db:"file_size" json:"file_size" bson:"file_size"`
	WordCount            int     `db:"word_count" json:"word_count" bson:"word_count"`
	CharacterCount       int     `db:"character_count" json:"character_count" bson:"character_count"`
	EstimatedReadingTime int     `db:"estimated_reading_time" json:"estimated_reading_time" bson:"estimated_reading_time"` // minutes
	Language             string  `db:"language" json:"language" bson:"language"`
	Author               *string `db:"author" json:"author,omitempty" bson:"author,omitempty"`
	Pages                *int    `db:"pages" json:"pages,omitempty" bson:"pages,omitempty"`
}

// DocumentChunk is one positioned segment of a document's cleaned text.
// Positions and counts are in runes.
type DocumentChunk struct {
	Index          int    `db:"chunk_index" json:"index" bson:"index"`
	Content        string `db:"content" json:"content" bson:"content"`
	StartPosition  int    `db:"start_position" json:"start_position" bson:"start_position"`
	EndPosition    int    `db:"end_position" json:"end_position" bson:"end_position"`
	WordCount      int    `db:"word_count" json:"word_count" bson:"word_count"`
	CharacterCount int    `db:"character_count" json:"character_count" bson:"character_count"`
}

// Document is the processed record of one upload.
type Document struct {
	ID          string           `db:"id" json:"id" bson:"_id"`
	Title       string           `db:"title" json:"title" bson:"title"`
	Content     string           `db:"content" json:"content" bson:"content"`
	Summary     string           `db:"summary" json:"summary" bson:"summary"`
	Chunks      []DocumentChunk  `db:"-" json:"chunks" bson:"chunks"`
	UserID      *string          `db:"user_id" json:"user_id,omitempty" bson:"user_id,omitempty"`
	UploadedAt  time.Time        `db:"uploaded_at" json:"uploaded_at" bson:"uploaded_at"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	Metadata    DocumentMetadata `db:"-" json:"metadata" bson:"metadata"`
	Status      string           `db:"status" json:"status" bson:"status"`
	// StorageKey locates the archived original upload; empty when not archived.
	StorageKey string `db:"storage_key" json:"storage_key,omitempty" bson:"storage_key,omitempty"`
}

// DocumentSummary is the listing view of a document: no content, no chunks.
type DocumentSummary struct {
	ID          string           `json:"id" bson:"_id"`
	Title       string           `json:"title" bson:"title"`
	Summary     string           `json:"summary" bson:"summary"`
	ChunksCount int              `json:"chunks_count" bson:"chunks_count"`
	UserID      *string          `json:"user_id,omitempty" bson:"user_id,omitempty"`
	UploadedAt  time.Time        `json:"uploaded_at" bson:"uploaded_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	Metadata    DocumentMetadata `json:"metadata" bson:"metadata"`
	Status      string           `json:"status" bson:"status"`
}

// Summarize returns the listing view of d.
func (d *Document) Summarize() DocumentSummary {
	return DocumentSummary{
		ID:          d.ID,
		Title:       d.Title,
		Summary:     d.Summary,
		ChunksCount: len(d.Chunks),
		UserID:      d.UserID,
		UploadedAt:  d.UploadedAt,
		ProcessedAt: d.ProcessedAt,
		Metadata:    d.Metadata,
		Status:      d.Status,
	}
}

// DocumentUpdate carries the fields a reprocess rewrites.
type DocumentUpdate struct {
	Chunks      []DocumentChunk
	Summary     string
	ProcessedAt time.Time
	Status      string
}

// ChunkEmbedding is the vector computed for one chunk.
type ChunkEmbedding struct {
	Index  int
	Vector []float32
}

// ChunkMatch is a similarity search hit.
type ChunkMatch struct {
	DocumentID string        `json:"document_id"`
	Chunk      DocumentChunk `json:"chunk"`
	Distance   float64       `json:"distance"`
}
