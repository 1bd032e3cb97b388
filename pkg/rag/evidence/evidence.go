package evidence

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-fitness-be/pkg/papersearch"
)

// Source collections a chunk can come from.
const (
	SourceTranscript = "transcript"
	SourceTextbook   = "textbook"
)

// Chunk is one retrieved passage with its provenance. Score is cosine
// similarity (1 - cosine distance), so higher means more relevant.
type Chunk struct {
	Text        string  `json:"text"`
	SourceTitle string  `json:"source_title"`
	SourceType  string  `json:"source_type"`
	Score       float64 `json:"score"`
	SourceRef   string  `json:"source_ref,omitempty"`
}

// Bundle holds everything retrieval produced for one user query.
type Bundle struct {
	TranscriptChunks []Chunk             `json:"transcript_chunks"`
	TextbookChunks   []Chunk             `json:"textbook_chunks"`
	Papers           []papersearch.Paper `json:"papers"`
}

// Empty reports whether no evidence of any kind was gathered.
func (b *Bundle) Empty() bool {
	return len(b.TranscriptChunks) == 0 && len(b.TextbookChunks) == 0 && len(b.Papers) == 0
}

// Serialize renders the bundle as the plain-text block handed back to the
// model as a tool result. Each evidence group is a labelled JSON dump;
// empty groups serialize as empty arrays so the model sees that retrieval
// ran and found nothing.
func (b *Bundle) Serialize() (string, error) {
	transcripts := b.TranscriptChunks
	if transcripts == nil {
		transcripts = []Chunk{}
	}
	textbooks := b.TextbookChunks
	if textbooks == nil {
		textbooks = []Chunk{}
	}
	papers := b.Papers
	if papers == nil {
		papers = []papersearch.Paper{}
	}

	transcriptJson, err := json.Marshal(transcripts)
	if err != nil {
		return "", fmt.Errorf("serialize transcript chunks: %w", err)
	}
	textbookJson, err := json.Marshal(textbooks)
	if err != nil {
		return "", fmt.Errorf("serialize textbook chunks: %w", err)
	}
	paperJson, err := json.Marshal(papers)
	if err != nil {
		return "", fmt.Errorf("serialize papers: %w", err)
	}

	parts := []string{
		"Transcript Chunks: \n " + string(transcriptJson),
		"Textbook Chunks: \n " + string(textbookJson),
		"Research Paper Summaries: \n " + string(paperJson),
	}
	return strings.Join(parts, "\n\n"), nil
}

const (
	labelTranscripts = "Transcript Chunks:"
	labelTextbooks   = "Textbook Chunks:"
	labelPapers      = "Research Paper Summaries:"
)

// Parse reads a serialized tool-result block back into a Bundle. It is the
// inverse of Serialize: chunk counts and source attribution survive the
// round trip. Unknown text outside the labelled sections is ignored.
func Parse(raw string) (*Bundle, error) {
	bundle := &Bundle{
		TranscriptChunks: []Chunk{},
		TextbookChunks:   []Chunk{},
		Papers:           []papersearch.Paper{},
	}

	transcriptPart := sectionBody(raw, labelTranscripts, labelTextbooks)
	if err := unmarshalSection(transcriptPart, &bundle.TranscriptChunks); err != nil {
		return nil, fmt.Errorf("parse transcript chunks: %w", err)
	}
	textbookPart := sectionBody(raw, labelTextbooks, labelPapers)
	if err := unmarshalSection(textbookPart, &bundle.TextbookChunks); err != nil {
		return nil, fmt.Errorf("parse textbook chunks: %w", err)
	}
	paperPart := sectionBody(raw, labelPapers, "")
	if err := unmarshalSection(paperPart, &bundle.Papers); err != nil {
		return nil, fmt.Errorf("parse papers: %w", err)
	}
	return bundle, nil
}

// sectionBody returns the text between a section label and the next label,
// or to the end of input when nextLabel is empty or absent.
func sectionBody(raw, label, nextLabel string) string {
	start := strings.Index(raw, label)
	if start < 0 {
		return ""
	}
	body := raw[start+len(label):]
	if nextLabel != "" {
		if end := strings.Index(body, nextLabel); end >= 0 {
			body = body[:end]
		}
	}
	return strings.TrimSpace(body)
}

func unmarshalSection(body string, dest interface{}) error {
	if body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), dest)
}
