package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"ai-fitness-be/pkg/embedding"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

type stubEmbedder struct {
	failOn string
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errors.New("embedding backend down")
	}
	if !strings.HasPrefix(text, "Instruct: Find relevant documents") {
		return nil, fmt.Errorf("query missing instruction prefix: %q", text)
	}
	res := &embedding.EmbeddingResponse{}
	res.Embedding.Values = []float32{0.1, 0.2, 0.3}
	return res, nil
}

type stubChunkSearcher struct {
	failSourceType string
}

func (s *stubChunkSearcher) SearchSimilar(ctx context.Context, vector []float32, sourceType string, topK int) ([]evidence.Chunk, error) {
	if s.failSourceType == sourceType {
		return nil, errors.New("collection unavailable")
	}
	return []evidence.Chunk{
		{Text: sourceType + " hit", SourceType: sourceType, Score: 0.9},
	}, nil
}

type stubPaperSearcher struct {
	err error
}

func (s *stubPaperSearcher) Search(ctx context.Context, query string, numResults int) ([]papersearch.Paper, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []papersearch.Paper{{Title: "paper for " + query}}, nil
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveMergesAllBackends(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubChunkSearcher{}, &stubPaperSearcher{}, discard(), DefaultConfig())

	bundle, err := r.Retrieve(context.Background(), planner.SubQuerySet{
		Research:  []string{"q1", "q2"},
		Embedding: []string{"e1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bundle.TranscriptChunks) != 1 || bundle.TranscriptChunks[0].SourceType != evidence.SourceTranscript {
		t.Errorf("unexpected transcript chunks: %+v", bundle.TranscriptChunks)
	}
	if len(bundle.TextbookChunks) != 1 || bundle.TextbookChunks[0].SourceType != evidence.SourceTextbook {
		t.Errorf("unexpected textbook chunks: %+v", bundle.TextbookChunks)
	}
	if len(bundle.Papers) != 2 {
		t.Fatalf("expected 2 paper groups, got %d", len(bundle.Papers))
	}
	// Results preserve the plan's emission order.
	if bundle.Papers[0].Title != "paper for q1" || bundle.Papers[1].Title != "paper for q2" {
		t.Errorf("paper order not preserved: %+v", bundle.Papers)
	}
}

func TestRetrievePaperFailureLeavesChunksIntact(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubChunkSearcher{}, &stubPaperSearcher{err: errors.New("503")}, discard(), DefaultConfig())

	bundle, err := r.Retrieve(context.Background(), planner.SubQuerySet{
		Research:  []string{"q1"},
		Embedding: []string{"e1"},
	})
	if err != nil {
		t.Fatalf("retrieval must degrade, not fail: %v", err)
	}
	if len(bundle.Papers) != 0 {
		t.Errorf("expected no papers, got %+v", bundle.Papers)
	}
	if len(bundle.TranscriptChunks) != 1 {
		t.Errorf("chunk retrieval should be unaffected, got %+v", bundle.TranscriptChunks)
	}
}

func TestRetrieveEmbeddingFailureDegradesThatQueryOnly(t *testing.T) {
	r := NewRetriever(&stubEmbedder{failOn: "bad query"}, &stubChunkSearcher{}, &stubPaperSearcher{}, discard(), DefaultConfig())

	bundle, err := r.Retrieve(context.Background(), planner.SubQuerySet{
		Embedding: []string{"bad query", "good query"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.TranscriptChunks) != 1 {
		t.Errorf("expected results from the surviving query only, got %d transcript chunks", len(bundle.TranscriptChunks))
	}
}

func TestRetrieveCollectionFailuresAreIndependent(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubChunkSearcher{failSourceType: evidence.SourceTranscript}, &stubPaperSearcher{}, discard(), DefaultConfig())

	bundle, err := r.Retrieve(context.Background(), planner.SubQuerySet{
		Embedding: []string{"e1"},
	})
	if err != nil {
		t.Fatalf("retrieval must degrade, not fail: %v", err)
	}
	if len(bundle.TranscriptChunks) != 0 {
		t.Errorf("expected no transcript chunks, got %+v", bundle.TranscriptChunks)
	}
	// The textbook lookup shares the embedding but not the failure.
	if len(bundle.TextbookChunks) != 1 {
		t.Errorf("textbook lookup should survive a transcript failure, got %+v", bundle.TextbookChunks)
	}
}

func TestRetrieveEmptyPlan(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubChunkSearcher{}, &stubPaperSearcher{}, discard(), DefaultConfig())

	bundle, err := r.Retrieve(context.Background(), planner.SubQuerySet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bundle.Empty() {
		t.Errorf("expected empty bundle, got %+v", bundle)
	}
}
