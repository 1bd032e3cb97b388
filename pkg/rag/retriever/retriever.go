package retriever

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"ai-fitness-be/pkg/embedding"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

// Embedding queries are prefixed with a retrieval instruction before being
// embedded; the corpus was embedded with the matching document task.
const queryInstruction = "Instruct: Find relevant documents \n Query: %s"

// BackendError marks a failure of one retrieval backend for one sub-query.
// The retriever logs these and degrades instead of failing the whole fetch.
type BackendError struct {
	Backend string
	Query   string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s retrieval failed for %q: %v", e.Backend, e.Query, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ChunkSearcher finds the nearest stored chunks for a query vector within
// one source collection.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, vector []float32, sourceType string, topK int) ([]evidence.Chunk, error)
}

// PaperSearcher runs an academic literature search.
type PaperSearcher interface {
	Search(ctx context.Context, query string, numResults int) ([]papersearch.Paper, error)
}

// Config bounds each backend's result count and the fan-out width.
type Config struct {
	TranscriptTopK int
	TextbookTopK   int
	PaperResults   int
	MaxConcurrency int
}

func DefaultConfig() Config {
	return Config{
		TranscriptTopK: 10,
		TextbookTopK:   5,
		PaperResults:   10,
		MaxConcurrency: 4,
	}
}

// Retriever fans a sub-query plan out across the vector store and the paper
// search API and merges everything into one evidence bundle.
type Retriever struct {
	embedder embedding.Provider
	chunks   ChunkSearcher
	papers   PaperSearcher
	logger   *log.Logger
	cfg      Config
}

func NewRetriever(embedder embedding.Provider, chunks ChunkSearcher, papers PaperSearcher, logger *log.Logger, cfg Config) *Retriever {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &Retriever{
		embedder: embedder,
		chunks:   chunks,
		papers:   papers,
		logger:   logger,
		cfg:      cfg,
	}
}

// Retrieve executes every sub-query concurrently. A failing sub-query is
// logged and contributes nothing; results keep the plan's emission order.
// No deduplication is performed across sub-queries.
func (r *Retriever) Retrieve(ctx context.Context, set planner.SubQuerySet) (*evidence.Bundle, error) {
	transcriptResults := make([][]evidence.Chunk, len(set.Embedding))
	textbookResults := make([][]evidence.Chunk, len(set.Embedding))
	paperResults := make([][]papersearch.Paper, len(set.Research))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrency)

	for i, query := range set.Embedding {
		i, query := i, query
		g.Go(func() error {
			transcripts, textbooks, err := r.searchChunks(gctx, query)
			if err != nil {
				r.logger.Printf("WARN %v", err)
				return nil
			}
			transcriptResults[i] = transcripts
			textbookResults[i] = textbooks
			return nil
		})
	}

	for i, query := range set.Research {
		i, query := i, query
		g.Go(func() error {
			papers, err := r.papers.Search(gctx, query, r.cfg.PaperResults)
			if err != nil {
				r.logger.Printf("WARN %v", &BackendError{Backend: "paper", Query: query, Err: err})
				return nil
			}
			paperResults[i] = papers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := &evidence.Bundle{}
	for _, chunks := range transcriptResults {
		bundle.TranscriptChunks = append(bundle.TranscriptChunks, chunks...)
	}
	for _, chunks := range textbookResults {
		bundle.TextbookChunks = append(bundle.TextbookChunks, chunks...)
	}
	for _, papers := range paperResults {
		bundle.Papers = append(bundle.Papers, papers...)
	}
	return bundle, nil
}

// searchChunks embeds one sub-query and looks it up in both collections
// concurrently. Only an embedding failure drops the whole sub-query; a
// failing collection lookup is logged and leaves the other one intact.
func (r *Retriever) searchChunks(ctx context.Context, query string) ([]evidence.Chunk, []evidence.Chunk, error) {
	instructed := fmt.Sprintf(queryInstruction, query)
	embRes, err := r.embedder.Generate(ctx, instructed, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, nil, &BackendError{Backend: "embedding", Query: query, Err: err}
	}
	vector := embRes.Embedding.Values

	var (
		wg          sync.WaitGroup
		transcripts []evidence.Chunk
		textbooks   []evidence.Chunk
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		chunks, err := r.chunks.SearchSimilar(ctx, vector, evidence.SourceTranscript, r.cfg.TranscriptTopK)
		if err != nil {
			r.logger.Printf("WARN %v", &BackendError{Backend: "transcript", Query: query, Err: err})
			return
		}
		transcripts = chunks
	}()
	go func() {
		defer wg.Done()
		chunks, err := r.chunks.SearchSimilar(ctx, vector, evidence.SourceTextbook, r.cfg.TextbookTopK)
		if err != nil {
			r.logger.Printf("WARN %v", &BackendError{Backend: "textbook", Query: query, Err: err})
			return
		}
		textbooks = chunks
	}()
	wg.Wait()

	return transcripts, textbooks, nil
}
