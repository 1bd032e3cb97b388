package synthesizer

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

// ParseError marks model output that carried no recognizable summary or
// final-answer block. Callers degrade to an absent final answer.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("synthesis output had no parseable blocks (%d bytes)", len(e.Raw))
}

// Result is the structured outcome of one research run: the question, the
// sub-query plan, every piece of retrieved evidence, and the model's
// answers. FinalAnswer is nil when the model emitted no final-answer block;
// the per-chunk answer count may differ from the transcript chunk count.
type Result struct {
	Query            string
	ResearchQueries  []string
	EmbeddingQueries []string
	TranscriptChunks []evidence.Chunk
	TextbookChunks   []evidence.Chunk
	Papers           []papersearch.Paper
	PerChunkAnswers  []string
	FinalAnswer      *string
}

// QueryPlanner produces retrieval sub-queries for the research question.
type QueryPlanner interface {
	Plan(ctx context.Context, conversationContext string, maxResearch, maxEmbedding int) (planner.SubQuerySet, error)
}

// EvidenceRetriever resolves a sub-query plan into an evidence bundle.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, set planner.SubQuerySet) (*evidence.Bundle, error)
}

// Config bounds the planning step.
type Config struct {
	MaxResearchQueries  int
	MaxEmbeddingQueries int
}

const synthesisPrompt = `You are an exercise-science research assistant. The user asked:

%s

Below are transcript excerpts retrieved from coaching videos. Assess each excerpt INDEPENDENTLY: for each one, answer the user's question using only that excerpt. Never carry information between excerpts. Always refer to an excerpt as "a video". If an excerpt contains nothing relevant, say so explicitly for that excerpt.

After all excerpts, write one synthesis across everything relevant.

Output format, exactly:
<SUMMARY 1>
your answer for excerpt 1
<SUMMARY 2>
your answer for excerpt 2
...
<FINAL ANSWER>
your overall synthesis

Excerpts:
%s`

// Synthesizer answers a research question chunk-by-chunk: it plans
// sub-queries, retrieves evidence, and asks the model for per-chunk
// answers plus one delimited final synthesis.
type Synthesizer struct {
	provider  llm.Provider
	planner   QueryPlanner
	retriever EvidenceRetriever
	logger    *log.Logger
	cfg       Config
}

func NewSynthesizer(provider llm.Provider, qp QueryPlanner, er EvidenceRetriever, logger *log.Logger, cfg Config) *Synthesizer {
	return &Synthesizer{
		provider:  provider,
		planner:   qp,
		retriever: er,
		logger:    logger,
		cfg:       cfg,
	}
}

// Synthesize runs the full research pipeline for one query. Retrieval and
// parse failures degrade: the result always comes back, possibly with no
// chunks or no final answer. Only a model transport failure is an error.
func (s *Synthesizer) Synthesize(ctx context.Context, query string) (*Result, error) {
	set, err := s.planner.Plan(ctx, query, s.cfg.MaxResearchQueries, s.cfg.MaxEmbeddingQueries)
	if err != nil {
		s.logger.Printf("WARN %v, degrading to empty plan", err)
		set = planner.SubQuerySet{}
	}

	bundle, err := s.retriever.Retrieve(ctx, set)
	if err != nil {
		s.logger.Printf("WARN retrieval failed: %v", err)
		bundle = &evidence.Bundle{}
	}

	result := &Result{
		Query:            query,
		ResearchQueries:  set.Research,
		EmbeddingQueries: set.Embedding,
		TranscriptChunks: bundle.TranscriptChunks,
		TextbookChunks:   bundle.TextbookChunks,
		Papers:           bundle.Papers,
	}
	if len(bundle.TranscriptChunks) == 0 {
		return result, nil
	}

	prompt := fmt.Sprintf(synthesisPrompt, query, renderChunks(bundle.TranscriptChunks))
	raw, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("synthesis model call: %w", err)
	}

	answers, final, parseErr := Parse(raw)
	if parseErr != nil {
		s.logger.Printf("WARN %v", parseErr)
	}
	result.PerChunkAnswers = answers
	result.FinalAnswer = final
	return result, nil
}

func renderChunks(chunks []evidence.Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&sb, "Excerpt %d (from %s):\n%s\n\n", i+1, c.SourceTitle, c.Text)
	}
	return sb.String()
}

var blockTag = regexp.MustCompile(`<SUMMARY\s+\d+>|<FINAL ANSWER>`)

// Parse extracts every summary block in order plus the final-answer block.
// Each block's text runs from its tag to the next tag or end of input.
// A missing final answer yields nil, never an empty string. Output with no
// tags at all returns a ParseError alongside empty results.
func Parse(raw string) ([]string, *string, error) {
	locs := blockTag.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil, nil, &ParseError{Raw: raw}
	}

	answers := make([]string, 0, len(locs))
	var final *string
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		if strings.HasPrefix(raw[loc[0]:loc[1]], "<FINAL ANSWER>") {
			final = &body
		} else {
			answers = append(answers, body)
		}
	}
	return answers, final, nil
}
