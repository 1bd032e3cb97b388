package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ai-fitness-be/pkg/llm"
)

// QueryGenerationError wraps a model failure during sub-query planning.
// Callers are expected to degrade to an empty plan rather than fail the turn.
type QueryGenerationError struct {
	Err error
}

func (e *QueryGenerationError) Error() string {
	return fmt.Sprintf("query generation failed: %v", e.Err)
}

func (e *QueryGenerationError) Unwrap() error { return e.Err }

// SubQuerySet is the planner output: web-search phrasings and vector-search
// phrasings derived from the same conversation context.
type SubQuerySet struct {
	Research  []string
	Embedding []string
}

func (s SubQuerySet) Empty() bool {
	return len(s.Research) == 0 && len(s.Embedding) == 0
}

var (
	researchLine  = regexp.MustCompile(`(?m)^<RESEARCH QUERY>\s*(.+)$`)
	embeddingLine = regexp.MustCompile(`(?m)^<EMBEDDING QUERY>\s*(.+)$`)
)

const planPrompt = `You are a research planning assistant for a fitness and exercise-science knowledge base.

Given the conversation below, decompose the user's information need into focused sub-queries.

Produce two kinds of sub-queries:
- RESEARCH queries: phrased for academic literature search (precise terminology, one topic each).
- EMBEDDING queries: phrased for semantic similarity search over coaching video transcripts and textbook passages (natural language, self-contained).

Keep the user's original scope: cover everything they asked about and never narrow the question to one aspect. Avoid generic filler words. Similarity search weighs the end of the query most, so phrase every EMBEDDING query to end with its most topically relevant noun as the last token.

Output format, one query per line, nothing else:
<RESEARCH QUERY> your query here
<EMBEDDING QUERY> your query here

Emit at most %d research queries and at most %d embedding queries. If the conversation needs no retrieval, emit nothing.

Conversation:
%s`

// Planner turns conversation context into retrieval sub-queries via a
// line-prefix protocol. Lines that do not match a prefix are ignored.
type Planner struct {
	provider llm.Provider
}

func NewPlanner(provider llm.Provider) *Planner {
	return &Planner{provider: provider}
}

// Plan asks the model for sub-queries and parses the prefixed lines.
// Each list is capped by its max; excess lines are dropped in emission
// order. An unparseable response yields an empty set, not an error.
func (p *Planner) Plan(ctx context.Context, conversationContext string, maxResearch, maxEmbedding int) (SubQuerySet, error) {
	prompt := fmt.Sprintf(planPrompt, maxResearch, maxEmbedding, conversationContext)

	raw, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return SubQuerySet{}, &QueryGenerationError{Err: err}
	}

	return SubQuerySet{
		Research:  extractQueries(researchLine, raw, maxResearch),
		Embedding: extractQueries(embeddingLine, raw, maxEmbedding),
	}, nil
}

func extractQueries(re *regexp.Regexp, raw string, max int) []string {
	matches := re.FindAllStringSubmatch(raw, -1)
	queries := make([]string, 0, len(matches))
	for _, m := range matches {
		q := strings.TrimSpace(m[1])
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if max > 0 && len(queries) >= max {
			break
		}
	}
	return queries
}
