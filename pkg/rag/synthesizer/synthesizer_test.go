package synthesizer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

func TestParseSummariesAndFinal(t *testing.T) {
	raw := `<SUMMARY 1>
The video recommends 3 sets of squats.
<SUMMARY 2>
This video contains nothing relevant to the question.
<FINAL ANSWER>
Do compound lifts three times a week.`

	answers, final, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if answers[0] != "The video recommends 3 sets of squats." {
		t.Errorf("unexpected first answer: %q", answers[0])
	}
	if final == nil || *final != "Do compound lifts three times a week." {
		t.Errorf("unexpected final answer: %v", final)
	}
}

func TestParseMissingFinalAnswerIsAbsent(t *testing.T) {
	raw := `<SUMMARY 1>
one
<SUMMARY 2>
two
<SUMMARY 3>
three`

	answers, final, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers in order, got %v", answers)
	}
	if answers[2] != "three" {
		t.Errorf("order not preserved: %v", answers)
	}
	if final != nil {
		t.Errorf("final answer must be absent, got %q", *final)
	}
}

func TestParseNoTags(t *testing.T) {
	answers, final, err := Parse("the model just rambled")
	if err == nil {
		t.Fatal("expected ParseError")
	}
	var pErr *ParseError
	if !errors.As(err, &pErr) {
		t.Errorf("expected ParseError, got %T", err)
	}
	if len(answers) != 0 || final != nil {
		t.Errorf("expected empty results, got %v, %v", answers, final)
	}
}

type stubProvider struct {
	response string
	err      error
	prompt   string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

type stubPlanner struct{}

func (s *stubPlanner) Plan(ctx context.Context, c string, maxR, maxE int) (planner.SubQuerySet, error) {
	return planner.SubQuerySet{Embedding: []string{c}}, nil
}

type stubRetriever struct {
	bundle *evidence.Bundle
}

func (s *stubRetriever) Retrieve(ctx context.Context, set planner.SubQuerySet) (*evidence.Bundle, error) {
	return s.bundle, nil
}

func TestSynthesizeFullRun(t *testing.T) {
	provider := &stubProvider{response: `<SUMMARY 1>
Squat depth matters.
<FINAL ANSWER>
Train through a full range of motion.`}
	retr := &stubRetriever{bundle: &evidence.Bundle{
		TranscriptChunks: []evidence.Chunk{
			{Text: "go deep on squats", SourceTitle: "Leg Day Ep. 2", SourceType: evidence.SourceTranscript},
		},
	}}

	syn := NewSynthesizer(provider, &stubPlanner{}, retr, log.New(io.Discard, "", 0), Config{MaxResearchQueries: 3, MaxEmbeddingQueries: 3})
	res, err := syn.Synthesize(context.Background(), "how deep should I squat?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.PerChunkAnswers) != 1 || res.PerChunkAnswers[0] != "Squat depth matters." {
		t.Errorf("unexpected answers: %v", res.PerChunkAnswers)
	}
	if res.FinalAnswer == nil || *res.FinalAnswer != "Train through a full range of motion." {
		t.Errorf("unexpected final answer: %v", res.FinalAnswer)
	}
	if !strings.Contains(provider.prompt, "go deep on squats") {
		t.Error("prompt missing retrieved excerpt")
	}
	if !strings.Contains(provider.prompt, `"a video"`) {
		t.Error("prompt missing the video phrasing instruction")
	}
}

type fixedPlanner struct {
	set planner.SubQuerySet
}

func (f *fixedPlanner) Plan(ctx context.Context, c string, maxR, maxE int) (planner.SubQuerySet, error) {
	return f.set, nil
}

func TestSynthesizeResultKeepsPlanAndBothCollections(t *testing.T) {
	provider := &stubProvider{response: `<SUMMARY 1>
ans
<FINAL ANSWER>
final`}
	qp := &fixedPlanner{set: planner.SubQuerySet{
		Research:  []string{"rep range hypertrophy meta-analysis"},
		Embedding: []string{"best rep range for muscle growth"},
	}}
	retr := &stubRetriever{bundle: &evidence.Bundle{
		TranscriptChunks: []evidence.Chunk{{Text: "6-12 reps", SourceTitle: "Hypertrophy Ep. 3", SourceType: evidence.SourceTranscript}},
		TextbookChunks:   []evidence.Chunk{{Text: "rep continuum", SourceTitle: "Periodization, ch. 5", SourceType: evidence.SourceTextbook}},
	}}

	syn := NewSynthesizer(provider, qp, retr, log.New(io.Discard, "", 0), Config{MaxResearchQueries: 3, MaxEmbeddingQueries: 3})
	res, err := syn.Synthesize(context.Background(), "rep ranges?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.ResearchQueries) != 1 || res.ResearchQueries[0] != "rep range hypertrophy meta-analysis" {
		t.Errorf("research queries not kept: %v", res.ResearchQueries)
	}
	if len(res.EmbeddingQueries) != 1 || res.EmbeddingQueries[0] != "best rep range for muscle growth" {
		t.Errorf("embedding queries not kept: %v", res.EmbeddingQueries)
	}
	if len(res.TranscriptChunks) != 1 || res.TranscriptChunks[0].SourceType != evidence.SourceTranscript {
		t.Errorf("transcript chunks not kept: %v", res.TranscriptChunks)
	}
	if len(res.TextbookChunks) != 1 || res.TextbookChunks[0].SourceTitle != "Periodization, ch. 5" {
		t.Errorf("textbook chunks not kept: %v", res.TextbookChunks)
	}
}

func TestSynthesizeNoChunksSkipsModel(t *testing.T) {
	provider := &stubProvider{err: errors.New("must not be called")}
	retr := &stubRetriever{bundle: &evidence.Bundle{}}

	syn := NewSynthesizer(provider, &stubPlanner{}, retr, log.New(io.Discard, "", 0), Config{})
	res, err := syn.Synthesize(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.PerChunkAnswers) != 0 || res.FinalAnswer != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSynthesizeUnparseableOutputDegrades(t *testing.T) {
	provider := &stubProvider{response: "no tags here"}
	retr := &stubRetriever{bundle: &evidence.Bundle{
		TranscriptChunks: []evidence.Chunk{{Text: "chunk", SourceType: evidence.SourceTranscript}},
	}}

	syn := NewSynthesizer(provider, &stubPlanner{}, retr, log.New(io.Discard, "", 0), Config{})
	res, err := syn.Synthesize(context.Background(), "q")
	if err != nil {
		t.Fatalf("parse failures must degrade: %v", err)
	}
	if res.FinalAnswer != nil {
		t.Error("final answer must be absent on parse failure")
	}
}
