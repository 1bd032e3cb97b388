package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-fitness-be/pkg/llm"
)

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

func TestPlanParsesPrefixedLines(t *testing.T) {
	p := NewPlanner(&stubProvider{response: `Here is my plan:
<RESEARCH QUERY> protein intake and muscle protein synthesis
<EMBEDDING QUERY> how much protein per day for muscle growth
<RESEARCH QUERY> leucine threshold in older adults
some stray commentary the model added
<EMBEDDING QUERY> protein timing around workouts`})

	set, err := p.Plan(context.Background(), "human: how much protein?", 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.Research) != 2 {
		t.Fatalf("expected 2 research queries, got %v", set.Research)
	}
	if set.Research[0] != "protein intake and muscle protein synthesis" {
		t.Errorf("unexpected first research query: %q", set.Research[0])
	}
	if len(set.Embedding) != 2 {
		t.Fatalf("expected 2 embedding queries, got %v", set.Embedding)
	}
	if set.Embedding[1] != "protein timing around workouts" {
		t.Errorf("unexpected second embedding query: %q", set.Embedding[1])
	}
}

func TestPlanCapsInEmissionOrder(t *testing.T) {
	p := NewPlanner(&stubProvider{response: `<RESEARCH QUERY> one
<RESEARCH QUERY> two
<RESEARCH QUERY> three
<EMBEDDING QUERY> a
<EMBEDDING QUERY> b`})

	set, err := p.Plan(context.Background(), "ctx", 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Research) != 2 || set.Research[0] != "one" || set.Research[1] != "two" {
		t.Errorf("research cap violated: %v", set.Research)
	}
	if len(set.Embedding) != 1 || set.Embedding[0] != "a" {
		t.Errorf("embedding cap violated: %v", set.Embedding)
	}
}

func TestPlanPromptCarriesQueryGuidance(t *testing.T) {
	provider := &stubProvider{response: ""}
	p := NewPlanner(provider)

	if _, err := p.Plan(context.Background(), "human: does creatine help sprinting?", 3, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"never narrow the question",
		"most topically relevant noun as the last token",
		"human: does creatine help sprinting?",
	} {
		if !strings.Contains(provider.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPlanMalformedResponseYieldsEmptySet(t *testing.T) {
	p := NewPlanner(&stubProvider{response: "I think you should squat more and eat well."})

	set, err := p.Plan(context.Background(), "ctx", 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Empty() {
		t.Errorf("expected empty set, got %+v", set)
	}
}

func TestPlanProviderErrorIsTyped(t *testing.T) {
	p := NewPlanner(&stubProvider{err: errors.New("connection refused")})

	_, err := p.Plan(context.Background(), "ctx", 5, 5)
	if err == nil {
		t.Fatal("expected error")
	}
	var qErr *QueryGenerationError
	if !errors.As(err, &qErr) {
		t.Errorf("expected QueryGenerationError, got %T", err)
	}
}
