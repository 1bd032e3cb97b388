package agent

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/rag/conversation"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

type scriptedProvider struct {
	replies []llm.Message
	err     error
	calls   int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (*llm.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	s.calls++
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	reply := s.replies[idx]
	return &reply, nil
}

type stubPlanner struct {
	set planner.SubQuerySet
	err error
}

func (s *stubPlanner) Plan(ctx context.Context, c string, maxR, maxE int) (planner.SubQuerySet, error) {
	return s.set, s.err
}

type stubRetriever struct {
	bundle *evidence.Bundle
	calls  int
}

func (s *stubRetriever) Retrieve(ctx context.Context, set planner.SubQuerySet) (*evidence.Bundle, error) {
	s.calls++
	if s.bundle != nil {
		return s.bundle, nil
	}
	return &evidence.Bundle{}, nil
}

func newTestAgent(p *scriptedProvider, r *stubRetriever) *Agent {
	return NewAgent(p, &stubPlanner{}, r, log.New(io.Discard, "", 0), DefaultConfig())
}

func userState(query string) *conversation.State {
	s := conversation.NewState(nil)
	s.Append(llm.Message{Role: llm.RoleHuman, Content: query})
	return s
}

func TestChatToolCallThenAnswer(t *testing.T) {
	provider := &scriptedProvider{replies: []llm.Message{
		{Role: llm.RoleAI, ToolCalls: []llm.ToolCall{{Name: "retrieve_context"}}},
		{Role: llm.RoleAI, Content: "Aim for roughly 1.6 g/kg of protein per day."},
	}}
	retr := &stubRetriever{bundle: &evidence.Bundle{
		TranscriptChunks: []evidence.Chunk{{Text: "protein talk", SourceType: evidence.SourceTranscript}},
	}}

	state := userState("how much protein?")
	answer, err := newTestAgent(provider, retr).Chat(context.Background(), state, conversation.Profile{Username: "sam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Aim for roughly 1.6 g/kg of protein per day." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if retr.calls != 1 {
		t.Errorf("expected one retrieval, got %d", retr.calls)
	}

	// The tool result must be in the history as a tool message carrying
	// the serialized evidence.
	var toolMsg *llm.Message
	for _, m := range state.Messages() {
		if m.Role == llm.RoleTool {
			m := m
			toolMsg = &m
		}
	}
	if toolMsg == nil {
		t.Fatal("expected a tool message in the history")
	}
	if !strings.Contains(toolMsg.Content, "Transcript Chunks:") {
		t.Errorf("tool message missing evidence block: %q", toolMsg.Content)
	}
}

func TestChatDirectAnswerSkipsRetrieval(t *testing.T) {
	provider := &scriptedProvider{replies: []llm.Message{
		{Role: llm.RoleAI, Content: "Hello! Ready to train?"},
	}}
	retr := &stubRetriever{}

	answer, err := newTestAgent(provider, retr).Chat(context.Background(), userState("hi"), conversation.Profile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Hello! Ready to train?" {
		t.Errorf("unexpected answer: %q", answer)
	}
	if retr.calls != 0 {
		t.Errorf("expected no retrieval, got %d", retr.calls)
	}
}

func TestChatAlwaysToolCallingModelTerminates(t *testing.T) {
	provider := &scriptedProvider{replies: []llm.Message{
		{Role: llm.RoleAI, Content: "let me look that up", ToolCalls: []llm.ToolCall{{Name: "retrieve_context"}}},
	}}
	retr := &stubRetriever{}

	agent := newTestAgent(provider, retr)
	answer, err := agent.Chat(context.Background(), userState("loop forever"), conversation.Profile{})
	if err != nil {
		t.Fatalf("expected forced termination, got error: %v", err)
	}
	if provider.calls != DefaultConfig().MaxToolTurns {
		t.Errorf("expected %d model calls, got %d", DefaultConfig().MaxToolTurns, provider.calls)
	}
	// Best available ai-authored content is returned.
	if answer != "let me look that up" {
		t.Errorf("unexpected forced-terminal answer: %q", answer)
	}
}

func TestChatUpstreamModelError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("429 too many requests")}

	_, err := newTestAgent(provider, &stubRetriever{}).Chat(context.Background(), userState("q"), conversation.Profile{})
	if err == nil {
		t.Fatal("expected error")
	}
	var upErr *UpstreamModelError
	if !errors.As(err, &upErr) {
		t.Errorf("expected UpstreamModelError, got %T", err)
	}
}
