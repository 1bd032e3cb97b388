package agent

import (
	"context"
	"fmt"
	"log"

	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/rag/conversation"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
)

// SystemPrompt frames every conversation. It is injected once per
// conversation together with the user's profile.
const SystemPrompt = `You are an evidence-based fitness and nutrition assistant. You answer questions about training, recovery, nutrition and exercise science.

You have one tool, retrieve_context, which searches coaching video transcripts, exercise-science textbooks and the research literature. Call it whenever the user's question benefits from sourced evidence. Ground your answers in the retrieved material when it is available, be honest when it is not, and never invent citations.`

// retrieveToolName is the single tool bound to the model.
const retrieveToolName = "retrieve_context"

// UpstreamModelError is the only failure the orchestrator surfaces to its
// caller: the language model itself could not be reached or errored.
type UpstreamModelError struct {
	Err error
}

func (e *UpstreamModelError) Error() string {
	return fmt.Sprintf("upstream model error: %v", e.Err)
}

func (e *UpstreamModelError) Unwrap() error { return e.Err }

// QueryPlanner produces retrieval sub-queries from conversation context.
type QueryPlanner interface {
	Plan(ctx context.Context, conversationContext string, maxResearch, maxEmbedding int) (planner.SubQuerySet, error)
}

// EvidenceRetriever resolves a sub-query plan into an evidence bundle.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, set planner.SubQuerySet) (*evidence.Bundle, error)
}

// Config bounds the tool loop and the planner inputs.
type Config struct {
	MaxToolTurns        int
	HistoryWindow       int
	MaxResearchQueries  int
	MaxEmbeddingQueries int
}

func DefaultConfig() Config {
	return Config{
		MaxToolTurns:        5,
		HistoryWindow:       10,
		MaxResearchQueries:  3,
		MaxEmbeddingQueries: 3,
	}
}

// Agent drives the tool-calling loop: the model either answers directly or
// requests retrieval, whose serialized evidence is fed back as a tool
// message. The loop is hard-bounded by MaxToolTurns.
type Agent struct {
	provider  llm.ToolProvider
	planner   QueryPlanner
	retriever EvidenceRetriever
	logger    *log.Logger
	cfg       Config
}

func NewAgent(provider llm.ToolProvider, qp QueryPlanner, er EvidenceRetriever, logger *log.Logger, cfg Config) *Agent {
	if cfg.MaxToolTurns <= 0 {
		cfg.MaxToolTurns = 5
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	return &Agent{
		provider:  provider,
		planner:   qp,
		retriever: er,
		logger:    logger,
		cfg:       cfg,
	}
}

func retrievalTool() llm.Tool {
	return llm.Tool{
		Name:        retrieveToolName,
		Description: "Search coaching video transcripts, exercise-science textbooks and research papers for evidence relevant to the conversation. Takes no arguments; the current conversation is used as the search context.",
	}
}

// Chat runs one conversation turn. The state must already contain the
// user's latest human message; EnsureContext is applied here so injection
// happens exactly once per conversation.
func (a *Agent) Chat(ctx context.Context, state *conversation.State, profile conversation.Profile) (string, error) {
	state.EnsureContext(SystemPrompt, profile)
	tools := []llm.Tool{retrievalTool()}

	for turn := 0; turn < a.cfg.MaxToolTurns; turn++ {
		reply, err := a.provider.ChatWithTools(ctx, state.Messages(), tools)
		if err != nil {
			return "", &UpstreamModelError{Err: err}
		}
		state.Append(*reply)

		if !reply.HasToolCalls() {
			return a.terminal(state), nil
		}

		toolResult := a.executeRetrieval(ctx, state)
		state.Append(llm.Message{Role: llm.RoleTool, Content: toolResult})
	}

	a.logger.Printf("WARN tool loop hit max turns (%d), forcing termination", a.cfg.MaxToolTurns)
	return a.terminal(state), nil
}

// executeRetrieval runs planner and retriever over the trailing window and
// serializes the evidence. Every failure degrades to a visible note in the
// tool result so the model can still answer.
func (a *Agent) executeRetrieval(ctx context.Context, state *conversation.State) string {
	window := state.Window(a.cfg.HistoryWindow)

	set, err := a.planner.Plan(ctx, window, a.cfg.MaxResearchQueries, a.cfg.MaxEmbeddingQueries)
	if err != nil {
		a.logger.Printf("WARN %v, degrading to empty plan", err)
		set = planner.SubQuerySet{}
	}

	bundle, err := a.retriever.Retrieve(ctx, set)
	if err != nil {
		a.logger.Printf("WARN retrieval failed: %v", err)
		bundle = &evidence.Bundle{}
	}

	serialized, err := bundle.Serialize()
	if err != nil {
		a.logger.Printf("WARN evidence serialization failed: %v", err)
		return "No evidence could be retrieved."
	}
	return serialized
}

// terminal resolves the content returned to the caller. If the final
// message is not ai-authored, that is logged as an anomaly and the best
// available ai content is preferred, falling back to the raw last message.
func (a *Agent) terminal(state *conversation.State) string {
	last, ok := state.Last()
	if !ok {
		return ""
	}
	if last.Role == llm.RoleAI && last.Content != "" {
		return last.Content
	}

	a.logger.Printf("WARN conversation ended on non-terminal %s message", last.Role)
	msgs := state.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleAI && msgs[i].Content != "" {
			return msgs[i].Content
		}
	}
	return last.Content
}
