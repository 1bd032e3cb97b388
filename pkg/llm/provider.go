package llm

import (
	"context"
)

// Role identifies the author of a message. The set is closed so that
// conversation state machines can switch over it exhaustively.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleHuman, RoleAI, RoleTool:
		return true
	}
	return false
}

// ToolCall is a structured tool invocation requested by the model.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// Message represents a chat message in a provider-agnostic format.
// ToolCalls is populated only on RoleAI messages that request a tool run.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model asked for a tool invocation
// instead of (or before) answering.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Tool describes a callable tool bound to a chat request. Tools here take
// no declared parameters; the model decides to invoke them by name.
type Tool struct {
	Name        string
	Description string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ToolProvider is a Provider whose backend supports bound-tool chat: the
// response message may carry a tool invocation request instead of content.
type ToolProvider interface {
	Provider

	// ChatWithTools sends the history with the given tools bound. The
	// returned message is RoleAI and either holds final content or one or
	// more tool calls.
	ChatWithTools(ctx context.Context, history []Message, tools []Tool, options ...Option) (*Message, error)
}
