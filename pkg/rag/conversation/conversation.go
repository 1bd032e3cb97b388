package conversation

import (
	"fmt"
	"strings"

	"ai-fitness-be/pkg/llm"
)

// Profile carries the user facts injected into the system context.
type Profile struct {
	Username  string
	FullName  string
	Age       int
	HeightRaw float64
	// HeightUnit is "cm" or "in".
	HeightUnit string
}

func (p Profile) render() string {
	var sb strings.Builder
	sb.WriteString("User profile:\n")
	fmt.Fprintf(&sb, "- username: %s\n", p.Username)
	if p.FullName != "" {
		fmt.Fprintf(&sb, "- full name: %s\n", p.FullName)
	}
	if p.Age > 0 {
		fmt.Fprintf(&sb, "- age: %d\n", p.Age)
	}
	if p.HeightRaw > 0 {
		fmt.Fprintf(&sb, "- height: %.1f %s\n", p.HeightRaw, p.HeightUnit)
	}
	return sb.String()
}

// State is an append-only message history for one conversation turn.
// Messages are never mutated in place; a system context, once present,
// is never injected again.
type State struct {
	messages []llm.Message
}

func NewState(history []llm.Message) *State {
	s := &State{messages: make([]llm.Message, 0, len(history)+4)}
	s.messages = append(s.messages, history...)
	return s
}

// EnsureContext prepends the system prompt plus a human-role profile
// message, but only when no system message exists yet. Calling it again
// is a no-op.
func (s *State) EnsureContext(systemPrompt string, profile Profile) {
	for _, m := range s.messages {
		if m.Role == llm.RoleSystem {
			return
		}
	}
	injected := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleHuman, Content: profile.render()},
	}
	s.messages = append(injected, s.messages...)
}

// Append adds a message to the end of the history.
func (s *State) Append(msg llm.Message) {
	s.messages = append(s.messages, msg)
}

// Messages returns the full history. The slice is a copy so callers
// cannot alter conversation state behind our back.
func (s *State) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns the most recent message, or false when the state is empty.
func (s *State) Last() (llm.Message, bool) {
	if len(s.messages) == 0 {
		return llm.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Window serializes up to the last n messages as "{role}: {content}" lines.
// Tool messages are included verbatim so downstream planners can see what
// evidence was already fetched.
func (s *State) Window(n int) string {
	msgs := s.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}
