package conversation

import (
	"strings"
	"testing"

	"ai-fitness-be/pkg/llm"
)

func TestEnsureContextInjectsOnce(t *testing.T) {
	state := NewState([]llm.Message{
		{Role: llm.RoleHuman, Content: "how much protein do I need?"},
	})
	profile := Profile{Username: "sam", Age: 31, HeightRaw: 178, HeightUnit: "cm"}

	state.EnsureContext("You are a fitness assistant.", profile)
	state.EnsureContext("You are a fitness assistant.", profile)

	msgs := state.Messages()
	systemCount := 0
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Fatalf("expected exactly one system message, got %d", systemCount)
	}
	if msgs[0].Role != llm.RoleSystem {
		t.Errorf("system message must be first, got %s", msgs[0].Role)
	}
	if msgs[1].Role != llm.RoleHuman || !strings.Contains(msgs[1].Content, "username: sam") {
		t.Errorf("profile must follow as a human message, got %+v", msgs[1])
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages after injection, got %d", len(msgs))
	}
}

func TestEnsureContextRespectsExistingSystem(t *testing.T) {
	state := NewState([]llm.Message{
		{Role: llm.RoleSystem, Content: "already configured"},
		{Role: llm.RoleHuman, Content: "hi"},
	})
	state.EnsureContext("new prompt", Profile{Username: "sam"})

	msgs := state.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "already configured" {
		t.Errorf("existing system message was replaced: %q", msgs[0].Content)
	}
}

func TestWindowLimitsAndFormats(t *testing.T) {
	state := NewState(nil)
	state.Append(llm.Message{Role: llm.RoleHuman, Content: "first"})
	state.Append(llm.Message{Role: llm.RoleAI, Content: "second"})
	state.Append(llm.Message{Role: llm.RoleHuman, Content: "third"})

	got := state.Window(2)
	want := "ai: second\nhuman: third"
	if got != want {
		t.Errorf("Window(2) = %q, want %q", got, want)
	}

	if got := state.Window(10); !strings.HasPrefix(got, "human: first") {
		t.Errorf("Window larger than history should include everything, got %q", got)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	state := NewState([]llm.Message{{Role: llm.RoleHuman, Content: "original"}})
	msgs := state.Messages()
	msgs[0].Content = "mutated"

	fresh := state.Messages()
	if fresh[0].Content != "original" {
		t.Error("Messages() must return a defensive copy")
	}
}
