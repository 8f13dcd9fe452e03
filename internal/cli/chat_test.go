package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/gateway"
)

type fakeChatGateway struct {
	events []gateway.Event
	output gateway.Output
}

func (f *fakeChatGateway) HandleEvent(ctx context.Context, event gateway.Event) (gateway.Output, error) {
	f.events = append(f.events, event)
	return f.output, nil
}

func TestConsoleEventClassifiesInput(t *testing.T) {
	cases := []struct {
		text     string
		command  bool
		callback string
	}{
		{text: "/get_uptime", command: true},
		{text: "plain text"},
		{text: "more", callback: "more"},
		{text: "save:token-1", callback: "save:token-1"},
	}
	for _, tc := range cases {
		event := consoleEvent(tc.text, "Operator")
		if event.Callback != tc.callback {
			t.Fatalf("consoleEvent(%q) callback = %q, want %q", tc.text, event.Callback, tc.callback)
		}
		if tc.callback != "" {
			if event.Text != "" {
				t.Fatalf("callback event should carry no text, got %q", event.Text)
			}
			continue
		}
		if event.Text != tc.text {
			t.Fatalf("consoleEvent(%q) text = %q", tc.text, event.Text)
		}
		if event.IsCommand != tc.command {
			t.Fatalf("consoleEvent(%q) IsCommand = %v, want %v", tc.text, event.IsCommand, tc.command)
		}
	}
}

func TestRunChatLoopRoutesInputAndPrintsReplies(t *testing.T) {
	commandGateway := &fakeChatGateway{
		output: gateway.Output{
			Messages: []gateway.Message{
				{
					Text:    "1. a@b.com",
					Actions: []gateway.Action{{Label: "Save results", Tag: "save:token-1"}},
				},
			},
		},
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("some text with a@b.com\n/exit\n"))
	cmd.SetContext(context.Background())

	if err := runChatLoop(cmd, commandGateway, "Operator"); err != nil {
		t.Fatalf("runChatLoop returned error: %v", err)
	}
	if len(commandGateway.events) != 1 {
		t.Fatalf("expected one gateway event, got %d", len(commandGateway.events))
	}
	if commandGateway.events[0].Text != "some text with a@b.com" {
		t.Fatalf("unexpected event text %q", commandGateway.events[0].Text)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "opsgate> 1. a@b.com") {
		t.Fatalf("expected reply in output, got %q", rendered)
	}
	if !strings.Contains(rendered, "[Save results] type: save:token-1") {
		t.Fatalf("expected action hint in output, got %q", rendered)
	}
}

func TestRunChatLoopSkipsBlankLines(t *testing.T) {
	commandGateway := &fakeChatGateway{}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("\n   \n/quit\n"))
	cmd.SetContext(context.Background())

	if err := runChatLoop(cmd, commandGateway, "Operator"); err != nil {
		t.Fatalf("runChatLoop returned error: %v", err)
	}
	if len(commandGateway.events) != 0 {
		t.Fatalf("expected no gateway events, got %d", len(commandGateway.events))
	}
}
