package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/app"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/gateway"
)

const consoleUserID = "local-console"

// chatGateway is the slice of the gateway the local console needs.
type chatGateway interface {
	HandleEvent(ctx context.Context, event gateway.Event) (gateway.Output, error)
}

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var display string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the console from the local terminal",
		Long:  "Interactive local session against the same gateway the chat connectors use. Inline buttons are typed as their tags, for example 'more'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			// The local console never starts the Telegram connector, so a
			// bot token is not required here.
			if strings.TrimSpace(cfg.TelegramToken) == "" {
				cfg.TelegramToken = "local-console"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			name := strings.TrimSpace(display)
			if name == "" {
				name = localUserName()
			}
			cmd.Printf("Connected as %s. Type /help for commands, /exit to quit.\n", name)
			return runChatLoop(cmd, runtime.Gateway(), name)
		},
	}
	cmd.Flags().StringVar(&display, "display-name", "", "display name for the session (defaults to the OS user)")
	return cmd
}

func runChatLoop(cmd *cobra.Command, commandGateway chatGateway, displayName string) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("you> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/exit" || text == "/quit" {
			return nil
		}

		output, err := commandGateway.HandleEvent(cmd.Context(), consoleEvent(text, displayName))
		if err != nil {
			cmd.PrintErrf("request failed: %v\n", err)
			continue
		}
		printOutput(cmd, output)
	}

	return scanner.Err()
}

// consoleEvent maps typed input onto the canonical event shape. Button
// tags have no terminal equivalent, so typing a tag verbatim stands in
// for clicking it.
func consoleEvent(text, displayName string) gateway.Event {
	event := gateway.Event{
		ChatID:      consoleUserID,
		UserID:      consoleUserID,
		DisplayName: displayName,
	}
	if text == "more" || strings.HasPrefix(text, "save:") {
		event.Callback = text
		return event
	}
	event.Text = text
	event.IsCommand = strings.HasPrefix(text, "/")
	return event
}

func printOutput(cmd *cobra.Command, output gateway.Output) {
	for _, message := range output.Messages {
		for index, line := range strings.Split(message.Text, "\n") {
			if index == 0 {
				cmd.Printf("opsgate> %s\n", line)
				continue
			}
			cmd.Printf("         %s\n", line)
		}
		for _, action := range message.Actions {
			cmd.Printf("         [%s] type: %s\n", action.Label, action.Tag)
		}
	}
}

func localUserName() string {
	current, err := user.Current()
	if err != nil || strings.TrimSpace(current.Username) == "" {
		return "operator"
	}
	return current.Username
}
