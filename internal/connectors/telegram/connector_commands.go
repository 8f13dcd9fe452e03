package telegram

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/opsgate/opsgate/internal/gateway"
)

var telegramCommandSanitizer = regexp.MustCompile(`[^a-z0-9_]`)

// syncCommands publishes the console menu so clients offer the catalogue
// as slash-command completions. Stale entries from earlier builds are
// dropped first.
func (c *Connector) syncCommands(ctx context.Context) error {
	var response okResponse
	if err := c.callAPI(ctx, http.MethodPost, "deleteMyCommands", map[string]any{}, &response); err != nil {
		return fmt.Errorf("deleteMyCommands: %w", err)
	}

	commands := make([]map[string]string, 0, len(gateway.Commands()))
	for _, command := range gateway.Commands() {
		name := telegramCommandName(command.Name)
		if name == "" {
			continue
		}
		commands = append(commands, map[string]string{
			"command":     name,
			"description": telegramCommandDescription(command.Description),
		})
	}
	body := map[string]any{
		"commands": commands,
	}
	response = okResponse{}
	if err := c.callAPI(ctx, http.MethodPost, "setMyCommands", body, &response); err != nil {
		return fmt.Errorf("setMyCommands: %w", err)
	}
	return nil
}

// clearChatCommands removes a per-chat command override so the chat falls
// back to the default menu after a dialogue that narrowed it.
func (c *Connector) clearChatCommands(ctx context.Context, chatID int64) error {
	body := map[string]any{
		"scope": map[string]any{
			"type":    "chat",
			"chat_id": chatID,
		},
	}
	var response okResponse
	if err := c.callAPI(ctx, http.MethodPost, "deleteMyCommands", body, &response); err != nil {
		return fmt.Errorf("deleteMyCommands chat=%d: %w", chatID, err)
	}
	return nil
}

func telegramCommandName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = telegramCommandSanitizer.ReplaceAllString(normalized, "")
	normalized = strings.Trim(normalized, "_")
	if len(normalized) > 32 {
		normalized = normalized[:32]
	}
	return strings.Trim(normalized, "_")
}

func telegramCommandDescription(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "Console command"
	}
	if len(trimmed) > 256 {
		return strings.TrimSpace(trimmed[:256])
	}
	return trimmed
}
