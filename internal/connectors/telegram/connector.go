// Package telegram is a long-polling connector for the Telegram Bot API.
// It normalizes messages and button callbacks into canonical gateway
// events and renders gateway output as messages with inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/gateway"
)

// Gateway handles one normalized inbound event.
type Gateway interface {
	HandleEvent(ctx context.Context, event gateway.Event) (gateway.Output, error)
}

type Connector struct {
	token       string
	apiBase     string
	pollSeconds int
	gateway     Gateway
	httpClient  *http.Client
	logger      *slog.Logger
	offset      int64
}

func New(token, apiBase string, pollSeconds int, commandGateway Gateway, logger *slog.Logger) *Connector {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://api.telegram.org"
	}
	if pollSeconds < 1 {
		pollSeconds = 25
	}
	return &Connector{
		token:       strings.TrimSpace(token),
		apiBase:     strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		pollSeconds: pollSeconds,
		gateway:     commandGateway,
		httpClient: &http.Client{
			Timeout: time.Duration(pollSeconds+10) * time.Second,
		},
		logger: logger,
	}
}

func (c *Connector) Name() string {
	return "telegram"
}

func (c *Connector) Start(ctx context.Context) error {
	if c.token == "" {
		c.logger.Info("connector disabled, token missing")
		<-ctx.Done()
		return nil
	}
	if c.gateway == nil {
		c.logger.Info("connector disabled, gateway missing")
		<-ctx.Done()
		return nil
	}

	c.logger.Info("connector started", "api_base", c.apiBase)
	if err := c.syncCommands(ctx); err != nil {
		c.logger.Warn("command menu sync failed", "error", err)
	}

	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if err := c.pollOnce(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("poll failed", "error", err)
			select {
			case <-ctx.Done():
				c.logger.Info("connector stopped")
				return nil
			case <-time.After(1500 * time.Millisecond):
			}
		}
	}
}

func (c *Connector) pollOnce(ctx context.Context) error {
	var payload getUpdatesResponse
	query := fmt.Sprintf("getUpdates?timeout=%d&offset=%d", c.pollSeconds, c.offset)
	if err := c.callAPI(ctx, http.MethodGet, query, nil, &payload); err != nil {
		return fmt.Errorf("getUpdates: %w", err)
	}

	// Updates of one batch are handled on separate workers so users do
	// not block each other; the batch is drained before the next poll.
	var workers sync.WaitGroup
	for _, update := range payload.Result {
		if update.UpdateID >= c.offset {
			c.offset = update.UpdateID + 1
		}
		update := update
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := c.handleUpdate(ctx, update); err != nil {
				c.logger.Error("handle update failed", "error", err, "update_id", update.UpdateID)
			}
		}()
	}
	workers.Wait()
	return nil
}

func (c *Connector) handleUpdate(ctx context.Context, update telegramUpdate) error {
	switch {
	case update.CallbackQuery != nil:
		return c.handleCallback(ctx, *update.CallbackQuery)
	case update.Message != nil:
		return c.handleMessage(ctx, *update.Message)
	default:
		return nil
	}
}

func (c *Connector) handleMessage(ctx context.Context, message telegramMessage) error {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return nil
	}

	event := gateway.Event{
		ChatID:      strconv.FormatInt(message.Chat.ID, 10),
		UserID:      strconv.FormatInt(message.From.ID, 10),
		DisplayName: userDisplayName(message.From),
		Text:        normalizeCommand(text),
		IsCommand:   strings.HasPrefix(text, "/"),
	}
	output, err := c.gateway.HandleEvent(ctx, event)
	if err != nil {
		return err
	}
	return c.deliver(ctx, message.Chat.ID, output)
}

func (c *Connector) handleCallback(ctx context.Context, callback telegramCallbackQuery) error {
	// Acknowledged first so the client stops showing a progress state
	// even when handling the action fails.
	if err := c.answerCallback(ctx, callback.ID); err != nil {
		c.logger.Warn("answerCallbackQuery failed", "error", err)
	}
	if callback.Message == nil {
		return nil
	}

	event := gateway.Event{
		ChatID:      strconv.FormatInt(callback.Message.Chat.ID, 10),
		UserID:      strconv.FormatInt(callback.From.ID, 10),
		DisplayName: userDisplayName(callback.From),
		Callback:    strings.TrimSpace(callback.Data),
	}
	output, err := c.gateway.HandleEvent(ctx, event)
	if err != nil {
		return err
	}
	return c.deliver(ctx, callback.Message.Chat.ID, output)
}

func (c *Connector) deliver(ctx context.Context, chatID int64, output gateway.Output) error {
	for _, message := range output.Messages {
		if err := c.sendMessage(ctx, chatID, message); err != nil {
			return err
		}
	}
	if output.ResetChatMenu {
		if err := c.clearChatCommands(ctx, chatID); err != nil {
			c.logger.Warn("per-chat menu reset failed", "error", err, "chat_id", chatID)
		}
	}
	return nil
}

// normalizeCommand strips a @botname suffix from the leading command token
// so group-chat commands dispatch like direct ones.
func normalizeCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	head, tail, hasTail := strings.Cut(text, " ")
	if at := strings.Index(head, "@"); at > 0 {
		head = head[:at]
	}
	if hasTail {
		return head + " " + tail
	}
	return head
}

func userDisplayName(user telegramUser) string {
	parts := []string{strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName)}
	fullName := strings.TrimSpace(strings.Join(parts, " "))
	if fullName != "" {
		return fullName
	}
	if strings.TrimSpace(user.Username) != "" {
		return user.Username
	}
	return strconv.FormatInt(user.ID, 10)
}
