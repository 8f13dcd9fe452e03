package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opsgate/opsgate/internal/gateway"
)

// callAPI performs one Bot API call and decodes the response into out,
// which may be nil when only the ok flag matters.
func (c *Connector) callAPI(ctx context.Context, method, call string, body any, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, call)

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%s failed: status=%d body=%s", callName(call), res.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		out = &struct {
			OK bool `json:"ok"`
		}{}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", callName(call), err)
	}
	if flagged, ok := out.(interface{ failed() bool }); ok && flagged.failed() {
		return fmt.Errorf("telegram %s failed", callName(call))
	}
	return nil
}

func callName(call string) string {
	name, _, _ := strings.Cut(call, "?")
	return name
}

func (g getUpdatesResponse) failed() bool { return !g.OK }

type okResponse struct {
	OK bool `json:"ok"`
}

func (o okResponse) failed() bool { return !o.OK }

func (c *Connector) sendMessage(ctx context.Context, chatID int64, message gateway.Message) error {
	text := message.Text
	if message.Preformat {
		text = fmt.Sprintf("```\n%s\n```", text)
	}
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if message.Preformat {
		body["parse_mode"] = "Markdown"
	}
	if len(message.Actions) > 0 {
		row := make([]inlineKeyboardButton, 0, len(message.Actions))
		for _, action := range message.Actions {
			row = append(row, inlineKeyboardButton{Text: action.Label, CallbackData: action.Tag})
		}
		body["reply_markup"] = inlineKeyboardMarkup{InlineKeyboard: [][]inlineKeyboardButton{row}}
	}
	var response okResponse
	return c.callAPI(ctx, http.MethodPost, "sendMessage", body, &response)
}

func (c *Connector) answerCallback(ctx context.Context, callbackID string) error {
	body := map[string]any{"callback_query_id": callbackID}
	var response okResponse
	return c.callAPI(ctx, http.MethodPost, "answerCallbackQuery", body, &response)
}
