// Package telegram long-polls the Bot API and feeds private-chat messages
// into the dialogue pipeline.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cubeworld/supportbot/internal/connectors"
	"github.com/cubeworld/supportbot/internal/dialogue"
)

type Connector struct {
	token       string
	apiBase     string
	pollSeconds int
	dialogue    connectors.Dialogue
	httpClient  *http.Client
	logger      *slog.Logger
	offset      int64
}

func New(token, apiBase string, pollSeconds int, turns connectors.Dialogue, logger *slog.Logger) *Connector {
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
		dialogue:    turns,
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

	c.logger.Info("connector started", "api_base", c.apiBase)
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
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&offset=%d", c.apiBase, c.token, c.pollSeconds, c.offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var payload getUpdatesResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode getUpdates: %w", err)
	}
	if !payload.OK {
		return fmt.Errorf("telegram getUpdates failed")
	}

	for _, update := range payload.Result {
		if update.UpdateID >= c.offset {
			c.offset = update.UpdateID + 1
		}
		switch {
		case update.Message != nil:
			c.handleMessage(ctx, *update.Message)
		case update.CallbackQuery != nil:
			c.handleCallback(ctx, *update.CallbackQuery)
		}
	}
	return nil
}

func (c *Connector) handleMessage(ctx context.Context, message telegramMessage) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	raw, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("marshal inbound message", "error", err)
		raw = nil
	}

	c.dialogue.HandleMessage(ctx, c, dialogue.Message{
		Platform: "telegram",
		UserID:   strconv.FormatInt(message.Chat.ID, 10),
		Text:     text,
		HasPDF:   hasPDFDocument(message.Document),
		Raw:      raw,
	})
}

// handleCallback maps the inline "call an operator" button press onto the
// /operator command.
func (c *Connector) handleCallback(ctx context.Context, callback telegramCallback) {
	if callback.Data != "call_operator" || callback.Message == nil {
		return
	}
	c.answerCallback(ctx, callback.ID)
	c.dialogue.HandleMessage(ctx, c, dialogue.Message{
		Platform: "telegram",
		UserID:   strconv.FormatInt(callback.Message.Chat.ID, 10),
		Text:     "/operator",
	})
}

// SendMessage implements dialogue.Sender.
func (c *Connector) SendMessage(ctx context.Context, userID, text string, opts dialogue.SendOptions) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", userID, err)
	}

	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup := replyMarkup(opts); markup != nil {
		body["reply_markup"] = markup
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var response struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode sendMessage: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("telegram sendMessage failed")
	}
	return nil
}

func (c *Connector) answerCallback(ctx context.Context, callbackID string) {
	endpoint := fmt.Sprintf("%s/bot%s/answerCallbackQuery", c.apiBase, c.token)
	payload, err := json.Marshal(map[string]any{"callback_query_id": callbackID})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("answer callback failed", "error", err)
		return
	}
	res.Body.Close()
}

func replyMarkup(opts dialogue.SendOptions) map[string]any {
	if len(opts.Links) > 0 {
		row := make([]map[string]any, 0, len(opts.Links))
		for _, link := range opts.Links {
			row = append(row, map[string]any{"text": link.Title, "url": link.URL})
		}
		return map[string]any{"inline_keyboard": [][]map[string]any{row}}
	}

	switch opts.Keyboard {
	case dialogue.KeyboardOperator:
		return map[string]any{
			"keyboard":        [][]map[string]any{{{"text": "Закрыть обращение"}}},
			"resize_keyboard": true,
		}
	case dialogue.KeyboardCloseConfirm:
		return map[string]any{
			"keyboard": [][]map[string]any{
				{{"text": "Подтвердить"}},
				{{"text": "Отмена"}},
			},
			"resize_keyboard":   true,
			"one_time_keyboard": true,
		}
	case dialogue.KeyboardOperatorOffer:
		return map[string]any{
			"inline_keyboard": [][]map[string]any{
				{{"text": "Позвать оператора 👨‍💼", "callback_data": "call_operator"}},
			},
		}
	case dialogue.KeyboardRemove:
		return map[string]any{"remove_keyboard": true}
	}
	return nil
}

func hasPDFDocument(document *telegramDocument) bool {
	return document != nil && strings.Contains(strings.ToLower(document.MimeType), "pdf")
}

type getUpdatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

type telegramUpdate struct {
	UpdateID      int64             `json:"update_id"`
	Message       *telegramMessage  `json:"message"`
	CallbackQuery *telegramCallback `json:"callback_query"`
}

type telegramMessage struct {
	MessageID int64             `json:"message_id"`
	From      telegramUser      `json:"from"`
	Chat      telegramChat      `json:"chat"`
	Text      string            `json:"text"`
	Caption   string            `json:"caption"`
	Document  *telegramDocument `json:"document"`
}

type telegramCallback struct {
	ID      string           `json:"id"`
	Data    string           `json:"data"`
	Message *telegramMessage `json:"message"`
}

type telegramChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type telegramDocument struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}
