// Package vk serves the VK Callback API webhook and sends replies through
// messages.send.
package vk

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cubeworld/supportbot/internal/connectors"
	"github.com/cubeworld/supportbot/internal/dialogue"
)

const apiVersion = "5.199"

type Connector struct {
	token        string
	apiBase      string
	confirmation string
	secret       string
	dialogue     connectors.Dialogue
	httpClient   *http.Client
	logger       *slog.Logger
}

func New(token, apiBase, confirmation, secret string, turns connectors.Dialogue, logger *slog.Logger) *Connector {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://api.vk.com/method"
	}
	return &Connector{
		token:        strings.TrimSpace(token),
		apiBase:      strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		confirmation: confirmation,
		secret:       secret,
		dialogue:     turns,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

func (c *Connector) Name() string {
	return "vk"
}

// Start blocks until shutdown: the connector is passive, events arrive on the
// shared HTTP server via Handler.
func (c *Connector) Start(ctx context.Context) error {
	if c.token == "" {
		c.logger.Info("connector disabled, token missing")
	} else {
		c.logger.Info("connector started", "api_base", c.apiBase)
	}
	<-ctx.Done()
	c.logger.Info("connector stopped")
	return nil
}

// Handler processes Callback API events: confirmation echo, signed
// message_new payloads. Unknown event types are logged and dropped.
func (c *Connector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}

		if c.secret != "" && !c.verifySignature(body, r.Header.Get("X-Signature")) {
			c.logger.Warn("invalid callback signature")
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}

		var event callbackEvent
		if err := json.Unmarshal(body, &event); err != nil {
			c.logger.Warn("malformed callback payload", "error", err)
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		switch event.Type {
		case "confirmation":
			io.WriteString(w, c.confirmation)
		case "message_new":
			c.handleNewMessage(r.Context(), event.Object.Message)
			io.WriteString(w, "ok")
		default:
			c.logger.Info("dropping unsupported event", "type", event.Type)
			io.WriteString(w, "ok")
		}
	})
}

func (c *Connector) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (c *Connector) handleNewMessage(ctx context.Context, message vkMessage) {
	raw, err := json.Marshal(message)
	if err != nil {
		raw = nil
	}
	c.dialogue.HandleMessage(ctx, c, dialogue.Message{
		Platform: "vk",
		UserID:   strconv.FormatInt(message.FromID, 10),
		Text:     message.Text,
		HasPDF:   hasPDFAttachment(message.Attachments),
		Raw:      raw,
	})
}

// SendMessage implements dialogue.Sender.
func (c *Connector) SendMessage(ctx context.Context, userID, text string, opts dialogue.SendOptions) error {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("access_token", c.token)
	params.Set("v", apiVersion)
	if keyboard := vkKeyboard(opts); keyboard != nil {
		encoded, err := json.Marshal(keyboard)
		if err != nil {
			return err
		}
		params.Set("keyboard", string(encoded))
	}

	endpoint := c.apiBase + "/messages.send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var response struct {
		Response json.RawMessage `json:"response"`
		Error    *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode messages.send: %w", err)
	}
	if response.Error != nil {
		return fmt.Errorf("vk messages.send: %d %s", response.Error.Code, response.Error.Message)
	}
	return nil
}

func vkKeyboard(opts dialogue.SendOptions) map[string]any {
	if len(opts.Links) > 0 {
		rows := make([][]map[string]any, 0, len(opts.Links))
		for _, link := range opts.Links {
			rows = append(rows, []map[string]any{{
				"action": map[string]any{"type": "open_link", "link": link.URL, "label": link.Title},
			}})
		}
		return map[string]any{"inline": true, "buttons": rows}
	}

	textButton := func(label string) []map[string]any {
		return []map[string]any{{
			"action": map[string]any{"type": "text", "label": label},
		}}
	}

	switch opts.Keyboard {
	case dialogue.KeyboardOperator:
		return map[string]any{"one_time": false, "buttons": [][]map[string]any{textButton("Закрыть обращение")}}
	case dialogue.KeyboardCloseConfirm:
		return map[string]any{
			"one_time": true,
			"buttons":  [][]map[string]any{textButton("Подтвердить"), textButton("Отмена")},
		}
	case dialogue.KeyboardOperatorOffer:
		return map[string]any{"inline": true, "buttons": [][]map[string]any{textButton("Позвать оператора 👨‍💼")}}
	case dialogue.KeyboardRemove:
		return map[string]any{"one_time": true, "buttons": [][]map[string]any{}}
	}
	return nil
}

func hasPDFAttachment(attachments []vkAttachment) bool {
	for _, attachment := range attachments {
		if attachment.Type == "doc" && strings.EqualFold(attachment.Doc.Ext, "pdf") {
			return true
		}
	}
	return false
}

type callbackEvent struct {
	Type   string `json:"type"`
	Object struct {
		Message vkMessage `json:"message"`
	} `json:"object"`
}

type vkMessage struct {
	FromID      int64          `json:"from_id"`
	PeerID      int64          `json:"peer_id"`
	Text        string         `json:"text"`
	Attachments []vkAttachment `json:"attachments"`
}

type vkAttachment struct {
	Type string `json:"type"`
	Doc  struct {
		Ext   string `json:"ext"`
		Title string `json:"title"`
	} `json:"doc"`
}
