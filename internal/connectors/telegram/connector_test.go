package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/intent"
)

type fakeDialogue struct {
	messages []dialogue.Message
}

func (f *fakeDialogue) HandleMessage(_ context.Context, _ dialogue.Sender, msg dialogue.Message) {
	f.messages = append(f.messages, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollOnceDeliversMessages(t *testing.T) {
	updates := `{
		"ok": true,
		"result": [
			{
				"update_id": 10,
				"message": {
					"message_id": 1,
					"from": {"id": 42},
					"chat": {"id": 42, "type": "private"},
					"caption": "чек во вложении",
					"document": {"file_id": "f1", "file_name": "receipt.pdf", "mime_type": "application/pdf"}
				}
			},
			{
				"update_id": 11,
				"callback_query": {
					"id": "cb-1",
					"data": "call_operator",
					"message": {"message_id": 2, "chat": {"id": 42, "type": "private"}}
				}
			}
		]
	}`

	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, updates)
	})
	mux.HandleFunc("/bottoken/answerCallbackQuery", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	turns := &fakeDialogue{}
	connector := New("token", server.URL, 1, turns, discardLogger())

	if err := connector.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	if len(turns.messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(turns.messages))
	}
	first := turns.messages[0]
	if first.Platform != "telegram" || first.UserID != "42" {
		t.Fatalf("first message = %+v", first)
	}
	if first.Text != "чек во вложении" || !first.HasPDF {
		t.Fatalf("caption and pdf flag must survive: %+v", first)
	}
	if turns.messages[1].Text != "/operator" {
		t.Fatalf("callback must map to /operator, got %q", turns.messages[1].Text)
	}
	if connector.offset != 12 {
		t.Fatalf("offset = %d, want 12", connector.offset)
	}
}

func TestSendMessageWithLinks(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	connector := New("token", server.URL, 1, &fakeDialogue{}, discardLogger())
	err := connector.SendMessage(context.Background(), "42", "📘 Правила", dialogue.SendOptions{
		Links: []intent.Link{{Title: "Открыть правила", URL: "https://vk.com/topic-213058175_49087108"}},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if captured["chat_id"].(float64) != 42 {
		t.Fatalf("chat_id = %v", captured["chat_id"])
	}
	markup, ok := captured["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", captured)
	}
	if _, ok := markup["inline_keyboard"]; !ok {
		t.Fatalf("links must render as an inline keyboard: %v", markup)
	}
}

func TestSendMessageKeyboards(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	connector := New("token", server.URL, 1, &fakeDialogue{}, discardLogger())
	if err := connector.SendMessage(context.Background(), "42", "ок", dialogue.SendOptions{Keyboard: dialogue.KeyboardRemove}); err != nil {
		t.Fatalf("send: %v", err)
	}
	markup, ok := captured["reply_markup"].(map[string]any)
	if !ok || markup["remove_keyboard"] != true {
		t.Fatalf("remove keyboard markup = %v", captured["reply_markup"])
	}
}

func TestSendMessageAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":false}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	connector := New("token", server.URL, 1, &fakeDialogue{}, discardLogger())
	if err := connector.SendMessage(context.Background(), "42", "привет", dialogue.SendOptions{}); err == nil {
		t.Fatal("api rejection must surface as an error")
	}
}
