// Package web exposes a websocket chat endpoint: JSON frames in
// ({user_id, text}), replies out ({text, links}).
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cubeworld/supportbot/internal/connectors"
	"github.com/cubeworld/supportbot/internal/dialogue"
)

type Connector struct {
	upgrader websocket.Upgrader
	dialogue connectors.Dialogue
	logger   *slog.Logger
}

func New(turns connectors.Dialogue, logger *slog.Logger) *Connector {
	return &Connector{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		dialogue: turns,
		logger:   logger,
	}
}

func (c *Connector) Name() string {
	return "web"
}

// Start blocks until shutdown: sockets arrive on the shared HTTP server.
func (c *Connector) Start(ctx context.Context) error {
	c.logger.Info("connector started")
	<-ctx.Done()
	c.logger.Info("connector stopped")
	return nil
}

func (c *Connector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := c.upgrader.Upgrade(w, r, nil)
		if err != nil {
			c.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		go c.serve(r.Context(), conn)
	})
}

type inboundFrame struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type outboundFrame struct {
	Text  string       `json:"text"`
	Links []intentLink `json:"links,omitempty"`
}

type intentLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// session is one open socket; it is the Sender for every turn read from it.
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *session) SendMessage(_ context.Context, _ string, text string, opts dialogue.SendOptions) error {
	frame := outboundFrame{Text: text}
	for _, link := range opts.Links {
		frame.Links = append(frame.Links, intentLink{Title: link.Title, URL: link.URL})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(frame)
}

func (c *Connector) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	sess := &session{conn: conn}

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if strings.TrimSpace(frame.UserID) == "" {
			c.logger.Info("dropping frame without user id")
			continue
		}
		c.dialogue.HandleMessage(ctx, sess, dialogue.Message{
			Platform: "web",
			UserID:   strings.TrimSpace(frame.UserID),
			Text:     frame.Text,
		})
	}
}
