package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cubeworld/supportbot/internal/app"
	"github.com/cubeworld/supportbot/internal/config"
	"github.com/cubeworld/supportbot/internal/dialogue"
)

// newChatCommand runs a local console dialogue against the full engine,
// including flood control and ticket persistence. Useful for poking at
// routing decisions without a platform account.
func newChatCommand(logger *slog.Logger) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the dialogue engine from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			cfg.WebEnabled = false
			cfg.TelegramToken = ""
			cfg.VKToken = ""
			cfg.VKConfirmation = ""

			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := runtime.Queue().Start(ctx); err != nil {
					logger.Error("queue stopped", "error", err)
				}
			}()

			sender := &consoleSender{out: cmd.OutOrStdout()}
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprintln(cmd.OutOrStdout(), "chatting as", userID, "(ctrl-d to exit)")
			for {
				fmt.Fprint(cmd.OutOrStdout(), "> ")
				if !scanner.Scan() {
					break
				}
				runtime.Dialogue().HandleMessage(ctx, sender, dialogue.Message{
					Platform: "cli",
					UserID:   userID,
					Text:     scanner.Text(),
				})
			}
			cancel()
			time.Sleep(100 * time.Millisecond)
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "console", "user id for the session")
	return cmd
}

type consoleSender struct {
	out io.Writer
}

func (s *consoleSender) SendMessage(ctx context.Context, userID, text string, opts dialogue.SendOptions) error {
	var b strings.Builder
	b.WriteString(text)
	for _, link := range opts.Links {
		b.WriteString("\n  ")
		b.WriteString(link.Title)
		b.WriteString(": ")
		b.WriteString(link.URL)
	}
	b.WriteString("\n")
	_, err := s.out.Write([]byte(b.String()))
	return err
}
