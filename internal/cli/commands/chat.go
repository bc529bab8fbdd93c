package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/restwell/internal/cli/ui"
	"github.com/ashureev/restwell/internal/domain"
)

// failureMessage replaces any chat error shown to the user.
const failureMessage = "Sorry, I couldn't process that. Please try again."

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat with the wellness assistant",
	Long: `Start an interactive chat session. The full conversation is sent with every
message; nothing is stored on the server.`,
	Example: `  $ restwell chat
  # Type /exit or press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

type chatSender interface {
	Chat(ctx context.Context, history domain.History) (string, error)
}

func runChat(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	c, err := newClient()
	if err != nil {
		ui.PrintError(out, "failed to create client: %v", err)
		return err
	}

	if cfg, err := c.Config(cmd.Context()); err == nil && !cfg.ChatEnabled {
		ui.PrintWarning(out, "the server has no API key configured; replies will fail")
	}

	ui.PrintChatWelcomeBanner(out)
	_, err = chatLoop(cmd.Context(), cmd.InOrStdin(), out, c)
	return err
}

// chatLoop reads one message per line and prints each reply. It returns the
// final history when input ends or the user types /exit.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, sender chatSender) (domain.History, error) {
	var history domain.History
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, ui.ChatPrompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return history, scanner.Err()
		}

		msg := strings.TrimSpace(scanner.Text())
		switch msg {
		case "":
			continue
		case "/exit", "/quit":
			return history, nil
		}

		history = history.Append(domain.RoleUser, msg)
		reply, err := sender.Chat(ctx, history)
		if err != nil {
			fmt.Fprintln(out, ui.RenderReply(failureMessage))
			continue
		}
		history = history.Append(domain.RoleAssistant, reply)
		fmt.Fprintln(out, ui.RenderReply(reply))
	}
}
