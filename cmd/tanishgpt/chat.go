package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tanishgpt/internal/trace"
	"tanishgpt/ui"
)

func newChatCmd() *cobra.Command {
	var (
		sessionID string
		deep      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: "Opens an interactive conversation with the TanishGPT backend. " +
			"Slash commands manage sessions, uploads and the deep-search toggle; type /help inside the chat.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			view := a.newChatView()
			defer view.Close()
			sidebar := a.newSidebar()

			view.SetDeepSearch(deep)

			if err := a.client.Health(trace.NewRequest(cmd.Context())); err != nil {
				color.Yellow("⚠ backend not reachable at %s (%v)", a.cfg.Backend.BaseURL, err)
			}

			if sessionID != "" {
				sidebar.Open(sessionID)
				printHistory(cmd.OutOrStdout(), view)
			}

			return runChatLoop(cmd, a, view, sidebar)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Resume an existing session id")
	cmd.Flags().BoolVar(&deep, "deep", false, "Start with deep (graph) search enabled")
	return cmd
}

func runChatLoop(cmd *cobra.Command, a *app, view *ui.ChatView, sidebar *ui.Sidebar) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🤖 TanishGPT ready. Type /help for commands, /exit to quit.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		color.New(color.FgCyan).Fprint(out, "🧑 You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runSlashCommand(cmd, a, view, sidebar, line, scanner)
			if err != nil {
				color.New(color.FgRed).Fprintf(out, "%v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		sendAndPrint(cmd, view, line)
	}
}

// sendAndPrint runs one chat turn and prints the outcome. The view
// holds the authoritative message list; the loop only echoes the new
// tail of the conversation.
func sendAndPrint(cmd *cobra.Command, view *ui.ChatView, text string) {
	out := cmd.OutOrStdout()

	if view.DeepSearch() {
		color.New(color.FgHiBlack).Fprintln(out, "… running deep search")
	} else {
		color.New(color.FgHiBlack).Fprintln(out, "… thinking")
	}

	err := view.Send(trace.NewRequest(cmd.Context()), text)
	msgs := view.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]

	switch {
	case err != nil && last.Sender == ui.SenderSystem:
		color.New(color.FgRed).Fprintf(out, "%s\n\n", last.Text)
	case last.Sender != ui.SenderUser:
		color.New(color.FgGreen).Fprint(out, "🤖 TanishGPT: ")
		fmt.Fprintf(out, "%s\n\n", ui.FormatReply(last.Text))
	}
}

func printHistory(out io.Writer, view *ui.ChatView) {
	for _, msg := range view.Messages() {
		switch msg.Sender {
		case ui.SenderUser:
			color.New(color.FgCyan).Fprint(out, "🧑 You: ")
		case ui.SenderSystem:
			color.New(color.FgYellow).Fprint(out, "ℹ ")
		default:
			color.New(color.FgGreen).Fprint(out, "🤖 TanishGPT: ")
		}
		fmt.Fprintln(out, ui.FormatReply(msg.Text))
	}
	fmt.Fprintln(out)
}

func runSlashCommand(cmd *cobra.Command, a *app, view *ui.ChatView, sidebar *ui.Sidebar, line string, scanner *bufio.Scanner) (quit bool, err error) {
	out := cmd.OutOrStdout()
	parts := strings.Fields(line)
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch parts[0] {
	case "/exit", "/quit":
		fmt.Fprintln(out, "👋 Goodbye!")
		return true, nil

	case "/help":
		fmt.Fprintln(out, `Commands:
  /sessions         list sessions
  /open <id>        switch to a session
  /new              create a session
  /delete <id>      delete a session (asks for confirmation)
  /upload <path>    upload a document (pdf, docx, txt, md)
  /deep [on|off]    toggle deep (graph) search
  /exit             leave the chat`)
		return false, nil

	case "/sessions":
		if err := sidebar.Refresh(trace.NewRequest(cmd.Context())); err != nil {
			return false, fmt.Errorf("listing sessions failed: %w", err)
		}
		active := a.sessions.Active()
		for _, s := range sidebar.Items() {
			marker := "  "
			if s.ID == active {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s  %s  (last active %s)\n", marker, s.ID, s.Title,
				time.Unix(s.LastActive, 0).Format("2006-01-02 15:04"))
		}
		return false, nil

	case "/open":
		if arg == "" {
			return false, fmt.Errorf("usage: /open <session-id>")
		}
		sidebar.Open(arg)
		printHistory(out, view)
		return false, nil

	case "/new":
		sess, err := sidebar.Create(trace.NewRequest(cmd.Context()))
		if err != nil {
			return false, fmt.Errorf("creating session failed: %w", err)
		}
		fmt.Fprintf(out, "Started session %s\n", sess.ID)
		return false, nil

	case "/delete":
		if arg == "" {
			return false, fmt.Errorf("usage: /delete <session-id>")
		}
		color.New(color.FgYellow).Fprintf(out, "Delete session %s? [y/N] ", arg)
		if !scanner.Scan() || !isYes(scanner.Text()) {
			fmt.Fprintln(out, "Cancelled.")
			return false, nil
		}
		if err := sidebar.Delete(trace.NewRequest(cmd.Context()), arg); err != nil {
			return false, fmt.Errorf("deleting session failed: %w", err)
		}
		fmt.Fprintf(out, "Deleted %s\n", arg)
		return false, nil

	case "/upload":
		if arg == "" {
			return false, fmt.Errorf("usage: /upload <path>")
		}
		if err := view.Upload(trace.NewRequest(cmd.Context()), arg); err != nil {
			return false, fmt.Errorf("upload failed: %w", err)
		}
		color.New(color.FgYellow).Fprintf(out, "%s\n", view.UploadStatus())
		return false, nil

	case "/deep":
		switch arg {
		case "on":
			view.SetDeepSearch(true)
		case "off":
			view.SetDeepSearch(false)
		case "":
			view.SetDeepSearch(!view.DeepSearch())
		default:
			return false, fmt.Errorf("usage: /deep [on|off]")
		}
		if view.DeepSearch() {
			fmt.Fprintln(out, "Deep search enabled.")
		} else {
			fmt.Fprintln(out, "Deep search disabled.")
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", parts[0])
	}
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}
