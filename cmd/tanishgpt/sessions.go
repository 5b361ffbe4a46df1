package main

import (
	"bufio"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tanishgpt/internal/trace"
	"tanishgpt/ui"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsNewCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	cmd.AddCommand(newSessionsMessagesCmd())
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show session metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			sess, err := a.client.GetSession(trace.NewRequest(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\n", sess.ID)
			fmt.Fprintf(w, "Title\t%s\n", sess.Title)
			fmt.Fprintf(w, "Created\t%s\n", time.Unix(sess.CreatedAt, 0).Format("2006-01-02 15:04"))
			fmt.Fprintf(w, "Last active\t%s\n", time.Unix(sess.LastActive, 0).Format("2006-01-02 15:04"))
			return w.Flush()
		},
	}
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long:  "Lists sessions in the order the backend returns them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			sessions, err := a.sessionSvc.List(trace.NewRequest(cmd.Context()))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tLAST ACTIVE")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Title,
					time.Unix(s.LastActive, 0).Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newSessionsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			sess, err := a.sessionSvc.Create(trace.NewRequest(cmd.Context()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", sess.ID)
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Long:  "Deletes a session and its stored messages. Asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete session %s? [y/N] ", sessionID)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if !scanner.Scan() || !isYes(scanner.Text()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			a := newApp()
			if err := a.sessionSvc.Delete(trace.NewRequest(cmd.Context()), sessionID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", sessionID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newSessionsMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <session-id>",
		Short: "Print a session's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			records, err := a.sessionSvc.Messages(trace.NewRequest(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range records {
				label := "🤖"
				if rec.Role == "user" {
					label = "🧑"
				}
				fmt.Fprintf(out, "%s %s\n", label, ui.FormatReply(rec.Content))
			}
			return nil
		},
	}
}
