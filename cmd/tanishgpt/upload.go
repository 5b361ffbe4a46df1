package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tanishgpt/internal/trace"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document for retrieval",
		Long:  "Uploads a pdf, docx, txt or md file. The backend parses and indexes it; later chat turns can draw on it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()

			ack, err := a.docSvc.UploadFile(trace.NewRequest(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Uploaded %s (doc %s)\n", args[0], ack.DocID)
			if ack.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			}
			return nil
		},
	}
}
