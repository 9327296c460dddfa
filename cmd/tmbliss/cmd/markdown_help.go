package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newMarkdownHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markdown-help",
		Short: "Print the command-line reference as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeMarkdown(cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// writeMarkdown renders cmd and its visible subcommands, depth first.
func writeMarkdown(cmd *cobra.Command, w io.Writer) error {
	cmd.DisableAutoGenTag = true
	if err := doc.GenMarkdown(cmd, w); err != nil {
		return err
	}
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if err := writeMarkdown(c, w); err != nil {
			return err
		}
	}
	return nil
}
