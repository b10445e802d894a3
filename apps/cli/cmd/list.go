package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apidoc/packages/output"
)

var listFormatFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored examples",
	Long: `List the examples saved in the configured database with the number
of documented requests in each.

Examples:
  apidoc list
  apidoc list -o json`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listFormatFlag, "output", "o", output.FormatConsole, "Output format: console, json, yaml")
}

func listCommand(cmd *cobra.Command, args []string) error {
	f, err := newFormatter(cmd, listFormatFlag)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.ListExamples(cmd.Context())
	if err != nil {
		return withExitCode(ExitStoreError, err)
	}

	f.FormatSummaries(summaries)
	return output.Flush(f)
}
