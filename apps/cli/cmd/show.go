package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apidoc/packages/output"
)

var showFormatFlag string

var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Print the documented requests of stored examples",
	Long: `Print every documented request of one or more stored examples.

Examples:
  apidoc show 3f0c9a4e-1d2b-4c8e-9f61-2b7a0c5d8e11
  apidoc show -o yaml $(apidoc list -o json | jq -r '.summaries[].id') > examples.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: showCommand,
}

func init() {
	showCmd.Flags().StringVarP(&showFormatFlag, "output", "o", output.FormatConsole, "Output format: console, json, yaml")
}

func showCommand(cmd *cobra.Command, args []string) error {
	f, err := newFormatter(cmd, showFormatFlag)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	for _, id := range args {
		meta, err := s.LoadExample(cmd.Context(), id)
		if err != nil {
			return withExitCode(ExitStoreError, err)
		}
		f.FormatExample(meta)
	}

	return output.Flush(f)
}
