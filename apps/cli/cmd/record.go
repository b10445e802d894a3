package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/apidoc/packages/output"
	"github.com/abdul-hamid-achik/apidoc/packages/proxy"
	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

var (
	recordTargetFlag      string
	recordListenFlag      string
	recordDescriptionFlag string
	recordSaveFlag        bool
	recordFormatFlag      string
	recordExcludeFlags    []string
	recordDedupeFlag      bool
	recordStrictFlag      bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Document traffic through a recording proxy",
	Long: `Start a reverse proxy in front of an API and document every exchange
that passes through it. Point a client, browser or test suite at the proxy,
then stop it with Ctrl+C to print (and optionally save) the example.

Examples:
  apidoc record --target http://localhost:3000
  apidoc record --target https://api.example.com --listen :9000 --save
  apidoc record --target http://localhost:3000 --exclude /health --dedupe`,
	RunE: recordCommand,
}

func init() {
	recordCmd.Flags().StringVarP(&recordTargetFlag, "target", "t", "", "URL requests are forwarded to (required)")
	recordCmd.Flags().StringVarP(&recordListenFlag, "listen", "l", ":8080", "Address the proxy listens on")
	recordCmd.Flags().StringVarP(&recordDescriptionFlag, "description", "d", "", "Example description")
	recordCmd.Flags().BoolVar(&recordSaveFlag, "save", false, "Save the example to the configured database")
	recordCmd.Flags().StringVarP(&recordFormatFlag, "output", "o", output.FormatConsole, "Output format: console, json, yaml")
	recordCmd.Flags().StringSliceVar(&recordExcludeFlags, "exclude", nil, "Path prefixes forwarded without documenting")
	recordCmd.Flags().BoolVar(&recordDedupeFlag, "dedupe", false, "Document only the first request per method and path")
	recordCmd.Flags().BoolVar(&recordStrictFlag, "strict", false, "Reject multipart bodies without a closing boundary")
}

func recordCommand(cmd *cobra.Command, args []string) error {
	if recordTargetFlag == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--target is required"))
	}

	// the output format is checked before serving, not after Ctrl+C
	f, err := newFormatter(cmd, recordFormatFlag)
	if err != nil {
		return err
	}

	description := recordDescriptionFlag
	if description == "" {
		description = "Recorded traffic to " + recordTargetFlag
	}
	meta := recorder.NewMetadata(description, cfg.GetDocument())

	p, err := proxy.New(recordTargetFlag, meta,
		proxy.WithRecorderOptions(recorderOptions(recordStrictFlag)...),
		proxy.WithExclude(recordExcludeFlags...),
		proxy.WithDeduplicate(recordDedupeFlag),
		proxy.WithLogger(logger),
	)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s on %s (Ctrl+C to stop)\n", p.Target(), recordListenFlag)
	if err := p.Serve(cmd.Context(), recordListenFlag); err != nil {
		return withExitCode(ExitNetworkError, err)
	}

	meta.Requests = p.Records()
	logger.Info("recording stopped", zap.Int("records", len(meta.Requests)))

	if recordSaveFlag && len(meta.Requests) > 0 {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		// the command context is already cancelled by the interrupt
		if err := s.SaveExample(context.WithoutCancel(cmd.Context()), meta); err != nil {
			return withExitCode(ExitStoreError, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved example %s to %s\n", meta.ID, s.Path())
	}

	f.FormatExample(meta)
	return output.Flush(f)
}
