package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apidoc/packages/body"
)

var (
	sanitizeStrictFlag      bool
	sanitizeKindFlag        bool
	sanitizePlaceholderFlag string
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file]",
	Short: "Render a request body the way it is documented",
	Long: `Classify a raw request body and render it for documentation. JSON is
pretty-printed, URL-encoded forms are decoded one pair per line and binary
multipart parts are replaced with a placeholder. Reads stdin when no file is
given.

Examples:
  apidoc sanitize upload.txt
  cat body.json | apidoc sanitize
  apidoc sanitize --kind request.bin
  apidoc sanitize --strict --placeholder '<binary>' upload.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: sanitizeCommand,
}

func init() {
	sanitizeCmd.Flags().BoolVar(&sanitizeStrictFlag, "strict", false, "Reject multipart bodies without a closing boundary")
	sanitizeCmd.Flags().BoolVar(&sanitizeKindFlag, "kind", false, "Print the body classification instead of the rendered body")
	sanitizeCmd.Flags().StringVar(&sanitizePlaceholderFlag, "placeholder", "", "Text written in place of binary parts")
}

func sanitizeCommand(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("failed to read body: %w", err))
	}
	raw := string(data)

	if sanitizeKindFlag {
		fmt.Fprintln(cmd.OutOrStdout(), body.Classify(raw))
		return nil
	}

	placeholder := cfg.Placeholder
	if sanitizePlaceholderFlag != "" {
		placeholder = sanitizePlaceholderFlag
	}
	sanitizer := body.NewSanitizer(
		body.WithPlaceholder(placeholder),
		body.WithStrictTerminator(sanitizeStrictFlag || cfg.GetStrictMultipart()),
	)

	rendered, err := sanitizer.Render(raw)
	if err != nil {
		var malformed *body.MalformedMultipartError
		if errors.As(err, &malformed) {
			return withExitCode(ExitParseError, err)
		}
		return err
	}

	if rendered != "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
	}
	return nil
}
