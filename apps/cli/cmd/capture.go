package cmd

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/apidoc/packages/capture"
	"github.com/abdul-hamid-achik/apidoc/packages/core/env"
	"github.com/abdul-hamid-achik/apidoc/packages/curl"
	apihttp "github.com/abdul-hamid-achik/apidoc/packages/http"
	"github.com/abdul-hamid-achik/apidoc/packages/output"
	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

var (
	captureFileFlag        string
	captureDescriptionFlag string
	captureSaveFlag        bool
	captureFormatFlag      string
	captureYAMLFlag        bool
	captureStrictFlag      bool
	captureEnvFileFlag     string
	captureVarFlags        []string
)

var captureCmd = &cobra.Command{
	Use:   "capture [curl command]",
	Short: "Perform a curl command and document the exchange",
	Long: `Perform one or more requests written as curl commands and document
each exchange: request headers, query parameters, the rendered request body,
the response and an equivalent curl command.

All requests of one invocation belong to the same example.

Commands may contain {{name}} placeholders. Names resolve against --var
values, the .env file and values captured from earlier responses of the
same file; {{$NAME}} reads the process environment. A command is followed
by optional capture directives:

  curl -X POST {{base}}/orders -d '{"qty":2}'
  # @capture order body id
  curl {{base}}/orders/{{order}}

Files uploaded with -F name=@path in a --file script are read relative to
the script's directory and may not leave it.

Examples:
  apidoc capture curl https://api.example.com/orders -H 'Accept: application/json'
  apidoc capture "curl -X POST https://api.example.com/orders -d '{\"qty\":2}'"
  apidoc capture --file requests.curl --description "order flow" --save
  apidoc capture --env-file .env --var base=http://localhost:3000 --file requests.curl
  apidoc capture --yaml curl https://api.example.com/health`,
	RunE: captureCommand,
}

func init() {
	captureCmd.Flags().StringVarP(&captureFileFlag, "file", "f", "", "File of curl commands, one per line")
	captureCmd.Flags().StringVarP(&captureDescriptionFlag, "description", "d", "", "Example description")
	captureCmd.Flags().BoolVar(&captureSaveFlag, "save", false, "Save the example to the configured database")
	captureCmd.Flags().StringVarP(&captureFormatFlag, "output", "o", output.FormatConsole, "Output format: console, json, yaml")
	captureCmd.Flags().BoolVar(&captureYAMLFlag, "yaml", false, "Shorthand for --output yaml")
	captureCmd.Flags().BoolVar(&captureStrictFlag, "strict", false, "Reject multipart bodies without a closing boundary")
	captureCmd.Flags().StringVar(&captureEnvFileFlag, "env-file", "", "Load placeholder values from a .env file")
	captureCmd.Flags().StringArrayVar(&captureVarFlags, "var", nil, "Set a placeholder value (name=value, repeatable)")

	// curl flags after the command name belong to the curl command
	captureCmd.Flags().SetInterspersed(false)
}

func captureCommand(cmd *cobra.Command, args []string) error {
	entries, err := captureEntries(args)
	if err != nil {
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	meta := recorder.NewMetadata(captureDescriptionFlag, cfg.GetDocument())

	for i, entry := range entries {
		c, captures, err := prepareEntry(resolver, entry)
		if err != nil {
			return withExitCode(ExitParseError, fmt.Errorf("command %d (line %d): %w", i+1, entry.Line, err))
		}
		if meta.Description == "" {
			meta.Description = fmt.Sprintf("%s %s", c.Method, c.URL)
		}

		resp, err := captureOne(cmd, c, resolver, meta)
		if err != nil {
			return err
		}

		values, missing := capture.ExtractAll(resp, captures)
		resolver.SetCaptures(values)
		if len(missing) > 0 {
			logger.Warn("captured values not found in response",
				zap.Int("command", i+1),
				zap.Strings("names", missing),
			)
		}
	}

	if captureSaveFlag {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SaveExample(cmd.Context(), meta); err != nil {
			return withExitCode(ExitStoreError, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved example %s to %s\n", meta.ID, s.Path())
	}

	format := captureFormatFlag
	if captureYAMLFlag {
		format = output.FormatYAML
	}
	f, err := newFormatter(cmd, format)
	if err != nil {
		return err
	}
	f.FormatExample(meta)
	return output.Flush(f)
}

func captureEntries(args []string) ([]curl.Entry, error) {
	if captureFileFlag != "" {
		if len(args) > 0 {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("use either --file or a curl command, not both"))
		}
		entries, err := curl.ReadScriptFile(captureFileFlag)
		if err != nil {
			return nil, withExitCode(ExitParseError, err)
		}
		if len(entries) == 0 {
			return nil, withExitCode(ExitParseError, fmt.Errorf("no curl commands found in %s", captureFileFlag))
		}
		return entries, nil
	}

	if len(args) == 0 {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("a curl command or --file is required"))
	}

	// A single argument is a whole command; several are an unquoted one
	line := args[0]
	if len(args) > 1 {
		line = curl.JoinArgs(args)
	}
	return []curl.Entry{{Line: 1, Text: line}}, nil
}

// newResolver collects placeholder values from the .env file and --var.
func newResolver() (*env.Resolver, error) {
	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})

	envFile := cfg.EnvFile
	if captureEnvFileFlag != "" {
		envFile = captureEnvFileFlag
	}
	if envFile != "" {
		vars, err := env.LoadDotEnv(envFile)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		resolver.SetVariables(vars)
	}

	for _, v := range captureVarFlags {
		name, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid --var %q: expected name=value", v))
		}
		resolver.SetVariable(strings.TrimSpace(name), value)
	}

	logger.Debug("placeholder values loaded",
		zap.String("env_file", envFile),
		zap.Strings("names", resolver.Names()),
	)
	return resolver, nil
}

// prepareEntry resolves placeholders in entry and parses it.
func prepareEntry(resolver *env.Resolver, entry curl.Entry) (*curl.Command, []*capture.Capture, error) {
	if names := resolver.Unresolved(entry.Text); len(names) > 0 {
		return nil, nil, fmt.Errorf("unresolved placeholders: %s", strings.Join(names, ", "))
	}
	c, err := curl.Parse(resolver.Resolve(entry.Text))
	if err != nil {
		return nil, nil, err
	}
	captures, err := capture.ParseDirectives(entry.Directives)
	if err != nil {
		return nil, nil, err
	}
	return c, captures, nil
}

// captureOne performs c and documents it into meta.
func captureOne(cmd *cobra.Command, c *curl.Command, resolver *env.Resolver, meta *recorder.Metadata) (*apihttp.Response, error) {
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, withExitCode(ExitParseError, fmt.Errorf("invalid URL in curl command: %s", c.URL))
	}
	baseURL := u.Scheme + "://" + u.Host
	route := u.Path
	if route == "" {
		route = "/"
	}

	defaults := resolver.ResolveAll(cfg.Headers)
	clientOpts := []apihttp.ClientOption{
		apihttp.WithTimeout(cfg.GetTimeout()),
		apihttp.WithFollowRedirects(c.FollowRedirects || cfg.GetFollowRedirects()),
		apihttp.WithValidateSSL(!c.Insecure),
		apihttp.WithDefaultHeaders(defaults),
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, apihttp.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, apihttp.WithProxy(cfg.Proxy))
	}

	sessionOpts := []apihttp.SessionOption{apihttp.WithSessionLogger(logger)}
	// file parts in a script are read relative to, and confined to, its directory
	if captureFileFlag != "" {
		sessionOpts = append(sessionOpts, apihttp.WithBaseDir(filepath.Dir(captureFileFlag)))
	}
	session := apihttp.NewClientSession(apihttp.NewClient(clientOpts...), baseURL, sessionOpts...)
	rec := newRecorder(session, captureStrictFlag)

	var params any
	switch {
	case len(c.Form) > 0:
		params = formFields(c.Form)
	case c.Body != "":
		params = c.Body
	}

	resp, err := session.Do(cmd.Context(), c.Method, u.RequestURI(), params, requestHeaders(c, defaults))
	if err != nil {
		return nil, withExitCode(ExitNetworkError, err)
	}

	fields := []zap.Field{
		zap.String("method", c.Method),
		zap.String("url", c.URL),
		zap.Int("status", resp.StatusCode),
	}
	switch {
	case resp.IsServerError():
		logger.Warn("captured request failed upstream", fields...)
	case resp.IsClientError():
		logger.Warn("captured request was rejected", fields...)
	default:
		logger.Info("captured request", fields...)
	}

	if err := rec.Document(meta, c.Method, route); err != nil {
		return nil, withExitCode(ExitFailure, err)
	}
	return resp, nil
}

// formFields converts -F parts into multipart fields.
func formFields(parts []curl.FormPart) []*apihttp.MultipartField {
	fields := make([]*apihttp.MultipartField, 0, len(parts))
	for _, p := range parts {
		if p.File == "" {
			fields = append(fields, apihttp.TextField(p.Name, p.Value))
			continue
		}
		fields = append(fields, &apihttp.MultipartField{
			Type:        apihttp.MultipartFieldFile,
			Name:        p.Name,
			Path:        p.File,
			Filename:    p.Filename,
			ContentType: p.ContentType,
		})
	}
	return fields
}

// requestHeaders collects the command's own headers and basic auth. The
// client sends defaults too, and the command wins on conflicts.
func requestHeaders(c *curl.Command, defaults map[string]string) map[string]string {
	headers := make(map[string]string, len(c.Headers)+2)
	for _, h := range c.Headers {
		if k, ok := headerKey(headers, h.Key); ok {
			delete(headers, k)
		}
		headers[h.Key] = h.Value
	}
	if c.BasicAuth != "" {
		headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(c.BasicAuth))
	}
	// curl sends -d data as a form unless told otherwise
	if c.Body != "" {
		_, own := headerKey(headers, "Content-Type")
		_, configured := headerKey(defaults, "Content-Type")
		if !own && !configured {
			headers["Content-Type"] = "application/x-www-form-urlencoded"
		}
	}
	return headers
}

// headerKey finds key in headers case-insensitively.
func headerKey(headers map[string]string, key string) (string, bool) {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}
