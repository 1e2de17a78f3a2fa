package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/sysfetch/internal/app"
	"github.com/samvad-hq/sysfetch/internal/config"
	"github.com/samvad-hq/sysfetch/internal/logger"
	"github.com/samvad-hq/sysfetch/internal/targets"
	"github.com/samvad-hq/sysfetch/pkg/sysreq"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	client   string
	logLevel string
	cfg      *config.Config
	fetcher  *app.Fetcher
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "sysfetch",
		Short:         "Fetch URLs with the HTTP client already installed on this machine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.client, "client", "", "http client: system or resty (overrides SYSFETCH_CLIENT)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides SYSFETCH_LOG_LEVEL)")

	root.AddCommand(
		newGetCmd(opts),
		newMetaCmd(opts),
		newBatchCmd(opts),
		newBackendsCmd(),
	)
	return root
}

// setup loads configuration and builds the runtime. Commands that do not
// fetch skip it.
func (o *cliOptions) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.client != "" {
		cfg.Client = strings.ToLower(strings.TrimSpace(o.client))
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.DebugObj("sysfetch starting", "config", cfg)

	fetcher, err := app.NewFetcher(cfg, log)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	o.cfg = cfg
	o.fetcher = fetcher
	return nil
}

func (o *cliOptions) close() {
	if o.fetcher != nil {
		_ = o.fetcher.Close()
		o.fetcher = nil
	}
	_ = logger.Close()
}

func newGetCmd(opts *cliOptions) *cobra.Command {
	var (
		timeout time.Duration
		output  string
	)
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Fetch a URL and write the body to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeout < 0 {
				return fmt.Errorf("--timeout must not be negative")
			}
			if err := opts.setup(); err != nil {
				return err
			}
			defer opts.close()
			body, err := opts.fetcher.Fetch(cmd.Context(), args[0], timeout)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return writeFile(output, body)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "request timeout, e.g. 500ms or 10s (0 uses the configured default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the body to this file instead of stdout")
	return cmd
}

func newMetaCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <url>",
		Short: "Fetch a page and print its title, description and image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(); err != nil {
				return err
			}
			defer opts.close()
			meta, err := opts.fetcher.Meta(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), meta)
		},
	}
}

func newBatchCmd(opts *cliOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "batch <targets-file>",
		Short: "Fetch every target listed in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := targets.Load(args[0])
			if err != nil {
				return fmt.Errorf("load targets: %w", err)
			}
			if err := opts.setup(); err != nil {
				return err
			}
			defer opts.close()
			return opts.fetcher.RunBatch(cmd.Context(), list, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory that receives the fetched bodies")
	return cmd
}

func newBackendsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List supported HTTP clients and the one in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := sysreq.Resolve()
			resolved := ""
			if err == nil {
				resolved = backend.String()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if werr := writeJSON(out, map[string]any{
					"supported": sysreq.SupportedHTTPClients(),
					"resolved":  resolved,
				}); werr != nil {
					return werr
				}
			} else {
				fmt.Fprintf(out, "supported: %s\n", strings.Join(sysreq.SupportedHTTPClients(), ", "))
				if resolved != "" {
					fmt.Fprintf(out, "resolved: %s\n", resolved)
				} else {
					fmt.Fprintln(out, "resolved: none")
				}
			}

			if err != nil {
				return exitSilent(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	return cmd
}

func writeJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeFile(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
