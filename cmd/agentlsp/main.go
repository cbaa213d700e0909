// Command agentlsp runs the function-implementation LSP server over stdio.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/agentlsp/internal/agentdriver"
	"github.com/lexcodex/agentlsp/internal/config"
	"github.com/lexcodex/agentlsp/internal/coordinator"
	"github.com/lexcodex/agentlsp/internal/docstore"
	"github.com/lexcodex/agentlsp/internal/jobtracker"
	"github.com/lexcodex/agentlsp/internal/lspserver"
)

var (
	flagConfig          string
	flagBackend         string
	flagDeleteTempFiles bool
	flagCapacity        int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentlsp",
		Short: "LSP server brokering implement-function requests to an AI coding agent",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", config.EnvOrDefault("AGENTLSP_CONFIG", ""), "Path to an optional YAML config file")
	root.PersistentFlags().StringVar(&flagBackend, "backend", config.EnvOrDefault("AGENTLSP_BACKEND", ""), "Agent backend: claude, opencode or amp")
	root.PersistentFlags().BoolVar(&flagDeleteTempFiles, "delete-temp-files", config.EnvBool("AGENTLSP_DELETE_TEMP_FILES", true), "Remove each job's scratch file after use")
	root.PersistentFlags().IntVar(&flagCapacity, "capacity", config.EnvInt("AGENTLSP_CAPACITY", 0), "Max concurrent jobs per file (tests only)")

	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve LSP over stdin/stdout until the client disconnects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// resolveConfig layers the YAML file under environment variables (already
// folded into the flag defaults) and explicit flags, highest last.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if cmd.Flags().Changed("delete-temp-files") || os.Getenv("AGENTLSP_DELETE_TEMP_FILES") != "" {
		cfg.DeleteTempFiles = flagDeleteTempFiles
	}
	if flagCapacity > 0 {
		cfg.Capacity = flagCapacity
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// stdout carries the LSP transport; logs go to stderr.
	logger := log.New(os.Stderr, "agentlsp: ", log.LstdFlags)

	driver, err := agentdriver.NewDriver(agentdriver.Backend(cfg.Backend))
	if err != nil {
		return err
	}

	docs := docstore.New()
	jobs := jobtracker.NewWithCapacity(cfg.Capacity)
	server := lspserver.New(docs, jobs, cfg.Capacity, cfg.Backend, logger)
	server.SetCoordinator(coordinator.New(docs, jobs, driver, server, cfg.DeleteTempFiles))

	logger.Printf("serving with backend %q (deleteTempFiles=%v)", cfg.Backend, cfg.DeleteTempFiles)
	return server.Serve(ctx)
}
