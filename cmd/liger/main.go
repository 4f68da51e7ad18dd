// Command liger is the Crystal Language Server Protocol server entrypoint.
// It speaks framed JSON-RPC over stdin/stdout; all diagnostics and logs go
// to stderr so the wire protocol is never polluted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/navid-m/liger/internal/config"
	"github.com/navid-m/liger/internal/logging"
	"github.com/navid-m/liger/internal/server"
)

var (
	strictFlag  bool
	debugFlag   bool
	configPath  string
	versionFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "liger",
	Short: "liger is a Language Server Protocol implementation for Crystal",
	Long: `liger speaks the Language Server Protocol over stdin/stdout for the
Crystal programming language: go-to-definition, hover, completion, rename,
references and document symbols, backed by a regex-based source scanner, a
workspace/shard/stdlib index, and an optional "crystal tool" compiler oracle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlag {
			fmt.Printf("liger %s\n", config.Version)
			return nil
		}

		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving workspace root: %w", err)
		}

		cfg, err := config.Load(root, configPath, strictFlag)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log, err := logging.New(debugFlag)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer log.Sync()

		srv := server.New(root, cfg, os.Stdin, os.Stdout, log)
		os.Exit(srv.Run())
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&strictFlag, "strict", false, "set strict mode in the server config (no analysis step reads it)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable verbose development logging to stderr")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to an explicit .liger.yml config file")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "print the server version and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
