package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/config"
	"github.com/ziadkadry99/scopedoc/internal/logging"
	mcpserver "github.com/ziadkadry99/scopedoc/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI assistant integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the feature catalog, dependency checks, pricing and progress tools to AI assistants.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The MCP server needs no model or database, so a missing or
		// incomplete config file is fine here.
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := logging.Setup(cfg.LogLevel)

		catalog, err := loadFeatureCatalog(cfg)
		if err != nil {
			return err
		}
		for _, issue := range catalog.Issues() {
			logger.Warn("feature catalog entry skipped", "feature", issue.FeatureID, "reason", issue.Message)
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "scopedoc MCP server started on stdio (features=%d)\n", len(catalog.Features()))

		srv := mcpserver.NewServer(catalog)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
