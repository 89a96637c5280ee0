package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scopedoc",
	Short: "AI-guided client intake that writes website scope documents",
	Long: `Scopedoc interviews a prospective client about their website project,
extracts structured facts from every answer, tracks which topics are
settled, and synthesizes a priced, validated scope document once enough
is known. Run it as a terminal interview, an HTTP server, or an MCP
server for AI assistants.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
