package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize scopedoc configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the question model, storage and delivery settings, and writes them to .scopedoc.yml (or the --config path).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
