// Package commands implements the tempus CLI: inspection and
// conversion of temporal values in WKB/HexWKB form, content digests,
// and timestamp bucketing.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tempus",
	Short: "tempus CLI - inspect and convert temporal values",
	Long: `The tempus CLI decodes, inspects and converts temporal values in
their binary wire format (WKB / HexWKB).

Examples:
  tempus inspect 01040...F42
  tempus convert --to big-endian 01040...F42
  tempus digest 01040...F42
  tempus bucket --size "1 hour" "2001-06-01 12:34:56+00"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}
