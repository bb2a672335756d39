package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/tempus/wkb"
)

var digestCmd = &cobra.Command{
	Use:   "digest <hexwkb>",
	Short: "Print the xxHash64 content digest of a temporal value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tv, err := wkb.ParseTemporalHex(args[0])
		if err != nil {
			return err
		}
		d, err := wkb.Digest(tv)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "0x%016x\n", d)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}
