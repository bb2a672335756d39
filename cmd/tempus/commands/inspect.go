package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/tempus/temporal"
	"github.com/arloliu/tempus/wkb"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <hexwkb>",
	Short: "Decode a HexWKB temporal value and describe it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tv, err := wkb.ParseTemporalHex(args[0])
		if err != nil {
			return err
		}
		logger.Debug("parsed temporal value",
			zap.String("subtype", tv.Subtype().String()),
			zap.Int("instants", tv.NumInstants()))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "base type:     %s\n", tv.BaseType())
		fmt.Fprintf(out, "subtype:       %s\n", tv.Subtype())
		fmt.Fprintf(out, "interpolation: %s\n", tv.Interpolation())
		fmt.Fprintf(out, "instants:      %d\n", tv.NumInstants())
		fmt.Fprintf(out, "period:        %s\n", tv.Period())
		if vs, ok := temporal.ValueSpan(tv); ok {
			fmt.Fprintf(out, "value span:    %s\n", vs)
		}
		fmt.Fprintf(out, "value:         %s\n", tv)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
