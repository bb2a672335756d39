package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/tempus/wkb"
)

var convertEndian string

var convertCmd = &cobra.Command{
	Use:   "convert <hexwkb>",
	Short: "Re-encode a HexWKB temporal value, optionally flipping endianness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tv, err := wkb.ParseTemporalHex(args[0])
		if err != nil {
			return err
		}

		var opt wkb.WriterOption
		switch convertEndian {
		case "little-endian", "le":
			opt = wkb.WithLittleEndian()
		case "big-endian", "be":
			opt = wkb.WithBigEndian()
		default:
			return fmt.Errorf("unknown endianness %q", convertEndian)
		}
		w, err := wkb.NewWriter(opt)
		if err != nil {
			return err
		}
		hexStr, err := w.WriteTemporalHex(tv)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hexStr)

		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertEndian, "to", "little-endian",
		"target endianness: little-endian or big-endian")
	rootCmd.AddCommand(convertCmd)
}
