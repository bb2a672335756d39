package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/tempus/tile"
	"github.com/arloliu/tempus/ttime"
)

var (
	bucketSize   string
	bucketOrigin string
)

var bucketCmd = &cobra.Command{
	Use:   "bucket <timestamp>",
	Short: "Print the start of the time bucket containing a timestamp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := ttime.Parse(args[0])
		if err != nil {
			return err
		}
		size, err := ttime.ParseInterval(bucketSize)
		if err != nil {
			return err
		}
		origin := ttime.Timestamp(0)
		if bucketOrigin != "" {
			origin, err = ttime.Parse(bucketOrigin)
			if err != nil {
				return err
			}
		}
		b, err := tile.TimeBucket(t, size, origin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), b)

		return nil
	},
}

func init() {
	bucketCmd.Flags().StringVar(&bucketSize, "size", "1 hour", "bucket size interval")
	bucketCmd.Flags().StringVar(&bucketOrigin, "origin", "", "bucket origin timestamp")
	rootCmd.AddCommand(bucketCmd)
}
