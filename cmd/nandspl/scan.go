package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List bad blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		board, err := loadBoard()
		if err != nil {
			return err
		}
		loader, closer, err := newLoader(board)
		if err != nil {
			return err
		}
		defer closer()

		blocks := board.Geometry.Blocks
		bad, err := loader.ScanBadBlocks(context.Background(), 0, blocks)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, b := range bad {
			fmt.Fprintf(out, "block %d (offset 0x%X) is bad\n", b, int64(b)*int64(board.Geometry.BlockSize()))
		}
		fmt.Fprintf(out, "%d of %d blocks bad\n", len(bad), blocks)
		return nil
	},
}
