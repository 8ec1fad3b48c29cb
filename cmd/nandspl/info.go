package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the board geometry and boot layout",
	Long:  "Print the NAND geometry, ECC layout and boot regions of a board file. With --dump or --mmio-base the chip ID is read as well.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		board, err := loadBoard()
		if err != nil {
			return err
		}
		scheme, err := ecc.FromLayout(board.Geometry.ECC)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printBoard(out, board, scheme)

		if devFlags.dump == "" && devFlags.mmioBase == "" {
			return nil
		}
		loader, closer, err := newLoader(board)
		if err != nil {
			return err
		}
		defer closer()

		id, err := loader.ReadID(context.Background(), 0)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		fmt.Fprintf(out, "\nChip ID:          %s (% X)\n", id, id.Raw)
		if board.Geometry.LargePage() {
			if ext, err := id.Extended(); err == nil {
				fmt.Fprintf(out, "  Reported page:  %d+%d, %s blocks, %d-bit bus\n",
					ext.PageSize, ext.OOBSize, humanize.IBytes(uint64(ext.BlockSize)), ext.BusWidth)
			}
		}
		return nil
	},
}

func printBoard(out io.Writer, board *geometry.Board, scheme ecc.Scheme) {
	g := &board.Geometry
	fmt.Fprintf(out, "Board:            %s\n", g.Name)
	fmt.Fprintf(out, "  Page:           %d+%d bytes\n", g.PageSize, g.OOBSize)
	fmt.Fprintf(out, "  Block:          %d pages (%s)\n", g.PagesPerBlock, humanize.IBytes(uint64(g.BlockSize())))
	fmt.Fprintf(out, "  Device:         %d blocks (%s)\n", g.Blocks, humanize.IBytes(uint64(g.Size())))
	fmt.Fprintf(out, "  Bus:            %d-bit\n", g.BusWidth)
	fmt.Fprintf(out, "  Address cycles: %d (%d column, %d row)\n", g.Cycles(), g.ColumnCycles(), g.RowCycles())
	fmt.Fprintf(out, "  Protocol:       %s\n", protocol.For(g).Name())
	fmt.Fprintf(out, "  Bad-block mark: OOB offset %d\n", g.BadBlockMarkerOffset())
	fmt.Fprintf(out, "  ECC:            %s, %d steps x %d bytes, %d bit(s) per step\n",
		scheme.Name(), g.ECCSteps(), scheme.Bytes(), scheme.Strength())
	fmt.Fprintf(out, "  ECC positions:  %v\n", g.ECC.Positions)

	if len(board.Boot) == 0 {
		return
	}
	fmt.Fprintf(out, "\nBoot regions:\n")
	for _, img := range board.Boot {
		fmt.Fprintf(out, "  %-12s %-10s offset 0x%08X size %-10s load 0x%X\n",
			img.Name, img.Kind, img.Offset, humanize.IBytes(uint64(img.Size)), img.LoadAddr)
	}
}
