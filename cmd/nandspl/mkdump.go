package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/nandsim"
)

var mkdumpFlags struct {
	out     string
	image   string
	offset  string
	regions map[string]string
	bad     []int
}

var mkdumpCmd = &cobra.Command{
	Use:   "mkdump",
	Short: "Build a NAND dump with OOB for testing",
	Long: `Create an erased device with the board geometry, mark the --bad blocks,
program the given files with ECC and save the result as a dump usable with
--dump. Files are placed either at --offset (--image) or at the offset of a
named board region (--region name=file). Bad blocks are skipped while
programming, the same way the loader skips them while reading.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if mkdumpFlags.out == "" {
			return fmt.Errorf("--out is required")
		}
		board, err := loadBoard()
		if err != nil {
			return err
		}

		chip, err := nandsim.New(&board.Geometry)
		if err != nil {
			return err
		}
		for _, b := range mkdumpFlags.bad {
			if err := chip.MarkBad(b); err != nil {
				return fmt.Errorf("--bad %d: %w", b, err)
			}
		}

		if mkdumpFlags.image != "" {
			offset, err := parseSize(mkdumpFlags.offset)
			if err != nil {
				return fmt.Errorf("--offset: %w", err)
			}
			if err := program(chip, mkdumpFlags.image, int64(offset)); err != nil {
				return err
			}
		}

		names := make([]string, 0, len(mkdumpFlags.regions))
		for name := range mkdumpFlags.regions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			img, ok := findRegion(board, name)
			if !ok {
				return fmt.Errorf("--region %s: no such region in board file", name)
			}
			if err := program(chip, mkdumpFlags.regions[name], int64(img.Offset)); err != nil {
				return err
			}
		}

		if err := chip.Save(mkdumpFlags.out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", mkdumpFlags.out)
		return nil
	},
}

func init() {
	f := mkdumpCmd.Flags()
	f.StringVar(&mkdumpFlags.out, "out", "", "dump file to create")
	f.StringVar(&mkdumpFlags.image, "image", "", "file to program at --offset")
	f.StringVar(&mkdumpFlags.offset, "offset", "0", "NAND byte offset for --image (page aligned)")
	f.StringToStringVar(&mkdumpFlags.regions, "region", nil, "program a file at a board region, as name=file (repeatable)")
	f.IntSliceVar(&mkdumpFlags.bad, "bad", nil, "blocks to mark bad before programming")
}

func program(chip *nandsim.Chip, path string, offset int64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	last, err := chip.WriteImage(offset, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	glog.Infof("programmed %s at 0x%X (%d bytes, last block %d)", path, offset, len(data), last)
	return nil
}

func findRegion(board *geometry.Board, name string) (geometry.Image, bool) {
	for _, img := range board.Boot {
		if img.Name == name {
			return img, true
		}
	}
	return geometry.Image{}, false
}
