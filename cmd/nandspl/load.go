package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/marcinbor85/gohex"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-nandspl/spl"
)

var loadFlags struct {
	offset string
	length string
	out    string
	ihex   bool
	base   string
	strict bool
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load one image the way the SPL does",
	Long:  "Read --length bytes starting at --offset, skipping bad blocks and correcting bit errors, and write them to --out as raw binary or Intel HEX.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		offset, err := parseSize(loadFlags.offset)
		if err != nil {
			return fmt.Errorf("--offset: %w", err)
		}
		length, err := parseSize(loadFlags.length)
		if err != nil {
			return fmt.Errorf("--length: %w", err)
		}
		if loadFlags.out == "" {
			return fmt.Errorf("--out is required")
		}

		board, err := loadBoard()
		if err != nil {
			return err
		}
		loader, closer, err := newLoader(board,
			spl.WithStrictECC(loadFlags.strict),
			spl.WithProgressCallback(logProgress),
		)
		if err != nil {
			return err
		}
		defer closer()

		dest := make([]byte, length)
		report, err := loader.Load(context.Background(), int64(offset), int(length), dest)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), "image", report)

		if loadFlags.ihex {
			base, err := parseSize(loadFlags.base)
			if err != nil {
				return fmt.Errorf("--base: %w", err)
			}
			return writeIntelHex(loadFlags.out, uint32(base), dest)
		}
		return os.WriteFile(loadFlags.out, dest, 0o644)
	},
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadFlags.offset, "offset", "0", "NAND byte offset of the image (page aligned)")
	f.StringVar(&loadFlags.length, "length", "", "number of bytes to load (e.g. 0x40000, 256KiB)")
	f.StringVar(&loadFlags.out, "out", "", "output file")
	f.BoolVar(&loadFlags.ihex, "ihex", false, "write Intel HEX instead of raw binary")
	f.StringVar(&loadFlags.base, "base", "0", "load address of the image in the Intel HEX output")
	f.BoolVar(&loadFlags.strict, "strict", false, "fail on uncorrectable ECC errors instead of delivering the data")
}

// logProgress reports each block once at -v=1.
func logProgress(p spl.Progress) {
	if p.Page == 0 || p.PagesRead == p.TotalPages {
		glog.V(1).Infof("%s: %.1f%% block %d, %s read, %d bad blocks skipped",
			p.Phase, p.Percentage, p.Block, humanize.IBytes(uint64(p.BytesRead)), p.BadBlocks)
	}
}

func printReport(out io.Writer, name string, r *spl.Report) {
	fmt.Fprintf(out, "%s: %s in %d pages from blocks %d-%d in %v\n",
		name, humanize.IBytes(uint64(r.BytesRead)), r.PagesRead, r.FirstBlock, r.LastBlock, r.Elapsed)
	if len(r.BadBlocks) > 0 {
		fmt.Fprintf(out, "  skipped bad blocks %v\n", r.BadBlocks)
	}
	if r.CorrectedBits > 0 || r.UncorrectableSteps > 0 {
		fmt.Fprintf(out, "  ECC: %d bit(s) corrected, %d uncorrectable step(s)\n", r.CorrectedBits, r.UncorrectableSteps)
	}
}

func writeIntelHex(path string, base uint32, data []byte) error {
	mem := gohex.NewMemory()
	if err := mem.AddBinary(base, data); err != nil {
		return fmt.Errorf("intel hex: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mem.DumpIntelHex(f, 16); err != nil {
		f.Close()
		return fmt.Errorf("intel hex: %w", err)
	}
	return f.Close()
}
