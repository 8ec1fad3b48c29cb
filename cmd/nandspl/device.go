package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/nandsim"
	"github.com/moffa90/go-nandspl/protocol"
	"github.com/moffa90/go-nandspl/spl"
)

// deviceFlags select the board file and where the NAND contents come from.
type deviceFlags struct {
	board         string
	dump          string
	readyPolls    int
	readyInterval time.Duration
	retries       int

	// memory-mapped controller
	mmioBase    string
	mmioSize    string
	cle         uint
	ale         uint
	rbPin       string
	rbActiveLow bool
}

var devFlags deviceFlags

func addDeviceFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&devFlags.board, "board", "", "board file (YAML) describing the NAND geometry and boot layout")
	f.StringVar(&devFlags.dump, "dump", "", "raw NAND dump with OOB (nanddump --oob layout)")
	f.IntVar(&devFlags.readyPolls, "ready-polls", 10000, "R/B# samples before a wait fails")
	f.DurationVar(&devFlags.readyInterval, "ready-interval", 0, "pause between R/B# samples")
	f.IntVar(&devFlags.retries, "retries", 1, "re-issues of a command that timed out waiting for ready")

	f.StringVar(&devFlags.mmioBase, "mmio-base", "", "physical address of the NAND data window (instead of --dump)")
	f.StringVar(&devFlags.mmioSize, "mmio-size", "4KiB", "size of the NAND data window")
	f.UintVar(&devFlags.cle, "cle", 0x10, "window offset bit wired to CLE")
	f.UintVar(&devFlags.ale, "ale", 0x08, "window offset bit wired to ALE")
	f.StringVar(&devFlags.rbPin, "rb-pin", "", "GPIO name of the R/B# line (periph naming, e.g. GPIO17)")
	f.BoolVar(&devFlags.rbActiveLow, "rb-active-low", false, "R/B# is inverted on this board")
}

func loadBoard() (*geometry.Board, error) {
	if devFlags.board == "" {
		return nil, fmt.Errorf("--board is required")
	}
	board, err := geometry.Parse(devFlags.board)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", devFlags.board, err)
	}
	return board, nil
}

// openController returns the controller selected by the flags and a
// function releasing it.
func openController(g *geometry.Geometry) (protocol.Controller, func() error, error) {
	switch {
	case devFlags.dump != "" && devFlags.mmioBase != "":
		return nil, nil, fmt.Errorf("--dump and --mmio-base are mutually exclusive")
	case devFlags.dump != "":
		chip, err := nandsim.Open(devFlags.dump, g)
		if err != nil {
			return nil, nil, err
		}
		return chip, func() error { return nil }, nil
	case devFlags.mmioBase != "":
		base, err := parseSize(devFlags.mmioBase)
		if err != nil {
			return nil, nil, fmt.Errorf("--mmio-base: %w", err)
		}
		size, err := parseSize(devFlags.mmioSize)
		if err != nil {
			return nil, nil, fmt.Errorf("--mmio-size: %w", err)
		}
		return openHardware(uintptr(base), int(size))
	default:
		return nil, nil, fmt.Errorf("one of --dump or --mmio-base is required")
	}
}

// newLoader opens the controller and builds a loader with the common
// options; extra options are applied last.
func newLoader(board *geometry.Board, opts ...spl.Option) (*spl.Loader, func() error, error) {
	ctrl, closer, err := openController(&board.Geometry)
	if err != nil {
		return nil, nil, err
	}

	base := []spl.Option{
		spl.WithLogger(glogLogger{}),
		spl.WithReadyPolls(devFlags.readyPolls),
		spl.WithReadyInterval(devFlags.readyInterval),
		spl.WithRetries(devFlags.retries),
	}
	loader, err := spl.New(ctrl, &board.Geometry, append(base, opts...)...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return loader, closer, nil
}

// parseSize accepts C-style integers (0x4000, 0o777, 16384) and humanized
// sizes (256KiB, 1.5MB).
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return v, nil
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return v, nil
}
