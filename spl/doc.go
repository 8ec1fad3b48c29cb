// Package spl loads boot images out of raw NAND flash the way a secondary
// program loader does before any operating system runs.
//
// A Loader drives a protocol.Controller (command, address and data
// registers plus the R/B# line) through the small- or large-page read
// command set, skips blocks carrying a bad-block marker, and corrects each
// page with the ECC scheme of the board layout.
//
// Basic usage:
//
//	board, err := geometry.Parse("board.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	loader, err := spl.New(ctrl, &board.Geometry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dest := make([]byte, 256<<10)
//	report, err := loader.Load(context.Background(), 0x4000, len(dest), dest)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d pages, %d bad blocks skipped\n", report.PagesRead, len(report.BadBlocks))
//
// Every wait for R/B# is bounded (WithReadyPolls, WithReadyInterval) and
// fails with protocol.ErrDeviceNotReady instead of hanging. Uncorrectable
// ECC steps are reported and the data is delivered as read, unless
// WithStrictECC is set.
package spl
