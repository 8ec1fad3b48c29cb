// Package nandsim provides an in-memory NAND chip that speaks the raw
// command protocol through protocol.Controller.
//
// The chip follows the small- and large-page read command sets, keeps R/B#
// low for a configurable number of polls after each page load, and records
// every sequencing mistake it sees (data reads while busy, commands outside
// their phase) so tests can assert a driver never makes one:
//
//	chip, _ := nandsim.New(geometry.SmallPage(64))
//	chip.Program(1, 0, page)
//	chip.MarkBad(0)
//	chip.FlipBit(1, 0, 17, 3)
//
//	loader := spl.New(chip, chip.Geometry())
//	...
//	if v := chip.Violations(); len(v) != 0 {
//	    t.Fatalf("protocol violations: %v", v)
//	}
//
// Chips can be saved to and loaded from raw dumps (pages in order, main area
// followed by OOB, the nanddump --oob layout) with Save, Open, Export and
// Import.
package nandsim
