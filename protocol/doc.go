// Package protocol implements the raw NAND command protocol used to read
// pages during boot.
//
// # Controller Interface
//
// The loader talks to the chip through a narrow register interface that any
// board can supply:
//
//	type Controller interface {
//	    WriteCommand(cmd byte)   // latch with CLE
//	    WriteAddress(addr byte)  // latch with ALE
//	    ReadData8() uint8
//	    ReadData16() uint16
//	    DeviceReady() bool       // R/B#
//	}
//
// LatchController implements the register half over a memory-mapped window
// where CLE and ALE are address lines. ReadyBusyPin implements the ready half
// over a GPIO input. Compose joins the two.
//
// # Command Protocols
//
// Small-page (512 byte) and large-page devices position the page register
// differently. CommandProtocol builds the cycle list for either:
//
//	Small page: [READ0|READ1|READOOB][COL][ROW0][ROW1]([ROW2])[WAIT]
//	Large page: [READ0][COL0][COL1][ROW0][ROW1]([ROW2])[READSTART][WAIT]
//
// The row address is page + block*PagesPerBlock. On a 16-bit bus the column
// is a word address. For is the usual way to pick one:
//
//	cycles, err := protocol.For(g).Cycles(g, block, page, 0, protocol.ReadMain)
//
// # Identification
//
// ParseID decodes the bytes returned after ReadIDCycles, including the page
// layout large-page chips advertise in their fourth ID byte.
//
// # Error Handling
//
// A ready line that never rises is reported as a NotReadyError, which
// matches ErrDeviceNotReady:
//
//	if protocol.IsNotReady(err) {
//	    // the chip is stuck busy or not connected
//	}
package protocol
