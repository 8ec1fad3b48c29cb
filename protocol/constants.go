package protocol

// NAND command opcodes.
const (
	// CmdRead0 reads the main area starting at the given column
	CmdRead0 = 0x00

	// CmdRead1 reads the second half of a small-page main area
	CmdRead1 = 0x01

	// CmdReadOOB reads the spare area of a small page
	CmdReadOOB = 0x50

	// CmdReadStart confirms a large-page read after the address phase
	CmdReadStart = 0x30

	// CmdReadID reads the maker and device identification bytes
	CmdReadID = 0x90

	// CmdStatus reads the status register
	CmdStatus = 0x70

	// CmdReset resets the chip
	CmdReset = 0xFF
)

// Status register bits.
const (
	// StatusFail is set when the last program or erase failed
	StatusFail = 0x01

	// StatusReady mirrors the R/B# line
	StatusReady = 0x40

	// StatusWriteProtect is clear when the chip is write protected
	StatusWriteProtect = 0x80
)

// SmallPageHalf is the number of columns addressed by READ0 on a small page
// device; READ1 addresses the rest of the main area.
const SmallPageHalf = 256

// Known maker codes returned by READ ID.
const (
	MakerToshiba  = 0x98
	MakerSamsung  = 0xEC
	MakerFujitsu  = 0x04
	MakerNational = 0x8F
	MakerRenesas  = 0x07
	MakerST       = 0x20
	MakerHynix    = 0xAD
	MakerMicron   = 0x2C
	MakerMacronix = 0xC2
)

// IDLength is the number of READ ID bytes decoded by ParseID.
const IDLength = 5
