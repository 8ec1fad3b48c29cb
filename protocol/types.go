package protocol

import "fmt"

// Registers is the command/address/data register set of a NAND controller.
//
// WriteCommand latches a byte with CLE asserted, WriteAddress with ALE
// asserted. Data reads return the next byte or word from the chip's
// internal page register.
type Registers interface {
	WriteCommand(cmd byte)
	WriteAddress(addr byte)
	ReadData8() uint8
	ReadData16() uint16
}

// ReadySignal reports the state of the chip's R/B# line.
type ReadySignal interface {
	DeviceReady() bool
}

// Controller is everything the loader needs from a board's NAND controller.
type Controller interface {
	Registers
	ReadySignal
}

// BufferReader is implemented by controllers that can read a run of data
// bytes faster than one register access per byte.
type BufferReader interface {
	ReadBuffer(buf []byte)
}

// CommandKind selects the area a read command targets.
type CommandKind int

const (
	// ReadMain starts reading at a column of the page (main area first, then OOB)
	ReadMain CommandKind = iota

	// ReadOOB starts reading at a column of the spare area
	ReadOOB
)

func (k CommandKind) String() string {
	switch k {
	case ReadMain:
		return "read-main"
	case ReadOOB:
		return "read-oob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CycleKind is the type of one bus cycle.
type CycleKind int

const (
	// CycleCommand latches Value as a command byte
	CycleCommand CycleKind = iota

	// CycleAddress latches Value as an address byte
	CycleAddress

	// CycleWaitReady waits for R/B# before continuing
	CycleWaitReady
)

// Cycle is one step of a command sequence.
type Cycle struct {
	Kind  CycleKind
	Value byte
}

func (c Cycle) String() string {
	switch c.Kind {
	case CycleCommand:
		return fmt.Sprintf("CMD 0x%02X", c.Value)
	case CycleAddress:
		return fmt.Sprintf("ADDR 0x%02X", c.Value)
	case CycleWaitReady:
		return "WAIT"
	default:
		return fmt.Sprintf("cycle(%d, 0x%02X)", int(c.Kind), c.Value)
	}
}

// ChipID contains the identification bytes returned by READ ID.
type ChipID struct {
	// Maker is the JEDEC manufacturer code
	Maker byte

	// Device is the device code
	Device byte

	// Raw holds all bytes read, including the two above
	Raw []byte
}

// MakerName returns a human-readable maker name, or "unknown".
func (id *ChipID) MakerName() string {
	switch id.Maker {
	case MakerToshiba:
		return "Toshiba"
	case MakerSamsung:
		return "Samsung"
	case MakerFujitsu:
		return "Fujitsu"
	case MakerNational:
		return "National"
	case MakerRenesas:
		return "Renesas"
	case MakerST:
		return "ST Micro"
	case MakerHynix:
		return "Hynix"
	case MakerMicron:
		return "Micron"
	case MakerMacronix:
		return "Macronix"
	default:
		return "unknown"
	}
}

// ExtendedGeometry is the page layout advertised in the fourth READ ID byte
// of large-page chips.
type ExtendedGeometry struct {
	PageSize  int
	OOBSize   int
	BlockSize int
	BusWidth  int
}
