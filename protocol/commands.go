package protocol

import (
	"github.com/moffa90/go-nandspl/geometry"
)

// CommandProtocol builds the command and address cycles that position the
// chip's page register for a read.
type CommandProtocol interface {
	// Name identifies the protocol in logs
	Name() string

	// Cycles returns the cycle sequence for reading block/page starting at
	// column. For ReadOOB the column is relative to the start of the OOB area.
	Cycles(g *geometry.Geometry, block, page, column int, kind CommandKind) ([]Cycle, error)
}

// For returns the command protocol matching the page size of g.
func For(g *geometry.Geometry) CommandProtocol {
	if g.LargePage() {
		return LargePage{}
	}
	return SmallPage{}
}

// SmallPage is the command set of 512 byte page devices. The column is
// selected by the read opcode (READ0, READ1 or READOOB) and one column
// address cycle. The chip starts loading the page when the last address
// cycle is latched.
//
// Cycle sequence:
//
//	[READ0|READ1|READOOB][COL][ROW0][ROW1]([ROW2])[WAIT]
type SmallPage struct{}

func (SmallPage) Name() string { return "small-page" }

func (SmallPage) Cycles(g *geometry.Geometry, block, page, column int, kind CommandKind) ([]Cycle, error) {
	if err := checkAddress(g, block, page, column, kind); err != nil {
		return nil, err
	}

	var op byte
	col := column
	switch {
	case kind == ReadOOB:
		op = CmdReadOOB
	case column >= g.PageSize:
		op = CmdReadOOB
		col = column - g.PageSize
	case column >= SmallPageHalf && !g.Wide():
		op = CmdRead1
		col = column - SmallPageHalf
	default:
		op = CmdRead0
	}
	if g.Wide() {
		col >>= 1
	}

	row := rowAddress(g, block, page)
	cycles := make([]Cycle, 0, 2+g.Cycles())
	cycles = append(cycles,
		Cycle{Kind: CycleCommand, Value: op},
		Cycle{Kind: CycleAddress, Value: byte(col)},
		Cycle{Kind: CycleAddress, Value: byte(row)},
		Cycle{Kind: CycleAddress, Value: byte(row >> 8)},
	)
	if g.RowCycles() > 2 {
		cycles = append(cycles, Cycle{Kind: CycleAddress, Value: byte(row>>16) & 0x0f})
	}
	cycles = append(cycles, Cycle{Kind: CycleWaitReady})
	return cycles, nil
}

// LargePage is the two-phase command set of devices with pages larger than
// 512 bytes. There is no separate OOB opcode: the OOB area is addressed as
// columns past the main area. The chip loads the page after READSTART.
//
// Cycle sequence:
//
//	[READ0][COL0][COL1][ROW0][ROW1]([ROW2])[READSTART][WAIT]
type LargePage struct{}

func (LargePage) Name() string { return "large-page" }

func (LargePage) Cycles(g *geometry.Geometry, block, page, column int, kind CommandKind) ([]Cycle, error) {
	if err := checkAddress(g, block, page, column, kind); err != nil {
		return nil, err
	}

	col := column
	if kind == ReadOOB {
		col += g.PageSize
	}
	if g.Wide() {
		col >>= 1
	}

	row := rowAddress(g, block, page)
	cycles := make([]Cycle, 0, 3+g.Cycles())
	cycles = append(cycles,
		Cycle{Kind: CycleCommand, Value: CmdRead0},
		Cycle{Kind: CycleAddress, Value: byte(col)},
		Cycle{Kind: CycleAddress, Value: byte(col >> 8)},
		Cycle{Kind: CycleAddress, Value: byte(row)},
		Cycle{Kind: CycleAddress, Value: byte(row >> 8)},
	)
	if g.RowCycles() > 2 {
		cycles = append(cycles, Cycle{Kind: CycleAddress, Value: byte(row >> 16)})
	}
	cycles = append(cycles,
		Cycle{Kind: CycleCommand, Value: CmdReadStart},
		Cycle{Kind: CycleWaitReady},
	)
	return cycles, nil
}

// ResetCycles returns the chip reset sequence.
func ResetCycles() []Cycle {
	return []Cycle{
		{Kind: CycleCommand, Value: CmdReset},
		{Kind: CycleWaitReady},
	}
}

// ReadIDCycles returns the READ ID sequence. The ID bytes are read from the
// data register right after it.
func ReadIDCycles() []Cycle {
	return []Cycle{
		{Kind: CycleCommand, Value: CmdReadID},
		{Kind: CycleAddress, Value: 0x00},
	}
}

// StatusCycles returns the READ STATUS sequence. The status byte is read
// from the data register right after it.
func StatusCycles() []Cycle {
	return []Cycle{
		{Kind: CycleCommand, Value: CmdStatus},
	}
}

func rowAddress(g *geometry.Geometry, block, page int) int {
	return page + block*g.PagesPerBlock
}

func checkAddress(g *geometry.Geometry, block, page, column int, kind CommandKind) error {
	if block < 0 || block >= g.Blocks || page < 0 || page >= g.PagesPerBlock {
		return &AddressError{Block: block, Page: page, Blocks: g.Blocks, PagesPerBlock: g.PagesPerBlock}
	}
	limit := g.RawPageSize()
	if kind == ReadOOB {
		limit = g.OOBSize
	}
	if column < 0 || column >= limit {
		return &ColumnError{Kind: kind, Column: column, Limit: limit}
	}
	return nil
}
