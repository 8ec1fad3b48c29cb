package geometry

// Bus widths supported by the NAND data bus.
const (
	BusWidth8  = 8
	BusWidth16 = 16
)

// ECC scheme names accepted in board files.
const (
	SchemeHamming = "hamming"
	SchemeBCH     = "bch"
)

// AutoBadBlockPos asks for the bad-block marker offset to be derived from the
// page size and bus: SmallBadBlockPos for small-page 8-bit devices,
// LargeBadBlockPos for large-page or 16-bit devices.
const AutoBadBlockPos = -1

// Default bad-block marker positions within the OOB area of page 0.
const (
	SmallBadBlockPos = 5
	LargeBadBlockPos = 0
)

// Capacity thresholds above which one more row address cycle is required.
const (
	smallPageExtraCycleSize = 32 << 20
	largePageExtraCycleSize = 128 << 20
)

// Geometry describes the fixed layout of one NAND device.
type Geometry struct {
	// Name is a human readable identifier (board or part number)
	Name string

	// PageSize is the number of bytes in the main (data) area of a page
	PageSize int

	// OOBSize is the number of bytes in the out-of-band (spare) area of a page
	OOBSize int

	// PagesPerBlock is the number of pages in one erase block
	PagesPerBlock int

	// Blocks is the number of erase blocks on the device
	Blocks int

	// BusWidth is the data bus width in bits (8 or 16)
	BusWidth int

	// AddressCycles overrides the derived number of address cycles when non-zero
	AddressCycles int

	// BadBlockPos is the OOB offset of the factory bad-block marker,
	// or AutoBadBlockPos to derive it from the page size
	BadBlockPos int

	// ECC describes how the main area is protected
	ECC ECCLayout
}

// ECCLayout describes the ECC steps of a page and where their codes live in
// the OOB area.
type ECCLayout struct {
	// Scheme names the ECC algorithm (SchemeHamming or SchemeBCH)
	Scheme string

	// StepSize is the number of data bytes covered by one ECC code
	StepSize int

	// Bytes is the number of ECC bytes per step
	Bytes int

	// Strength is the number of bit errors correctable per step
	Strength int

	// Positions lists, in step order, the OOB offsets holding ECC bytes
	Positions []int
}

// BlockSize returns the number of main-area bytes in one erase block.
func (g *Geometry) BlockSize() int {
	return g.PageSize * g.PagesPerBlock
}

// Size returns the number of main-area bytes on the device.
func (g *Geometry) Size() int64 {
	return int64(g.BlockSize()) * int64(g.Blocks)
}

// RawPageSize returns the number of bytes in a page including the OOB area.
func (g *Geometry) RawPageSize() int {
	return g.PageSize + g.OOBSize
}

// Pages returns the number of pages on the device.
func (g *Geometry) Pages() int {
	return g.PagesPerBlock * g.Blocks
}

// LargePage reports whether the device uses the large-page command set.
func (g *Geometry) LargePage() bool {
	return g.PageSize > 512
}

// Wide reports whether the device has a 16-bit data bus.
func (g *Geometry) Wide() bool {
	return g.BusWidth == BusWidth16
}

// ColumnCycles returns the number of column address cycles.
func (g *Geometry) ColumnCycles() int {
	if g.LargePage() {
		return 2
	}
	return 1
}

// RowCycles returns the number of row address cycles.
func (g *Geometry) RowCycles() int {
	return g.Cycles() - g.ColumnCycles()
}

// Cycles returns the total number of address cycles for a page read.
func (g *Geometry) Cycles() int {
	if g.AddressCycles != 0 {
		return g.AddressCycles
	}
	if g.LargePage() {
		if g.Size() > largePageExtraCycleSize {
			return 5
		}
		return 4
	}
	if g.Size() > smallPageExtraCycleSize {
		return 4
	}
	return 3
}

// BadBlockMarkerOffset returns the OOB offset of the bad-block marker.
func (g *Geometry) BadBlockMarkerOffset() int {
	if g.BadBlockPos != AutoBadBlockPos {
		return g.BadBlockPos
	}
	if g.LargePage() || g.Wide() {
		return LargeBadBlockPos
	}
	return SmallBadBlockPos
}

// ECCSteps returns the number of ECC steps in one page.
func (g *Geometry) ECCSteps() int {
	if g.ECC.StepSize == 0 {
		return 0
	}
	return g.PageSize / g.ECC.StepSize
}

// ECCTotal returns the number of ECC bytes stored for one page.
func (g *Geometry) ECCTotal() int {
	return g.ECCSteps() * g.ECC.Bytes
}

// Clone returns a deep copy of g.
func (g *Geometry) Clone() *Geometry {
	c := *g
	c.ECC.Positions = append([]int(nil), g.ECC.Positions...)
	return &c
}

// SmallPage returns the classic 512+16 byte page geometry with 32 pages per
// block and the default software Hamming layout.
func SmallPage(blocks int) *Geometry {
	return &Geometry{
		Name:          "small-page",
		PageSize:      512,
		OOBSize:       16,
		PagesPerBlock: 32,
		Blocks:        blocks,
		BusWidth:      BusWidth8,
		BadBlockPos:   SmallBadBlockPos,
		ECC: ECCLayout{
			Scheme:    SchemeHamming,
			StepSize:  256,
			Bytes:     3,
			Strength:  1,
			Positions: []int{0, 1, 2, 3, 6, 7},
		},
	}
}

// LargePage returns the 2048+64 byte page geometry with 64 pages per block
// and the default software Hamming layout at the end of the OOB area.
func LargePage(blocks int) *Geometry {
	positions := make([]int, 24)
	for i := range positions {
		positions[i] = 40 + i
	}
	return &Geometry{
		Name:          "large-page",
		PageSize:      2048,
		OOBSize:       64,
		PagesPerBlock: 64,
		Blocks:        blocks,
		BusWidth:      BusWidth8,
		BadBlockPos:   LargeBadBlockPos,
		ECC: ECCLayout{
			Scheme:    SchemeHamming,
			StepSize:  256,
			Bytes:     3,
			Strength:  1,
			Positions: positions,
		},
	}
}
