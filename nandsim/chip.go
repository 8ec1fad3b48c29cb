package nandsim

import (
	"fmt"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

type mode int

const (
	modeIdle mode = iota
	modeAddress
	modeAwaitStart
	modeData
	modeID
	modeStatus
)

// Stats counts bus activity since the chip was created.
type Stats struct {
	Commands   int
	PageLoads  int
	DataReads  int
	ReadyPolls int
	Resets     int
}

// Chip is an in-memory NAND device driven through protocol.Controller.
// Memory holds Pages() raw pages of PageSize main bytes followed by OOBSize
// spare bytes, initially erased (0xFF).
//
// Chip is not safe for concurrent use.
type Chip struct {
	g      *geometry.Geometry
	scheme ecc.Scheme
	cfg    *config
	mem    []byte

	mode  mode
	cmd   byte
	addr  []byte
	ptr   int
	end   int
	busy  int
	idPos int

	neverReady bool
	violations []string
	trace      []protocol.Cycle
	stats      Stats
}

// New creates an erased chip with geometry g.
func New(g *geometry.Geometry, opts ...Option) (*Chip, error) {
	if g == nil {
		return nil, fmt.Errorf("geometry cannot be nil")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	scheme := cfg.scheme
	if scheme == nil {
		s, err := ecc.FromLayout(g.ECC)
		if err != nil {
			return nil, fmt.Errorf("failed to build ECC scheme: %w", err)
		}
		scheme = s
	}
	if cfg.id == nil {
		cfg.id = defaultID(g)
	}

	c := &Chip{
		g:      g.Clone(),
		scheme: scheme,
		cfg:    cfg,
		mem:    make([]byte, int64(g.Pages())*int64(g.RawPageSize())),
	}
	for i := range c.mem {
		c.mem[i] = 0xff
	}
	return c, nil
}

// Geometry returns the chip geometry.
func (c *Chip) Geometry() *geometry.Geometry {
	return c.g
}

// Scheme returns the ECC scheme used by Program.
func (c *Chip) Scheme() ecc.Scheme {
	return c.scheme
}

func (c *Chip) WriteCommand(cmd byte) {
	c.stats.Commands++
	c.record(protocol.Cycle{Kind: protocol.CycleCommand, Value: cmd})

	if c.busy > 0 && cmd != protocol.CmdReset && cmd != protocol.CmdStatus {
		c.violate("command 0x%02X latched while busy", cmd)
	}

	switch cmd {
	case protocol.CmdRead0, protocol.CmdReadOOB:
		c.startRead(cmd)
	case protocol.CmdRead1:
		if c.g.LargePage() {
			c.violate("READ1 is not supported on large-page devices")
			c.mode = modeIdle
			return
		}
		c.startRead(cmd)
	case protocol.CmdReadStart:
		if c.mode != modeAwaitStart {
			c.violate("READSTART without a complete address phase")
			c.mode = modeIdle
			return
		}
		c.load()
	case protocol.CmdReadID:
		c.mode = modeID
		c.addr = c.addr[:0]
		c.idPos = 0
	case protocol.CmdStatus:
		c.mode = modeStatus
	case protocol.CmdReset:
		c.stats.Resets++
		c.mode = modeIdle
		c.addr = c.addr[:0]
		c.busy = c.cfg.busyPolls
	default:
		c.violate("unsupported command 0x%02X", cmd)
		c.mode = modeIdle
	}
}

func (c *Chip) startRead(cmd byte) {
	if cmd == protocol.CmdReadOOB && c.g.LargePage() {
		c.violate("READOOB is not supported on large-page devices")
		c.mode = modeIdle
		return
	}
	c.cmd = cmd
	c.addr = c.addr[:0]
	c.mode = modeAddress
}

func (c *Chip) WriteAddress(a byte) {
	c.record(protocol.Cycle{Kind: protocol.CycleAddress, Value: a})

	if c.busy > 0 {
		c.violate("address 0x%02X latched while busy", a)
	}

	switch c.mode {
	case modeID:
		c.addr = append(c.addr, a)
	case modeAddress:
		c.addr = append(c.addr, a)
		if len(c.addr) < c.g.Cycles() {
			return
		}
		if c.g.LargePage() {
			c.mode = modeAwaitStart
			return
		}
		c.load()
	default:
		c.violate("address 0x%02X latched outside an address phase", a)
	}
}

// load decodes the latched address and moves the page into the data
// register, which keeps the chip busy for the configured number of polls.
func (c *Chip) load() {
	cc := c.g.ColumnCycles()
	col := 0
	for i := 0; i < cc; i++ {
		col |= int(c.addr[i]) << uint(8*i)
	}
	row := 0
	for i := cc; i < len(c.addr); i++ {
		row |= int(c.addr[i]) << uint(8*(i-cc))
	}

	if c.g.Wide() {
		col <<= 1
	}
	if !c.g.LargePage() {
		switch c.cmd {
		case protocol.CmdRead1:
			col += protocol.SmallPageHalf
		case protocol.CmdReadOOB:
			col += c.g.PageSize
		}
	}

	if row >= c.g.Pages() || col >= c.g.RawPageSize() {
		c.violate("address row %d column %d outside device", row, col)
		c.mode = modeIdle
		return
	}

	raw := c.g.RawPageSize()
	c.ptr = row*raw + col
	c.end = (row + 1) * raw
	c.mode = modeData
	c.busy = c.cfg.busyPolls
	c.stats.PageLoads++
}

func (c *Chip) DeviceReady() bool {
	c.stats.ReadyPolls++
	if c.neverReady {
		return false
	}
	if c.busy > 0 {
		c.busy--
		return false
	}
	return true
}

func (c *Chip) ReadData8() uint8 {
	c.stats.DataReads++
	if c.busy > 0 && c.mode != modeStatus {
		c.violate("data read while busy")
	}

	switch c.mode {
	case modeStatus:
		status := byte(protocol.StatusWriteProtect)
		if c.busy == 0 && !c.neverReady {
			status |= protocol.StatusReady
		}
		return status
	case modeID:
		if c.idPos >= len(c.cfg.id) {
			return 0
		}
		v := c.cfg.id[c.idPos]
		c.idPos++
		return v
	case modeData:
		if c.ptr >= c.end {
			c.violate("data read past the end of the page")
			return 0xff
		}
		v := c.mem[c.ptr]
		c.ptr++
		return v
	default:
		c.violate("data read without a read command")
		return 0xff
	}
}

func (c *Chip) ReadData16() uint16 {
	lo := c.ReadData8()
	hi := c.ReadData8()
	return uint16(lo) | uint16(hi)<<8
}

// SetNeverReady makes R/B# stay low until cleared, as a dead or
// disconnected chip would.
func (c *Chip) SetNeverReady(v bool) {
	c.neverReady = v
}

// Violations returns the protocol sequencing errors seen so far: data
// reads while busy, commands outside their phase, and the like.
func (c *Chip) Violations() []string {
	return append([]string(nil), c.violations...)
}

// Trace returns the recorded command and address cycles. It is empty
// unless the chip was created WithTrace.
func (c *Chip) Trace() []protocol.Cycle {
	return append([]protocol.Cycle(nil), c.trace...)
}

// ResetTrace clears the recorded cycles.
func (c *Chip) ResetTrace() {
	c.trace = c.trace[:0]
}

// Stats returns the bus activity counters.
func (c *Chip) Stats() Stats {
	return c.stats
}

func (c *Chip) violate(format string, args ...interface{}) {
	c.violations = append(c.violations, fmt.Sprintf(format, args...))
}

func (c *Chip) record(cy protocol.Cycle) {
	if c.cfg.trace {
		c.trace = append(c.trace, cy)
	}
}

// Buffered returns a view of c that also implements protocol.BufferReader.
func (c *Chip) Buffered() protocol.Controller {
	return &bufferedChip{c}
}

type bufferedChip struct {
	*Chip
}

func (b *bufferedChip) ReadBuffer(buf []byte) {
	for i := range buf {
		buf[i] = b.ReadData8()
	}
}
