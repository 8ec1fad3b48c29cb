package protocol

// Window is a block of memory-mapped controller registers addressed by
// byte offset.
type Window interface {
	Read8(off uintptr) uint8
	Write8(off uintptr, v uint8)
	Read16(off uintptr) uint16
}

// LatchController drives the common GPMC/EBI wiring where the chip's CLE
// and ALE pins hang off address lines of the data window: writing at
// Data|CLE latches a command, writing at Data|ALE latches an address.
type LatchController struct {
	Window Window

	// Data is the offset of the data register
	Data uintptr

	// CLE and ALE are the address bits wired to the latch enables
	CLE uintptr
	ALE uintptr

	// Ready reports R/B#. A nil Ready reports ready unconditionally, for
	// boards that rely on a fixed read delay instead.
	Ready ReadySignal
}

func (l *LatchController) WriteCommand(cmd byte) {
	l.Window.Write8(l.Data|l.CLE, cmd)
}

func (l *LatchController) WriteAddress(addr byte) {
	l.Window.Write8(l.Data|l.ALE, addr)
}

func (l *LatchController) ReadData8() uint8 {
	return l.Window.Read8(l.Data)
}

func (l *LatchController) ReadData16() uint16 {
	return l.Window.Read16(l.Data)
}

func (l *LatchController) DeviceReady() bool {
	if l.Ready == nil {
		return true
	}
	return l.Ready.DeviceReady()
}
