package protocol

// ReadData fills buf from the data register of regs. Controllers that
// implement BufferReader are handed the whole buffer; otherwise buf is
// filled one byte at a time, or one little-endian word at a time on a
// 16-bit bus.
func ReadData(regs Registers, buf []byte, wide bool) {
	if br, ok := regs.(BufferReader); ok {
		br.ReadBuffer(buf)
		return
	}

	if !wide {
		for i := range buf {
			buf[i] = regs.ReadData8()
		}
		return
	}

	i := 0
	for ; i+1 < len(buf); i += 2 {
		w := regs.ReadData16()
		buf[i] = byte(w)
		buf[i+1] = byte(w >> 8)
	}
	if i < len(buf) {
		buf[i] = byte(regs.ReadData16())
	}
}

// ReadyFunc adapts a plain function to ReadySignal.
type ReadyFunc func() bool

func (f ReadyFunc) DeviceReady() bool { return f() }

// Compose joins a register set and a separate ready source into a
// Controller. When regs implements BufferReader, so does the result.
func Compose(regs Registers, ready ReadySignal) Controller {
	c := composed{Registers: regs, ReadySignal: ready}
	if br, ok := regs.(BufferReader); ok {
		return &composedBuffered{composed: c, br: br}
	}
	return &c
}

type composed struct {
	Registers
	ReadySignal
}

type composedBuffered struct {
	composed
	br BufferReader
}

func (c *composedBuffered) ReadBuffer(buf []byte) { c.br.ReadBuffer(buf) }
