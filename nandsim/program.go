package nandsim

import (
	"fmt"
)

// Program writes data into the main area of one page and the ECC codes of
// each step into their OOB positions. Short data is padded with 0xFF. The
// rest of the OOB area, including the bad-block marker, is left as is.
func (c *Chip) Program(block, page int, data []byte) error {
	off, err := c.pageOffset(block, page)
	if err != nil {
		return err
	}
	if len(data) > c.g.PageSize {
		return fmt.Errorf("data length %d exceeds page size %d", len(data), c.g.PageSize)
	}

	main := c.mem[off : off+c.g.PageSize]
	n := copy(main, data)
	for i := n; i < len(main); i++ {
		main[i] = 0xff
	}

	oob := c.mem[off+c.g.PageSize : off+c.g.RawPageSize()]
	step := c.scheme.StepSize()
	nbytes := c.scheme.Bytes()
	code := make([]byte, nbytes)
	for i := 0; i < c.g.ECCSteps(); i++ {
		c.scheme.Calculate(main[i*step:(i+1)*step], code)
		for j, b := range code {
			oob[c.g.ECC.Positions[i*nbytes+j]] = b
		}
	}
	return nil
}

// WriteImage programs img page by page starting at the page-aligned offset,
// skipping blocks whose marker says bad. It returns the last block written.
func (c *Chip) WriteImage(offset int64, img []byte) (int, error) {
	if offset%int64(c.g.PageSize) != 0 {
		return 0, fmt.Errorf("offset 0x%X is not aligned to the %d byte page size", offset, c.g.PageSize)
	}

	block := int(offset / int64(c.g.BlockSize()))
	page := int(offset%int64(c.g.BlockSize())) / c.g.PageSize
	last, checked := block, -1

	for len(img) > 0 {
		if block >= c.g.Blocks {
			return last, fmt.Errorf("image runs past the end of the device (%d bytes left)", len(img))
		}
		// A bad block is skipped whole; the page within the block is kept,
		// matching how the loader walks past it.
		if checked != block {
			if c.IsBad(block) {
				block++
				continue
			}
			checked = block
		}

		n := c.g.PageSize
		if n > len(img) {
			n = len(img)
		}
		if err := c.Program(block, page, img[:n]); err != nil {
			return last, err
		}
		img = img[n:]
		last = block

		page++
		if page == c.g.PagesPerBlock {
			page = 0
			block++
		}
	}
	return last, nil
}

// Erase resets one block to 0xFF, including its OOB area.
func (c *Chip) Erase(block int) error {
	off, err := c.pageOffset(block, 0)
	if err != nil {
		return err
	}
	end := off + c.g.PagesPerBlock*c.g.RawPageSize()
	for i := off; i < end; i++ {
		c.mem[i] = 0xff
	}
	return nil
}

// MarkBad writes a factory bad-block marker into page 0 of block.
func (c *Chip) MarkBad(block int) error {
	off, err := c.pageOffset(block, 0)
	if err != nil {
		return err
	}
	pos := off + c.g.PageSize + c.g.BadBlockMarkerOffset()
	c.mem[pos] = 0x00
	if c.g.Wide() {
		c.mem[pos+1] = 0x00
	}
	return nil
}

// IsBad inspects the stored marker of block directly, without bus cycles.
func (c *Chip) IsBad(block int) bool {
	off, err := c.pageOffset(block, 0)
	if err != nil {
		return false
	}
	pos := off + c.g.PageSize + c.g.BadBlockMarkerOffset()
	if c.g.Wide() {
		return c.mem[pos] != 0xff || c.mem[pos+1] != 0xff
	}
	return c.mem[pos] != 0xff
}

// FlipBit inverts one bit of a raw page. Offsets at or past PageSize land in
// the OOB area.
func (c *Chip) FlipBit(block, page, offset, bit int) error {
	off, err := c.pageOffset(block, page)
	if err != nil {
		return err
	}
	if offset < 0 || offset >= c.g.RawPageSize() || bit < 0 || bit > 7 {
		return fmt.Errorf("bit %d of byte %d outside the %d byte raw page", bit, offset, c.g.RawPageSize())
	}
	c.mem[off+offset] ^= 1 << uint(bit)
	return nil
}

// RawPage returns a copy of the main and OOB bytes of one page.
func (c *Chip) RawPage(block, page int) ([]byte, error) {
	off, err := c.pageOffset(block, page)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), c.mem[off:off+c.g.RawPageSize()]...), nil
}

func (c *Chip) pageOffset(block, page int) (int, error) {
	if block < 0 || block >= c.g.Blocks {
		return 0, fmt.Errorf("block %d out of range: device has %d blocks", block, c.g.Blocks)
	}
	if page < 0 || page >= c.g.PagesPerBlock {
		return 0, fmt.Errorf("page %d out of range: block has %d pages", page, c.g.PagesPerBlock)
	}
	return (block*c.g.PagesPerBlock + page) * c.g.RawPageSize(), nil
}
