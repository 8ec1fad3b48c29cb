package nandsim

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-nandspl/geometry"
)

// Import replaces the chip contents with a raw dump: every page in order,
// PageSize main bytes followed by OOBSize spare bytes.
func (c *Chip) Import(r io.Reader) error {
	buf := make([]byte, len(c.mem))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return fmt.Errorf("dump too short: got %d bytes, want %d: %w", n, len(c.mem), err)
	}

	// The dump must end exactly at the device size.
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m != 0 {
		return fmt.Errorf("dump longer than the %d byte device", len(c.mem))
	}

	copy(c.mem, buf)
	return nil
}

// Export writes the chip contents in the raw dump format read by Import.
func (c *Chip) Export(w io.Writer) error {
	if _, err := w.Write(c.mem); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

// Open creates a chip with geometry g loaded from the dump file at path.
func Open(path string, g *geometry.Geometry, opts ...Option) (*Chip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	c, err := New(g, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Import(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes the chip contents to the dump file at path.
func (c *Chip) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := c.Export(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return f.Close()
}
