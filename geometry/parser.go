package geometry

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// boardFile is the on-disk YAML form of a Board.
type boardFile struct {
	Name          string    `yaml:"name"`
	PageSize      int       `yaml:"page_size"`
	OOBSize       int       `yaml:"oob_size"`
	PagesPerBlock int       `yaml:"pages_per_block"`
	Blocks        int       `yaml:"blocks"`
	BusWidth      int       `yaml:"bus_width"`
	AddressCycles int       `yaml:"address_cycles"`
	BadBlockPos   *int      `yaml:"bad_block_pos"`
	ECC           eccFile   `yaml:"ecc"`
	Boot          []imgFile `yaml:"boot"`
}

type eccFile struct {
	Scheme    string `yaml:"scheme"`
	StepSize  int    `yaml:"step_size"`
	Bytes     int    `yaml:"bytes"`
	Strength  int    `yaml:"strength"`
	Positions []int  `yaml:"positions"`
}

type imgFile struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Offset   uint32 `yaml:"offset"`
	Size     uint32 `yaml:"size"`
	LoadAddr uint64 `yaml:"load_addr"`
}

// Parse reads and validates a YAML board file from the given path.
//
// Example:
//
//	board, err := geometry.Parse("boards/demo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("block size: %d\n", board.Geometry.BlockSize())
func Parse(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open board file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads and validates a YAML board file from any io.Reader.
func ParseReader(r io.Reader) (*Board, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty board file")
	}

	var bf boardFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, fmt.Errorf("failed to decode board file: %w", err)
	}

	board := bf.board()
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

// board converts the file form, filling defaults for omitted fields.
func (bf *boardFile) board() *Board {
	g := Geometry{
		Name:          bf.Name,
		PageSize:      bf.PageSize,
		OOBSize:       bf.OOBSize,
		PagesPerBlock: bf.PagesPerBlock,
		Blocks:        bf.Blocks,
		BusWidth:      bf.BusWidth,
		AddressCycles: bf.AddressCycles,
		BadBlockPos:   AutoBadBlockPos,
		ECC: ECCLayout{
			Scheme:    bf.ECC.Scheme,
			StepSize:  bf.ECC.StepSize,
			Bytes:     bf.ECC.Bytes,
			Strength:  bf.ECC.Strength,
			Positions: bf.ECC.Positions,
		},
	}
	if bf.BadBlockPos != nil {
		g.BadBlockPos = *bf.BadBlockPos
	}
	if g.BusWidth == 0 {
		g.BusWidth = BusWidth8
	}
	if g.ECC.Scheme == "" {
		g.ECC.Scheme = SchemeHamming
	}
	if g.ECC.Scheme == SchemeHamming {
		if g.ECC.StepSize == 0 {
			g.ECC.StepSize = 256
		}
		if g.ECC.Bytes == 0 {
			g.ECC.Bytes = 3
		}
		if g.ECC.Strength == 0 {
			g.ECC.Strength = 1
		}
	}

	b := &Board{Geometry: g}
	for i, img := range bf.Boot {
		kind := img.Kind
		if kind == "" {
			kind = KindImage
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("%s%d", kind, i)
		}
		b.Boot = append(b.Boot, Image{
			Name:     name,
			Kind:     kind,
			Offset:   img.Offset,
			Size:     img.Size,
			LoadAddr: img.LoadAddr,
		})
	}
	return b
}
