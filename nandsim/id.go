package nandsim

import (
	"math/bits"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

// defaultID builds READ ID bytes for a Samsung part matching g. Large-page
// geometries are encoded into the fourth byte the way real chips do.
func defaultID(g *geometry.Geometry) []byte {
	if !g.LargePage() {
		return []byte{protocol.MakerSamsung, 0x76, 0x5A, 0x3F, 0x00}
	}

	var ext byte
	ext |= byte(log2(g.PageSize/1024)) & 0x03
	if g.OOBSize/(g.PageSize/512) >= 16 {
		ext |= 0x04
	}
	ext |= (byte(log2(g.BlockSize()/(64<<10))) & 0x03) << 4
	if g.Wide() {
		ext |= 0x40
	}
	return []byte{protocol.MakerSamsung, 0xF1, 0x00, ext, 0x40}
}

func log2(v int) int {
	if v <= 0 {
		return 0
	}
	return bits.Len(uint(v)) - 1
}
