package protocol

import (
	"fmt"
)

// ParseID decodes the bytes returned by READ ID.
//
// Data format (at least 2 bytes):
//
//	[MAKER][DEVICE][3RD]([4TH][5TH])
func ParseID(data []byte) (*ChipID, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("invalid data length for READ ID: got %d bytes, need at least 2", len(data))
	}

	id := &ChipID{
		Maker:  data[0],
		Device: data[1],
		Raw:    append([]byte(nil), data...),
	}
	return id, nil
}

// Extended decodes the page layout packed into the fourth ID byte, as
// reported by large-page chips that predate ONFI parameter pages.
//
// Fourth byte format:
//
//	bits 0-1  page size, 1KiB << n
//	bit  2    OOB bytes per 512, 8 << n
//	bits 4-5  block size, 64KiB << n
//	bit  6    16-bit bus
func (id *ChipID) Extended() (*ExtendedGeometry, error) {
	if len(id.Raw) < 4 {
		return nil, fmt.Errorf("READ ID returned %d bytes, extended geometry needs 4", len(id.Raw))
	}

	b := id.Raw[3]
	ext := &ExtendedGeometry{
		PageSize:  1024 << (b & 0x03),
		BlockSize: (64 << 10) << ((b >> 4) & 0x03),
		BusWidth:  8,
	}
	ext.OOBSize = (8 << ((b >> 2) & 0x01)) * (ext.PageSize / 512)
	if b&0x40 != 0 {
		ext.BusWidth = 16
	}
	return ext, nil
}

func (id *ChipID) String() string {
	return fmt.Sprintf("%s (0x%02X) device 0x%02X", id.MakerName(), id.Maker, id.Device)
}
