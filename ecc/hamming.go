package ecc

import (
	"fmt"
	"math/bits"
)

// HammingBytes is the code size of the Hamming scheme.
const HammingBytes = 3

// Hamming is the classic software NAND ECC: 22 (256 byte steps) or 24
// (512 byte steps) parity bits packed into three bytes in SmartMedia order.
// It corrects one bit and detects two bits per step.
//
// Parities are stored inverted so an erased step (all 0xFF) has the code
// FF FF FF.
type Hamming struct {
	step  int
	abits int
}

// NewHamming returns a Hamming scheme over 256 or 512 byte steps.
func NewHamming(stepSize int) (*Hamming, error) {
	switch stepSize {
	case 256:
		return &Hamming{step: 256, abits: 8}, nil
	case 512:
		return &Hamming{step: 512, abits: 9}, nil
	default:
		return nil, fmt.Errorf("hamming ECC supports 256 or 512 byte steps, got %d", stepSize)
	}
}

func (h *Hamming) Name() string  { return fmt.Sprintf("hamming-%d", h.step) }
func (h *Hamming) StepSize() int { return h.step }
func (h *Hamming) Bytes() int    { return HammingBytes }
func (h *Hamming) Strength() int { return 1 }

// Calculate computes the three code bytes over one step.
//
// Line parity pair (rp2a, rp2a+1) covers the bytes whose address bit a is
// 0 and 1 respectively; column parity pairs do the same for the bit index
// within a byte.
func (h *Hamming) Calculate(data, code []byte) {
	var even, odd [9]byte
	var par byte

	for i := 0; i < h.step; i++ {
		v := data[i]
		par ^= v
		for a := 0; a < h.abits; a++ {
			if i>>uint(a)&1 != 0 {
				odd[a] ^= v
			} else {
				even[a] ^= v
			}
		}
	}

	var lo, hi byte
	for a := 0; a < 4; a++ {
		lo |= invParity(even[a]) << uint(2*a)
		lo |= invParity(odd[a]) << uint(2*a+1)
		hi |= invParity(even[a+4]) << uint(2*a)
		hi |= invParity(odd[a+4]) << uint(2*a+1)
	}

	col := invParity(par&0xf0)<<7 |
		invParity(par&0x0f)<<6 |
		invParity(par&0xcc)<<5 |
		invParity(par&0x33)<<4 |
		invParity(par&0xaa)<<3 |
		invParity(par&0x55)<<2
	if h.step == 512 {
		col |= invParity(odd[8])<<1 | invParity(even[8])
	} else {
		col |= 0x03
	}

	code[0] = lo
	code[1] = hi
	code[2] = col
}

// Correct repairs a single flipped bit in data, or accepts a single flipped
// bit in the stored code. Anything else that differs is uncorrectable.
func (h *Hamming) Correct(data, stored, calc []byte) Result {
	b0 := stored[0] ^ calc[0]
	b1 := stored[1] ^ calc[1]
	b2 := stored[2] ^ calc[2]

	if b0|b1|b2 == 0 {
		return Result{Status: Clean}
	}

	colMask := byte(0x54)
	if h.step == 512 {
		colMask = 0x55
	}

	// A single data bit error flips exactly one bit of every parity pair.
	if (b0^b0>>1)&0x55 == 0x55 &&
		(b1^b1>>1)&0x55 == 0x55 &&
		(b2^b2>>1)&colMask == colMask {
		byteAddr := int(addressBits(b1))<<4 | int(addressBits(b0))
		if h.step == 512 {
			byteAddr |= int(addressBits(b2&0x03)) << 8
		}
		bitAddr := addressBits(b2 >> 2)
		data[byteAddr] ^= 1 << bitAddr
		return Result{Status: Corrected, Bits: 1}
	}

	// A single bit error in the code itself.
	if bits.OnesCount8(b0)+bits.OnesCount8(b1)+bits.OnesCount8(b2) == 1 {
		return Result{Status: Corrected, Bits: 1}
	}

	return Result{Status: Uncorrectable}
}

// invParity returns 1 when v has an even number of set bits.
func invParity(v byte) byte {
	return byte(^bits.OnesCount8(v) & 1)
}

// addressBits gathers the odd bits of v (the "address bit is 1" half of each
// parity pair) into the low nibble.
func addressBits(v byte) byte {
	return (v>>1)&0x01 | (v>>2)&0x02 | (v>>3)&0x04 | (v>>4)&0x08
}
