package ecc

import "fmt"

// Primitive polynomials for GF(2^m), indexed by m.
var primitivePolys = map[int]uint32{
	5:  0x25,
	6:  0x43,
	7:  0x83,
	8:  0x11d,
	9:  0x211,
	10: 0x409,
	11: 0x805,
	12: 0x1053,
	13: 0x201b,
	14: 0x402b,
	15: 0x8003,
}

// field is GF(2^m) in exp/log representation.
type field struct {
	m   int
	n   int // multiplicative order, 2^m - 1
	exp []uint16
	log []int
}

func newField(m int) (*field, error) {
	poly, ok := primitivePolys[m]
	if !ok {
		return nil, fmt.Errorf("unsupported Galois field order %d (want 5..15)", m)
	}

	n := 1<<uint(m) - 1
	f := &field{
		m:   m,
		n:   n,
		exp: make([]uint16, 2*n),
		log: make([]int, n+1),
	}

	x := uint32(1)
	for i := 0; i < n; i++ {
		f.exp[i] = uint16(x)
		f.log[x] = i
		x <<= 1
		if x&(1<<uint(m)) != 0 {
			x ^= poly
		}
	}
	if x != 1 {
		return nil, fmt.Errorf("polynomial %#x is not primitive", poly)
	}
	copy(f.exp[n:], f.exp[:n])
	return f, nil
}

// pow returns alpha^i for any integer i.
func (f *field) pow(i int) uint16 {
	i %= f.n
	if i < 0 {
		i += f.n
	}
	return f.exp[i]
}

func (f *field) mul(a, b uint16) uint16 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

func (f *field) div(a, b uint16) uint16 {
	if a == 0 {
		return 0
	}
	return f.exp[f.log[a]-f.log[b]+f.n]
}
