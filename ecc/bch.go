package ecc

import (
	"fmt"
)

// BCH is a binary BCH code over GF(2^m) correcting up to t bit errors per
// step. It is the shortened systematic code used by NAND controllers:
// data bits are fed most significant bit first and the remainder is packed
// into ceil(m*t/8) bytes, highest degree first.
//
// The code of an erased step is forced to all 0xFF by XORing a fixed mask,
// so blank pages read back clean.
type BCH struct {
	f      *field
	t      int
	step   int
	k      int // data bits
	r      int // generator degree (parity bits)
	nbytes int
	words  int
	gen    []uint64 // generator coefficients below degree r
	erased []byte
}

// FieldOrder returns the smallest field order m that fits a step of
// stepSize bytes with strength t.
func FieldOrder(stepSize, t int) int {
	k := stepSize * 8
	for m := 5; m < 15; m++ {
		if 1<<uint(m)-1 >= k+m*t {
			return m
		}
	}
	return 15
}

// NewBCH builds a BCH code over GF(2^m) for steps of stepSize bytes
// correcting t bits.
func NewBCH(stepSize, m, t int) (*BCH, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("invalid BCH step size %d", stepSize)
	}
	if t <= 0 {
		return nil, fmt.Errorf("invalid BCH strength %d", t)
	}
	f, err := newField(m)
	if err != nil {
		return nil, err
	}

	b := &BCH{
		f:    f,
		t:    t,
		step: stepSize,
		k:    stepSize * 8,
	}

	g := b.generator()
	b.r = len(g) - 1
	if b.k+b.r > f.n {
		return nil, fmt.Errorf("BCH(m=%d, t=%d) cannot cover %d data bits", m, t, b.k)
	}
	b.nbytes = (b.r + 7) / 8
	b.words = (b.r + 63) / 64
	b.gen = make([]uint64, b.words)
	for q := 0; q < b.r; q++ {
		if g[q] != 0 {
			b.gen[q/64] |= 1 << uint(q%64)
		}
	}

	blank := make([]byte, stepSize)
	for i := range blank {
		blank[i] = 0xff
	}
	b.erased = make([]byte, b.nbytes)
	b.encode(blank, b.erased)
	for i := range b.erased {
		b.erased[i] ^= 0xff
	}
	return b, nil
}

func (b *BCH) Name() string  { return fmt.Sprintf("bch%d-%d", b.t, b.step) }
func (b *BCH) StepSize() int { return b.step }
func (b *BCH) Bytes() int    { return b.nbytes }
func (b *BCH) Strength() int { return b.t }

// generator multiplies the minimal polynomials of alpha^1..alpha^(2t) and
// returns the coefficients, constant term first.
func (b *BCH) generator() []uint16 {
	f := b.f
	seen := make([]bool, f.n)
	g := []uint16{1}
	for i := 1; i < 2*b.t; i += 2 {
		for j := i % f.n; !seen[j]; j = (2 * j) % f.n {
			seen[j] = true
			root := f.exp[j]
			next := make([]uint16, len(g)+1)
			for d, c := range g {
				next[d+1] ^= c
				next[d] ^= f.mul(c, root)
			}
			g = next
		}
	}
	return g
}

// encode computes the raw parity of data without the erased mask.
func (b *BCH) encode(data, code []byte) {
	rem := make([]uint64, b.words)
	top := uint(b.r-1) % 64
	topWord := (b.r - 1) / 64
	var lastMask uint64 = ^uint64(0)
	if b.r%64 != 0 {
		lastMask = 1<<uint(b.r%64) - 1
	}

	for i := 0; i < b.step; i++ {
		v := data[i]
		for s := 7; s >= 0; s-- {
			fb := uint64(v>>uint(s)&1) ^ (rem[topWord] >> top & 1)
			for w := b.words - 1; w > 0; w-- {
				rem[w] = rem[w]<<1 | rem[w-1]>>63
			}
			rem[0] <<= 1
			rem[b.words-1] &= lastMask
			if fb != 0 {
				for w := range rem {
					rem[w] ^= b.gen[w]
				}
			}
		}
	}

	for i := range code[:b.nbytes] {
		code[i] = 0
	}
	for s := 0; s < b.r; s++ {
		q := b.r - 1 - s
		if rem[q/64]>>uint(q%64)&1 != 0 {
			code[s/8] |= 0x80 >> uint(s%8)
		}
	}
}

// Calculate computes the BCH code over one step.
func (b *BCH) Calculate(data, code []byte) {
	b.encode(data, code)
	for i := 0; i < b.nbytes; i++ {
		code[i] ^= b.erased[i]
	}
}

// Correct decodes the difference between the stored and calculated codes
// and flips the located data bits. Errors located in the code area count
// toward Bits but leave data untouched.
func (b *BCH) Correct(data, stored, calc []byte) Result {
	f := b.f

	// Degrees of the differing parity bits. Padding bits in the last byte
	// are not part of the code.
	var diff []int
	for s := 0; s < b.r; s++ {
		mask := byte(0x80) >> uint(s%8)
		if (stored[s/8]^calc[s/8])&mask != 0 {
			diff = append(diff, b.r-1-s)
		}
	}
	if len(diff) == 0 {
		return Result{Status: Clean}
	}

	synd := make([]uint16, 2*b.t)
	for j := range synd {
		var s uint16
		for _, d := range diff {
			s ^= f.pow((j + 1) * d)
		}
		synd[j] = s
	}

	sigma, l := b.locator(synd)
	if l == 0 || l > b.t {
		return Result{Status: Uncorrectable}
	}

	// Chien search over the shortened codeword. A root at alpha^-deg marks
	// an error at degree deg.
	var found []int
	for deg := 0; deg < b.r+b.k; deg++ {
		var v uint16
		for i, c := range sigma {
			v ^= f.mul(c, f.pow(-deg*i))
		}
		if v == 0 {
			found = append(found, deg)
			if len(found) > l {
				break
			}
		}
	}
	if len(found) != l {
		return Result{Status: Uncorrectable}
	}

	for _, deg := range found {
		if deg < b.r {
			continue
		}
		n := b.r + b.k - 1 - deg
		data[n/8] ^= 0x80 >> uint(n%8)
	}
	return Result{Status: Corrected, Bits: l}
}

// locator runs Berlekamp-Massey over the syndromes and returns the error
// locator polynomial and its length.
func (b *BCH) locator(synd []uint16) ([]uint16, int) {
	f := b.f
	size := 2*b.t + 1

	c := make([]uint16, size)
	c[0] = 1
	prev := make([]uint16, size)
	prev[0] = 1

	l, shift := 0, 1
	var prevDisc uint16 = 1

	for n := 0; n < len(synd); n++ {
		d := synd[n]
		for i := 1; i <= l; i++ {
			d ^= f.mul(c[i], synd[n-i])
		}
		if d == 0 {
			shift++
			continue
		}

		coef := f.div(d, prevDisc)
		if 2*l <= n {
			saved := append([]uint16(nil), c...)
			for i := 0; i+shift < size; i++ {
				c[i+shift] ^= f.mul(coef, prev[i])
			}
			l = n + 1 - l
			prev = saved
			prevDisc = d
			shift = 1
		} else {
			for i := 0; i+shift < size; i++ {
				c[i+shift] ^= f.mul(coef, prev[i])
			}
			shift++
		}
	}
	return c[:l+1], l
}
