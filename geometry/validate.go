package geometry

import (
	"fmt"
	"math/bits"
)

// ValidationError reports a geometry or board field that cannot describe a
// real device.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that g describes a device the loader can drive.
func (g *Geometry) Validate() error {
	if g.PageSize < 256 || bits.OnesCount(uint(g.PageSize)) != 1 {
		return invalid("page_size", "%d is not a power of two >= 256", g.PageSize)
	}
	if g.OOBSize <= 0 {
		return invalid("oob_size", "must be positive, got %d", g.OOBSize)
	}
	if g.PagesPerBlock <= 0 {
		return invalid("pages_per_block", "must be positive, got %d", g.PagesPerBlock)
	}
	if g.Blocks <= 0 {
		return invalid("blocks", "must be positive, got %d", g.Blocks)
	}

	switch g.BusWidth {
	case BusWidth8:
	case BusWidth16:
		if g.PageSize%2 != 0 || g.OOBSize%2 != 0 {
			return invalid("bus_width", "16-bit bus needs even page and OOB sizes")
		}
	default:
		return invalid("bus_width", "must be 8 or 16, got %d", g.BusWidth)
	}

	if g.AddressCycles != 0 {
		lo, hi := 3, 4
		if g.LargePage() {
			lo, hi = 4, 5
		}
		if g.AddressCycles < lo || g.AddressCycles > hi {
			return invalid("address_cycles", "%d not in [%d, %d] for %d byte pages",
				g.AddressCycles, lo, hi, g.PageSize)
		}
	}

	marker := g.BadBlockMarkerOffset()
	markerLen := 1
	if g.Wide() {
		markerLen = 2
	}
	if marker < 0 || marker+markerLen > g.OOBSize {
		return invalid("bad_block_pos", "offset %d outside %d byte OOB", marker, g.OOBSize)
	}
	if g.Wide() && marker%2 != 0 {
		return invalid("bad_block_pos", "offset %d is not word aligned on a 16-bit bus", marker)
	}

	return g.validateECC(marker, markerLen)
}

func (g *Geometry) validateECC(marker, markerLen int) error {
	e := g.ECC
	switch e.Scheme {
	case SchemeHamming, SchemeBCH:
	default:
		return invalid("ecc.scheme", "unknown scheme %q", e.Scheme)
	}
	if e.StepSize <= 0 || g.PageSize%e.StepSize != 0 {
		return invalid("ecc.step_size", "%d does not divide page size %d", e.StepSize, g.PageSize)
	}
	if e.Bytes <= 0 {
		return invalid("ecc.bytes", "must be positive, got %d", e.Bytes)
	}
	if e.Strength <= 0 {
		return invalid("ecc.strength", "must be positive, got %d", e.Strength)
	}
	if len(e.Positions) != g.ECCTotal() {
		return invalid("ecc.positions", "got %d positions, want %d (%d steps x %d bytes)",
			len(e.Positions), g.ECCTotal(), g.ECCSteps(), e.Bytes)
	}

	seen := make(map[int]bool, len(e.Positions))
	for _, pos := range e.Positions {
		if pos < 0 || pos >= g.OOBSize {
			return invalid("ecc.positions", "offset %d outside %d byte OOB", pos, g.OOBSize)
		}
		if pos >= marker && pos < marker+markerLen {
			return invalid("ecc.positions", "offset %d overlaps the bad-block marker", pos)
		}
		if seen[pos] {
			return invalid("ecc.positions", "offset %d listed twice", pos)
		}
		seen[pos] = true
	}
	return nil
}
