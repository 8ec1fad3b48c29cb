package ecc

import (
	"fmt"

	"github.com/moffa90/go-nandspl/geometry"
)

// Status is the outcome of checking one ECC step.
type Status int

const (
	// Clean means the stored and calculated codes matched
	Clean Status = iota

	// Corrected means bit errors were found and repaired in place
	Corrected

	// Uncorrectable means more bits flipped than the scheme can repair;
	// the data is left as read
	Uncorrectable
)

func (s Status) String() string {
	switch s {
	case Clean:
		return "clean"
	case Corrected:
		return "corrected"
	case Uncorrectable:
		return "uncorrectable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result reports what Correct found in one step.
type Result struct {
	Status Status

	// Bits is the number of flipped bits repaired, including bits
	// flipped in the stored code itself
	Bits int
}

// Scheme is an ECC algorithm protecting fixed-size steps of a page.
type Scheme interface {
	// Name identifies the scheme in logs
	Name() string

	// StepSize returns the number of data bytes covered by one code
	StepSize() int

	// Bytes returns the number of code bytes per step
	Bytes() int

	// Strength returns the number of bit errors correctable per step
	Strength() int

	// Calculate computes the code for data (StepSize bytes) into code (Bytes bytes)
	Calculate(data, code []byte)

	// Correct compares the stored code read from the OOB area with the code
	// calculated over data and repairs data in place when it can.
	Correct(data, stored, calc []byte) Result
}

// Hooked is implemented by schemes backed by a hardware engine that must be
// armed before each step is read from the device.
type Hooked interface {
	BeginStep()
}

// FromLayout builds the scheme named by a board ECC layout and checks that
// its code size matches the layout.
func FromLayout(l geometry.ECCLayout) (Scheme, error) {
	var (
		s   Scheme
		err error
	)
	switch l.Scheme {
	case geometry.SchemeHamming:
		s, err = NewHamming(l.StepSize)
	case geometry.SchemeBCH:
		s, err = NewBCH(l.StepSize, FieldOrder(l.StepSize, l.Strength), l.Strength)
	default:
		return nil, fmt.Errorf("unknown ECC scheme %q", l.Scheme)
	}
	if err != nil {
		return nil, err
	}
	if s.Bytes() != l.Bytes {
		return nil, fmt.Errorf("%s ECC over %d bytes needs %d code bytes, layout has %d",
			s.Name(), l.StepSize, s.Bytes(), l.Bytes)
	}
	if s.Strength() != l.Strength {
		return nil, fmt.Errorf("%s ECC corrects %d bits, layout says %d",
			s.Name(), s.Strength(), l.Strength)
	}
	return s, nil
}
