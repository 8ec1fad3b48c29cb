package spl

import (
	"errors"
	"fmt"
)

var (
	// ErrBadGeometry is matched by GeometryError and OutOfRangeError
	ErrBadGeometry = errors.New("bad geometry")

	// ErrUncorrectable is matched by UncorrectableError
	ErrUncorrectable = errors.New("uncorrectable ECC error")
)

// GeometryError indicates a load request that does not fit the device.
// It is returned before any bus cycle is issued.
type GeometryError struct {
	Offset int64
	Length int
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("bad geometry: offset 0x%X length %d: %s", e.Offset, e.Length, e.Reason)
}

func (e *GeometryError) Is(target error) bool {
	return target == ErrBadGeometry
}

// OutOfRangeError indicates that skipping bad blocks pushed a load past
// the last block of the device.
type OutOfRangeError struct {
	Block  int
	Blocks int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("block %d is past the end of the device: valid range is 0-%d",
		e.Block, e.Blocks-1)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrBadGeometry
}

// UncorrectableError indicates an ECC step with more bit errors than the
// scheme can repair.
type UncorrectableError struct {
	Block int
	Page  int
	Step  int
}

func (e *UncorrectableError) Error() string {
	return fmt.Sprintf("uncorrectable ECC error in block %d page %d step %d", e.Block, e.Page, e.Step)
}

func (e *UncorrectableError) Is(target error) bool {
	return target == ErrUncorrectable
}
