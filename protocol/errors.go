package protocol

import (
	"errors"
	"fmt"
)

// ErrDeviceNotReady is matched by every NotReadyError.
var ErrDeviceNotReady = errors.New("device not ready")

// NotReadyError reports that R/B# never signalled ready within the poll
// bound while waiting for an operation.
type NotReadyError struct {
	// Op is the operation that was waiting
	Op string

	// Polls is the number of times the ready line was sampled
	Polls int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: device not ready after %d polls", e.Op, e.Polls)
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrDeviceNotReady
}

// IsNotReady returns true if err is or wraps a NotReadyError.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrDeviceNotReady)
}

// ColumnError reports a column outside the area targeted by a read command.
type ColumnError struct {
	Kind   CommandKind
	Column int
	Limit  int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s column %d out of range: valid range is 0-%d", e.Kind, e.Column, e.Limit-1)
}

// AddressError reports a block or page outside the device.
type AddressError struct {
	Block         int
	Page          int
	Blocks        int
	PagesPerBlock int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("block %d page %d out of range: device has %d blocks of %d pages",
		e.Block, e.Page, e.Blocks, e.PagesPerBlock)
}
