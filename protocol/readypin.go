package protocol

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
)

// ReadyBusyPin reads R/B# from a GPIO input. R/B# is open drain and high
// when the chip is ready; set ActiveLow when a board inverts the line.
type ReadyBusyPin struct {
	Pin       gpio.PinIn
	ActiveLow bool
}

// NewReadyBusyPin configures pin as an input with a pull-up and returns a
// ready source reading it.
func NewReadyBusyPin(pin gpio.PinIn) (*ReadyBusyPin, error) {
	if pin == nil {
		return nil, fmt.Errorf("ready/busy pin cannot be nil")
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure ready/busy pin %s: %w", pin, err)
	}
	return &ReadyBusyPin{Pin: pin}, nil
}

func (p *ReadyBusyPin) DeviceReady() bool {
	if p.ActiveLow {
		return p.Pin.Read() == gpio.Low
	}
	return p.Pin.Read() == gpio.High
}
