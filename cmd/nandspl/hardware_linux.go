//go:build linux

package main

import (
	"fmt"

	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/moffa90/go-nandspl/internal/mmio"
	"github.com/moffa90/go-nandspl/protocol"
)

func openHardware(base uintptr, size int) (protocol.Controller, func() error, error) {
	w, err := mmio.Map(base, size)
	if err != nil {
		return nil, nil, err
	}

	ctrl := &protocol.LatchController{
		Window: w,
		CLE:    uintptr(devFlags.cle),
		ALE:    uintptr(devFlags.ale),
	}
	if devFlags.rbPin != "" {
		if _, err := host.Init(); err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("gpio host init: %w", err)
		}
		pin := gpioreg.ByName(devFlags.rbPin)
		if pin == nil {
			w.Close()
			return nil, nil, fmt.Errorf("no GPIO named %q", devFlags.rbPin)
		}
		rb, err := protocol.NewReadyBusyPin(pin)
		if err != nil {
			w.Close()
			return nil, nil, err
		}
		rb.ActiveLow = devFlags.rbActiveLow
		ctrl.Ready = rb
	}
	return ctrl, w.Close, nil
}
