//go:build !linux

package main

import (
	"fmt"
	"runtime"

	"github.com/moffa90/go-nandspl/protocol"
)

func openHardware(base uintptr, size int) (protocol.Controller, func() error, error) {
	return nil, nil, fmt.Errorf("memory-mapped controllers are not supported on %s", runtime.GOOS)
}
