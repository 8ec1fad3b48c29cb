//go:build linux

// Package mmio maps physical register windows through /dev/mem so a NAND
// controller can be driven from user space.
package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem is the device Map opens.
const DevMem = "/dev/mem"

// Window is a mapped range of physical memory addressed by byte offset.
// It implements protocol.Window.
type Window struct {
	f     *os.File
	mem   []byte
	delta uintptr
	size  uintptr
}

// Map maps size bytes of physical memory starting at base. base need not
// be page aligned.
func Map(base uintptr, size int) (*Window, error) {
	return MapFile(DevMem, base, size)
}

// MapFile is Map over an arbitrary file, such as a UIO device or a plain
// file standing in for registers.
func MapFile(path string, base uintptr, size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("map size must be positive, got %d", size)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	page := uintptr(unix.Getpagesize())
	aligned := base &^ (page - 1)
	delta := base - aligned
	length := int(delta) + size
	length += (-length) & int(page-1)

	mem, err := unix.Mmap(int(f.Fd()), int64(aligned), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap 0x%X+0x%X: %w", base, size, err)
	}

	return &Window{f: f, mem: mem, delta: delta, size: uintptr(size)}, nil
}

func (w *Window) addr(off, width uintptr) unsafe.Pointer {
	if off+width > w.size {
		panic(fmt.Sprintf("mmio: access at 0x%X outside the 0x%X byte window", off, w.size))
	}
	return unsafe.Pointer(&w.mem[w.delta+off])
}

func (w *Window) Read8(off uintptr) uint8 {
	return *(*uint8)(w.addr(off, 1))
}

func (w *Window) Write8(off uintptr, v uint8) {
	*(*uint8)(w.addr(off, 1)) = v
}

// Read16 performs a single 16-bit access; off must be even.
func (w *Window) Read16(off uintptr) uint16 {
	return *(*uint16)(w.addr(off, 2))
}

// Close unmaps the window.
func (w *Window) Close() error {
	if w.mem == nil {
		return nil
	}
	err := unix.Munmap(w.mem)
	w.mem = nil
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}
