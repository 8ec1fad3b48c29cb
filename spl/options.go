package spl

import (
	"time"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/protocol"
)

// Config holds the loader configuration.
type Config struct {
	// ProgressCallback is called after each page to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ReadyPolls bounds how many times R/B# is sampled per wait
	ReadyPolls int

	// ReadyInterval is the pause between two samples of R/B#
	ReadyInterval time.Duration

	// Retries is the number of times a command that timed out waiting
	// for ready is re-issued
	Retries int

	// StrictECC aborts a load on the first uncorrectable ECC step
	StrictECC bool

	// ECCObserver sees every corrected or uncorrectable step (optional)
	ECCObserver ECCObserver

	// CommandProtocol overrides the protocol derived from the page size (optional)
	CommandProtocol protocol.CommandProtocol

	// Scheme overrides the ECC scheme built from the geometry layout (optional)
	Scheme ecc.Scheme

	// ResetOnBoot resets the chip before Boot loads anything
	ResetOnBoot bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadyPolls: 10000,
		Retries:    1,
	}
}

// Option is a functional option for configuring the Loader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track load progress.
//
// Example:
//
//	loader, _ := spl.New(ctrl, geom,
//	    spl.WithProgressCallback(func(p spl.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the loader operations.
//
// Example:
//
//	loader, _ := spl.New(ctrl, geom, spl.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadyPolls sets how many times R/B# is sampled before a wait fails
// with protocol.ErrDeviceNotReady. Default is 10000.
func WithReadyPolls(polls int) Option {
	return func(c *Config) {
		if polls > 0 {
			c.ReadyPolls = polls
		}
	}
}

// WithReadyInterval sets the pause between two samples of R/B#.
// Default is zero (busy polling).
//
// Example:
//
//	loader, _ := spl.New(ctrl, geom,
//	    spl.WithReadyPolls(1000),
//	    spl.WithReadyInterval(10*time.Microsecond),
//	)
func WithReadyInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.ReadyInterval = interval
		}
	}
}

// WithRetries sets how many times a command that timed out waiting for
// ready is re-issued before the error is returned. Default is 1.
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.Retries = retries
		}
	}
}

// WithStrictECC makes Load and ReadPage fail with an UncorrectableError on
// the first uncorrectable step. By default such steps are reported and the
// data is delivered as read.
func WithStrictECC(strict bool) Option {
	return func(c *Config) {
		c.StrictECC = strict
	}
}

// WithECCObserver sets a function called for every corrected or
// uncorrectable ECC step.
//
// Example:
//
//	loader, _ := spl.New(ctrl, geom,
//	    spl.WithECCObserver(func(e spl.ECCEvent) {
//	        log.Printf("block %d page %d step %d: %s", e.Block, e.Page, e.Step, e.Result.Status)
//	    }),
//	)
func WithECCObserver(observer ECCObserver) Option {
	return func(c *Config) {
		c.ECCObserver = observer
	}
}

// WithCommandProtocol overrides the small/large page command protocol
// chosen from the geometry.
func WithCommandProtocol(p protocol.CommandProtocol) Option {
	return func(c *Config) {
		c.CommandProtocol = p
	}
}

// WithScheme overrides the ECC scheme built from the geometry ECC layout,
// for example with a hardware engine implementing ecc.Hooked.
func WithScheme(s ecc.Scheme) Option {
	return func(c *Config) {
		c.Scheme = s
	}
}

// WithResetOnBoot resets the chip before Boot loads anything.
// Default is false.
func WithResetOnBoot(reset bool) Option {
	return func(c *Config) {
		c.ResetOnBoot = reset
	}
}
