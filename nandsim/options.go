package nandsim

import (
	"github.com/moffa90/go-nandspl/ecc"
)

// Option configures a Chip.
type Option func(*config)

type config struct {
	scheme    ecc.Scheme
	busyPolls int
	id        []byte
	trace     bool
}

func defaultConfig() *config {
	return &config{
		busyPolls: 2,
	}
}

// WithScheme sets the ECC scheme used by Program. The default is built from
// the geometry's ECC layout.
func WithScheme(s ecc.Scheme) Option {
	return func(c *config) {
		c.scheme = s
	}
}

// WithBusyPolls sets how many ready polls report busy after a page load or
// reset. Default is 2.
func WithBusyPolls(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.busyPolls = n
		}
	}
}

// WithID overrides the bytes returned by READ ID.
func WithID(id []byte) Option {
	return func(c *config) {
		c.id = append([]byte(nil), id...)
	}
}

// WithTrace records every command and address cycle; see Chip.Trace.
func WithTrace() Option {
	return func(c *config) {
		c.trace = true
	}
}
