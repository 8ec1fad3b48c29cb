package spl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

var errBusy = errors.New("busy")

// Sequencer replays command sequences against a controller, waiting for
// R/B# wherever the protocol needs the chip to be idle.
//
// Sequencer is not safe for concurrent use; Loader serializes access to it.
type Sequencer struct {
	ctrl     protocol.Controller
	geom     *geometry.Geometry
	proto    protocol.CommandProtocol
	polls    int
	interval time.Duration
}

// NewSequencer creates a Sequencer for the chip behind ctrl. The command
// protocol is chosen from the page size of g unless overridden in opts.
func NewSequencer(ctrl protocol.Controller, g *geometry.Geometry, opts ...Option) *Sequencer {
	if ctrl == nil {
		panic("controller cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSequencer(ctrl, g, cfg)
}

func newSequencer(ctrl protocol.Controller, g *geometry.Geometry, cfg Config) *Sequencer {
	proto := cfg.CommandProtocol
	if proto == nil {
		proto = protocol.For(g)
	}
	return &Sequencer{
		ctrl:     ctrl,
		geom:     g,
		proto:    proto,
		polls:    cfg.ReadyPolls,
		interval: cfg.ReadyInterval,
	}
}

// Protocol returns the command protocol in use.
func (s *Sequencer) Protocol() protocol.CommandProtocol {
	return s.proto
}

// WaitReady samples R/B# until the chip is ready, at most ReadyPolls times.
// It returns a *protocol.NotReadyError when the bound is exhausted, or the
// context error if ctx ends first.
func (s *Sequencer) WaitReady(ctx context.Context) error {
	return s.waitReady(ctx, "wait ready")
}

func (s *Sequencer) waitReady(ctx context.Context, op string) error {
	if s.ctrl.DeviceReady() {
		return nil
	}

	polls := 1
	if s.polls > 1 {
		b := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.interval), uint64(s.polls-2)),
			ctx,
		)
		err := backoff.Retry(func() error {
			polls++
			if s.ctrl.DeviceReady() {
				return nil
			}
			return errBusy
		}, b)
		if err == nil {
			return nil
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return &protocol.NotReadyError{Op: op, Polls: polls}
}

// Issue positions the chip's page register at column of block/page: it
// waits for the chip to go idle, then latches the command and address
// cycles of the protocol and waits for the page load to finish. On return
// the next data reads yield the page starting at column.
func (s *Sequencer) Issue(ctx context.Context, block, page, column int, kind protocol.CommandKind) error {
	cycles, err := s.proto.Cycles(s.geom, block, page, column, kind)
	if err != nil {
		return err
	}

	op := fmt.Sprintf("%s block %d page %d", kind, block, page)
	if err := s.waitReady(ctx, op); err != nil {
		return err
	}
	return s.Run(ctx, op, cycles)
}

// Run latches cycles in order, waiting for ready at every CycleWaitReady.
// op names the sequence in errors.
func (s *Sequencer) Run(ctx context.Context, op string, cycles []protocol.Cycle) error {
	for _, c := range cycles {
		switch c.Kind {
		case protocol.CycleCommand:
			s.ctrl.WriteCommand(c.Value)
		case protocol.CycleAddress:
			s.ctrl.WriteAddress(c.Value)
		case protocol.CycleWaitReady:
			if err := s.waitReady(ctx, op); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown cycle %v", op, c)
		}
	}
	return nil
}
