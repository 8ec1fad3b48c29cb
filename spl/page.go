package spl

import (
	"context"
	"fmt"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/protocol"
)

// PageResult holds the ECC outcome of every step of one page read.
type PageResult struct {
	Block int
	Page  int
	Steps []ecc.Result
}

// Corrected returns the number of bit errors fixed in the page.
func (r *PageResult) Corrected() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == ecc.Corrected {
			n += s.Bits
		}
	}
	return n
}

// Uncorrectable returns the number of steps ECC could not repair.
func (r *PageResult) Uncorrectable() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == ecc.Uncorrectable {
			n++
		}
	}
	return n
}

// Err returns an *UncorrectableError for the first uncorrectable step,
// or nil.
func (r *PageResult) Err() error {
	for i, s := range r.Steps {
		if s.Status == ecc.Uncorrectable {
			return &UncorrectableError{Block: r.Block, Page: r.Page, Step: i}
		}
	}
	return nil
}

// ReadPage reads the main area of block/page into dst, which must hold at
// least one page, and corrects it step by step. The data is delivered even
// when a step is uncorrectable; the result reports it. With WithStrictECC
// an uncorrectable step is also returned as error.
func (l *Loader) ReadPage(ctx context.Context, block, page int, dst []byte) (*PageResult, error) {
	if len(dst) < l.geom.PageSize {
		return nil, fmt.Errorf("destination holds %d bytes, page is %d", len(dst), l.geom.PageSize)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.readPageRetry(ctx, block, page, dst[:l.geom.PageSize])
}

func (l *Loader) readPage(ctx context.Context, block, page int, dst []byte) (*PageResult, error) {
	if err := l.seq.Issue(ctx, block, page, 0, protocol.ReadMain); err != nil {
		return nil, err
	}

	g := l.geom
	wide := g.Wide()
	steps := g.ECCSteps()
	size := l.scheme.StepSize()
	nbytes := l.scheme.Bytes()
	hooked, _ := l.scheme.(ecc.Hooked)

	for i := 0; i < steps; i++ {
		if hooked != nil {
			hooked.BeginStep()
		}
		chunk := dst[i*size : (i+1)*size]
		protocol.ReadData(l.ctrl, chunk, wide)
		l.scheme.Calculate(chunk, l.calc[i*nbytes:(i+1)*nbytes])
	}

	protocol.ReadData(l.ctrl, l.oob, wide)
	for i, pos := range g.ECC.Positions[:len(l.stored)] {
		l.stored[i] = l.oob[pos]
	}

	res := &PageResult{Block: block, Page: page, Steps: make([]ecc.Result, steps)}
	for i := 0; i < steps; i++ {
		code := l.stored[i*nbytes : (i+1)*nbytes]
		calc := l.calc[i*nbytes : (i+1)*nbytes]
		r := l.scheme.Correct(dst[i*size:(i+1)*size], code, calc)
		res.Steps[i] = r

		switch r.Status {
		case ecc.Corrected:
			l.logDebug("ecc corrected", "block", block, "page", page, "step", i, "bits", r.Bits)
		case ecc.Uncorrectable:
			l.logError("ecc uncorrectable", "block", block, "page", page, "step", i)
		default:
			continue
		}
		if l.config.ECCObserver != nil {
			l.config.ECCObserver(ECCEvent{Block: block, Page: page, Step: i, Result: r})
		}
	}

	if l.config.StrictECC {
		if err := res.Err(); err != nil {
			return res, err
		}
	}
	return res, nil
}
