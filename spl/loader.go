package spl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

// Loader reads boot images out of raw NAND flash: it skips bad blocks,
// corrects bit errors with the configured ECC scheme, and copies the
// image into caller memory.
//
// Loader is safe for concurrent use; operations on the chip are serialized.
type Loader struct {
	mu     sync.Mutex
	ctrl   protocol.Controller
	geom   *geometry.Geometry
	seq    *Sequencer
	scheme ecc.Scheme
	config Config

	// scratch, allocated once
	oob     []byte
	calc    []byte
	stored  []byte
	partial []byte
}

// Report summarizes one Load.
type Report struct {
	// FirstBlock is the block the load started in
	FirstBlock int

	// LastBlock is the last block of the window, extended by one for
	// every bad block skipped
	LastBlock int

	// BadBlocks lists the blocks skipped
	BadBlocks []int

	// PagesRead is the number of pages read
	PagesRead int

	// BytesRead is the number of bytes delivered to the destination
	BytesRead int

	// CorrectedBits is the number of bit errors fixed by ECC
	CorrectedBits int

	// UncorrectableSteps is the number of ECC steps delivered as read
	UncorrectableSteps int

	// Elapsed is the duration of the load
	Elapsed time.Duration
}

// New creates a Loader for the chip behind ctrl with geometry g.
// The geometry is validated and copied; the ECC scheme is built from its
// layout unless WithScheme is given.
//
// Example:
//
//	board, _ := geometry.Parse("board.yaml")
//	loader, err := spl.New(ctrl, &board.Geometry,
//	    spl.WithReadyPolls(1000),
//	    spl.WithLogger(myLogger),
//	)
func New(ctrl protocol.Controller, g *geometry.Geometry, opts ...Option) (*Loader, error) {
	if ctrl == nil {
		panic("controller cannot be nil")
	}
	if g == nil {
		return nil, fmt.Errorf("geometry cannot be nil")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	g = g.Clone()

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	scheme := cfg.Scheme
	if scheme == nil {
		var err error
		if scheme, err = ecc.FromLayout(g.ECC); err != nil {
			return nil, fmt.Errorf("ecc: %w", err)
		}
	} else if scheme.StepSize() != g.ECC.StepSize || scheme.Bytes() != g.ECC.Bytes {
		return nil, fmt.Errorf("ecc scheme %s (%d bytes per %d byte step) does not match layout (%d bytes per %d byte step)",
			scheme.Name(), scheme.Bytes(), scheme.StepSize(), g.ECC.Bytes, g.ECC.StepSize)
	}

	return &Loader{
		ctrl:    ctrl,
		geom:    g,
		seq:     newSequencer(ctrl, g, cfg),
		scheme:  scheme,
		config:  cfg,
		oob:     make([]byte, g.OOBSize),
		calc:    make([]byte, g.ECCTotal()),
		stored:  make([]byte, g.ECCTotal()),
		partial: make([]byte, g.PageSize),
	}, nil
}

// Geometry returns the loader's copy of the device geometry.
func (l *Loader) Geometry() *geometry.Geometry {
	return l.geom
}

// Scheme returns the ECC scheme in use.
func (l *Loader) Scheme() ecc.Scheme {
	return l.scheme
}

// Load copies exactly length bytes starting at the page-aligned NAND byte
// offset into dest, skipping bad blocks:
//  1. Check the request fits the device
//  2. Before reading a block, check its bad-block marker; a bad block is
//     skipped whole and the window grows by one block
//  3. Read pages in order, correcting each with ECC
//
// A window that grows past the last block fails with *OutOfRangeError.
// Uncorrectable ECC steps are counted in the report and the data is
// delivered as read, unless WithStrictECC is set.
//
// Example:
//
//	dest := make([]byte, 256<<10)
//	report, err := loader.Load(ctx, 0x4000, len(dest), dest)
func (l *Loader) Load(ctx context.Context, offset int64, length int, dest []byte) (*Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.load(ctx, PhaseLoading, offset, length, dest)
}

func (l *Loader) load(ctx context.Context, phase string, offset int64, length int, dest []byte) (*Report, error) {
	if err := l.checkRequest(offset, length, dest); err != nil {
		return nil, err
	}

	startTime := time.Now()
	g := l.geom
	blockSize := int64(g.BlockSize())

	block := int(offset / blockSize)
	lastBlock := int((offset + int64(length) - 1) / blockSize)
	page := int(offset%blockSize) / g.PageSize
	totalPages := (length + g.PageSize - 1) / g.PageSize

	report := &Report{FirstBlock: block, LastBlock: lastBlock}
	defer func() { report.Elapsed = time.Since(startTime) }()

	l.logDebug("load started",
		"offset", fmt.Sprintf("0x%X", offset),
		"length", length,
		"first_block", block,
		"last_block", lastBlock,
		"page", page,
	)

	for block <= lastBlock {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("cancelled: %w", err)
		}

		bad, err := l.checkBlock(ctx, block)
		if err != nil {
			return report, fmt.Errorf("check block %d: %w", block, err)
		}
		if bad {
			report.BadBlocks = append(report.BadBlocks, block)
			lastBlock++
			report.LastBlock = lastBlock
			l.logInfo("skipping bad block", "block", block, "last_block", lastBlock)
			if lastBlock >= g.Blocks {
				return report, &OutOfRangeError{Block: lastBlock, Blocks: g.Blocks}
			}
			block++
			continue
		}

		for ; page < g.PagesPerBlock && report.BytesRead < length; page++ {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("cancelled: %w", err)
			}

			n := length - report.BytesRead
			if n > g.PageSize {
				n = g.PageSize
			}
			dst := l.partial
			if n == g.PageSize {
				dst = dest[report.BytesRead : report.BytesRead+n]
			}

			res, err := l.readPageRetry(ctx, block, page, dst)
			if res != nil {
				report.CorrectedBits += res.Corrected()
				report.UncorrectableSteps += res.Uncorrectable()
			}
			if err != nil {
				return report, fmt.Errorf("read block %d page %d: %w", block, page, err)
			}
			if n < g.PageSize {
				copy(dest[report.BytesRead:], l.partial[:n])
			}

			report.BytesRead += n
			report.PagesRead++
			l.reportProgress(Progress{
				Phase:       phase,
				Block:       block,
				Page:        page,
				PagesRead:   report.PagesRead,
				TotalPages:  totalPages,
				BytesRead:   report.BytesRead,
				BadBlocks:   len(report.BadBlocks),
				Percentage:  float64(report.PagesRead) / float64(totalPages) * 100,
				ElapsedTime: time.Since(startTime),
			})
		}

		page = 0
		block++
	}

	l.logInfo("load complete",
		"offset", fmt.Sprintf("0x%X", offset),
		"bytes", report.BytesRead,
		"pages", report.PagesRead,
		"bad_blocks", len(report.BadBlocks),
		"corrected_bits", report.CorrectedBits,
		"uncorrectable_steps", report.UncorrectableSteps,
		"elapsed", time.Since(startTime).String(),
	)
	return report, nil
}

func (l *Loader) checkRequest(offset int64, length int, dest []byte) error {
	g := l.geom
	switch {
	case length <= 0:
		return &GeometryError{Offset: offset, Length: length, Reason: "length must be positive"}
	case offset < 0:
		return &GeometryError{Offset: offset, Length: length, Reason: "offset is negative"}
	case offset%int64(g.PageSize) != 0:
		return &GeometryError{Offset: offset, Length: length,
			Reason: fmt.Sprintf("offset is not aligned to the %d byte page size", g.PageSize)}
	case offset+int64(length) > g.Size():
		return &GeometryError{Offset: offset, Length: length,
			Reason: fmt.Sprintf("runs past the end of the %d byte device", g.Size())}
	case len(dest) < length:
		return &GeometryError{Offset: offset, Length: length,
			Reason: fmt.Sprintf("destination holds only %d bytes", len(dest))}
	}
	return nil
}

// retry runs op, re-running it up to Retries times while it fails because
// the chip never went ready. Any other error ends the retries.
func (l *Loader) retry(ctx context.Context, op func() error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(l.config.Retries)),
		ctx,
	)
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !protocol.IsNotReady(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, _ time.Duration) {
		l.logDebug("re-issuing command", "error", err)
	})
}

func (l *Loader) readPageRetry(ctx context.Context, block, page int, dst []byte) (*PageResult, error) {
	var res *PageResult
	err := l.retry(ctx, func() error {
		var err error
		res, err = l.readPage(ctx, block, page, dst)
		return err
	})
	return res, err
}

func (l *Loader) checkBlock(ctx context.Context, block int) (bool, error) {
	var bad bool
	err := l.retry(ctx, func() error {
		var err error
		bad, err = l.isBadBlock(ctx, block)
		return err
	})
	return bad, err
}

// reportProgress calls the progress callback if configured.
func (l *Loader) reportProgress(progress Progress) {
	if l.config.ProgressCallback != nil {
		l.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if logger is configured.
func (l *Loader) logDebug(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if logger is configured.
func (l *Loader) logInfo(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is configured.
func (l *Loader) logError(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Error(msg, keysAndValues...)
	}
}
