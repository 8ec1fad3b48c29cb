package spl

import (
	"context"
	"fmt"

	"github.com/moffa90/go-nandspl/protocol"
)

// IsBadBlock reads the factory marker in the OOB area of the first page of
// block. Anything but 0xFF (0xFFFF on a 16-bit bus) marks the block bad.
// The single read is authoritative.
func (l *Loader) IsBadBlock(ctx context.Context, block int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.checkBlock(ctx, block)
}

func (l *Loader) isBadBlock(ctx context.Context, block int) (bool, error) {
	marker := l.geom.BadBlockMarkerOffset()
	if err := l.seq.Issue(ctx, block, 0, marker, protocol.ReadOOB); err != nil {
		return false, err
	}

	if l.geom.Wide() {
		return l.ctrl.ReadData16() != 0xffff, nil
	}
	return l.ctrl.ReadData8() != 0xff, nil
}

// ScanBadBlocks checks count blocks starting at first and returns the bad
// ones in increasing order.
func (l *Loader) ScanBadBlocks(ctx context.Context, first, count int) ([]int, error) {
	if first < 0 || count < 0 || first+count > l.geom.Blocks {
		block := first
		if first >= 0 {
			block = first + count - 1
		}
		return nil, &protocol.AddressError{
			Block:         block,
			Blocks:        l.geom.Blocks,
			PagesPerBlock: l.geom.PagesPerBlock,
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var bad []int
	for block := first; block < first+count; block++ {
		if err := ctx.Err(); err != nil {
			return bad, fmt.Errorf("cancelled: %w", err)
		}
		isBad, err := l.checkBlock(ctx, block)
		if err != nil {
			return bad, fmt.Errorf("check block %d: %w", block, err)
		}
		if isBad {
			bad = append(bad, block)
		}
	}

	l.logDebug("scan complete", "first", first, "count", count, "bad", len(bad))
	return bad, nil
}
