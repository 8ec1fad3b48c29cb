package spl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/nandsim"
	"github.com/moffa90/go-nandspl/protocol"
)

func TestWaitReady(t *testing.T) {
	tests := []struct {
		name      string
		polls     int
		busyFor   int
		wantPolls int
		wantErr   bool
	}{
		{"ready at once", 5, 0, 1, false},
		{"ready on the last poll", 5, 4, 5, false},
		{"never ready", 5, 100, 5, true},
		{"single poll bound", 1, 100, 1, true},
		{"two poll bound", 2, 100, 2, true},
	}

	g := geometry.SmallPage(8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := newChip(t, g)
			polls := 0
			ready := protocol.ReadyFunc(func() bool {
				polls++
				return polls > tt.busyFor
			})

			s := NewSequencer(protocol.Compose(chip, ready), g, WithReadyPolls(tt.polls))
			err := s.WaitReady(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("WaitReady() error = %v, wantErr %v", err, tt.wantErr)
			}
			if polls != tt.wantPolls {
				t.Errorf("sampled R/B# %d times, want %d", polls, tt.wantPolls)
			}
			if tt.wantErr {
				var nr *protocol.NotReadyError
				if !errors.As(err, &nr) {
					t.Fatalf("WaitReady() error = %v, want *protocol.NotReadyError", err)
				}
				if nr.Polls != tt.wantPolls || nr.Op != "wait ready" {
					t.Errorf("NotReadyError = %+v", nr)
				}
			}
		})
	}
}

func TestWaitReadyInterval(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	chip.SetNeverReady(true)

	s := NewSequencer(chip, g, WithReadyPolls(4), WithReadyInterval(2*time.Millisecond))
	start := time.Now()
	err := s.WaitReady(context.Background())
	if !protocol.IsNotReady(err) {
		t.Fatalf("WaitReady() error = %v, want not ready", err)
	}
	// Three pauses between four polls.
	if elapsed := time.Since(start); elapsed < 6*time.Millisecond {
		t.Errorf("WaitReady() returned after %v, want at least 6ms", elapsed)
	}
}

func TestWaitReadyCancelled(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	chip.SetNeverReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSequencer(chip, g, WithReadyPolls(1000), WithReadyInterval(time.Hour))
	if err := s.WaitReady(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("WaitReady() error = %v, want context.Canceled", err)
	}
}

func TestIssue(t *testing.T) {
	cmd := func(v byte) protocol.Cycle { return protocol.Cycle{Kind: protocol.CycleCommand, Value: v} }
	addr := func(v byte) protocol.Cycle { return protocol.Cycle{Kind: protocol.CycleAddress, Value: v} }

	tests := []struct {
		name   string
		geom   *geometry.Geometry
		block  int
		page   int
		column int
		kind   protocol.CommandKind
		want   []protocol.Cycle
	}{
		{
			name: "small page first half",
			geom: geometry.SmallPage(8), block: 1, page: 2, column: 16, kind: protocol.ReadMain,
			want: []protocol.Cycle{cmd(protocol.CmdRead0), addr(16), addr(34), addr(0)},
		},
		{
			name: "small page second half",
			geom: geometry.SmallPage(8), block: 0, page: 0, column: 300, kind: protocol.ReadMain,
			want: []protocol.Cycle{cmd(protocol.CmdRead1), addr(44), addr(0), addr(0)},
		},
		{
			name: "small page oob",
			geom: geometry.SmallPage(8), block: 0, page: 1, column: 5, kind: protocol.ReadOOB,
			want: []protocol.Cycle{cmd(protocol.CmdReadOOB), addr(5), addr(1), addr(0)},
		},
		{
			name: "large page oob",
			geom: geometry.LargePage(8), block: 1, page: 1, column: 0, kind: protocol.ReadOOB,
			want: []protocol.Cycle{cmd(protocol.CmdRead0), addr(0x00), addr(0x08), addr(65), addr(0), cmd(protocol.CmdReadStart)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := newChip(t, tt.geom, nandsim.WithTrace())
			s := NewSequencer(chip, tt.geom)
			if err := s.Issue(context.Background(), tt.block, tt.page, tt.column, tt.kind); err != nil {
				t.Fatalf("Issue() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, chip.Trace()); diff != "" {
				t.Errorf("cycles mismatch (-want +got):\n%s", diff)
			}
			// The page register is loaded: the first data read is legal.
			chip.ReadData8()
			checkClean(t, chip)
		})
	}
}

func TestIssueRejectsColumn(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	s := NewSequencer(chip, g)

	err := s.Issue(context.Background(), 0, 0, 16, protocol.ReadOOB)
	var colErr *protocol.ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("Issue() error = %v, want *protocol.ColumnError", err)
	}
	if got := chip.Stats().ReadyPolls; got != 0 {
		t.Errorf("ReadyPolls = %d, want 0", got)
	}
}

func TestSequencerProtocolOverride(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)

	if name := NewSequencer(chip, g).Protocol().Name(); name != "small-page" {
		t.Errorf("Protocol() = %s, want small-page", name)
	}
	if name := NewSequencer(chip, g, WithCommandProtocol(protocol.LargePage{})).Protocol().Name(); name != "large-page" {
		t.Errorf("Protocol() = %s, want large-page", name)
	}
}

func TestRunUnknownCycle(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	s := NewSequencer(chip, g)

	err := s.Run(context.Background(), "test", []protocol.Cycle{{Kind: protocol.CycleKind(9)}})
	if err == nil {
		t.Fatal("Run() accepted an unknown cycle kind")
	}
}
