package spl

//go:generate mockgen -write_package_comment=false -package spl -destination mock_controller_test.go github.com/moffa90/go-nandspl/protocol Controller

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-nandspl/ecc"
	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/nandsim"
	"github.com/moffa90/go-nandspl/protocol"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func newChip(t *testing.T, g *geometry.Geometry, opts ...nandsim.Option) *nandsim.Chip {
	t.Helper()
	chip, err := nandsim.New(g, opts...)
	if err != nil {
		t.Fatalf("nandsim.New() error: %v", err)
	}
	return chip
}

func newLoader(t *testing.T, ctrl protocol.Controller, g *geometry.Geometry, opts ...Option) *Loader {
	t.Helper()
	l, err := New(ctrl, g, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return l
}

func pattern(seed int64, n int) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func writeImage(t *testing.T, chip *nandsim.Chip, offset int64, img []byte) {
	t.Helper()
	if _, err := chip.WriteImage(offset, img); err != nil {
		t.Fatalf("WriteImage() error: %v", err)
	}
}

func checkClean(t *testing.T, chip *nandsim.Chip) {
	t.Helper()
	if v := chip.Violations(); len(v) != 0 {
		t.Errorf("protocol violations: %v", v)
	}
}

// bchLargePage is a 2048+64 byte page device with 4-bit BCH over 512 byte
// steps at the end of the OOB area.
func bchLargePage(blocks int) *geometry.Geometry {
	g := geometry.LargePage(blocks)
	g.ECC = geometry.ECCLayout{
		Scheme:   geometry.SchemeBCH,
		StepSize: 512,
		Bytes:    7,
		Strength: 4,
	}
	for i := 0; i < 28; i++ {
		g.ECC.Positions = append(g.ECC.Positions, 36+i)
	}
	return g
}

func TestNew(t *testing.T) {
	chip := newChip(t, geometry.SmallPage(8))
	hamming512, _ := ecc.NewHamming(512)

	tests := []struct {
		name    string
		geom    *geometry.Geometry
		options []Option
		wantErr bool
		errMsg  string
	}{
		{
			name: "with no options",
			geom: geometry.SmallPage(8),
		},
		{
			name: "with all options",
			geom: geometry.SmallPage(8),
			options: []Option{
				WithLogger(&MockLogger{}),
				WithProgressCallback(func(Progress) {}),
				WithReadyPolls(100),
				WithReadyInterval(0),
				WithRetries(3),
				WithStrictECC(true),
				WithECCObserver(func(ECCEvent) {}),
				WithCommandProtocol(protocol.SmallPage{}),
				WithResetOnBoot(true),
			},
		},
		{
			name:    "nil geometry",
			wantErr: true,
			errMsg:  "geometry cannot be nil",
		},
		{
			name:    "invalid geometry",
			geom:    &geometry.Geometry{PageSize: 500},
			wantErr: true,
			errMsg:  "invalid geometry",
		},
		{
			name:    "scheme does not match layout",
			geom:    geometry.SmallPage(8),
			options: []Option{WithScheme(hamming512)},
			wantErr: true,
			errMsg:  "does not match layout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(chip, tt.geom, tt.options...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("New() error = %q, want containing %q", err, tt.errMsg)
				}
				return
			}
			if l.Geometry() == tt.geom {
				t.Error("New() kept the caller's geometry instead of a copy")
			}
			if l.Scheme().Name() != "hamming-256" {
				t.Errorf("Scheme() = %s, want hamming-256", l.Scheme().Name())
			}
		})
	}
}

func TestNewPanicsOnNilController(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil, geometry.SmallPage(8))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.ReadyPolls != 10000 {
		t.Errorf("ReadyPolls = %d, want 10000", cfg.ReadyPolls)
	}
	if cfg.Retries != 1 {
		t.Errorf("Retries = %d, want 1", cfg.Retries)
	}
	if cfg.StrictECC {
		t.Error("StrictECC should default to false")
	}

	// Out of range values keep the defaults.
	for _, opt := range []Option{WithReadyPolls(0), WithRetries(-1), WithReadyInterval(-1)} {
		opt(&cfg)
	}
	if cfg.ReadyPolls != 10000 || cfg.Retries != 1 || cfg.ReadyInterval != 0 {
		t.Errorf("invalid options changed config: %+v", cfg)
	}
}

// One good block of known data is delivered unchanged.
func TestLoadSingleBlock(t *testing.T) {
	g := geometry.SmallPage(64)
	chip := newChip(t, g)
	img := pattern(1, 16384)
	writeImage(t, chip, 0, img)

	l := newLoader(t, chip, g)
	dest := make([]byte, len(img))
	report, err := l.Load(context.Background(), 0, len(img), dest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	if report.PagesRead != 32 {
		t.Errorf("PagesRead = %d, want 32", report.PagesRead)
	}
	if report.CorrectedBits != 0 || report.UncorrectableSteps != 0 {
		t.Errorf("report shows ECC activity on clean data: %+v", report)
	}
	// One marker check plus 32 page loads.
	if got := chip.Stats().PageLoads; got != 33 {
		t.Errorf("PageLoads = %d, want 33", got)
	}
	checkClean(t, chip)
}

func TestLoadSkipsBadBlock(t *testing.T) {
	g := geometry.SmallPage(64)
	chip := newChip(t, g)
	if err := chip.MarkBad(0); err != nil {
		t.Fatal(err)
	}
	img := pattern(2, 16384)
	writeImage(t, chip, 0, img)

	l := newLoader(t, chip, g)
	dest := make([]byte, len(img))
	report, err := l.Load(context.Background(), 0, len(img), dest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	want := &Report{
		FirstBlock: 0,
		LastBlock:  1,
		BadBlocks:  []int{0},
		PagesRead:  32,
		BytesRead:  16384,
	}
	if diff := cmp.Diff(want, report, cmpReport); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	checkClean(t, chip)
}

// Bad blocks contribute no bytes: the same image loads identically whether
// or not a block inside the window is bad.
func TestLoadBadBlockTransparency(t *testing.T) {
	g := geometry.SmallPage(16)
	img := pattern(3, 3*g.BlockSize()+700)

	for bad := 0; bad < 4; bad++ {
		chip := newChip(t, g)
		if err := chip.MarkBad(bad); err != nil {
			t.Fatal(err)
		}
		writeImage(t, chip, 0, img)

		l := newLoader(t, chip, g)
		dest := make([]byte, len(img))
		report, err := l.Load(context.Background(), 0, len(img), dest)
		if err != nil {
			t.Fatalf("bad block %d: Load() error: %v", bad, err)
		}
		if diff := cmp.Diff(img, dest); diff != "" {
			t.Errorf("bad block %d: dest mismatch (-want +got):\n%s", bad, diff)
		}
		if report.LastBlock != 4 {
			t.Errorf("bad block %d: LastBlock = %d, want 4", bad, report.LastBlock)
		}
		checkClean(t, chip)
	}
}

func TestLoadBoundaries(t *testing.T) {
	small := geometry.SmallPage(16)
	blockSize := small.BlockSize()

	tests := []struct {
		name   string
		offset int64
		length int
		bad    []int
		pages  int
	}{
		{"exactly one block boundary", 0, 2 * blockSize, nil, 64},
		{"mid-block offset", int64(blockSize + 5*512), 40 * 512, nil, 40},
		{"trailing partial page", int64(blockSize), 3*512 + 100, nil, 4},
		{"short image in bad first block", 0, 100, []int{0}, 1},
		{"mid-block offset over bad block", int64(blockSize + 30*512), 10 * 512, []int{2}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := newChip(t, small)
			for _, b := range tt.bad {
				if err := chip.MarkBad(b); err != nil {
					t.Fatal(err)
				}
			}
			img := pattern(int64(tt.length), tt.length)
			writeImage(t, chip, tt.offset, img)

			l := newLoader(t, chip, small)
			dest := make([]byte, tt.length+64)
			for i := range dest {
				dest[i] = 0xA5
			}
			report, err := l.Load(context.Background(), tt.offset, tt.length, dest)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if diff := cmp.Diff(img, dest[:tt.length]); diff != "" {
				t.Errorf("dest mismatch (-want +got):\n%s", diff)
			}
			for i, b := range dest[tt.length:] {
				if b != 0xA5 {
					t.Fatalf("byte %d past length overwritten", tt.length+i)
				}
			}
			if report.PagesRead != tt.pages {
				t.Errorf("PagesRead = %d, want %d", report.PagesRead, tt.pages)
			}
			if report.BytesRead != tt.length {
				t.Errorf("BytesRead = %d, want %d", report.BytesRead, tt.length)
			}
			if diff := cmp.Diff(tt.bad, report.BadBlocks); diff != "" {
				t.Errorf("BadBlocks mismatch (-want +got):\n%s", diff)
			}
			checkClean(t, chip)
		})
	}
}

func TestLoadFirstAndLastBlockBad(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	for _, b := range []int{0, 7} {
		if err := chip.MarkBad(b); err != nil {
			t.Fatal(err)
		}
	}
	img := pattern(4, 6*g.BlockSize())
	writeImage(t, chip, 0, img)

	l := newLoader(t, chip, g)
	dest := make([]byte, 7*g.BlockSize())

	report, err := l.Load(context.Background(), 0, len(img), dest)
	if err != nil {
		t.Fatalf("Load() of six blocks error: %v", err)
	}
	if diff := cmp.Diff(img, dest[:len(img)]); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	if report.LastBlock != 6 {
		t.Errorf("LastBlock = %d, want 6", report.LastBlock)
	}

	// Seven blocks need block 7 as well, which is bad and the last one.
	_, err = l.Load(context.Background(), 0, 7*g.BlockSize(), dest)
	var rangeErr *OutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Load() error = %v, want *OutOfRangeError", err)
	}
	if rangeErr.Block != 8 || rangeErr.Blocks != 8 {
		t.Errorf("OutOfRangeError = %+v, want block 8 of 8", rangeErr)
	}
	if !errors.Is(err, ErrBadGeometry) {
		t.Error("OutOfRangeError does not match ErrBadGeometry")
	}
	checkClean(t, chip)
}

func TestLoadRejectsBadRequests(t *testing.T) {
	g := geometry.SmallPage(8)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: a rejected request must not touch the bus.
	m := NewMockController(ctrl)
	l := newLoader(t, m, g)

	tests := []struct {
		name   string
		offset int64
		length int
		dest   int
		errMsg string
	}{
		{"zero length", 0, 0, 16, "length must be positive"},
		{"negative offset", -512, 512, 512, "offset is negative"},
		{"unaligned offset", 100, 512, 512, "not aligned"},
		{"past device end", g.Size() - 512, 1024, 1024, "runs past the end"},
		{"short destination", 0, 1024, 512, "destination holds only 512 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(context.Background(), tt.offset, tt.length, make([]byte, tt.dest))
			var geomErr *GeometryError
			if !errors.As(err, &geomErr) {
				t.Fatalf("Load() error = %v, want *GeometryError", err)
			}
			if !errors.Is(err, ErrBadGeometry) {
				t.Error("error does not match ErrBadGeometry")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Load() error = %q, want containing %q", err, tt.errMsg)
			}
		})
	}
}

// A chip that never goes ready fails the load without a single data read.
func TestLoadDeviceNeverReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := NewMockController(ctrl)
	// Five polls per attempt, one attempt plus one re-issue.
	m.EXPECT().DeviceReady().Return(false).Times(10)

	l := newLoader(t, m, geometry.SmallPage(8), WithReadyPolls(5))
	_, err := l.Load(context.Background(), 0, 512, make([]byte, 512))
	if !errors.Is(err, protocol.ErrDeviceNotReady) {
		t.Fatalf("Load() error = %v, want ErrDeviceNotReady", err)
	}
	var nr *protocol.NotReadyError
	if !errors.As(err, &nr) || nr.Polls != 5 {
		t.Errorf("NotReadyError = %+v, want 5 polls", nr)
	}
}

func TestLoadNeverReadySimulated(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	chip.SetNeverReady(true)

	l := newLoader(t, chip, g, WithReadyPolls(3), WithRetries(0))
	_, err := l.Load(context.Background(), 0, 512, make([]byte, 512))
	if !protocol.IsNotReady(err) {
		t.Fatalf("Load() error = %v, want not ready", err)
	}
	if got := chip.Stats().DataReads; got != 0 {
		t.Errorf("DataReads = %d, want 0", got)
	}
	if got := chip.Stats().ReadyPolls; got != 3 {
		t.Errorf("ReadyPolls = %d, want 3", got)
	}
}

func TestLoadRetriesAfterNotReady(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	img := pattern(5, 512)
	writeImage(t, chip, 0, img)

	// R/B# stuck low for the first six polls, then working.
	polls := 0
	ready := protocol.ReadyFunc(func() bool {
		polls++
		return polls > 6 && chip.DeviceReady()
	})

	logger := &MockLogger{}
	l := newLoader(t, protocol.Compose(chip, ready), g,
		WithReadyPolls(4), WithRetries(2), WithLogger(logger))
	dest := make([]byte, len(img))
	if _, err := l.Load(context.Background(), 0, len(img), dest); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	if !contains(logger.debugMsgs, "re-issuing command") {
		t.Errorf("debug log %v lacks the re-issue", logger.debugMsgs)
	}
	checkClean(t, chip)
}

func TestLoadCancelled(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	l := newLoader(t, chip, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, 0, 512, make([]byte, 512))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
	if got := chip.Stats().Commands; got != 0 {
		t.Errorf("Commands = %d, want 0", got)
	}
}

func TestLoadProgressAndLogging(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	if err := chip.MarkBad(1); err != nil {
		t.Fatal(err)
	}
	img := pattern(6, 40*512)
	writeImage(t, chip, int64(g.BlockSize()), img)

	var updates []Progress
	logger := &MockLogger{}
	l := newLoader(t, chip, g,
		WithLogger(logger),
		WithProgressCallback(func(p Progress) { updates = append(updates, p) }),
	)

	dest := make([]byte, len(img))
	if _, err := l.Load(context.Background(), int64(g.BlockSize()), len(img), dest); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(updates) != 40 {
		t.Fatalf("got %d progress updates, want 40", len(updates))
	}
	first, last := updates[0], updates[len(updates)-1]
	if first.Phase != PhaseLoading || first.Block != 2 || first.Page != 0 || first.BadBlocks != 1 {
		t.Errorf("first update = %+v", first)
	}
	if last.Block != 3 || last.Page != 7 || last.Percentage != 100 || last.BytesRead != len(img) {
		t.Errorf("last update = %+v", last)
	}
	if !contains(logger.infoMsgs, "skipping bad block") || !contains(logger.infoMsgs, "load complete") {
		t.Errorf("info log = %v", logger.infoMsgs)
	}
}

func TestLoadWideBus(t *testing.T) {
	g := geometry.LargePage(8)
	g.BusWidth = geometry.BusWidth16
	chip := newChip(t, g)
	if err := chip.MarkBad(2); err != nil {
		t.Fatal(err)
	}
	img := pattern(7, 2*g.BlockSize()+2048)
	writeImage(t, chip, int64(g.BlockSize()), img)

	l := newLoader(t, chip, g)
	dest := make([]byte, len(img))
	report, err := l.Load(context.Background(), int64(g.BlockSize()), len(img), dest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, report.BadBlocks); diff != "" {
		t.Errorf("BadBlocks mismatch (-want +got):\n%s", diff)
	}
	checkClean(t, chip)
}

func TestLoadLargePageFiveCycles(t *testing.T) {
	g := geometry.LargePage(8)
	g.AddressCycles = 5
	chip := newChip(t, g, nandsim.WithTrace())
	img := pattern(8, 2048)
	writeImage(t, chip, 2*int64(g.BlockSize()), img)

	l := newLoader(t, chip, g)
	dest := make([]byte, len(img))
	if _, err := l.Load(context.Background(), 2*int64(g.BlockSize()), len(img), dest); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}

	cmd := func(v byte) protocol.Cycle { return protocol.Cycle{Kind: protocol.CycleCommand, Value: v} }
	addr := func(v byte) protocol.Cycle { return protocol.Cycle{Kind: protocol.CycleAddress, Value: v} }
	want := []protocol.Cycle{
		// marker of block 2 (row 128), column 2048
		cmd(protocol.CmdRead0), addr(0x00), addr(0x08), addr(0x80), addr(0x00), addr(0x00), cmd(protocol.CmdReadStart),
		// page 0 of block 2
		cmd(protocol.CmdRead0), addr(0x00), addr(0x00), addr(0x80), addr(0x00), addr(0x00), cmd(protocol.CmdReadStart),
	}
	if diff := cmp.Diff(want, chip.Trace()); diff != "" {
		t.Errorf("cycle trace mismatch (-want +got):\n%s", diff)
	}
	checkClean(t, chip)
}

func TestLoadBCH(t *testing.T) {
	g := bchLargePage(8)
	chip := newChip(t, g)
	img := pattern(9, 3*2048)
	writeImage(t, chip, 0, img)

	// Four flips in one step are within strength.
	for _, off := range []int{600, 700, 800, 1000} {
		if err := chip.FlipBit(0, 1, off, off%8); err != nil {
			t.Fatal(err)
		}
	}

	l := newLoader(t, chip, g)
	if l.Scheme().Name() != "bch4-512" {
		t.Errorf("Scheme() = %s, want bch4-512", l.Scheme().Name())
	}
	dest := make([]byte, len(img))
	report, err := l.Load(context.Background(), 0, len(img), dest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	if report.CorrectedBits != 4 {
		t.Errorf("CorrectedBits = %d, want 4", report.CorrectedBits)
	}
	checkClean(t, chip)
}

func TestLoadBufferedController(t *testing.T) {
	g := geometry.SmallPage(8)
	chip := newChip(t, g)
	img := pattern(10, 3*512)
	writeImage(t, chip, 0, img)

	l := newLoader(t, chip.Buffered(), g)
	dest := make([]byte, len(img))
	if _, err := l.Load(context.Background(), 0, len(img), dest); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(img, dest); diff != "" {
		t.Errorf("dest mismatch (-want +got):\n%s", diff)
	}
	checkClean(t, chip)
}

var cmpReport = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Elapsed"
}, cmp.Ignore())

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
