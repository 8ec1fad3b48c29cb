package spl

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/protocol"
)

// BootTargets is the memory Boot loads into.
type BootTargets struct {
	// Image receives the firmware image
	Image []byte

	// Env receives the environment, followed by the redundant
	// environment when the board has one
	Env []byte
}

// BootReport summarizes a Boot.
type BootReport struct {
	// Image is the report of the firmware image load
	Image *Report

	// Env and EnvRedund are the reports of the environment loads, nil when
	// the board has no such image or the load failed
	Env       *Report
	EnvRedund *Report

	// EnvErr is the first environment load error. Environment failures do
	// not fail the boot.
	EnvErr error

	// Elapsed is the duration of the boot
	Elapsed time.Duration
}

// Boot performs the SPL boot sequence for board:
//  1. Optionally reset the chip (WithResetOnBoot)
//  2. Load the "image" region into t.Image; an error here fails the boot
//  3. Load the "env" region into t.Env and the "env-redund" region right
//     behind it; errors are logged and kept in BootReport.EnvErr
//
// Example:
//
//	board, _ := geometry.Parse("board.yaml")
//	report, err := loader.Boot(ctx, board, spl.BootTargets{
//	    Image: make([]byte, 512<<10),
//	    Env:   make([]byte, 32<<10),
//	})
func (l *Loader) Boot(ctx context.Context, board *geometry.Board, t BootTargets) (*BootReport, error) {
	if board == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	image, ok := board.Find(geometry.KindImage)
	if !ok {
		return nil, fmt.Errorf("no %q region in boot layout", geometry.KindImage)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	startTime := time.Now()
	report := &BootReport{}
	defer func() { report.Elapsed = time.Since(startTime) }()

	if l.config.ResetOnBoot {
		l.reportProgress(Progress{Phase: PhaseReset})
		if err := l.reset(ctx); err != nil {
			return report, fmt.Errorf("reset: %w", err)
		}
	}

	r, err := l.load(ctx, PhaseLoading, int64(image.Offset), int(image.Size), t.Image)
	report.Image = r
	if err != nil {
		return report, fmt.Errorf("load %s: %w", image.Name, err)
	}

	if env, ok := board.Find(geometry.KindEnv); ok {
		report.Env, report.EnvErr = l.loadEnv(ctx, env, t.Env)
		if redund, ok := board.Find(geometry.KindEnvRedund); ok {
			var dst []byte
			if len(t.Env) > int(env.Size) {
				dst = t.Env[env.Size:]
			}
			r, err := l.loadEnv(ctx, redund, dst)
			report.EnvRedund = r
			if report.EnvErr == nil {
				report.EnvErr = err
			}
		}
	}

	l.reportProgress(Progress{
		Phase:       PhaseComplete,
		PagesRead:   report.Image.PagesRead,
		TotalPages:  report.Image.PagesRead,
		BytesRead:   report.Image.BytesRead,
		BadBlocks:   len(report.Image.BadBlocks),
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})
	return report, nil
}

func (l *Loader) loadEnv(ctx context.Context, env geometry.Image, dst []byte) (*Report, error) {
	r, err := l.load(ctx, PhaseEnvironment, int64(env.Offset), int(env.Size), dst)
	if err != nil {
		l.logError("environment load failed", "name", env.Name, "error", err)
		return nil, fmt.Errorf("load %s: %w", env.Name, err)
	}
	return r, nil
}

// Reset issues the RESET command and waits for the chip to go idle.
func (l *Loader) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.reset(ctx)
}

func (l *Loader) reset(ctx context.Context) error {
	if err := l.seq.Run(ctx, "reset", protocol.ResetCycles()); err != nil {
		return err
	}
	l.logDebug("chip reset")
	return nil
}

// ReadID issues READ ID and returns the first n identification bytes
// (protocol.IDLength when n is not positive).
//
// Example:
//
//	id, err := loader.ReadID(ctx, 0)
//	fmt.Printf("%s\n", id) // Samsung (0xEC) device 0xF1
func (l *Loader) ReadID(ctx context.Context, n int) (*protocol.ChipID, error) {
	if n <= 0 {
		n = protocol.IDLength
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.seq.waitReady(ctx, "read id"); err != nil {
		return nil, err
	}
	if err := l.seq.Run(ctx, "read id", protocol.ReadIDCycles()); err != nil {
		return nil, err
	}

	raw := make([]byte, n)
	for i := range raw {
		raw[i] = l.ctrl.ReadData8()
	}
	id, err := protocol.ParseID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}

	l.logDebug("read id", "maker", id.MakerName(), "device", fmt.Sprintf("0x%02X", id.Device))
	return id, nil
}

// Status issues READ STATUS and returns the status byte.
// The chip may be busy; the ready bit reports it.
func (l *Loader) Status(ctx context.Context) (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.seq.Run(ctx, "status", protocol.StatusCycles()); err != nil {
		return 0, err
	}
	return l.ctrl.ReadData8(), nil
}
