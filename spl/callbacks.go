package spl

import (
	"time"

	"github.com/moffa90/go-nandspl/ecc"
)

// Load phases reported through Progress.
const (
	PhaseReset       = "reset"
	PhaseLoading     = "loading"
	PhaseEnvironment = "environment"
	PhaseComplete    = "complete"
)

// Progress contains information about a running load.
// Passed to ProgressCallback after every page.
type Progress struct {
	// Phase describes the current operation phase:
	//   "reset"       - Resetting the chip before a boot
	//   "loading"     - Reading pages of an image
	//   "environment" - Reading the environment images of a boot
	//   "complete"    - The image has been delivered
	Phase string

	// Block and Page locate the page just read
	Block int
	Page  int

	// PagesRead is the number of pages read so far
	PagesRead int

	// TotalPages is the number of pages the image spans
	TotalPages int

	// BytesRead is the number of image bytes delivered so far
	BytesRead int

	// BadBlocks is the number of bad blocks skipped so far
	BadBlocks int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the load started
	ElapsedTime time.Duration
}

// ProgressCallback is called after each page to report progress.
// Implementations should return quickly to avoid slowing the load.
//
// Example:
//
//	loader, _ := spl.New(ctrl, geom,
//	    spl.WithProgressCallback(func(p spl.Progress) {
//	        fmt.Printf("[%s] %.1f%% - block %d page %d\n",
//	            p.Phase, p.Percentage, p.Block, p.Page)
//	    }),
//	)
type ProgressCallback func(Progress)

// ECCEvent describes one ECC step that needed attention: either bits were
// corrected or the step was uncorrectable.
type ECCEvent struct {
	Block  int
	Page   int
	Step   int
	Result ecc.Result
}

// ECCObserver is called for every corrected or uncorrectable ECC step.
type ECCObserver func(ECCEvent)

// Logger is an optional logging interface that can be provided to the loader.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	loader, _ := spl.New(ctrl, geom, spl.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
