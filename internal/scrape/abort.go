package scrape

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
)

// Abort is the shared cancellation flag between the operator-facing
// listeners and the collect loop. It is written once per run and read at
// every iteration boundary; the atomic is the only synchronization needed.
type Abort struct {
	flag atomic.Bool
}

// NewAbort creates an untripped flag.
func NewAbort() *Abort {
	return &Abort{}
}

// Trip sets the flag. Subsequent calls are no-ops.
func (a *Abort) Trip() {
	if a.flag.CompareAndSwap(false, true) {
		log.Info().Msg("Abort requested, finishing current iteration")
	}
}

// Tripped reports whether an abort was requested.
func (a *Abort) Tripped() bool {
	return a.flag.Load()
}

// ListenKeyboard watches r for a line starting with 'q' and trips the flag.
// It runs in its own goroutine and exits after tripping or on EOF; it never
// blocks the collect loop.
func (a *Abort) ListenKeyboard(r io.Reader) {
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if line == "q" || line == "quit" {
				a.Trip()
				return
			}
		}
	}()
}

// ListenSignals trips the flag on SIGINT or SIGTERM so an interrupted run
// still flushes what it collected.
func (a *Abort) ListenSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		a.Trip()
		signal.Stop(sigCh)
	}()
}
