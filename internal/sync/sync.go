package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Destination is the interface for a sync target.
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic syncs to one or more destinations. A destination
// is skipped when it already holds the current teams and members at the
// same target.
type Scheduler struct {
	source       Source
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	// written maps destination index to the digest and target of its last
	// successful write. Only the run goroutine touches it.
	written map[int]string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from src to the given
// destinations at the specified interval.
func NewScheduler(src Source, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:       src,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		written:      make(map[int]string),
	}
}

// Start begins periodic sync. It runs an initial sync immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Scheduler) syncOnce(ctx context.Context) {
	var buf bytes.Buffer
	summary, err := ExportJSONL(ctx, s.source, &buf)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	data := buf.Bytes()

	var failed, skipped int
	for i, dest := range s.destinations {
		mark := summary.Digest + " " + destinationTarget(i, dest)
		if s.written[i] == mark {
			skipped++
			continue
		}
		if err := dest.Write(ctx, data); err != nil {
			failed++
			s.logger.Error("sync destination write failed", "destination", destinationTarget(i, dest), "err", err)
			continue
		}
		s.written[i] = mark
	}

	if skipped == len(s.destinations) {
		s.logger.Debug("sync skipped, members unchanged", "teams", summary.Teams, "members", summary.Members)
		return
	}
	s.logger.Info("sync completed",
		"teams", summary.Teams,
		"members", summary.Members,
		"destinations", len(s.destinations),
		"skipped", skipped,
		"failed", failed,
		"bytes", len(data))
}

// Targeter is implemented by destinations whose write location can change
// between syncs, such as dated object keys.
type Targeter interface {
	Target() string
}

func destinationTarget(i int, d Destination) string {
	if t, ok := d.(Targeter); ok {
		return t.Target()
	}
	return fmt.Sprintf("#%d", i)
}
