package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JobProcessor runs one round of background work.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval until stopped.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	logger       zerolog.Logger
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		logger:       logger.With().Str("worker", name).Logger(),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop. It blocks until ctx is cancelled or Stop is
// called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.logger.Debug().Dur("interval", w.pollInterval).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.logger.Debug().Msg("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				w.logger.Warn().Err(err).Msg("error processing jobs")
			}
		}
	}
}

// Stop signals the loop and waits for it to exit. Start must have been
// called.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
