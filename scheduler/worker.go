package scheduler

import (
	"context"
	"time"

	"encore/service"

	log "github.com/sirupsen/logrus"
)

// Worker fires the scheduled stream update on a fixed interval. Each
// firing is an independent orchestrator invocation; overlap with a manual
// trigger or a slow prior run is resolved by the run coordinator's lease,
// not here.
type Worker struct {
	streamUpdates service.StreamUpdateService
	interval      time.Duration
}

// NewWorker creates a new scheduler worker
func NewWorker(streamUpdates service.StreamUpdateService, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{streamUpdates: streamUpdates, interval: interval}
}

// Start begins the worker goroutine and returns a stop function
func (w *Worker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	ticker := time.NewTicker(w.interval)

	go func() {
		defer ticker.Stop()
		log.Infof("Stream update worker started, interval %v", w.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Stream update worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Stream update worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				summary := w.streamUpdates.RunScheduled(ctx)
				if !summary.Success {
					log.Errorf("Scheduled stream update failed: %s", summary.FinalReason)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
