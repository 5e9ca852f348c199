// Package progress - Console progress reporting for the export loop.
package progress

import (
	"log"
	"sync"
	"time"
)

// Reporter tracks per-item completion and throughput for a fixed-size
// workload and logs periodic status lines. Thread-safe, though the export
// loop itself is single-threaded per rank.
type Reporter struct {
	mu        sync.Mutex
	target    int
	done      int
	failed    int
	startTime time.Time
	lastLog   time.Time

	// ReportInterval limits how often Step emits a status line (default 1s);
	// the final item is always reported.
	ReportInterval time.Duration
}

// New creates a reporter for a workload of target items.
//
// Arguments:
//   - target: Total number of items expected.
//
// Returns:
//   - *Reporter: A started reporter.
func New(target int) *Reporter {
	return &Reporter{
		target:         target,
		startTime:      time.Now(),
		ReportInterval: time.Second,
	}
}

// Step records one completed item and logs progress at most once per
// ReportInterval.
func (r *Reporter) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.done++
	now := time.Now()
	if r.done < r.target && now.Sub(r.lastLog) < r.ReportInterval {
		return
	}
	r.lastLog = now

	elapsed := now.Sub(r.startTime).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(r.done) / elapsed
	}
	log.Printf("progress: %d/%d images (%.1f img/s)", r.done, r.target, rate)
}

// Fail records one item that was skipped due to a per-image error.
func (r *Reporter) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

// Finish logs the final summary with average per-item time.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.startTime)
	avg := time.Duration(0)
	if r.done > 0 {
		avg = elapsed / time.Duration(r.done)
	}
	if r.failed > 0 {
		log.Printf("finished: %d/%d images in %s (%s/image), %d failed",
			r.done, r.target, elapsed.Round(time.Millisecond), avg.Round(time.Millisecond), r.failed)
		return
	}
	log.Printf("finished: %d/%d images in %s (%s/image)",
		r.done, r.target, elapsed.Round(time.Millisecond), avg.Round(time.Millisecond))
}
