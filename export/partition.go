// Package export - The per-shard export pipeline: workload partitioning, the
// per-image processing loop, and artifact persistence.
package export

// Partition splits an ordered list into `workers` contiguous, disjoint
// shards whose concatenation is the original list. Chunk size is
// ceil(N/workers); trailing shards may be shorter or empty when N < workers.
// Deterministic for identical inputs.
//
// Arguments:
//   - items: The ordered input list.
//   - workers: Number of shards, must be >= 1 (validated by the caller).
//
// Returns:
//   - [][]string: Exactly `workers` shards, in order.
func Partition(items []string, workers int) [][]string {
	n := (len(items) + workers - 1) / workers
	shards := make([][]string, workers)
	for i := range shards {
		lo := i * n
		hi := lo + n
		if lo > len(items) {
			lo = len(items)
		}
		if hi > len(items) {
			hi = len(items)
		}
		shards[i] = items[lo:hi]
	}
	return shards
}
