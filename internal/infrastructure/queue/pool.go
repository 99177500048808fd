package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const defaultWorkers = 8

// Pool fans per-account tasks out to a fixed set of workers using consistent
// hashing on the account ID, guaranteeing per-account task ordering within a
// run.
type Pool struct {
	workers int
	log     zerolog.Logger
}

// NewPool creates a Pool with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Pool{workers: numWorkers, log: log}
}

// Run executes task for every ID and blocks until all workers drain. IDs
// hashing to the same shard run sequentially on one worker. Returns the
// number of tasks that failed or were abandoned on context cancellation.
func (p *Pool) Run(ctx context.Context, ids []string, task func(ctx context.Context, id string) error) int {
	shards := make([][]string, p.workers)
	for _, id := range ids {
		i := shardIndex(id, p.workers)
		shards[i] = append(shards[i], id)
	}

	var failed int64
	var wg sync.WaitGroup
	for workerID, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		wg.Add(1)
		go func(workerID int, shard []string) {
			defer wg.Done()
			for n, id := range shard {
				if ctx.Err() != nil {
					atomic.AddInt64(&failed, int64(len(shard)-n))
					p.log.Warn().Int("worker_id", workerID).Int("abandoned", len(shard)-n).Msg("worker stopped early")
					return
				}
				if err := task(ctx, id); err != nil {
					atomic.AddInt64(&failed, 1)
				}
			}
		}(workerID, shard)
	}
	wg.Wait()

	return int(atomic.LoadInt64(&failed))
}

// shardIndex maps an account ID deterministically to a worker index.
func shardIndex(id string, workers int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % workers
}
