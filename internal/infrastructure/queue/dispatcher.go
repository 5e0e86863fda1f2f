package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jobportal/account-service/internal/api/metrics"
	"github.com/jobportal/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type cleanupJob struct {
	key string
	url string
}

// Dispatcher deletes orphaned and superseded assets in the background. Jobs
// are routed to a fixed set of workers by hashing their key, so deletions for
// one account run in the order they were enqueued.
type Dispatcher struct {
	workers []chan cleanupJob
	assets  ports.AssetStore
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, assets ports.AssetStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan cleanupJob, numWorkers),
		assets:  assets,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return d
}

// Run launches all workers and blocks until ctx is cancelled and every
// worker has returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
	wg.Wait()
	return nil
}

// Enqueue schedules url for deletion on the worker responsible for key.
// It never blocks the caller: when the worker channel is full the job is
// dropped and the object is left behind.
func (d *Dispatcher) Enqueue(key, url string) {
	if url == "" {
		return
	}
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- cleanupJob{key: key, url: url}:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.CleanupTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("url", url).Int("worker_id", idx).Msg("cleanup queue full, asset left in place")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	depth := metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-ch:
			depth.Dec()
			if err := d.assets.Delete(ctx, job.url); err != nil {
				metrics.CleanupTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("url", job.url).
					Int("worker_id", id).
					Msg("asset cleanup failed")
				continue
			}
			metrics.CleanupTotal.WithLabelValues("deleted").Inc()
			d.log.Debug().Str("url", job.url).Msg("asset deleted")
		}
	}
}
