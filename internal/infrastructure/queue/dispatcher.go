package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/feedr/routing-api/internal/api/metrics"
	"github.com/feedr/routing-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes ETA refresh jobs to a fixed set of workers using
// consistent hashing on the order identifier, guaranteeing that refreshes
// for the same order are applied in the sequence they were enqueued.
type Dispatcher struct {
	workers []chan ports.ETARefreshJob
	service ports.RoutingService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.RoutingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ETARefreshJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ETARefreshJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its order.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.ETARefreshJob) {
	i := d.shardIndex(job.OrderID)
	d.workers[i] <- job
	metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// EnqueueBatch enqueues multiple jobs preserving per-order ordering.
func (d *Dispatcher) EnqueueBatch(jobs []ports.ETARefreshJob) {
	for _, j := range jobs {
		d.Enqueue(j)
	}
}

// shardIndex maps an order identifier deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ETARefreshJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			d.refresh(ctx, id, job)
		}
	}
}

func (d *Dispatcher) refresh(ctx context.Context, workerID int, job ports.ETARefreshJob) {
	eta, err := d.service.CalculateOrderETA(ctx, job.OrderID, job.DriverLocation)
	if err != nil {
		d.log.Error().Err(err).
			Str("order_id", job.OrderID).
			Int("worker_id", workerID).
			Msg("eta refresh failed")
		return
	}
	if err := d.service.UpdateOrderETA(ctx, job.OrderID, eta.ETA); err != nil {
		d.log.Error().Err(err).
			Str("order_id", job.OrderID).
			Int("worker_id", workerID).
			Msg("eta persist failed")
		return
	}
	metrics.ETAsPersistedTotal.Inc()
}
