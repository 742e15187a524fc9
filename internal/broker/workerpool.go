package broker

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool drains a SharedState's event queue, applying each event to a
// Store (spec §4.7). Each worker acquires no resource of its own beyond the
// Store handle it is given — all workers share that one Store, which owns
// the connection pool (unlike the original's one-pool-per-thread layout in
// event_queue/worker.rs).
//
// Per spec §9 ("Busy-polling workers"), workers block on EventQueue.Wait
// instead of spinning a dequeue→yield loop, and per §9's graceful-shutdown
// open question, Stop drains whatever remains before returning.
type WorkerPool struct {
	cfg    WorkerPoolConfig
	queue  *EventQueue
	store  Store
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool wires a worker pool over queue, applying events to store.
func NewWorkerPool(cfg WorkerPoolConfig, queue *EventQueue, store Store, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{cfg: cfg, queue: queue, store: store, logger: logger}
}

// Start spawns WorkerCount goroutines and returns immediately. Calling
// Start twice on the same pool is a programmer error.
func (p *WorkerPool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.run(runCtx, i)
	}
	p.logger.Info("worker pool started", "workers", p.cfg.WorkerCount)
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.With("worker", id)

	for {
		e, ok := p.queue.Dequeue()
		if !ok {
			if !p.queue.Wait(ctx) {
				// ctx done: drain whatever is left, then exit.
				p.drain(context.Background(), log)
				return
			}
			continue
		}
		if ctx.Err() != nil {
			// ctx done while events remain: apply them without the
			// cancelled ctx, then exit.
			p.apply(context.Background(), log, e)
			p.drain(context.Background(), log)
			return
		}
		p.apply(ctx, log, e)
	}
}

// drain applies every remaining queued event synchronously. Used during
// shutdown so in-flight persistence work is not lost mid-queue even though
// the worker's own context has been cancelled.
func (p *WorkerPool) drain(ctx context.Context, log *slog.Logger) {
	for {
		e, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		p.apply(ctx, log, e)
	}
}

// apply performs one event's Store mutation. Failure handling per spec
// §4.7/§4.8: log and discard. No retry, no dead-letter, no halt.
func (p *WorkerPool) apply(ctx context.Context, log *slog.Logger, e Event) {
	if err := e.Apply(ctx, p.store); err != nil {
		log.Error("persistence event failed", "event", eventName(e), "error", err)
	}
}

// Stop signals every worker to finish draining the queue and exit, then
// blocks until they have all returned or ctx is done.
func (p *WorkerPool) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.queue.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// eventName returns a short tag for logging without reflection.
func eventName(e Event) string {
	switch e.(type) {
	case CreateMessageTopicEvent:
		return "create_message_topic"
	case DeleteMessageTopicEvent:
		return "delete_message_topic"
	case PublishMessageTopicEvent:
		return "publish_message_topic"
	case ResetIndexMessageTopicEvent:
		return "reset_index_message_topic"
	case AddPublisherMessageTopicEvent:
		return "add_publisher_message_topic"
	case RemovePublisherMessageTopicEvent:
		return "remove_publisher_message_topic"
	case AddSubscriberMessageTopicEvent:
		return "add_subscriber_message_topic"
	case RemoveSubscriberMessageTopicEvent:
		return "remove_subscriber_message_topic"
	case FetchDataMessageTopicEvent:
		return "fetch_data_message_topic"
	case CreateTaskTopicEvent:
		return "create_task_topic"
	case DeleteTaskTopicEvent:
		return "delete_task_topic"
	case PublishTaskTopicEvent:
		return "publish_task_topic"
	case AddPublisherTaskTopicEvent:
		return "add_publisher_task_topic"
	case RemovePublisherTaskTopicEvent:
		return "remove_publisher_task_topic"
	case AddSubscriberTaskTopicEvent:
		return "add_subscriber_task_topic"
	case RemoveSubscriberTaskTopicEvent:
		return "remove_subscriber_task_topic"
	default:
		return "unknown"
	}
}
