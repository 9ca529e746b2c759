// Package queue buffers finished turns for the persistence pipeline. The
// orchestrator enqueues fire-and-forget; workers drain items into the store.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("message queue is full")

// Item is one accepted inbound turn. CallSpecialist and CloseTicket are the
// downstream ticketing flags set by the orchestrator.
type Item struct {
	ID             string
	Platform       string
	UserID         string
	Text           string
	CallSpecialist bool
	CloseTicket    bool
	Raw            json.RawMessage
	ReceivedAt     time.Time
}

// Sink persists a drained item. The sqlite store implements this.
type Sink interface {
	Persist(ctx context.Context, item Item) error
}

type Queue struct {
	workers   int
	items     chan Item
	sink      Sink
	logger    *slog.Logger
	startOnce sync.Once
}

func New(workers int, sink Sink, logger *slog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		workers: workers,
		items:   make(chan Item, workers*50),
		sink:    sink,
		logger:  logger,
	}
}

// Start runs the drain workers until the context is cancelled.
func (q *Queue) Start(ctx context.Context) error {
	var workers sync.WaitGroup
	q.startOnce.Do(func() {
		for index := 0; index < q.workers; index++ {
			workers.Add(1)
			go func(workerID int) {
				defer workers.Done()
				q.worker(ctx, workerID)
			}(index + 1)
		}
	})

	<-ctx.Done()
	workers.Wait()
	return nil
}

// Enqueue admits an item without blocking. A full queue returns ErrQueueFull;
// the caller logs and moves on, a turn never waits on persistence.
func (q *Queue) Enqueue(item Item) (Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ReceivedAt.IsZero() {
		item.ReceivedAt = time.Now().UTC()
	}

	select {
	case q.items <- item:
		q.logger.Debug("item queued", "item_id", item.ID, "platform", item.Platform, "user_id", item.UserID)
		return item, nil
	default:
		return Item{}, ErrQueueFull
	}
}

func (q *Queue) worker(ctx context.Context, workerID int) {
	q.logger.Info("queue worker started", "worker_id", workerID)
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("queue worker stopped", "worker_id", workerID)
			return
		case item := <-q.items:
			if err := q.sink.Persist(ctx, item); err != nil {
				q.logger.Error("persist failed", "item_id", item.ID, "platform", item.Platform, "error", err)
			}
		}
	}
}
