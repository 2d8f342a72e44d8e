package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"inkwell/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs the pool of goroutines that drain the feed stream.
type Manager struct {
	consumer  queue.Consumer
	handler   *Handler
	workers   int
	batchSize int64
	blockTime time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// ManagerConfig tunes the pool. Zero values fall back to defaults.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:  consumer,
		handler:   handler,
		workers:   cfg.WorkerCount,
		batchSize: cfg.BatchSize,
		blockTime: cfg.BlockTimeout,
	}
}

// Start spins up the workers. Stop blocks until they drain.
func (m *Manager) Start(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		return err
	}

	for i := 1; i <= m.workers; i++ {
		name := fmt.Sprintf("worker-%d", i)
		m.wg.Add(1)
		go m.run(ctx, name)
	}

	log.Printf("[Worker] %d workers started on %s/%s", m.workers, queue.StreamFeed, queue.ConsumerGroupFeed)
	return nil
}

func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	log.Printf("[Worker] all workers stopped")
}

func (m *Manager) run(ctx context.Context, name string) {
	defer m.wg.Done()

	// Replay anything delivered to this consumer before a crash.
	m.drainPending(ctx, name)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := m.consumer.Read(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, name, m.batchSize, m.blockTime)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] %s read error: %v", name, err)
			time.Sleep(time.Second)
			continue
		}

		m.handleBatch(ctx, name, messages)
	}
}

func (m *Manager) drainPending(ctx context.Context, name string) {
	for {
		messages, err := m.consumer.ReadPending(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, name, m.batchSize)
		if err != nil {
			log.Printf("[Worker] %s pending read error: %v", name, err)
			return
		}
		if len(messages) == 0 {
			return
		}
		m.handleBatch(ctx, name, messages)
	}
}

func (m *Manager) handleBatch(ctx context.Context, name string, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			// Ack anyway: a failed fan-out leaves a cache stale, not wrong,
			// and the next warm repairs it. Retrying forever would wedge the
			// group on a poison message.
			log.Printf("[Worker] %s handler error msgID=%s: %v", name, msg.ID, err)
		}

		if err := m.consumer.Ack(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, msg.ID); err != nil {
			log.Printf("[Worker] %s ack error msgID=%s: %v", name, msg.ID, err)
		}
	}
}
