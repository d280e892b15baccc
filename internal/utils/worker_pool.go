package utils

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool runs submitted jobs on a fixed set of goroutines, each draining its
// own queue. Jobs submitted under the same key run on one worker in submission order.
// Event delivery to the broker runs on it.
type WorkerPool struct {
	queues []chan func()
	logger *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

func NewWorkerPool(workerNum, queueSize int, logger *zap.Logger) *WorkerPool {
	workerNum = max(workerNum, 1)
	queues := make([]chan func(), workerNum)
	for i := range queues {
		queues[i] = make(chan func(), queueSize)
	}
	return &WorkerPool{queues: queues, logger: logger}
}

func (p *WorkerPool) Start() {
	for i, queue := range p.queues {
		p.wg.Go(func() {
			for job := range queue {
				p.run(i, job)
			}
		})
	}
	p.logger.Info("worker pool started", zap.Int("workers", len(p.queues)))
}

func (p *WorkerPool) run(workerID int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()
	job()
}

// Submit queues job on the worker owning key without blocking. It reports false
// when that worker's queue is full or the pool has been stopped.
func (p *WorkerPool) Submit(key int64, job func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.queues[uint64(key)%uint64(len(p.queues))] <- job:
		return true
	default:
		return false
	}
}

// Stop refuses new jobs, drains the queues and waits for the workers to exit.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, queue := range p.queues {
		close(queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
