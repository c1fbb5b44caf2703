package worker

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kisanpay/kisanpay/pkg/logger"
)

var ErrWorkersTerminated = errors.New("workers terminated")

// Handler runs one job. workerIndex identifies the goroutine for logging.
type Handler[T any] func(workerIndex int, job T)

// Pool is a fixed set of goroutines reading jobs from one buffered channel.
// Workers stop on Exit or SIGTERM.
type Pool[T any] struct {
	jobs     chan T
	workers  int
	sigTerm  chan os.Signal
	quit     chan struct{}
	quitOnce sync.Once
	do       Handler[T]
	waiter   sync.WaitGroup
}

func NewPool[T any](bufferSize, numberOfWorkers int) *Pool[T] {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)

	return &Pool[T]{
		jobs:    make(chan T, bufferSize),
		workers: numberOfWorkers,
		sigTerm: sigChan,
		quit:    make(chan struct{}),
	}
}

// Backlog is the number of jobs waiting for a worker.
func (p *Pool[T]) Backlog() int {
	return len(p.jobs)
}

func (p *Pool[T]) SetWorker(h Handler[T]) {
	p.do = h
}

// Enqueue blocks until a worker slot frees up in the buffer. It returns false
// once the pool has exited.
func (p *Pool[T]) Enqueue(job T) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case <-p.quit:
		return false
	case p.jobs <- job:
		return true
	}
}

// Start runs the workers and blocks until they are told to stop.
func (p *Pool[T]) Start() error {
	if p.do == nil {
		return errors.New("worker handler is not set")
	}

	go func() {
		select {
		case <-p.sigTerm:
			logger.Info("SIGTERM received, stopping workers")
			p.Exit()
		case <-p.quit:
		}
	}()

	p.waiter.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(index int) {
			defer p.waiter.Done()
			for {
				select {
				case job := <-p.jobs:
					p.do(index, job)
				case <-p.quit:
					return
				}
			}
		}(i)
	}
	p.waiter.Wait()
	signal.Stop(p.sigTerm)

	return ErrWorkersTerminated
}

// Exit stops all workers after their current job. Safe to call more than once.
func (p *Pool[T]) Exit() {
	p.quitOnce.Do(func() {
		logger.Info("worker pool is shutting down", "backlog", len(p.jobs))
		close(p.quit)
	})
}
