package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirechat-room/internal/store"
)

const (
	persistQueueSize = 64
	persistTimeout   = 5 * time.Second
)

type persistJob struct {
	what string
	run  func(ctx context.Context) error
}

// cacheWriter runs durable-store writes on its own goroutine. The cache is
// best effort: failures are logged and a full queue drops the job.
type cacheWriter struct {
	log   *zerolog.Logger
	queue chan persistJob
	done  chan struct{}
	once  sync.Once
}

func newCacheWriter(logger *zerolog.Logger) *cacheWriter {
	w := &cacheWriter{
		log:   logger,
		queue: make(chan persistJob, persistQueueSize),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *cacheWriter) run() {
	defer close(w.done)
	for job := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := job.run(ctx); err != nil {
			w.log.Warn().Err(err).Str("code", ErrCodePersistence).Str("job", job.what).Msg("chat cache write failed")
		}
		cancel()
	}
}

func (w *cacheWriter) enqueue(job persistJob) {
	select {
	case w.queue <- job:
	default:
		w.log.Warn().Str("code", ErrCodePersistence).Str("job", job.what).Msg("chat cache queue full, dropping write")
	}
}

// close waits for queued jobs to finish.
func (w *cacheWriter) close() {
	w.once.Do(func() {
		close(w.queue)
		<-w.done
	})
}

type historyResult struct {
	seq     int
	roomID  string
	records []store.ChatRecord
	err     error
}
