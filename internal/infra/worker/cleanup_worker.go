package worker

import (
	"context"
	"log"
	"time"
)

// Cleaner is anything with periodic housekeeping, like the login rate limiter.
type Cleaner interface {
	Cleanup()
}

// CleanupWorker chama Cleanup a cada tick até o contexto ser cancelado.
type CleanupWorker struct {
	name         string
	target       Cleaner
	tickInterval time.Duration
}

func NewCleanupWorker(name string, target Cleaner, every time.Duration) *CleanupWorker {
	if every <= 0 {
		every = 5 * time.Minute
	}
	return &CleanupWorker{
		name:         name,
		target:       target,
		tickInterval: every,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	log.Printf("[%s] limpeza periódica a cada %s", w.name, w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] encerrado", w.name)
			return
		case <-ticker.C:
			w.target.Cleanup()
		}
	}
}
