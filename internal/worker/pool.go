// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs per-project update jobs concurrently, guarded by
// filesystem lock files so that overlapping scheduled runs never update
// the same project twice.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Summary holds counts from a multi-project run.
type Summary struct {
	Done    int
	Failed  int
	Skipped int
}

// Total returns the number of projects considered.
func (s Summary) Total() int {
	return s.Done + s.Failed + s.Skipped
}

// Pool runs jobs over a fixed number of goroutines.
type Pool struct {
	// Workers is the number of concurrent workers (default 4).
	Workers int

	// LockDir holds the per-project lock files. A project whose lock
	// already exists is skipped; its owner will finish the update.
	LockDir string

	Log *zap.Logger
}

// Run executes fn once per id. A failed job is logged and counted, never
// fatal to the run; context cancellation stops dispatching new jobs but
// lets running ones finish.
func (p *Pool) Run(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) Summary {
	workers := p.Workers
	if workers <= 0 {
		workers = 4
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var summary Summary
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				outcome := p.runOne(ctx, id, fn)
				mu.Lock()
				switch outcome {
				case outcomeDone:
					summary.Done++
				case outcomeFailed:
					summary.Failed++
				case outcomeSkipped:
					summary.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	dispatched := len(ids)
	for i, id := range ids {
		select {
		case <-ctx.Done():
			dispatched = i
		case jobs <- id:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	summary.Skipped += len(ids) - dispatched
	return summary
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (p *Pool) runOne(ctx context.Context, id string, fn func(ctx context.Context, id string) error) outcome {
	release, ok, err := p.acquire(id)
	if err != nil {
		p.Log.Error("lock error", zap.String("project", id), zap.Error(err))
		return outcomeFailed
	}
	if !ok {
		p.Log.Info("project locked by another run, skipping", zap.String("project", id))
		return outcomeSkipped
	}
	defer release()

	if err := fn(ctx, id); err != nil {
		p.Log.Error("project update failed", zap.String("project", id), zap.Error(err))
		return outcomeFailed
	}
	p.Log.Info("project updated", zap.String("project", id))
	return outcomeDone
}

// acquire creates the lock file for a project. O_EXCL makes creation the
// atomic test-and-set; a pre-existing file means another run owns the
// project.
func (p *Pool) acquire(id string) (release func(), ok bool, err error) {
	if p.LockDir == "" {
		return func() {}, true, nil
	}
	if err := os.MkdirAll(p.LockDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("creating lock directory: %w", err)
	}
	path := filepath.Join(p.LockDir, id+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("creating lock file: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(path) }, true, nil
}
