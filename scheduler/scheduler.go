// Package scheduler runs named tasks on fixed intervals. A panicking task is
// logged and retried on the next tick instead of taking the process down.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler manages periodic tasks.
type Scheduler struct {
	logger *slog.Logger
	tasks  []*Task
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// Every schedules fn to run immediately and then on every interval tick.
func (s *Scheduler) Every(interval time.Duration, name string, fn func(ctx context.Context)) *Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &Task{Name: name, Interval: interval, Run: fn})
	return s
}

// Run starts all scheduled tasks and blocks until ctx is cancelled and every
// in-flight task iteration has returned.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	tasks := s.tasks
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "tasks", len(tasks))
	for _, task := range tasks {
		s.logger.Info("task scheduled", "name", task.Name, "interval", task.Interval)
		s.wg.Add(1)
		go s.runPeriodic(ctx, task)
	}

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runPeriodic(ctx context.Context, task *Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	// Run immediately on start.
	s.safeRun(ctx, task)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.safeRun(ctx, task)
		}
	}
}

func (s *Scheduler) safeRun(ctx context.Context, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "name", task.Name, "panic", r)
		}
	}()
	task.Run(ctx)
}
