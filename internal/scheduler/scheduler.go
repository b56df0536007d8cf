package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Task interface for scheduled tasks
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// TaskStatus is the outcome of the most recent run of a task.
type TaskStatus struct {
	Name      string    `json:"name"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler manages multiple scheduled tasks
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	tasks  []Task
	wg     sync.WaitGroup
	log    *slog.Logger

	mu     sync.Mutex
	status map[string]*TaskStatus
}

// New creates a new task scheduler
func New(ctx context.Context, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make([]Task, 0),
		log:    log,
		status: make(map[string]*TaskStatus),
	}
}

// AddTask adds a task to the scheduler. Tasks without a positive interval
// are ignored.
func (s *Scheduler) AddTask(task Task) {
	if task.Interval() <= 0 {
		s.log.Warn("Ignoring task without interval", "task", task.Name())
		return
	}
	s.tasks = append(s.tasks, task)
	s.mu.Lock()
	s.status[task.Name()] = &TaskStatus{Name: task.Name()}
	s.mu.Unlock()
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.log.Info("Starting task scheduler")
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
	s.log.Info("Task scheduler started", "task_count", len(s.tasks))
}

// Stop gracefully stops all tasks
func (s *Scheduler) Stop() {
	s.log.Info("Stopping task scheduler")
	s.cancel()
	s.wg.Wait()
	s.log.Info("Task scheduler stopped")
}

// Status returns the status of every task, sorted by name.
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// runTask runs a single task on its schedule
func (s *Scheduler) runTask(task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	// Run immediately on start
	s.run(task)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(task)
		}
	}
}

func (s *Scheduler) run(task Task) {
	err := task.Run(s.ctx)
	if err != nil && s.ctx.Err() == nil {
		s.log.Error("Error running task", "task", task.Name(), "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[task.Name()]
	st.Runs++
	st.LastRun = time.Now()
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
}
