package taskmanager

import (
	"sync"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

// TaskManager runs queued tasks on a bounded pool of workers. Pool size is
// fixed at construction; each deploy's orchestration is one task.
type TaskManager struct {
	tasks      chan entities.Task
	numWorkers int
	mu         sync.RWMutex
	stopped    bool
	wg         sync.WaitGroup
}

func NewTaskManager(numWorkers int, bufferSize int) *TaskManager {
	return &TaskManager{
		tasks:      make(chan entities.Task, bufferSize),
		numWorkers: numWorkers,
	}
}

func (tm *TaskManager) Start() {
	for i := 0; i < tm.numWorkers; i++ {
		tm.wg.Add(1)
		go func() {
			defer tm.wg.Done()
			for task := range tm.tasks {
				task()
			}
		}()
	}
}

// AddTask queues a task for the pool. Tasks submitted after Stop are
// dropped with a warning instead of panicking on the closed channel.
func (tm *TaskManager) AddTask(task entities.Task) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.stopped {
		logger.Warn("task manager stopped, dropping task")
		return
	}
	tm.tasks <- task
}

// Stop closes the queue and waits for the workers to finish every task
// already submitted. In-flight deploys complete; nothing queued is lost.
func (tm *TaskManager) Stop() {
	tm.mu.Lock()
	if tm.stopped {
		tm.mu.Unlock()
		return
	}
	tm.stopped = true
	close(tm.tasks)
	tm.mu.Unlock()

	tm.wg.Wait()
	logger.Info("all workers stopped")
}
