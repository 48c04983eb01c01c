package taskmanager

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskManagerRunsTasks(t *testing.T) {
	tm := NewTaskManager(3, 10)
	tm.Start()

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		tm.AddTask(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()
	tm.Stop()

	assert.Equal(t, int64(10), atomic.LoadInt64(&count))
}

func TestTaskManagerStopTerminatesWorkers(t *testing.T) {
	tm := NewTaskManager(2, 2)
	tm.Start()

	done := make(chan struct{})
	tm.AddTask(func() { close(done) })
	<-done

	// Stop must return, not hang on idle workers.
	tm.Stop()
}

func TestTaskManagerStopDrainsQueue(t *testing.T) {
	// One worker and a deep buffer: everything queued before Stop must
	// still run to completion.
	tm := NewTaskManager(1, 50)
	tm.Start()

	var count int64
	for i := 0; i < 50; i++ {
		tm.AddTask(func() {
			atomic.AddInt64(&count, 1)
		})
	}
	tm.Stop()

	assert.Equal(t, int64(50), atomic.LoadInt64(&count))
}

func TestTaskManagerAddAfterStopIsDropped(t *testing.T) {
	tm := NewTaskManager(1, 1)
	tm.Start()
	tm.Stop()

	var ran int64
	assert.NotPanics(t, func() {
		tm.AddTask(func() { atomic.AddInt64(&ran, 1) })
	})
	assert.Equal(t, int64(0), atomic.LoadInt64(&ran))
}

func TestTaskManagerStopIsIdempotent(t *testing.T) {
	tm := NewTaskManager(2, 4)
	tm.Start()

	assert.NotPanics(t, func() {
		tm.Stop()
		tm.Stop()
	})
}
