package timer

import (
	"container/heap"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_Order(t *testing.T) {
	now := time.Now()
	q := make(Queue, 0)
	heap.Init(&q)
	for _, offset := range []int{3, 1, 2} {
		heap.Push(&q, &Task{ID: int64(offset), Execute: now.Add(time.Duration(offset) * time.Second)})
	}

	for want := int64(1); want <= 3; want++ {
		task := heap.Pop(&q).(*Task)
		if task.ID != want {
			t.Fatalf("Expected task %d, got %d", want, task.ID)
		}
	}
}

func TestManager_Due(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	m.AddTimer(-time.Second, 0, func() { atomic.AddInt32(&fired, 1) })
	m.AddTimer(-time.Second, time.Minute, func() {})
	m.AddTimer(time.Hour, 0, func() {})

	// 直接调用 due，和后台 ticker 互不影响
	callbacks := m.due(time.Now())
	for _, cb := range callbacks {
		cb()
	}
	if len(callbacks) > 2 {
		t.Errorf("Expected at most 2 due tasks, got %d", len(callbacks))
	}
	if m.Len() != 2 {
		t.Errorf("Expected periodic and future tasks to remain, got %d", m.Len())
	}
}

func TestManager_PeriodicFires(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	m.AddTimer(0, 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fired) < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if atomic.LoadInt32(&fired) < 2 {
		t.Errorf("Expected periodic task to fire repeatedly, fired %d", atomic.LoadInt32(&fired))
	}
}

func TestManager_RemoveTimer(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	id := m.AddTimer(time.Hour, 0, func() {})
	if !m.RemoveTimer(id) {
		t.Error("Expected timer to be removed")
	}
	if m.RemoveTimer(id) {
		t.Error("Removing twice should report false")
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", m.Len())
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.Stop()
	m.Stop()

	var fired int32
	m.AddTimer(0, 0, func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(3 * tickInterval)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Stopped manager must not run tasks")
	}
}
