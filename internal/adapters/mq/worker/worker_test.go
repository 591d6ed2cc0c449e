package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/queue"
	"github.com/okian/jobscout/internal/adapters/mq/worker"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	tasks chan queue.Task
}

func newMockQueue() *mockQueue {
	return &mockQueue{tasks: make(chan queue.Task, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Task { return mq.tasks }

func (mq *mockQueue) Close() error {
	close(mq.tasks)
	return nil
}

func waitFor(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a mock queue", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When tasks are queued", func() {
			var wg sync.WaitGroup
			var ran atomic.Int32
			for i := 0; i < 3; i++ {
				wg.Add(1)
				q.tasks <- queue.Task{ID: "t", Source: "indeed", Run: func(context.Context) {
					defer wg.Done()
					ran.Add(1)
				}}
			}

			convey.Convey("Then each one runs", func() {
				convey.So(waitFor(&wg, time.Second), convey.ShouldBeTrue)
				convey.So(ran.Load(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a task panics", func() {
			var wg sync.WaitGroup
			wg.Add(1)
			q.tasks <- queue.Task{ID: "bad", Source: "indeed", Run: func(context.Context) { panic("boom") }}
			q.tasks <- queue.Task{ID: "good", Source: "indeed", Run: func(context.Context) { wg.Done() }}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(&wg, time.Second), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool with a per-source limit of one", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		p := worker.NewPool(4, q, worker.WithPerSourceLimit(1))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		convey.So(p.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many tasks for two sources are queued", func() {
			var mu sync.Mutex
			active := map[string]int{}
			peak := map[string]int{}
			var wg sync.WaitGroup

			for i := 0; i < 12; i++ {
				src := "linkedin"
				if i%2 == 1 {
					src = "pracuj"
				}
				wg.Add(1)
				err := q.Enqueue(ctx, queue.Task{ID: "t", Source: src, Run: func(context.Context) {
					defer wg.Done()
					mu.Lock()
					active[src]++
					if active[src] > peak[src] {
						peak[src] = active[src]
					}
					mu.Unlock()
					time.Sleep(5 * time.Millisecond)
					mu.Lock()
					active[src]--
					mu.Unlock()
				}})
				convey.So(err, convey.ShouldBeNil)
			}

			convey.Convey("Then no source ever runs two tasks at once", func() {
				convey.So(waitFor(&wg, 5*time.Second), convey.ShouldBeTrue)
				mu.Lock()
				defer mu.Unlock()
				convey.So(peak["linkedin"], convey.ShouldEqual, 1)
				convey.So(peak["pracuj"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			var ran atomic.Int32
			for i := 0; i < 3; i++ {
				convey.So(q.Enqueue(ctx, queue.Task{ID: "t", Source: "indeed", Run: func(context.Context) { ran.Add(1) }}), convey.ShouldBeNil)
			}
			err := p.Shutdown(context.Background())

			convey.Convey("Then queued tasks are drained first and the queue is closed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ran.Load(), convey.ShouldEqual, 3)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLimiter(t *testing.T) {
	convey.Convey("Given a limiter of two per source", t, func() {
		l := worker.NewLimiter(2)
		ctx := context.Background()

		convey.So(l.Acquire(ctx, "a"), convey.ShouldBeNil)
		convey.So(l.Acquire(ctx, "a"), convey.ShouldBeNil)

		convey.Convey("When a third slot is requested", func() {
			tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := l.Acquire(tctx, "a")

			convey.Convey("Then it waits until the context expires", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then other sources are unaffected", func() {
				convey.So(l.Acquire(ctx, "b"), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a slot is released", func() {
			l.Release("a")
			convey.So(l.Acquire(ctx, "a"), convey.ShouldBeNil)
		})
	})
}

func TestUnwantedTasks(t *testing.T) {
	convey.Convey("Given a worker that pauses 200ms between tasks of a source", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, worker.WithSourceDelay(200*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When tasks that are no longer wanted sit between two live ones", func() {
			var wg sync.WaitGroup
			var dropped atomic.Int32
			wg.Add(2)
			live := func(context.Context) { wg.Done() }
			gone := func() bool { return false }

			start := time.Now()
			q.tasks <- queue.Task{ID: "first", Source: "pracuj", Run: live}
			for i := 0; i < 5; i++ {
				q.tasks <- queue.Task{ID: "gone", Source: "pracuj", Live: gone, Run: func(context.Context) { dropped.Add(1) }}
			}
			q.tasks <- queue.Task{ID: "last", Source: "pracuj", Run: live}

			convey.Convey("Then they are skipped without running or waiting out the delay", func() {
				convey.So(waitFor(&wg, 2*time.Second), convey.ShouldBeTrue)
				convey.So(time.Since(start), convey.ShouldBeLessThan, 800*time.Millisecond)
				convey.So(dropped.Load(), convey.ShouldEqual, 0)
			})
		})
	})
}
