package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/heatsheet/internal/adapters/mq/queue"
	"github.com/okian/heatsheet/internal/adapters/mq/worker"
	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	logging "github.com/okian/heatsheet/pkg/logger"
)

type mockQueue struct {
	changes chan queue.Change
	once    sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{changes: make(chan queue.Change, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Change { return mq.changes }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.changes) })
	return nil
}

type mockApplier struct {
	mu      sync.Mutex
	applied []queue.Change
	fail    map[model.HeatKey]error
}

func (m *mockApplier) Apply(_ context.Context, c queue.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[c.Key]; ok {
		return err
	}
	m.applied = append(m.applied, c)
	return nil
}

func (m *mockApplier) keys() []model.HeatKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.HeatKey, 0, len(m.applied))
	for _, c := range m.applied {
		out = append(out, c.Key)
	}
	return out
}

func change(event, heat int) queue.Change {
	return model.NewActualEndChange(model.HeatKey{Event: event, Index: heat}, model.Manual(clock.Of(10, 0, 0)), time.Now())
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		applier := &mockApplier{fail: map[model.HeatKey]error{
			{Event: 9, Index: 9}: errors.New("disk full"),
		}}
		w := worker.NewInMemoryWorker(q, applier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When changes arrive they are applied in order", func() {
			q.changes <- change(1, 1)
			q.changes <- change(9, 9)
			q.changes <- change(1, 2)
			_ = q.Close()
			<-w.Done()

			convey.So(applier.keys(), convey.ShouldResemble, []model.HeatKey{{Event: 1, Index: 1}, {Event: 1, Index: 2}})
		})

		convey.Convey("When shut down it stops", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})

		convey.Convey("When the context is cancelled it stops", func() {
			cancel()
			select {
			case <-w.Done():
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		applier := &mockApplier{fail: map[model.HeatKey]error{
			{Event: 3, Index: 3}: errors.New("locked"),
		}}
		p := worker.NewPool(0, q, applier)
		convey.So(p.Size(), convey.ShouldEqual, 1)

		ctx := context.Background()
		p.Start(ctx)

		for i := 1; i <= 5; i++ {
			convey.So(q.Enqueue(ctx, change(1, i)), convey.ShouldBeTrue)
		}
		convey.So(q.Enqueue(ctx, change(3, 3)), convey.ShouldBeTrue)

		convey.Convey("Shutdown drains everything already queued", func() {
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(p.Processed(), convey.ShouldEqual, 5)
			convey.So(p.Failed(), convey.ShouldEqual, 1)
			convey.So(applier.keys(), convey.ShouldHaveLength, 5)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})
}

func TestApplyFunc(t *testing.T) {
	convey.Convey("ApplyFunc adapts a function", t, func() {
		var got queue.Change
		f := worker.ApplyFunc(func(_ context.Context, c queue.Change) error {
			got = c
			return nil
		})
		c := change(4, 1)
		convey.So(f.Apply(context.Background(), c), convey.ShouldBeNil)
		convey.So(got.ID, convey.ShouldEqual, c.ID)
	})
}

// flakyApplier rejects the first fails writes.
type flakyApplier struct {
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyApplier) Apply(context.Context, queue.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return errors.New("database is locked")
	}
	return nil
}

func TestRetry(t *testing.T) {
	convey.Convey("Given a store that rejects the first writes", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		convey.Convey("When retries cover the rejections the change is persisted", func() {
			applier := &flakyApplier{fails: 2}
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			p := worker.NewPool(1, q, applier, worker.WithRetry(2, time.Millisecond))
			p.Start(ctx)

			convey.So(q.Enqueue(ctx, change(5, 1)), convey.ShouldBeTrue)
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(p.Processed(), convey.ShouldEqual, 1)
			convey.So(p.Failed(), convey.ShouldEqual, 0)
			convey.So(applier.calls, convey.ShouldEqual, 3)
		})

		convey.Convey("When retries run out the change is counted as failed", func() {
			applier := &flakyApplier{fails: 5}
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			p := worker.NewPool(1, q, applier, worker.WithRetry(1, time.Millisecond))
			p.Start(ctx)

			convey.So(q.Enqueue(ctx, change(5, 1)), convey.ShouldBeTrue)
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(p.Processed(), convey.ShouldEqual, 0)
			convey.So(p.Failed(), convey.ShouldEqual, 1)
			convey.So(applier.calls, convey.ShouldEqual, 2)
		})

		convey.Convey("When the worker stops while waiting the retry is abandoned", func() {
			applier := &flakyApplier{fails: 5}
			wctx, cancel := context.WithCancel(ctx)
			q := newMockQueue()
			w := worker.NewInMemoryWorker(q, applier, worker.WithRetry(3, time.Hour))
			go w.Run(wctx)

			q.changes <- change(5, 1)
			time.Sleep(20 * time.Millisecond)
			cancel()
			select {
			case <-w.Done():
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}
