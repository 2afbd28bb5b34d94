package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backoffice/pkg/broadcast"
)

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[string](4)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s1 := b.Subscribe(ctx)
		s2 := b.Subscribe(ctx)
		require.Equal(t, 2, b.Len())

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"}))

		for _, s := range []broadcast.Subscriber[string]{s1, s2} {
			select {
			case msg := <-s.Receive(ctx):
				assert.Equal(t, "hello", msg.Data)
			case <-time.After(time.Second):
				t.Fatal("message not delivered")
			}
		}
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx := context.Background()
		s := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

		msg := <-s.Receive(ctx)
		assert.Equal(t, 1, msg.Data)
		select {
		case <-s.Receive(ctx):
			t.Fatal("second message should have been dropped")
		default:
		}
	})

	t.Run("context cancellation removes subscriber", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		s := b.Subscribe(ctx)
		cancel()

		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
		_, ok := <-s.Receive(context.Background())
		assert.False(t, ok)
	})

	t.Run("close closes subscriber channels", func(t *testing.T) {
		t.Parallel()
		b := broadcast.NewMemoryBroadcaster[int](1)
		s := b.Subscribe(context.Background())
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, ok := <-s.Receive(context.Background())
		assert.False(t, ok)
		assert.NoError(t, b.Broadcast(context.Background(), broadcast.Message[int]{Data: 1}))
	})
}

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("subscriber receives current value first", func(t *testing.T) {
		t.Parallel()
		v := broadcast.NewValue("initial")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := v.Subscribe(ctx)
		assert.Equal(t, "initial", <-ch)

		v.Store("next")
		assert.Equal(t, "next", <-ch)
		assert.Equal(t, "next", v.Load())
	})

	t.Run("slow subscriber sees only latest", func(t *testing.T) {
		t.Parallel()
		v := broadcast.NewValue(0)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := v.Subscribe(ctx)
		for i := 1; i <= 10; i++ {
			v.Store(i)
		}
		assert.Equal(t, 10, <-ch)
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		t.Parallel()
		v := broadcast.NewValue(0)
		ctx, cancel := context.WithCancel(context.Background())
		ch := v.Subscribe(ctx)
		<-ch
		cancel()

		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-ch:
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("concurrent stores are safe", func(t *testing.T) {
		t.Parallel()
		v := broadcast.NewValue(0)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = v.Subscribe(ctx)

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				v.Store(n)
			}(i)
		}
		wg.Wait()
		assert.GreaterOrEqual(t, v.Load(), 0)
	})
}
