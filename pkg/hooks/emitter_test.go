package hooks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/statestore"
)

func TestEmitter_Emit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("matching is anchored and case-insensitive", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		var calls atomic.Int32
		require.NoError(t, em.Register("close", hooks.HandlerFunc(
			func(context.Context, hooks.Event, hooks.States) error {
				calls.Add(1)
				return nil
			})))

		matched, err := em.Emit(ctx, "CLOSE", nil)
		require.NoError(t, err)
		assert.True(t, matched)

		// Substrings never match.
		matched, err = em.Emit(ctx, "closed", nil)
		require.NoError(t, err)
		assert.False(t, matched)

		em.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("alternation patterns", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		require.NoError(t, em.Register("write|save", hooks.HandlerFunc(
			func(context.Context, hooks.Event, hooks.States) error { return nil })))

		for _, name := range []string{"write", "save", "SAVE"} {
			matched, err := em.Emit(ctx, name, nil)
			require.NoError(t, err)
			assert.True(t, matched, name)
		}

		matched, err := em.Emit(ctx, "saved", nil)
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("handler gets the event payload", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		got := make(chan hooks.Event, 1)
		require.NoError(t, em.Register("open", hooks.HandlerFunc(
			func(_ context.Context, ev hooks.Event, _ hooks.States) error {
				got <- ev
				return nil
			})))

		_, err := em.Emit(ctx, "open", map[string]any{"file": "a.txt"})
		require.NoError(t, err)
		em.Wait()

		ev := <-got
		assert.Equal(t, "open", ev.Name)
		assert.Equal(t, "a.txt", ev.Data["file"])
		assert.False(t, ev.Time.IsZero())
	})

	t.Run("handler failures never reach the caller", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		require.NoError(t, em.Register("boom", hooks.HandlerFunc(
			func(context.Context, hooks.Event, hooks.States) error {
				return errors.New("kaboom")
			})))
		require.NoError(t, em.Register("panic", hooks.HandlerFunc(
			func(context.Context, hooks.Event, hooks.States) error {
				panic("kaboom")
			})))

		matched, err := em.Emit(ctx, "boom", nil)
		require.NoError(t, err)
		assert.True(t, matched)

		matched, err = em.Emit(ctx, "panic", nil)
		require.NoError(t, err)
		assert.True(t, matched)

		em.Wait()
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		_, err := em.Emit(ctx, "", nil)
		assert.ErrorIs(t, err, hooks.ErrEmptyName)
	})

	t.Run("closed emitter rejects emits", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		require.NoError(t, em.Close())

		_, err := em.Emit(ctx, "close", nil)
		assert.ErrorIs(t, err, hooks.ErrClosed)
	})
}

func TestEmitter_Register(t *testing.T) {
	t.Parallel()

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		err := em.Register("(", hooks.HandlerFunc(
			func(context.Context, hooks.Event, hooks.States) error { return nil }))
		assert.Error(t, err)
	})
}

func TestEmitter_State(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("private state survives invocations", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		done := make(chan int64, 2)
		require.NoError(t, em.Register("tick", hooks.HandlerFunc(
			func(ctx context.Context, _ hooks.Event, st hooks.States) error {
				err := statestore.Update(ctx, st.Script, "count",
					func(v any) any {
						c, _ := v.(int64)
						return c + 1
					})
				if err != nil {
					return err
				}
				v, err := st.Script.Get(ctx, "count")
				if err != nil {
					return err
				}
				done <- v.(int64)
				return nil
			})))

		for range 2 {
			_, err := em.Emit(ctx, "tick", nil)
			require.NoError(t, err)
			em.Wait()
		}

		assert.Equal(t, int64(1), <-done)
		assert.Equal(t, int64(2), <-done)
	})

	t.Run("global state is shared across handlers", func(t *testing.T) {
		t.Parallel()

		em := hooks.NewEmitter()
		defer em.Close()

		require.NoError(t, em.Register("first", hooks.HandlerFunc(
			func(ctx context.Context, _ hooks.Event, st hooks.States) error {
				return st.Global.Set(ctx, "shared", "from-first", 0)
			})))

		got := make(chan any, 1)
		require.NoError(t, em.Register("second", hooks.HandlerFunc(
			func(ctx context.Context, _ hooks.Event, st hooks.States) error {
				v, err := st.Global.Get(ctx, "shared")
				if err != nil {
					return err
				}
				got <- v
				return nil
			})))

		_, err := em.Emit(ctx, "first", nil)
		require.NoError(t, err)
		em.Wait()

		_, err = em.Emit(ctx, "second", nil)
		require.NoError(t, err)
		em.Wait()

		assert.Equal(t, "from-first", <-got)
	})

	t.Run("registrations can share a store", func(t *testing.T) {
		t.Parallel()

		shared := statestore.NewMemory[any]()
		em := hooks.NewEmitter()
		defer em.Close()

		require.NoError(t, em.Register("a", hooks.HandlerFunc(
			func(ctx context.Context, _ hooks.Event, st hooks.States) error {
				return st.Script.Set(ctx, "k", "v", 0)
			}), hooks.WithState(shared)))

		got := make(chan any, 1)
		require.NoError(t, em.Register("b", hooks.HandlerFunc(
			func(ctx context.Context, _ hooks.Event, st hooks.States) error {
				v, err := st.Script.Get(ctx, "k")
				if err != nil {
					return err
				}
				got <- v
				return nil
			}), hooks.WithState(shared)))

		_, err := em.Emit(ctx, "a", nil)
		require.NoError(t, err)
		em.Wait()

		_, err = em.Emit(ctx, "b", nil)
		require.NoError(t, err)
		em.Wait()

		assert.Equal(t, "v", <-got)
	})
}
