package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/statemachine"
)

type state string

type event string

const (
	idle    state = "idle"
	loading state = "loading"
	ready   state = "ready"
	failed  state = "failed"

	load   event = "load"
	loaded event = "loaded"
	fail   event = "fail"
)

func newMachine(t *testing.T, opts ...statemachine.Option[state, event]) *statemachine.Machine[state, event] {
	t.Helper()

	base := []statemachine.Option[state, event]{
		statemachine.WithTransitionFrom([]state{idle, ready, failed}, loading, load),
		statemachine.WithTransition(loading, ready, loaded),
		statemachine.WithTransition(loading, failed, fail),
	}
	m, err := statemachine.New(idle, append(base, opts...)...)
	require.NoError(t, err)
	return m
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMachine(t)
	assert.Equal(t, idle, m.Current())

	assert.True(t, m.CanFire(ctx, load, nil))
	assert.False(t, m.CanFire(ctx, loaded, nil))

	require.NoError(t, m.Fire(ctx, load, nil))
	assert.True(t, m.Is(loading))
	require.NoError(t, m.Fire(ctx, loaded, nil))
	assert.True(t, m.Is(idle, ready))

	require.NoError(t, m.Fire(ctx, load, nil), "ready re-enters loading")
	require.NoError(t, m.Fire(ctx, fail, nil))
	require.NoError(t, m.Fire(ctx, load, nil), "failed re-enters loading")

	m.Reset()
	assert.Equal(t, idle, m.Current())
}

func TestMachine_NoTransition(t *testing.T) {
	t.Parallel()

	m := newMachine(t)
	err := m.Fire(context.Background(), loaded, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, statemachine.ErrNoTransition)
	assert.NotErrorIs(t, err, statemachine.ErrRejected)
	var te *statemachine.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "idle", te.State)
	assert.Equal(t, "loaded", te.Event)
	assert.Equal(t, idle, m.Current())
}

func TestMachine_Guards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	allowed := func(_ context.Context, _ state, _ event, data any) bool {
		ok, _ := data.(bool)
		return ok
	}

	m := statemachine.MustNew(idle,
		statemachine.WithTransition(idle, ready, load, statemachine.WithGuard(allowed)),
	)

	err := m.Fire(ctx, load, false)
	assert.ErrorIs(t, err, statemachine.ErrRejected)
	assert.False(t, m.CanFire(ctx, load, false))
	assert.Equal(t, idle, m.Current())

	require.NoError(t, m.Fire(ctx, load, true))
	assert.Equal(t, ready, m.Current())
}

func TestMachine_GuardPriority(t *testing.T) {
	t.Parallel()

	never := func(context.Context, state, event, any) bool { return false }
	m := statemachine.MustNew(loading,
		statemachine.WithTransition(loading, ready, loaded, statemachine.WithGuard(never)),
		statemachine.WithTransition(loading, failed, loaded),
	)

	require.NoError(t, m.Fire(context.Background(), loaded, nil))
	assert.Equal(t, failed, m.Current(), "first transition with passing guards wins")
}

func TestMachine_Actions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var seen []string
	record := func(_ context.Context, from, to state, e event, _ any) error {
		seen = append(seen, string(from)+">"+string(to)+":"+string(e))
		return nil
	}
	boom := errors.New("boom")
	refuse := func(context.Context, state, state, event, any) error { return boom }

	m := statemachine.MustNew(idle,
		statemachine.WithTransition(idle, loading, load, statemachine.WithAction(record)),
		statemachine.WithTransition(loading, ready, loaded, statemachine.WithAction(refuse)),
	)

	require.NoError(t, m.Fire(ctx, load, nil))
	assert.Equal(t, []string{"idle>loading:load"}, seen)

	err := m.Fire(ctx, loaded, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, loading, m.Current(), "failed action aborts the transition")
}

func TestMachine_Listeners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var got []state
	m := newMachine(t, statemachine.WithListener(func(_ context.Context, _, to state, _ event) {
		got = append(got, to)
	}))

	var reentered bool
	m.OnTransition(func(ctx context.Context, _, to state, _ event) {
		if to == ready {
			// Listeners run outside the lock and may read the machine.
			reentered = m.Current() == ready
		}
	})
	m.OnTransition(nil)

	require.NoError(t, m.Fire(ctx, load, nil))
	require.NoError(t, m.Fire(ctx, loaded, nil))
	assert.Error(t, m.Fire(ctx, loaded, nil))

	assert.Equal(t, []state{loading, ready}, got)
	assert.True(t, reentered)
}

func TestMachine_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(idle, statemachine.WithTransitionFrom[state, event](nil, ready, load))
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(idle, statemachine.WithTransitionFrom[state, event](nil, ready, load))
	})

	m := statemachine.MustNew(idle, statemachine.WithTransitions(
		statemachine.Transition[state, event]{From: idle, To: ready, Event: loaded},
	))
	require.NoError(t, m.Fire(context.Background(), loaded, nil))
	assert.Equal(t, ready, m.Current())
}

func TestMachine_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := statemachine.MustNew(idle,
		statemachine.WithTransition(idle, loading, load),
		statemachine.WithTransition(loading, idle, loaded),
	)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Fire(ctx, load, nil)
		}()
		go func() {
			defer wg.Done()
			_ = m.Fire(ctx, loaded, nil)
			_ = m.Current()
		}()
	}
	wg.Wait()

	assert.True(t, m.Is(idle, loading))
}
