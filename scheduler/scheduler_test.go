package scheduler_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fritzo/pomagma-sub000/agenda"
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/scheduler"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"github.com/stretchr/testify/require"
)

// TestNullaryPropagationDrainsToFixedPoint runs the same rule pinned in
// the vm package's end-to-end test, but through the scheduler: GIVEN
// NULLARY_FUNCTION K fires INFER_BINARY_FUNCTION APP k k k, and the
// scheduler must drain the resulting event task until APP(1,1)=1 holds
// and the engine reaches a fixed point on its own.
func TestNullaryPropagationDrainsToFixedPoint(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)

	var sched *scheduler.Scheduler
	k, err := sig.DeclareNullaryFunction("K", func(val carrier.Ob) {
		sched.PushNullaryFunction("K")
	})
	require.NoError(t, err)
	app, err := sig.DeclareBinaryFunction("APP", nil)
	require.NoError(t, err)

	m := vm.New(sig)
	progs, err := vm.ParseAll(sig, strings.NewReader(
		"GIVEN_NULLARY_FUNCTION K k\nINFER_BINARY_FUNCTION APP k k k\n"))
	require.NoError(t, err)

	ag := agenda.New(1)
	ag.AddAll(progs)

	sched = scheduler.New(sig, c, ag, m, nil, nil, 1)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	require.NoError(t, k.Insert(ob1))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sched.RunConfig(ctx, scheduler.Config{
		Workers:        2,
		CleanupThreads: 1,
		SampleThreads:  1,
		IdleSleep:      time.Millisecond,
	}))

	val, ok := app.Find(ob1, ob1)
	require.True(t, ok)
	require.Equal(t, ob1, val)
	require.True(t, sched.Quiescent())
}

// TestMergePropagatesBeforeDependentEventsResolve pins the strict
// critical section: once a merge task lands, EVEN's membership must be
// visible under the winning representative, even though the membership
// was inserted directly under the dep just before the merge task was
// enqueued and no unary-relation task was enqueued for it.
func TestMergePropagatesBeforeDependentEventsResolve(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	even, err := sig.DeclareUnaryRelation("EVEN", nil)
	require.NoError(t, err)

	m := vm.New(sig)
	ag := agenda.New(1)
	sched := scheduler.New(sig, c, ag, m, nil, nil, 1)

	ob1, err := c.TryInsert()
	require.NoError(t, err)
	ob2, err := c.TryInsert()
	require.NoError(t, err)

	even.Insert(ob2)
	rep, err := c.EnsureEqual(ob2, ob1)
	require.NoError(t, err)
	sched.PushMerge(ob2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sched.RunConfig(ctx, scheduler.Config{IdleSleep: time.Millisecond}))

	require.True(t, even.Contains(rep))
}

func TestQuiescentReportsEmptyQueues(t *testing.T) {
	c := carrier.New(4, nil)
	sig := signature.New(c)
	m := vm.New(sig)
	ag := agenda.New(1)
	sched := scheduler.New(sig, c, ag, m, nil, nil, 1)
	require.True(t, sched.Quiescent())

	sched.PushExists(0)
	require.False(t, sched.Quiescent())
}
