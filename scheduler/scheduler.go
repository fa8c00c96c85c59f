// Package scheduler drives the inference engine to a fixed point: it
// owns the per-task-kind FIFOs spec.md §4.I names, the process-wide
// strict critical section that serializes merges against everything
// else, and the worker/cleanup/sample thread pools that drain them.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fritzo/pomagma-sub000/agenda"
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config configures the three thread categories spec.md §4.I leaves to
// startup configuration. Each is clamped to at least one thread.
type Config struct {
	Workers        int
	CleanupThreads int
	SampleThreads  int

	// IdleSleep bounds how long an idle worker waits before re-polling
	// every queue (the pseudocode's "short-sleep" step).
	IdleSleep time.Duration
}

func (cfg Config) normalized() Config {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.CleanupThreads < 1 {
		cfg.CleanupThreads = 1
	}
	if cfg.SampleThreads < 1 {
		cfg.SampleThreads = 1
	}
	if cfg.IdleSleep <= 0 {
		cfg.IdleSleep = time.Millisecond
	}
	return cfg
}

// Scheduler owns every task queue and the strict critical section.
// Insert callbacks wired at Signature-declare time should call the
// matching PushXxx method so that newly observed facts get routed back
// to the Agenda's entry points.
type Scheduler struct {
	sig *signature.Signature
	c   *carrier.Carrier
	ag  *agenda.Agenda
	m   *vm.Machine
	log *zap.Logger

	strict sync.RWMutex

	exists            *queue[ExistsTask]
	unaryRelation     *queue[UnaryRelationTask]
	positiveOrder     *queue[PositiveOrderTask]
	negativeOrder     *queue[NegativeOrderTask]
	binaryRelation    *queue[BinaryRelationTask]
	nullaryFunction   *queue[NullaryFunctionTask]
	injectiveFunction *queue[InjectiveFunctionTask]
	binaryFunction    *queue[BinaryFunctionTask]
	symmetricFunction *queue[SymmetricFunctionTask]
	merge             *queue[MergeTask]
	assume            *queue[AssumeTask]

	cleanupCursor int64 // atomic, cycles over ag.CleanupCount()
	progress      int64 // atomic, bumped whenever a task performs work

	sampler   Sampler
	sampleSem *semaphore.Weighted
}

// New builds an empty Scheduler bound to sig/c/ag/m. sampler may be nil,
// in which case the sample pool is a no-op (useful for tests that only
// exercise forward chaining over pre-seeded facts).
func New(sig *signature.Signature, c *carrier.Carrier, ag *agenda.Agenda, m *vm.Machine, log *zap.Logger, sampler Sampler, maxConcurrentSamples int64) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if maxConcurrentSamples < 1 {
		maxConcurrentSamples = 1
	}
	return &Scheduler{
		sig:               sig,
		c:                 c,
		ag:                ag,
		m:                 m,
		log:               log,
		exists:            newQueue[ExistsTask](),
		unaryRelation:     newQueue[UnaryRelationTask](),
		positiveOrder:     newQueue[PositiveOrderTask](),
		negativeOrder:     newQueue[NegativeOrderTask](),
		binaryRelation:    newQueue[BinaryRelationTask](),
		nullaryFunction:   newQueue[NullaryFunctionTask](),
		injectiveFunction: newQueue[InjectiveFunctionTask](),
		binaryFunction:    newQueue[BinaryFunctionTask](),
		symmetricFunction: newQueue[SymmetricFunctionTask](),
		merge:             newQueue[MergeTask](),
		assume:            newQueue[AssumeTask](),
		sampler:           sampler,
		sampleSem:         semaphore.NewWeighted(maxConcurrentSamples),
	}
}

// PushExists enqueues ob's new-ob event.
func (s *Scheduler) PushExists(ob carrier.Ob) { s.exists.Push(ExistsTask{Ob: ob}) }

// PushUnaryRelation enqueues rel's insert event for ob.
func (s *Scheduler) PushUnaryRelation(rel string, ob carrier.Ob) {
	s.unaryRelation.Push(UnaryRelationTask{Rel: rel, Ob: ob})
}

// PushBinaryRelation enqueues rel's insert event for (l,r).
func (s *Scheduler) PushBinaryRelation(rel string, l, r carrier.Ob) {
	s.binaryRelation.Push(BinaryRelationTask{Rel: rel, L: l, R: r})
}

// PushPositiveOrder enqueues an asymmetric positive-order insert event.
func (s *Scheduler) PushPositiveOrder(rel string, l, r carrier.Ob) {
	s.positiveOrder.Push(PositiveOrderTask{Rel: rel, L: l, R: r})
}

// PushNegativeOrder enqueues an asymmetric negative-order insert event.
func (s *Scheduler) PushNegativeOrder(rel string, l, r carrier.Ob) {
	s.negativeOrder.Push(NegativeOrderTask{Rel: rel, L: l, R: r})
}

// PushNullaryFunction enqueues fun's first-set event.
func (s *Scheduler) PushNullaryFunction(fun string) {
	s.nullaryFunction.Push(NullaryFunctionTask{Fun: fun})
}

// PushInjectiveFunction enqueues fun's insert event for arg.
func (s *Scheduler) PushInjectiveFunction(fun string, arg carrier.Ob) {
	s.injectiveFunction.Push(InjectiveFunctionTask{Fun: fun, Arg: arg})
}

// PushBinaryFunction enqueues fun's insert event for (l,r).
func (s *Scheduler) PushBinaryFunction(fun string, l, r carrier.Ob) {
	s.binaryFunction.Push(BinaryFunctionTask{Fun: fun, L: l, R: r})
}

// PushSymmetricFunction enqueues fun's insert event for (l,r).
func (s *Scheduler) PushSymmetricFunction(fun string, l, r carrier.Ob) {
	s.symmetricFunction.Push(SymmetricFunctionTask{Fun: fun, L: l, R: r})
}

// PushMerge enqueues the critical-section work of scrubbing dep out of
// every table once the carrier has already demoted it to its
// representative.
func (s *Scheduler) PushMerge(dep carrier.Ob) { s.merge.Push(MergeTask{Dep: dep}) }

// PushAssume enqueues a load-facts-phase fact.
func (s *Scheduler) PushAssume(fun string, args ...carrier.Ob) {
	s.assume.Push(AssumeTask{Fun: fun, Args: args})
}

// Run spawns the worker, cleanup, and sample pools and blocks until the
// engine reaches a fixed point, ctx is cancelled, or a task reports a
// fatal error (signature.ErrInconsistent, in particular — spec.md §7:
// "Inconsistent is fatal: the scheduler logs and terminates").
func (s *Scheduler) Run(ctx context.Context) error {
	return s.RunConfig(ctx, Config{})
}

// RunConfig is Run with explicit thread counts.
func (s *Scheduler) RunConfig(ctx context.Context, cfg Config) error {
	cfg = cfg.normalized()
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error { return s.workerLoop(gctx, cfg.IdleSleep) })
	}
	for i := 0; i < cfg.CleanupThreads; i++ {
		g.Go(func() error { return s.cleanupLoop(gctx, cfg.IdleSleep) })
	}
	for i := 0; i < cfg.SampleThreads; i++ {
		g.Go(func() error { return s.sampleLoop(gctx, cfg.IdleSleep) })
	}

	err := g.Wait()
	if err == context.Canceled || err == context.DeadlineExceeded {
		return nil
	}
	return err
}

// workerLoop implements spec.md §4.I's priority chain: merge tasks
// first (unique mode, draining every other worker), then any pending
// event task, then one cleanup step, then one sample draw, else a
// short sleep. It exits once the engine is quiescent or the context is
// cancelled.
func (s *Scheduler) workerLoop(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ran, err := s.tryMerge()
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		ran, err = s.tryEvent()
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		ran, err = s.tryCleanup()
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		ran, err = s.trySample(ctx)
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		if s.Quiescent() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

// cleanupLoop runs only cleanup tasks, supplementing the general
// workers so that large block-sharded programs drain even when every
// worker is busy on event tasks.
func (s *Scheduler) cleanupLoop(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ran, err := s.tryCleanup()
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		if s.Quiescent() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

// sampleLoop draws samples only, bounded by the scheduler's semaphore
// and by carrier capacity (spec.md §4.I: "present when the carrier is
// not yet full").
func (s *Scheduler) sampleLoop(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ran, err := s.trySample(ctx)
		if err != nil {
			return err
		}
		if ran {
			continue
		}
		if s.Quiescent() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

func (s *Scheduler) tryMerge() (bool, error) {
	task, ok := s.merge.TryPop()
	if !ok {
		return false, nil
	}
	s.strict.Lock()
	defer s.strict.Unlock()

	dep := task.Dep
	rep := s.c.Find(dep)
	if rep == dep {
		return true, nil
	}
	s.dropStale(dep)
	s.sig.UnsafeMergeAll(dep, s.c.Find)
	atomic.AddInt64(&s.progress, 1)
	s.log.Debug("merge applied", zap.Uint32("dep", uint32(dep)), zap.Uint32("rep", uint32(rep)))
	return true, nil
}

// dropStale removes from every non-merge queue any task that names dep,
// per spec.md §4.I rule 2: those tasks are about to become referentially
// stale once dep is scrubbed out of the tables.
func (s *Scheduler) dropStale(dep carrier.Ob) {
	s.exists.DropMatching(func(t ExistsTask) bool { return t.Ob != dep })
	s.unaryRelation.DropMatching(func(t UnaryRelationTask) bool { return t.Ob != dep })
	s.positiveOrder.DropMatching(func(t PositiveOrderTask) bool { return t.L != dep && t.R != dep })
	s.negativeOrder.DropMatching(func(t NegativeOrderTask) bool { return t.L != dep && t.R != dep })
	s.binaryRelation.DropMatching(func(t BinaryRelationTask) bool { return t.L != dep && t.R != dep })
	s.injectiveFunction.DropMatching(func(t InjectiveFunctionTask) bool { return t.Arg != dep })
	s.binaryFunction.DropMatching(func(t BinaryFunctionTask) bool { return t.L != dep && t.R != dep })
	s.symmetricFunction.DropMatching(func(t SymmetricFunctionTask) bool { return t.L != dep && t.R != dep })
}

// tryEvent pops and runs one pending event task, trying each queue in
// turn. It holds strict in shared mode: concurrent event tasks may run
// alongside each other, but never alongside a merge.
func (s *Scheduler) tryEvent() (bool, error) {
	if task, ok := s.exists.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireExists(task) })
	}
	if task, ok := s.unaryRelation.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireUnaryRelation(task) })
	}
	if task, ok := s.positiveOrder.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireBinaryRelation(task.Rel, task.L, task.R) })
	}
	if task, ok := s.negativeOrder.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireBinaryRelation(task.Rel, task.L, task.R) })
	}
	if task, ok := s.binaryRelation.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireBinaryRelation(task.Rel, task.L, task.R) })
	}
	if task, ok := s.nullaryFunction.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireNullaryFunction(task) })
	}
	if task, ok := s.injectiveFunction.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireInjectiveFunction(task) })
	}
	if task, ok := s.binaryFunction.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireBinaryFunction(task.Fun, task.L, task.R) })
	}
	if task, ok := s.symmetricFunction.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireSymmetricFunction(task.Fun, task.L, task.R) })
	}
	if task, ok := s.assume.TryPop(); ok {
		return true, s.runLocked(func() error { return s.fireAssume(task) })
	}
	return false, nil
}

func (s *Scheduler) runLocked(fn func() error) error {
	s.strict.RLock()
	defer s.strict.RUnlock()
	if err := fn(); err != nil {
		return err
	}
	atomic.AddInt64(&s.progress, 1)
	return nil
}

// execProgram runs prog, logging its entry at debug level — the Go
// stand-in for the original's per-task profiler hook (spec.md §9
// supplemented feature).
func (s *Scheduler) execProgram(prog *vm.Program, ctx *vm.Context, args ...carrier.Ob) error {
	s.log.Debug("executing program", zap.Int("instrs", prog.Len()), zap.Int("args", len(args)))
	return s.m.Execute(prog, ctx, args...)
}

func (s *Scheduler) fireExists(t ExistsTask) error {
	ctx := &vm.Context{}
	for _, prog := range s.ag.Exists() {
		if err := s.execProgram(prog, ctx, t.Ob); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireUnaryRelation(t UnaryRelationTask) error {
	h, ok := s.sig.Handle(t.Rel)
	if !ok {
		return fmt.Errorf("scheduler: unknown relation %q", t.Rel)
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.UnaryRelation(h) {
		if err := s.execProgram(prog, ctx, t.Ob); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireBinaryRelation(rel string, l, r carrier.Ob) error {
	h, ok := s.sig.Handle(rel)
	if !ok {
		return fmt.Errorf("scheduler: unknown relation %q", rel)
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.BinaryRelation(h) {
		if err := s.execProgram(prog, ctx, l, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireNullaryFunction(t NullaryFunctionTask) error {
	h, ok := s.sig.Handle(t.Fun)
	if !ok {
		return fmt.Errorf("scheduler: unknown function %q", t.Fun)
	}
	f := s.sig.NullaryFunctionByHandle(h)
	val, ok := f.Find()
	if !ok {
		return nil
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.NullaryFunction(h) {
		if err := s.execProgram(prog, ctx, val); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireInjectiveFunction(t InjectiveFunctionTask) error {
	h, ok := s.sig.Handle(t.Fun)
	if !ok {
		return fmt.Errorf("scheduler: unknown function %q", t.Fun)
	}
	f := s.sig.InjectiveFunctionByHandle(h)
	val, ok := f.Find(t.Arg)
	if !ok {
		return nil
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.InjectiveFunction(h) {
		if err := s.execProgram(prog, ctx, t.Arg, val); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireBinaryFunction(fun string, l, r carrier.Ob) error {
	h, ok := s.sig.Handle(fun)
	if !ok {
		return fmt.Errorf("scheduler: unknown function %q", fun)
	}
	f := s.sig.BinaryFunctionByHandle(h)
	val, ok := f.Find(l, r)
	if !ok {
		return nil
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.BinaryFunction(h) {
		if err := s.execProgram(prog, ctx, l, r, val); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireSymmetricFunction(fun string, l, r carrier.Ob) error {
	h, ok := s.sig.Handle(fun)
	if !ok {
		return fmt.Errorf("scheduler: unknown function %q", fun)
	}
	f := s.sig.SymmetricFunctionByHandle(h)
	val, ok := f.Find(l, r)
	if !ok {
		return nil
	}
	ctx := &vm.Context{}
	for _, prog := range s.ag.SymmetricFunction(h) {
		if err := s.execProgram(prog, ctx, l, r, val); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireAssume(t AssumeTask) error {
	switch len(t.Args) {
	case 1:
		f, err := s.sig.NullaryFunction(t.Fun)
		if err != nil {
			return err
		}
		return f.Insert(t.Args[0])
	case 2:
		f, err := s.sig.InjectiveFunction(t.Fun)
		if err != nil {
			return err
		}
		return f.Insert(t.Args[0], t.Args[1])
	case 3:
		if f, err := s.sig.BinaryFunction(t.Fun); err == nil {
			return f.Insert(t.Args[0], t.Args[1], t.Args[2])
		}
		f, err := s.sig.SymmetricFunction(t.Fun)
		if err != nil {
			return err
		}
		return f.Insert(t.Args[0], t.Args[1], t.Args[2])
	default:
		return fmt.Errorf("scheduler: assume task for %q has unsupported arity %d", t.Fun, len(t.Args))
	}
}

func (s *Scheduler) tryCleanup() (bool, error) {
	n := s.ag.CleanupCount()
	if n == 0 {
		return false, nil
	}
	index := int(atomic.AddInt64(&s.cleanupCursor, 1)-1) % n
	prog, block, isBlock := s.ag.Cleanup(index)

	s.strict.RLock()
	defer s.strict.RUnlock()

	ctx := &vm.Context{}
	var err error
	if isBlock {
		err = s.m.ExecuteBlock(prog, ctx, block)
	} else {
		err = s.execProgram(prog, ctx)
	}
	if err != nil {
		return true, err
	}
	return true, nil
}

func (s *Scheduler) trySample(ctx context.Context) (bool, error) {
	if s.sampler == nil {
		return false, nil
	}
	if s.c.ItemCount() >= s.c.Capacity() {
		return false, nil
	}
	if !s.sampleSem.TryAcquire(1) {
		return false, nil
	}
	defer s.sampleSem.Release(1)

	s.strict.RLock()
	ok, err := s.sampler.Sample(ctx)
	s.strict.RUnlock()
	if err != nil {
		return true, err
	}
	if ok {
		atomic.AddInt64(&s.progress, 1)
	}
	return ok, nil
}

// Quiescent reports whether every non-sample queue is empty. Run's
// loops treat this as license to exit once their own task kind has
// nothing left, but the group as a whole only terminates once every
// pool independently observes quiescence.
func (s *Scheduler) Quiescent() bool {
	return s.merge.Len() == 0 &&
		s.exists.Len() == 0 &&
		s.unaryRelation.Len() == 0 &&
		s.positiveOrder.Len() == 0 &&
		s.negativeOrder.Len() == 0 &&
		s.binaryRelation.Len() == 0 &&
		s.nullaryFunction.Len() == 0 &&
		s.injectiveFunction.Len() == 0 &&
		s.binaryFunction.Len() == 0 &&
		s.symmetricFunction.Len() == 0 &&
		s.assume.Len() == 0
}

// Progress returns the number of task executions that performed
// observable work since startup, for callers that want to detect a
// full cleanup cycle with no new facts themselves.
func (s *Scheduler) Progress() int64 { return atomic.LoadInt64(&s.progress) }
