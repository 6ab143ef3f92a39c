package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"deadline_notifier/internal/domain/mail"
	"deadline_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeSource is a scriptable recipient source. The collect func receives the
// scope the aggregator queried, so fallback tests can vary results by level.
type fakeSource struct {
	name    string
	collect func(scope notification.Scope) ([]string, error)
	calls   []notification.Scope
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Collect(_ context.Context, scope notification.Scope) ([]string, error) {
	f.calls = append(f.calls, scope)
	return f.collect(scope)
}

// fakeSender returns its scripted errors in order, then succeeds.
type fakeSender struct {
	errs   []error
	sends  int
	closed bool
}

func (f *fakeSender) Send(_ *mail.Message) error {
	f.sends++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

type fakeTransport struct {
	sender   *fakeSender
	dialErr  error
	connects int
}

func (f *fakeTransport) Connect() (mail.Sender, error) {
	f.connects++
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return f.sender, nil
}

// memoryRunRepo is an in-memory notification.Repository for service tests.
type memoryRunRepo struct {
	runs      map[int64]*notification.Run
	targets   []*notification.Target
	nextRunID int64
}

func newMemoryRunRepo() *memoryRunRepo {
	return &memoryRunRepo{runs: make(map[int64]*notification.Run)}
}

func (r *memoryRunRepo) CreateRun(_ context.Context, run *notification.Run) error {
	r.nextRunID++
	run.ID = r.nextRunID
	run.CreatedAt = time.Now()
	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

func (r *memoryRunRepo) UpdateRun(_ context.Context, run *notification.Run) error {
	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %d not found", run.ID)
	}
	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

func (r *memoryRunRepo) GetRunByID(_ context.Context, id int64) (*notification.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %d not found", id)
	}
	stored := *run
	return &stored, nil
}

func (r *memoryRunRepo) ListRuns(_ context.Context, _ notification.RunFilter) ([]*notification.Run, error) {
	runs := make([]*notification.Run, 0, len(r.runs))
	for _, run := range r.runs {
		stored := *run
		runs = append(runs, &stored)
	}
	return runs, nil
}

func (r *memoryRunRepo) CreateTarget(_ context.Context, target *notification.Target) error {
	target.ID = int64(len(r.targets) + 1)
	target.CreatedAt = time.Now()
	stored := *target
	r.targets = append(r.targets, &stored)
	return nil
}

func (r *memoryRunRepo) ListTargetsByRun(_ context.Context, runID int64) ([]*notification.Target, error) {
	targets := make([]*notification.Target, 0)
	for _, t := range r.targets {
		if t.RunID == runID {
			stored := *t
			targets = append(targets, &stored)
		}
	}
	return targets, nil
}
