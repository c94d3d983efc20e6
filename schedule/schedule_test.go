package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pennsieve/cypherqa/pathstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPopulator struct {
	mu      sync.Mutex
	calls   int
	rebuild []bool
	err     error
}

func (p *countingPopulator) Populate(ctx context.Context, count int, rebuild bool) (*pathstore.PopulateReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.rebuild = append(p.rebuild, rebuild)
	if p.err != nil {
		return nil, p.err
	}
	return &pathstore.PopulateReport{Requested: count, Added: count}, nil
}

func (p *countingPopulator) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestNew(t *testing.T) {
	_, err := New("bad", "not a spec", 5, &countingPopulator{})
	assert.Error(t, err)

	_, err = New("zero", "@every 1h", 0, &countingPopulator{})
	assert.Error(t, err)

	sch, err := New("paths", "0 3 * * *", 5, &countingPopulator{})
	require.NoError(t, err)
	assert.True(t, sch.Next().IsZero())
}

func TestRun(t *testing.T) {
	populator := &countingPopulator{}
	sch, err := New("paths", "@every 1h", 7, populator)
	require.NoError(t, err)

	report, err := sch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, report.Added)
	assert.Equal(t, report, sch.Last())
	assert.Equal(t, []bool{false}, populator.rebuild)

	populator.err = errors.New("neo4j unavailable")
	_, err = sch.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, report, sch.Last())
}

func TestStartStop(t *testing.T) {
	populator := &countingPopulator{}
	sch, err := New("paths", "@every 1s", 1, populator)
	require.NoError(t, err)

	sch.Start()
	assert.True(t, sch.Enabled())
	assert.False(t, sch.Next().IsZero())

	assert.Eventually(t, func() bool { return populator.Calls() > 0 }, 3*time.Second, 50*time.Millisecond)

	sch.Stop()
	assert.False(t, sch.Enabled())
}

// blockingPopulator waits for its context to end
type blockingPopulator struct {
	started  chan struct{}
	canceled chan error
}

func (p *blockingPopulator) Populate(ctx context.Context, count int, rebuild bool) (*pathstore.PopulateReport, error) {
	close(p.started)
	<-ctx.Done()
	p.canceled <- ctx.Err()
	return nil, ctx.Err()
}

func TestStopCancelsRunningBatch(t *testing.T) {
	populator := &blockingPopulator{started: make(chan struct{}), canceled: make(chan error, 1)}
	sch, err := New("paths", "@every 1s", 1, populator)
	require.NoError(t, err)

	sch.Start()
	select {
	case <-populator.started:
	case <-time.After(3 * time.Second):
		t.Fatal("batch did not start")
	}

	stopped := make(chan struct{})
	go func() {
		sch.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop waited for the whole batch")
	}
	assert.ErrorIs(t, <-populator.canceled, context.Canceled)
	assert.False(t, sch.Enabled())
	sch.Stop()
}

func TestFields(t *testing.T) {
	f := fields([]interface{}{"entry", 1, "now", "x", "dangling"})
	assert.Equal(t, 1, f["entry"])
	assert.Equal(t, "x", f["now"])
	assert.NotContains(t, f, "dangling")
}
