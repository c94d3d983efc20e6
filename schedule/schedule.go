// Package schedule grows the example collection on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pennsieve/cypherqa/pathstore"
	"github.com/robfig/cron/v3"
	"github.com/yaoapp/kun/log"
)

// Populator appends described paths to the example collection
type Populator interface {
	Populate(ctx context.Context, count int, rebuild bool) (*pathstore.PopulateReport, error)
}

// Schedule an incremental population job
type Schedule struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Count    int    `json:"count"`
	Timeout  time.Duration

	populator Populator
	cron      *cron.Cron
	id        cron.EntryID
	mu        sync.Mutex
	enabled   bool
	ctx       context.Context
	cancel    context.CancelFunc
	last      *pathstore.PopulateReport
}

// New registers a job adding count paths on every tick of spec.
// A run still in progress when the next tick fires skips that tick.
func New(name, spec string, count int, populator Populator) (*Schedule, error) {
	if count <= 0 {
		return nil, fmt.Errorf("schedule %s: count must be positive, got %d", name, count)
	}

	logger := cronLogger{name: name}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	sch := &Schedule{Name: name, Schedule: spec, Count: count, populator: populator, cron: c}
	id, err := c.AddFunc(spec, func() { sch.Run(sch.jobContext()) })
	if err != nil {
		return nil, fmt.Errorf("schedule %s: invalid spec %q: %w", name, spec, err)
	}
	sch.id = id
	return sch, nil
}

// Run performs one population batch
func (sch *Schedule) Run(ctx context.Context) (*pathstore.PopulateReport, error) {
	if sch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sch.Timeout)
		defer cancel()
	}

	report, err := sch.populator.Populate(ctx, sch.Count, false)
	if err != nil {
		log.Error("[Schedule] %s %s", sch.Name, err.Error())
		return nil, err
	}

	sch.mu.Lock()
	sch.last = report
	sch.mu.Unlock()

	log.With(log.F{"added": report.Added, "failed": report.Failed, "duration": report.Duration.String()}).Info("[Schedule] %s done", sch.Name)
	return report, nil
}

// Last returns the report of the latest successful run
func (sch *Schedule) Last() *pathstore.PopulateReport {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.last
}

// Next returns the time of the next run, zero when stopped
func (sch *Schedule) Next() time.Time {
	if !sch.Enabled() {
		return time.Time{}
	}
	return sch.cron.Entry(sch.id).Next
}

// Enabled reports whether the schedule is started
func (sch *Schedule) Enabled() bool {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.enabled
}

// Start start the schedule
func (sch *Schedule) Start() {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	if sch.enabled {
		return
	}
	sch.enabled = true
	sch.ctx, sch.cancel = context.WithCancel(context.Background())
	sch.cron.Start()
}

// Stop stop the schedule, cancel a running batch and wait for it to return
func (sch *Schedule) Stop() {
	sch.mu.Lock()
	if !sch.enabled {
		sch.mu.Unlock()
		return
	}
	sch.enabled = false
	sch.cancel()
	sch.mu.Unlock()

	<-sch.cron.Stop().Done()
}

// jobContext the context of the current Start, canceled by Stop
func (sch *Schedule) jobContext() context.Context {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	if sch.ctx == nil {
		return context.Background()
	}
	return sch.ctx
}

// cronLogger bridges the cron logger to kun/log
type cronLogger struct {
	name string
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.With(fields(keysAndValues)).Debug("[Schedule] %s %s", l.name, msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.With(fields(keysAndValues)).Error("[Schedule] %s %s: %s", l.name, msg, err.Error())
}

func fields(keysAndValues []interface{}) log.F {
	f := log.F{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
