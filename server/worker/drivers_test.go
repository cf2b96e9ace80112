package worker

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lingopod/lingopod/pkg/audit"
)

// blockingDriver parks every Put until release is closed. Used to wedge a
// single-worker pool so queue-full behavior can be observed.
type blockingDriver struct {
	release chan struct{}
	active  atomic.Bool
}

func (d *blockingDriver) Put(context.Context, audit.Record) error {
	d.active.Store(true)
	<-d.release
	return nil
}

func (d *blockingDriver) List(context.Context, int) ([]audit.Record, error) {
	return nil, nil
}

func (d *blockingDriver) Close() error { return nil }

// flakyDriver fails every other Put and forwards the rest.
type flakyDriver struct {
	inner audit.Driver
	calls atomic.Int64
}

func (d *flakyDriver) Put(ctx context.Context, record audit.Record) error {
	if d.calls.Add(1)%2 == 1 {
		return errors.New("synthetic write failure")
	}
	return d.inner.Put(ctx, record)
}

func (d *flakyDriver) List(ctx context.Context, limit int) ([]audit.Record, error) {
	return d.inner.List(ctx, limit)
}

func (d *flakyDriver) Close() error { return d.inner.Close() }
