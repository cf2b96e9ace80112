// Package inmemory provides a bounded in-process audit driver, the default
// when no database is configured.
package inmemory

import (
	"context"
	"sync"

	"github.com/lingopod/lingopod/pkg/audit"
)

const defaultCapacity = 1024

// Driver keeps the most recent records in a ring. Older records are evicted
// once the capacity is reached.
type Driver struct {
	mu      sync.Mutex
	records []audit.Record
	cap     int
}

func New(capacity int) *Driver {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Driver{cap: capacity}
}

func (d *Driver) Put(_ context.Context, record audit.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = append(d.records, record)
	if len(d.records) > d.cap {
		d.records = d.records[len(d.records)-d.cap:]
	}
	return nil
}

func (d *Driver) List(_ context.Context, limit int) ([]audit.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if limit <= 0 || limit > len(d.records) {
		limit = len(d.records)
	}

	out := make([]audit.Record, 0, limit)
	for i := len(d.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.records[i])
	}
	return out, nil
}

func (d *Driver) Close() error {
	return nil
}

var _ audit.Driver = (*Driver)(nil)
