// Package memory provides an in-process keyed mutex.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/approvalflow/service/lock"
)

type entry struct {
	slot chan struct{}
	refs int
}

// Locker is a keyed mutex; entries are dropped once no caller holds or waits
// for them
type Locker struct {
	mux     sync.Mutex
	entries map[string]*entry
}

var _ lock.Locker = (*Locker)(nil)

// Lock acquires key
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mux.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mux.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: %s: %v", lock.ErrNotAcquired, key, ctx.Err())
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.release(key, e)
		})
	}, nil
}

func (l *Locker) release(key string, e *entry) {
	l.mux.Lock()
	defer l.mux.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// New creates a memory locker
func New() *Locker {
	return &Locker{entries: map[string]*entry{}}
}
