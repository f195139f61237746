// Package event is a small typed publish/subscribe primitive.
//
// Subscribers are called synchronously, on the emitting goroutine, in the
// order they subscribed. An Emitter is safe for concurrent use.
package event

import "sync"

type Handler[T any] func(T)

type subscription[T any] struct {
	id uint64
	fn Handler[T]
}

type Emitter[T any] struct {
	lock   sync.RWMutex
	nextID uint64
	subs   []subscription[T]
}

// On registers fn and returns a function that removes it again. Calling the
// returned function more than once is a no-op.
func (e *Emitter[T]) On(fn Handler[T]) (remove func()) {
	if fn == nil {
		return func() {}
	}
	e.lock.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn})
	e.lock.Unlock()

	return func() {
		e.lock.Lock()
		defer e.lock.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers v to every current subscriber and returns how many were called.
// Subscribers added or removed by a handler take effect on the next Emit.
func (e *Emitter[T]) Emit(v T) int {
	e.lock.RLock()
	snapshot := make([]Handler[T], len(e.subs))
	for i, s := range e.subs {
		snapshot[i] = s.fn
	}
	e.lock.RUnlock()

	for _, fn := range snapshot {
		fn(v)
	}
	return len(snapshot)
}

func (e *Emitter[T]) Len() int {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return len(e.subs)
}
