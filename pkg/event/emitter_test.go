package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitterDeliversInSubscriptionOrder(t *testing.T) {
	var e Emitter[string]
	var got []string

	e.On(func(s string) { got = append(got, "first:"+s) })
	e.On(func(s string) { got = append(got, "second:"+s) })
	e.On(func(s string) { got = append(got, "third:"+s) })

	n := e.Emit("vote")
	require.Equal(t, 3, n)
	require.Equal(t, []string{"first:vote", "second:vote", "third:vote"}, got)
}

func TestEmitterRemove(t *testing.T) {
	var e Emitter[int]
	var a, b int

	removeA := e.On(func(v int) { a += v })
	e.On(func(v int) { b += v })

	e.Emit(1)
	removeA()
	removeA()
	e.Emit(2)

	require.Equal(t, 1, a)
	require.Equal(t, 3, b)
	require.Equal(t, 1, e.Len())
}

func TestEmitterNilHandler(t *testing.T) {
	var e Emitter[int]
	remove := e.On(nil)
	remove()
	require.Equal(t, 0, e.Emit(1))
}

func TestEmitterSubscribeDuringEmit(t *testing.T) {
	var e Emitter[int]
	late := 0
	e.On(func(int) {
		e.On(func(int) { late++ })
	})

	e.Emit(1)
	require.Equal(t, 0, late, "handler added during emit must not see the current event")
	e.Emit(2)
	require.Equal(t, 1, late)
}

func TestEmitterConcurrentEmit(t *testing.T) {
	var e Emitter[int]
	var lock sync.Mutex
	total := 0
	e.On(func(v int) {
		lock.Lock()
		total += v
		lock.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Emit(1)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, total)
}
