package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := New[string]()

	var a, b []string
	bus.Subscribe(func(s string) { a = append(a, s) })
	bus.Subscribe(func(s string) { b = append(b, s) })

	bus.Publish("one")
	bus.Publish("two")

	assert.Equal(t, []string{"one", "two"}, a)
	assert.Equal(t, []string{"one", "two"}, b)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New[int]()

	calls := 0
	unsubscribe := bus.Subscribe(func(int) { calls++ })

	bus.Publish(1)
	unsubscribe()
	unsubscribe()
	bus.Publish(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}
