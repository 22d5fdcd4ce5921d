package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToAllSubscribers(t *testing.T) {
	h := NewHub[int]()
	a, stopA := h.Subscribe(1)
	b, stopB := h.Subscribe(1)
	defer stopA()
	defer stopB()

	assert.Equal(t, 2, h.Publish(7))
	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
}

func TestHub_FullSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub[string]()
	ch, stop := h.Subscribe(1)
	defer stop()

	assert.Equal(t, 1, h.Publish("first"))
	assert.Equal(t, 0, h.Publish("dropped"))
	assert.Equal(t, "first", <-ch)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub[int]()
	ch, stop := h.Subscribe(0)
	stop()
	stop()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Len())
}

func TestHub_Close(t *testing.T) {
	h := NewHub[int]()
	ch, stop := h.Subscribe(1)
	h.Close()
	stop()

	_, open := <-ch
	require.False(t, open)

	late, _ := h.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, h.Publish(1))
}
