package hub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lzcers/ksana-relay/encoders/event"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBus()
	id, _ := b.Subscribe()
	b.Unsubscribe(id)

	// The channel is deliberately left open (see Unsubscribe) so a Publish
	// racing the teardown never sends on a closed channel. Once
	// unsubscribed, though, the id is gone from the bus and Publish no
	// longer reaches it.
	ev := &event.E{Id: []byte{1}}
	b.Publish(ev)

	_, stillTracked := b.subs.Load(id)
	require.False(t, stillTracked, "id should no longer be tracked after Unsubscribe")
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := NewBus()
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	ev := &event.E{Id: []byte{1}}
	b.Publish(ev)

	require.Same(t, ev, <-ch1)
	require.Same(t, ev, <-ch2)
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe()

	var last *event.E
	for i := 0; i < busCapacity+5; i++ {
		last = &event.E{Id: []byte{byte(i)}}
		b.Publish(last)
	}

	var got *event.E
	for e := range drain(ch) {
		got = e
	}
	require.Same(t, last, got, "the most recent event should survive drop-oldest")
}

func drain(ch <-chan *event.E) <-chan *event.E {
	out := make(chan *event.E, 64)
	go func() {
		defer close(out)
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				out <- e
			default:
				return
			}
		}
	}()
	return out
}
