package hub

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/log"
)

// busCapacity is the bounded per-consumer buffer size for the broadcast bus
// (§5): a slow consumer that overflows this buffer has its oldest queued
// event dropped rather than stalling the Hub.
const busCapacity = 32

// Bus is the Hub-internal, many-reader channel that distributes every
// accepted event to all live subscribers. Registration uses a lock-free
// concurrent map (puzpuzpuz/xsync) so subscriber goroutines can
// subscribe/unsubscribe without contending with the Hub's single-threaded
// request loop, which is the only publisher.
type Bus struct {
	subs   *xsync.MapOf[uint64, chan *event.E]
	nextID atomic.Uint64
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: xsync.NewMapOf[uint64, chan *event.E]()}
}

// Subscribe registers a new receiver and returns its id (for Unsubscribe)
// and the channel it will receive accepted events on.
func (b *Bus) Subscribe() (id uint64, ch <-chan *event.E) {
	id = b.nextID.Add(1)
	c := make(chan *event.E, busCapacity)
	b.subs.Store(id, c)
	return id, c
}

// Unsubscribe removes a receiver registered with Subscribe. The channel is
// not closed: Publish may be in the middle of a Range over the map and
// still hold this id's channel, and a send on a closed channel panics. The
// owning Subscriber has already stopped reading by the time it calls this,
// so the channel is simply abandoned and left to the garbage collector.
func (b *Bus) Unsubscribe(id uint64) {
	b.subs.Delete(id)
}

// Publish fans ev out to every live subscriber. A subscriber whose buffer
// is full has its oldest queued event dropped, is logged, and is not
// otherwise affected — the connection stays up. A subscriber that
// Unsubscribes concurrently with a Range over it still has a live,
// unclosed channel to send on (see Unsubscribe), so this never panics on a
// send to a torn-down connection — the event is simply dropped once
// nothing is left to read it.
func (b *Bus) Publish(ev *event.E) {
	b.subs.Range(func(id uint64, ch chan *event.E) bool {
		select {
		case ch <- ev:
			return true
		default:
		}
		// ch's only other concurrent actor is the owning Subscriber's read
		// loop, which only ever removes items, so this drop is
		// conservative: the channel may no longer be full by the time we
		// get here, in which case an item is dropped that didn't strictly
		// need to be. That is still within the documented drop-oldest
		// contract (a slow subscriber loses queued events, never the
		// connection) and cheaper than serializing this against every
		// subscriber's reader with a lock.
		select {
		case <-ch:
			log.W.F(
				"bus: subscriber %d too slow, dropped oldest queued event",
				id,
			)
		default:
		}
		select {
		case ch <- ev:
		default:
		}
		return true
	})
}
