// Package hub is the single authoritative owner of the in-memory event log
// and the broadcast bus (§4.5). Every write to the log, every Store call,
// and every REQ scan happens on the Hub's single goroutine; everything else
// interacts with it only through the bounded request queue, so no lock is
// needed around the log itself.
package hub

import (
	"context"

	"github.com/lzcers/ksana-relay/chk"
	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/filter"
	"github.com/lzcers/ksana-relay/encoders/hex"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tag"
	"github.com/lzcers/ksana-relay/log"
	"github.com/lzcers/ksana-relay/matcher"
	"github.com/lzcers/ksana-relay/store"
)

// writesCapacity is the bounded capacity of the Hub's write queue (§5): a
// full queue applies backpressure, suspending producing Subscribers.
const writesCapacity = 32

// QueryResult is one matching event produced by a Query request, carrying
// the subscription id it is destined for.
type QueryResult struct {
	SubID string
	Event *event.E
}

type request interface{ isHubRequest() }

type submitReq struct{ event *event.E }

func (submitReq) isHubRequest() {}

type queryReq struct {
	subID   string
	filters []*filter.T
	out     chan<- QueryResult
}

func (queryReq) isHubRequest() {}

// H is the Hub.
type H struct {
	store  store.I
	bus    *Bus
	writes chan request
	events event.S
}

// New constructs a Hub over the given Store. Call Run to start its request
// loop; it does nothing until then.
func New(st store.I) *H {
	return &H{
		store:  st,
		bus:    NewBus(),
		writes: make(chan request, writesCapacity),
	}
}

// Bus returns the Hub's broadcast bus, for Subscribers to register on.
func (h *H) Bus() *Bus { return h.bus }

// Submit enqueues an accepted event for persistence and fan-out. It blocks
// (applying backpressure) if the write queue is full, until ctx is done.
func (h *H) Submit(ctx context.Context, ev *event.E) error {
	select {
	case h.writes <- submitReq{event: ev}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query enqueues a one-shot historical scan. The returned channel receives
// zero or more matches and is then closed. If ctx is done before the request
// can be enqueued, the returned channel is already closed and ctx.Err() is
// returned.
func (h *H) Query(
	ctx context.Context, subID string, filters []*filter.T,
) (<-chan QueryResult, error) {
	out := make(chan QueryResult, 16)
	select {
	case h.writes <- queryReq{subID: subID, filters: filters, out: out}:
		return out, nil
	case <-ctx.Done():
		close(out)
		return out, ctx.Err()
	}
}

// Run loads persisted events from the Store and then drives the Hub's
// single-threaded request loop until ctx is cancelled.
func (h *H) Run(ctx context.Context) {
	loaded, err := h.store.LoadAll(ctx)
	if chk.E(err) {
		log.E.F("hub: starting with an empty log: %s", err)
	} else {
		h.events = loaded
		log.I.F("hub: loaded %d events from store", len(h.events))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.writes:
			switch r := req.(type) {
			case submitReq:
				h.handleSubmit(ctx, r.event)
			case queryReq:
				h.handleQuery(ctx, r)
			}
		}
	}
}

func (h *H) handleSubmit(ctx context.Context, ev *event.E) {
	switch {
	case ev.Kind.Equal(kind.EventDeletion):
		h.handleDeletion(ctx, ev)
	case ev.Kind.Equal(kind.TextNote) || ev.Kind.Equal(kind.EncryptedDirectMessage):
		if err := h.store.Save(ctx, ev); chk.E(err) {
			log.E.F("hub: save failed for event %s: %s", ev.IdString(), err)
		}
		h.events = append(h.events, ev)
	default:
		// Metadata, RecommendRelay, Auth and any Other kind are ephemeral
		// at this scope: fanned out, never persisted.
	}
	h.bus.Publish(ev)
}

func (h *H) handleDeletion(ctx context.Context, ev *event.E) {
	for _, t := range ev.Tags {
		if t.Kind != tag.KindEvent {
			continue
		}
		id, err := hex.DecLen(t.EventId, 32)
		if chk.E(err) {
			continue
		}
		n, err := h.store.Delete(ctx, id, ev.Pubkey)
		if chk.E(err) {
			continue
		}
		if n > 0 {
			kept := h.events[:0]
			for _, e := range h.events {
				if !bytesEqual(e.Id, id) {
					kept = append(kept, e)
				}
			}
			h.events = kept
		}
	}
}

func (h *H) handleQuery(ctx context.Context, r queryReq) {
	defer close(r.out)
	limit := -1
	for _, f := range r.filters {
		if f.Limit != nil && (limit == -1 || *f.Limit < limit) {
			limit = *f.Limit
		}
	}
	sent := 0
	for _, ev := range h.events {
		if limit >= 0 && sent >= limit {
			break
		}
		if !matcher.Any(ev, r.filters) {
			continue
		}
		select {
		case r.out <- QueryResult{SubID: r.subID, Event: ev}:
			sent++
		case <-ctx.Done():
			return
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
