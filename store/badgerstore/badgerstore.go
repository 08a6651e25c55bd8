// Package badgerstore is the store.I implementation backed by
// github.com/dgraph-io/badger/v4, the embedded KV engine the teacher relay
// is built on. The physical schema is the one row-per-event table from
// spec.md §4.3, with the row encoded via msgpack rather than badger's own
// flatter key scheme — this repo only needs id-keyed save/load-all/delete,
// not the teacher's multi-index query engine, which is out of scope per
// spec.md §1 ("the concrete storage backend... a relational key-value table
// is sufficient").
package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lzcers/ksana-relay/chk"
	"github.com/lzcers/ksana-relay/encoders/event"
	"github.com/lzcers/ksana-relay/encoders/kind"
	"github.com/lzcers/ksana-relay/encoders/tag"
	"github.com/lzcers/ksana-relay/encoders/tags"
	"github.com/lzcers/ksana-relay/encoders/timestamp"
	"github.com/lzcers/ksana-relay/log"
	"github.com/lzcers/ksana-relay/store"
)

// row is the on-disk encoding of one event, msgpack'd as the value under
// key = event id.
type row struct {
	Pubkey    []byte
	CreatedAt int64
	Kind      uint64
	Tags      []tagRow
	Content   string
	Sig       []byte
}

type tagRow struct {
	Kind                Kind
	EventId, RelayURL   string
	Marker, Pubkey      string
	Petname, Value      string
	Name                string
	Data                []string
	HasRelay, HasMarker bool
	HasPetname          bool
}

// Kind mirrors tag.Kind so msgpack doesn't need to know about the tag
// package's internals.
type Kind = tag.Kind

// D wraps a badger.DB as a store.I.
type D struct {
	db *badger.DB
}

var _ store.I = (*D)(nil)

// Open opens (creating if necessary) a badger database at dir.
func Open(dir string) (d *D, err error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	var db *badger.DB
	if db, err = badger.Open(opts); chk.E(err) {
		return nil, fmt.Errorf("badgerstore: open %s: %w", dir, err)
	}
	return &D{db: db}, nil
}

// Close releases the underlying badger.DB.
func (d *D) Close() error { return d.db.Close() }

func toRow(ev *event.E) row {
	r := row{
		Pubkey:    ev.Pubkey,
		CreatedAt: ev.CreatedAt.I64(),
		Kind:      ev.Kind.K,
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
	for _, t := range ev.Tags {
		r.Tags = append(r.Tags, tagRow{
			Kind: t.Kind, EventId: t.EventId, RelayURL: t.RecommendedRelayURL,
			Marker: t.Marker, Pubkey: t.Pubkey, Petname: t.Petname,
			Value: t.Value, Name: t.Name, Data: t.Data,
			HasRelay: t.RecommendedRelayURL != "", HasMarker: t.Marker != "",
			HasPetname: t.Petname != "",
		})
	}
	return r
}

func fromRow(id []byte, r row) *event.E {
	ev := &event.E{
		Id:        id,
		Pubkey:    r.Pubkey,
		CreatedAt: timestamp.FromUnix(r.CreatedAt),
		Kind:      kind.New(r.Kind),
		Content:   r.Content,
		Sig:       r.Sig,
	}
	for _, tr := range r.Tags {
		ev.Tags = append(ev.Tags, tag.T{
			Kind: tr.Kind, EventId: tr.EventId,
			RecommendedRelayURL: tr.RelayURL, Marker: tr.Marker,
			Pubkey: tr.Pubkey, Petname: tr.Petname, Value: tr.Value,
			Name: tr.Name, Data: tr.Data,
		})
	}
	if ev.Tags == nil {
		ev.Tags = tags.T{}
	}
	return ev
}

// Save inserts ev, keyed by its id.
func (d *D) Save(_ context.Context, ev *event.E) (err error) {
	val, err := msgpack.Marshal(toRow(ev))
	if err != nil {
		return fmt.Errorf("badgerstore: encode: %w", err)
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ev.Id, val)
	})
	if chk.E(err) {
		return fmt.Errorf("%w: %v", store.ErrStore, err)
	}
	return nil
}

// LoadAll returns every persisted event. Order is badger's key iteration
// order (ascending id), not necessarily original insertion order.
func (d *D) LoadAll(_ context.Context) (out event.S, err error) {
	err = d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := append([]byte{}, item.KeyCopy(nil)...)
			var r row
			if verr := item.Value(func(v []byte) error {
				return msgpack.Unmarshal(v, &r)
			}); verr != nil {
				log.W.F("badgerstore: skipping undecodable row %x: %s", id, verr)
				continue
			}
			out = append(out, fromRow(id, r))
		}
		return nil
	})
	if chk.E(err) {
		return nil, fmt.Errorf("%w: %v", store.ErrStore, err)
	}
	return out, nil
}

// Delete removes the row at id iff its stored pubkey equals pubkey.
func (d *D) Delete(_ context.Context, id, pubkey []byte) (n int, err error) {
	err = d.db.Update(func(txn *badger.Txn) error {
		item, gerr := txn.Get(id)
		if gerr == badger.ErrKeyNotFound {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		var r row
		if verr := item.Value(func(v []byte) error {
			return msgpack.Unmarshal(v, &r)
		}); verr != nil {
			return verr
		}
		if !bytesEqual(r.Pubkey, pubkey) {
			return nil
		}
		if derr := txn.Delete(id); derr != nil {
			return derr
		}
		n = 1
		return nil
	})
	if chk.E(err) {
		return 0, fmt.Errorf("%w: %v", store.ErrStore, err)
	}
	return n, nil
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
