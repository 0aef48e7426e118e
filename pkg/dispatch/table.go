package dispatch

import "github.com/aretw0/lattice/pkg/marker"

// table is the shared resolution structure: a local key-to-handler map plus
// an ordered list of parent tables consulted on local miss. Local entries
// always shadow parents; parents are checked per candidate key, left to
// right, before resolution moves on to the next (less specific) key.
type table[H any] struct {
	entries map[marker.Key]H
	parents []*table[H]
}

func (t *table[H]) set(k marker.Key, h H) {
	if t.entries == nil {
		t.entries = make(map[marker.Key]H)
	}
	t.entries[k] = h
}

// lookup finds a handler for one exact key, searching this table then the
// parent chain depth-first left-to-right. seen guards against diamonds in
// the delegation graph.
func (t *table[H]) lookup(k marker.Key, seen map[*table[H]]bool) (H, bool) {
	if seen[t] {
		var zero H
		return zero, false
	}
	seen[t] = true
	if h, ok := t.entries[k]; ok {
		return h, true
	}
	for _, p := range t.parents {
		if h, ok := p.lookup(k, seen); ok {
			return h, true
		}
	}
	var zero H
	return zero, false
}

func (t *table[H]) lookupKey(k marker.Key) (H, bool) {
	return t.lookup(k, map[*table[H]]bool{})
}

// resolve walks the candidate keys most specific first and returns the first
// handler found anywhere in the delegation chain for that key.
func (t *table[H]) resolve(keys []marker.Key) (H, marker.Key, bool) {
	for _, k := range keys {
		if h, ok := t.lookupKey(k); ok {
			return h, k, true
		}
	}
	var zero H
	var none marker.Key
	return zero, none, false
}
