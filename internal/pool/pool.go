// Package pool implements the intern pool spec.md §4.3 describes: a mapping
// from values to small integer IDs, allocated in first-seen order, with
// value equality (not identity) governing dedup. The teacher dedups LR
// states and productions the same way (grammar/lr0_item.go's kernel/
// lr0ItemID, grammar/production.go's productionID) but does it by hashing
// each value to a fixed-size byte array; here the value space is a Go
// generic parameter, so dedup uses an ordinary comparable key produced by a
// caller-supplied Key function instead of a hash.
package pool

// Pool interns values of type V, keyed by a comparable K a caller derives
// from V (K is usually a canonical string or a small struct of the fields
// that matter for equality). IDs are allocated in first-seen order starting
// at 0, matching spec.md §4.3's "Pool" entity.
type Pool[K comparable, V any] struct {
	key     func(V) K
	idOf    map[K]int
	valueOf []V
}

func New[K comparable, V any](key func(V) K) *Pool[K, V] {
	return &Pool[K, V]{
		key:  key,
		idOf: map[K]int{},
	}
}

// Intern returns the ID for value, allocating a new one if this is the
// first time an equal value has been seen. wasNew reports whether this call
// allocated the ID, which is exactly the "was_new" flag spec.md's design
// notes (§9, "Pool-vs-new test") require the worklist driver to capture at
// intern time rather than re-deriving from a later snapshot of the pool.
func (p *Pool[K, V]) Intern(v V) (id int, wasNew bool) {
	k := p.key(v)
	if id, ok := p.idOf[k]; ok {
		return id, false
	}
	id = len(p.valueOf)
	p.idOf[k] = id
	p.valueOf = append(p.valueOf, v)
	return id, true
}

// Present reports whether id was allocated by this pool instance.
func (p *Pool[K, V]) Present(id int) bool {
	return id >= 0 && id < len(p.valueOf)
}

// ValueOf returns the value interned under id.
func (p *Pool[K, V]) ValueOf(id int) (V, bool) {
	if !p.Present(id) {
		var zero V
		return zero, false
	}
	return p.valueOf[id], true
}

// IDs returns every allocated ID in allocation order.
func (p *Pool[K, V]) IDs() []int {
	ids := make([]int, len(p.valueOf))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Entries returns every (id, value) pair in allocation order.
func (p *Pool[K, V]) Entries() []Entry[V] {
	entries := make([]Entry[V], len(p.valueOf))
	for i, v := range p.valueOf {
		entries[i] = Entry[V]{ID: i, Value: v}
	}
	return entries
}

// Len reports how many distinct values have been interned.
func (p *Pool[K, V]) Len() int {
	return len(p.valueOf)
}

type Entry[V any] struct {
	ID    int
	Value V
}
