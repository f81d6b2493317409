// Package extension provides the ordered name-keyed tables that generated schema
// signatures and resolver handlers are collected in, and the single merge rule
// used to layer custom entries over generated ones.
package extension

// Table is an insertion-ordered mapping from name to value.
// The zero value is ready to use.
type Table[V any] struct {
	keys   []string
	values map[string]V
}

// NewTable returns an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{}
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (t *Table[V]) Set(key string, value V) {
	if t.values == nil {
		t.values = make(map[string]V)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value stored under key.
func (t *Table[V]) Get(key string) (V, bool) {
	if t == nil || t.values == nil {
		var zero V
		return zero, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table[V]) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Table[V]) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (t *Table[V]) Each(fn func(key string, value V)) {
	if t == nil {
		return
	}
	for _, k := range t.keys {
		fn(k, t.values[k])
	}
}

// Merge returns a new table holding base's entries followed by each overlay's.
// An overlay entry whose key already exists replaces the value in place; new keys
// are appended in overlay order. Later overlays win over earlier ones. Inputs are not modified.
func Merge[V any](base *Table[V], overlays ...*Table[V]) *Table[V] {
	out := NewTable[V]()
	base.Each(out.Set)
	for _, overlay := range overlays {
		overlay.Each(out.Set)
	}
	return out
}
