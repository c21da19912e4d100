package querycache

import "strings"

// keySep joins tokens into the internal map identity. It is a control
// character so that ordinary tokens (including encoded filter clauses)
// cannot collide with a joined form.
const keySep = "\x1f"

// Key identifies a cached query result as an ordered token sequence. Keys
// form a prefix hierarchy: invalidating Key{"products"} invalidates every
// key whose tokens start with "products", such as a filtered product list.
type Key []string

// NewKey builds a key from its tokens.
func NewKey(tokens ...string) Key {
	return Key(tokens)
}

// Equal reports whether two keys have identical token sequences.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether k starts with every token of prefix, in order.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// With returns a new key extended by the given tokens.
func (k Key) With(tokens ...string) Key {
	extended := make(Key, 0, len(k)+len(tokens))
	extended = append(extended, k...)
	return append(extended, tokens...)
}

// String renders the key for logs.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// id is the exact map identity of the key.
func (k Key) id() string {
	return strings.Join(k, keySep)
}
