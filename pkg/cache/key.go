package cache

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Key identifies one logical query. Keys can only be produced by a
// KeyBuilder, so two call sites asking for the same query always agree on
// the key.
type Key struct {
	s string
}

// String returns the canonical encoding, e.g. "products limit=20"
func (k Key) String() string {
	return k.s
}

// IsZero reports whether k was never built
func (k Key) IsZero() bool {
	return k.s == ""
}

type keyParam struct {
	name  string
	value string
}

// KeyBuilder assembles a Key from a resource name and query parameters
type KeyBuilder struct {
	resource string
	params   []keyParam
}

// NewKey starts a key for resource
func NewKey(resource string) *KeyBuilder {
	return &KeyBuilder{resource: resource}
}

// String adds a string parameter
func (b *KeyBuilder) String(name, value string) *KeyBuilder {
	b.params = append(b.params, keyParam{name: name, value: value})
	return b
}

// Int adds an integer parameter
func (b *KeyBuilder) Int(name string, value int) *KeyBuilder {
	return b.String(name, strconv.Itoa(value))
}

// Key encodes the resource and its parameters. Parameters are sorted by
// name and escaped, so order of calls and separator characters in values
// cannot produce colliding keys.
func (b *KeyBuilder) Key() Key {
	params := make([]keyParam, len(b.params))
	copy(params, b.params)
	sort.SliceStable(params, func(i, j int) bool { return params[i].name < params[j].name })

	var sb strings.Builder
	sb.WriteString(url.PathEscape(b.resource))
	for _, p := range params {
		sb.WriteByte(' ')
		sb.WriteString(url.QueryEscape(p.name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	return Key{s: sb.String()}
}
