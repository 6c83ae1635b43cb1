package strategy

import "strings"

// QueryBuilder serializes query parameters in insertion order using the
// params-builder codec (see EncodeQueryValue).
// QueryBuilder is NOT thread-safe; build one per request.
type QueryBuilder struct {
	keys   []string
	values map[string][]string
}

// NewQueryBuilder returns an empty builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{values: make(map[string][]string)}
}

// Set replaces all values of key.
func (b *QueryBuilder) Set(key, value string) *QueryBuilder {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = []string{value}
	return b
}

// Append adds a value to key, keeping existing ones.
func (b *QueryBuilder) Append(key, value string) *QueryBuilder {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = append(b.values[key], value)
	return b
}

// Get returns the first value of key.
func (b *QueryBuilder) Get(key string) (string, bool) {
	vs := b.values[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// String renders the query without a leading '?'.
func (b *QueryBuilder) String() string {
	var sb strings.Builder
	for _, k := range b.keys {
		for _, v := range b.values[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(EncodeQueryValue(k))
			sb.WriteByte('=')
			sb.WriteString(EncodeQueryValue(v))
		}
	}
	return sb.String()
}
