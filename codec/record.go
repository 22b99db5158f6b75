package codec

import (
	"fmt"
	"strings"
)

// Record is the dynamic instance produced for structs without a Go binding.
// Fields keep the order in which they were first set.
type Record struct {
	values map[string]any
	Name   string
	names  []string
}

func NewRecord(name string) *Record {
	return &Record{Name: name, values: make(map[string]any)}
}

// Get returns the value of a field and whether it has been set.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set assigns a field.
func (r *Record) Set(name string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// With sets a field and returns r, for building values inline.
func (r *Record) With(name string, v any) *Record {
	r.Set(name, v)
	return r
}

// Fields returns field names in insertion order.
func (r *Record) Fields() []string {
	return r.names
}

func (r *Record) Len() int {
	return len(r.names)
}

// Map converts r and any nested records or lists into plain maps and slices.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.names))
	for _, n := range r.names {
		out[n] = plain(r.values[n])
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Record:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", n, r.values[n])
	}
	b.WriteByte('}')
	return b.String()
}
