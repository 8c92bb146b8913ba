package mol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sanonone/molgraph/pkg/geom"
)

// ValueKind is the type tag of a GenericValue.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindVec
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindVec:
		return "vec"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// GenericValue is a user-defined property value. Conversions between kinds
// are best-effort: a value that cannot be coerced yields the default the
// caller supplies instead of an error.
type GenericValue struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	v    geom.Vec
}

func StringValue(s string) GenericValue { return GenericValue{kind: KindString, s: s} }
func IntValue(i int64) GenericValue     { return GenericValue{kind: KindInt, i: i} }
func FloatValue(f float64) GenericValue { return GenericValue{kind: KindFloat, f: f} }
func BoolValue(b bool) GenericValue     { return GenericValue{kind: KindBool, b: b} }
func VecValue(v geom.Vec) GenericValue  { return GenericValue{kind: KindVec, v: v} }

func (g GenericValue) Kind() ValueKind { return g.kind }
func (g GenericValue) String() string  { return g.AsString() }

// Equal reports whether both values have the same kind and content.
func (g GenericValue) Equal(o GenericValue) bool { return g == o }

// AsFloat converts to float64. Strings are parsed, bools map to 0/1 and
// vectors fall back to def.
func (g GenericValue) AsFloat(def float64) float64 {
	switch g.kind {
	case KindFloat:
		return g.f
	case KindInt:
		return float64(g.i)
	case KindBool:
		if g.b {
			return 1
		}
		return 0
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(g.s), 64); err == nil {
			return f
		}
	}
	return def
}

// AsInt converts to int64. Floats are truncated.
func (g GenericValue) AsInt(def int64) int64 {
	switch g.kind {
	case KindInt:
		return g.i
	case KindFloat:
		return int64(g.f)
	case KindBool:
		if g.b {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(g.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}
	return def
}

// AsBool converts to bool. Numbers are true when non-zero; strings accept
// the usual spellings understood by strconv.ParseBool plus "yes"/"no".
func (g GenericValue) AsBool(def bool) bool {
	switch g.kind {
	case KindBool:
		return g.b
	case KindInt:
		return g.i != 0
	case KindFloat:
		return g.f != 0
	case KindString:
		s := strings.ToLower(strings.TrimSpace(g.s))
		switch s {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return def
}

// AsVec returns the vector value, or def for any other kind.
func (g GenericValue) AsVec(def geom.Vec) geom.Vec {
	if g.kind == KindVec {
		return g.v
	}
	return def
}

// AsString formats any kind as text.
func (g GenericValue) AsString() string {
	switch g.kind {
	case KindString:
		return g.s
	case KindInt:
		return strconv.FormatInt(g.i, 10)
	case KindFloat:
		return strconv.FormatFloat(g.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(g.b)
	case KindVec:
		return fmt.Sprintf("{%g,%g,%g}", g.v.X, g.v.Y, g.v.Z)
	}
	return ""
}

// Props is a bag of generic properties attached to a node.
type Props struct {
	m map[string]GenericValue
}

// Set stores v under key.
func (p *Props) Set(key string, v GenericValue) {
	if p.m == nil {
		p.m = make(map[string]GenericValue)
	}
	p.m[key] = v
}

// Get returns the value stored under key.
func (p *Props) Get(key string) (GenericValue, bool) {
	v, ok := p.m[key]
	return v, ok
}

// Has reports whether key is set.
func (p *Props) Has(key string) bool {
	_, ok := p.m[key]
	return ok
}

// Remove deletes key. Removing a missing key is a no-op.
func (p *Props) Remove(key string) {
	delete(p.m, key)
}

// Keys returns the property names in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.m))
	for k := range p.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (p *Props) Len() int { return len(p.m) }

// Float returns the property as float64, or def when missing or not coercible.
func (p *Props) Float(key string, def float64) float64 {
	if v, ok := p.m[key]; ok {
		return v.AsFloat(def)
	}
	return def
}

// Int returns the property as int64, or def.
func (p *Props) Int(key string, def int64) int64 {
	if v, ok := p.m[key]; ok {
		return v.AsInt(def)
	}
	return def
}

// String returns the property as text, or def when missing.
func (p *Props) String(key string, def string) string {
	if v, ok := p.m[key]; ok {
		return v.AsString()
	}
	return def
}

// Bool returns the property as bool, or def.
func (p *Props) Bool(key string, def bool) bool {
	if v, ok := p.m[key]; ok {
		return v.AsBool(def)
	}
	return def
}

// Vec returns the property as a vector, or def.
func (p *Props) Vec(key string, def geom.Vec) geom.Vec {
	if v, ok := p.m[key]; ok {
		return v.AsVec(def)
	}
	return def
}

// copyFrom replaces the receiver's contents with a copy of o.
func (p *Props) copyFrom(o *Props) {
	if o == nil || len(o.m) == 0 {
		p.m = nil
		return
	}
	p.m = make(map[string]GenericValue, len(o.m))
	for k, v := range o.m {
		p.m[k] = v
	}
}
