package cmd

// RawOption is one loosely typed (name, value) pair supplied by the
// transport. A nil Value counts as absent.
type RawOption struct {
	Name  string
	Value any
}

// Value is one entry of a decoded argument set.
type Value struct {
	Kind    Kind
	Present bool
	Data    any
}

// Values is the per-invocation decoded argument set. Every declared
// argument has an entry; optional arguments without input are recorded as
// explicitly absent.
type Values struct {
	entries map[string]Value
	order   []string
}

func newValues(n int) *Values {
	return &Values{entries: make(map[string]Value, n), order: make([]string, 0, n)}
}

func (v *Values) set(name string, val Value) {
	if _, ok := v.entries[name]; !ok {
		v.order = append(v.order, name)
	}
	v.entries[name] = val
}

// Lookup returns the entry for name. ok is false only when name was never
// declared.
func (v *Values) Lookup(name string) (Value, bool) {
	if v == nil {
		return Value{}, false
	}
	val, ok := v.entries[name]
	return val, ok
}

// Has reports whether name is declared and carries a value.
func (v *Values) Has(name string) bool {
	val, ok := v.Lookup(name)
	return ok && val.Present
}

// IsAbsent reports whether name is declared but has no value.
func (v *Values) IsAbsent(name string) bool {
	val, ok := v.Lookup(name)
	return ok && !val.Present
}

// Get returns the decoded value of name.
func (v *Values) Get(name string) (any, bool) {
	val, ok := v.Lookup(name)
	if !ok || !val.Present {
		return nil, false
	}
	return val.Data, true
}

// Names returns the declared names in declaration order.
func (v *Values) Names() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Len is the number of declared entries.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.order)
}

func (v *Values) StringValue(name string) (string, bool) {
	d, ok := v.Get(name)
	s, isStr := d.(string)
	return s, ok && isStr
}

func (v *Values) IntValue(name string) (int64, bool) {
	d, ok := v.Get(name)
	n, isInt := d.(int64)
	return n, ok && isInt
}

func (v *Values) FloatValue(name string) (float64, bool) {
	d, ok := v.Get(name)
	f, isFloat := d.(float64)
	return f, ok && isFloat
}

func (v *Values) BoolValue(name string) (bool, bool) {
	d, ok := v.Get(name)
	b, isBool := d.(bool)
	return b, ok && isBool
}

func (v *Values) MentionValue(name string) (Mention, bool) {
	d, ok := v.Get(name)
	m, isMention := d.(Mention)
	return m, ok && isMention
}
