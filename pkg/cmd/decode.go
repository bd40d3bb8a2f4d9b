package cmd

import (
	"encoding/json"
	"math"
	"strconv"
)

type decodeFunc func(raw any) (any, bool)

// decoders is the full Kind → conversion table. Injected kinds have no
// entry: they never come from raw input.
var decoders = map[Kind]decodeFunc{
	KindString:      decodeString,
	KindInteger:     decodeInteger,
	KindNumber:      decodeNumber,
	KindBoolean:     decodeBoolean,
	KindUser:        decodeMentionOf(MentionUser),
	KindRole:        decodeMentionOf(MentionRole),
	KindChannel:     decodeMentionOf(MentionChannel),
	KindMentionable: decodeMentionable,
}

// Decode converts an unordered raw option set into the typed values args
// declare. Arguments are checked in declaration order, so with several
// faults the reported one does not depend on the order of raw.
func Decode(args []*Argument, raw []RawOption) (*Values, error) {
	byName := make(map[string]any, len(raw))
	for _, opt := range raw {
		if _, dup := byName[opt.Name]; dup {
			return nil, &DuplicateOptionError{Name: opt.Name}
		}
		byName[opt.Name] = opt.Value
	}

	out := newValues(len(args))
	for _, a := range args {
		if a.Injected() {
			continue
		}
		rv, ok := byName[a.name]
		if !ok || rv == nil {
			if a.required {
				return nil, &MissingArgumentError{Name: a.name}
			}
			out.set(a.name, Value{Kind: a.kind})
			continue
		}

		dec, ok := decoders[a.kind]
		if !ok {
			return nil, &TypeMismatchError{Name: a.name, Expected: a.kind, Got: rv}
		}
		val, ok := dec(rv)
		if !ok {
			return nil, &TypeMismatchError{Name: a.name, Expected: a.kind, Got: rv}
		}

		if a.enum != nil {
			s, _ := val.(string)
			allowed := a.enum.Values()
			if !contains(allowed, s) {
				return nil, &InvalidEnumValueError{Name: a.name, Got: s, Allowed: append([]string(nil), allowed...)}
			}
		}
		out.set(a.name, Value{Kind: a.kind, Present: true, Data: val})
	}
	return out, nil
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func decodeString(raw any) (any, bool) {
	s, ok := raw.(string)
	return s, ok
}

func decodeInteger(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= 1<<63 || v < -(1<<63) {
			return nil, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return nil, false
}

func decodeNumber(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return nil, false
}

func decodeBoolean(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return nil, false
}

// decodeMentionOf accepts a mention of type t, or a bare id taken to be one.
func decodeMentionOf(t MentionType) decodeFunc {
	return func(raw any) (any, bool) {
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}
		m, ok := ParseMention(s)
		if !ok {
			return nil, false
		}
		if m.Type == 0 {
			m.Type = t
		}
		if m.Type != t {
			return nil, false
		}
		return m, true
	}
}

// decodeMentionable accepts a user or a role. A bare id is ambiguous and
// rejected; transports resolve it to the canonical form first.
func decodeMentionable(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	m, ok := ParseMention(s)
	if !ok || (m.Type != MentionUser && m.Type != MentionRole) {
		return nil, false
	}
	return m, true
}
