package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permissionArgs() []*Argument {
	return []*Argument{
		NewArgument("who").SetValueType(KindMentionable).SetRequired(true),
		NewArgument("command").SetRequired(true).SetAutocomplete(EnumFunc(func() []string {
			return []string{"ping", "slash"}
		})),
		NewArgument("type").SetChoices("allow", "deny"),
	}
}

func TestDecode_AllDeclaredArgumentsHaveEntries(t *testing.T) {
	vals, err := Decode(permissionArgs(), []RawOption{
		{Name: "who", Value: "<user:123>"},
		{Name: "command", Value: "ping"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, vals.Len())
	assert.Equal(t, []string{"who", "command", "type"}, vals.Names())

	who, ok := vals.MentionValue("who")
	require.True(t, ok)
	assert.Equal(t, Mention{Type: MentionUser, ID: "123"}, who)

	cmdName, ok := vals.StringValue("command")
	require.True(t, ok)
	assert.Equal(t, "ping", cmdName)

	assert.True(t, vals.IsAbsent("type"))
	assert.False(t, vals.Has("type"))
	_, declared := vals.Lookup("nope")
	assert.False(t, declared)
}

func TestDecode_MissingRequired(t *testing.T) {
	_, err := Decode(permissionArgs(), []RawOption{{Name: "command", Value: "ping"}})
	require.Error(t, err)

	var missing *MissingArgumentError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "who", missing.Name)
	assert.ErrorIs(t, err, ErrMissingArgument)
	assert.True(t, IsDecodeError(err))
}

func TestDecode_NilValueIsAbsent(t *testing.T) {
	args := []*Argument{NewArgument("a"), NewArgument("b").SetRequired(true)}

	_, err := Decode(args, []RawOption{{Name: "a", Value: "x"}, {Name: "b", Value: nil}})
	assert.ErrorIs(t, err, ErrMissingArgument)

	vals, err := Decode(args, []RawOption{{Name: "a", Value: nil}, {Name: "b", Value: "y"}})
	require.NoError(t, err)
	assert.True(t, vals.IsAbsent("a"))
}

func TestDecode_InvalidEnum(t *testing.T) {
	_, err := Decode(permissionArgs(), []RawOption{
		{Name: "who", Value: "<user:1>"},
		{Name: "command", Value: "ping"},
		{Name: "type", Value: "maybe"},
	})
	var invalid *InvalidEnumValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "type", invalid.Name)
	assert.Equal(t, "maybe", invalid.Got)
	assert.Equal(t, []string{"allow", "deny"}, invalid.Allowed)
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestDecode_DynamicEnumIsReadPerCall(t *testing.T) {
	names := []string{"ping"}
	args := []*Argument{
		NewArgument("command").SetRequired(true).SetAutocomplete(EnumFunc(func() []string { return names })),
	}

	_, err := Decode(args, []RawOption{{Name: "command", Value: "play"}})
	assert.ErrorIs(t, err, ErrInvalidEnum)

	names = append(names, "play")
	vals, err := Decode(args, []RawOption{{Name: "command", Value: "play"}})
	require.NoError(t, err)
	assert.True(t, vals.Has("command"))
}

func TestDecode_TypeMismatch(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		raw  any
	}{
		{"string from int", KindString, 42},
		{"integer from fraction", KindInteger, 1.5},
		{"integer from text", KindInteger, "ten"},
		{"integer overflow", KindInteger, 1e19},
		{"number from bool", KindNumber, true},
		{"boolean from text", KindBoolean, "perhaps"},
		{"user from role", KindUser, "<@&5>"},
		{"role from user", KindRole, "<@5>"},
		{"channel from garbage", KindChannel, "#general"},
		{"mentionable from channel", KindMentionable, "<#5>"},
		{"mentionable from bare id", KindMentionable, "123"},
		{"mentionable from number", KindMentionable, 123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := []*Argument{NewArgument("v").SetValueType(tc.kind)}
			_, err := Decode(args, []RawOption{{Name: "v", Value: tc.raw}})

			var mismatch *TypeMismatchError
			require.True(t, errors.As(err, &mismatch), "err = %v", err)
			assert.Equal(t, "v", mismatch.Name)
			assert.Equal(t, tc.kind, mismatch.Expected)
			assert.Equal(t, tc.raw, mismatch.Got)
		})
	}
}

func TestDecode_Conversions(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		raw  any
		want any
	}{
		{"integer from float64", KindInteger, float64(7), int64(7)},
		{"integer from json number", KindInteger, json.Number("-12"), int64(-12)},
		{"integer from text", KindInteger, "40", int64(40)},
		{"number from int", KindNumber, 3, float64(3)},
		{"number from text", KindNumber, "2.5", 2.5},
		{"boolean from text", KindBoolean, "true", true},
		{"user from markup", KindUser, "<@!77>", Mention{Type: MentionUser, ID: "77"}},
		{"user from bare id", KindUser, "77", Mention{Type: MentionUser, ID: "77"}},
		{"role from canonical", KindRole, "<role:8>", Mention{Type: MentionRole, ID: "8"}},
		{"channel from markup", KindChannel, "<#9>", Mention{Type: MentionChannel, ID: "9"}},
		{"mentionable role", KindMentionable, "<@&10>", Mention{Type: MentionRole, ID: "10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := []*Argument{NewArgument("v").SetValueType(tc.kind)}
			vals, err := Decode(args, []RawOption{{Name: "v", Value: tc.raw}})
			require.NoError(t, err)
			got, ok := vals.Get("v")
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_DuplicateOption(t *testing.T) {
	_, err := Decode(permissionArgs(), []RawOption{
		{Name: "who", Value: "<user:1>"},
		{Name: "who", Value: "<user:2>"},
		{Name: "command", Value: "ping"},
	})
	var dup *DuplicateOptionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "who", dup.Name)
}

func TestDecode_UnknownOptionsIgnored(t *testing.T) {
	vals, err := Decode(permissionArgs(), []RawOption{
		{Name: "who", Value: "<user:1>"},
		{Name: "command", Value: "ping"},
		{Name: "extra", Value: "ignored"},
	})
	require.NoError(t, err)
	_, declared := vals.Lookup("extra")
	assert.False(t, declared)
}

func TestDecode_OrderIndependent(t *testing.T) {
	raw := []RawOption{
		{Name: "who", Value: "<role:4>"},
		{Name: "command", Value: "slash"},
		{Name: "type", Value: "deny"},
	}
	want, err := Decode(permissionArgs(), raw)
	require.NoError(t, err)

	reversed := []RawOption{raw[2], raw[0], raw[1]}
	got, err := Decode(permissionArgs(), reversed)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// With two faults, the first declared argument is reported either way.
	bad := []RawOption{{Name: "type", Value: "maybe"}, {Name: "command", Value: "ping"}}
	_, err1 := Decode(permissionArgs(), bad)
	_, err2 := Decode(permissionArgs(), []RawOption{bad[1], bad[0]})
	assert.ErrorIs(t, err1, ErrMissingArgument)
	assert.Equal(t, err1, err2)
}

func TestDecode_InjectedArgumentsSkipped(t *testing.T) {
	args := []*Argument{
		NewArgument("ctx").SetValueType(KindContext),
		NewArgument("name").SetRequired(true),
	}
	vals, err := Decode(args, []RawOption{{Name: "ctx", Value: "spoofed"}, {Name: "name", Value: "x"}})
	require.NoError(t, err)
	_, declared := vals.Lookup("ctx")
	assert.False(t, declared)
}

func TestParseMention(t *testing.T) {
	cases := []struct {
		in   string
		want Mention
		ok   bool
	}{
		{"<@1>", Mention{Type: MentionUser, ID: "1"}, true},
		{"<@!1>", Mention{Type: MentionUser, ID: "1"}, true},
		{"<@&2>", Mention{Type: MentionRole, ID: "2"}, true},
		{"<#3>", Mention{Type: MentionChannel, ID: "3"}, true},
		{"<user:4>", Mention{Type: MentionUser, ID: "4"}, true},
		{"<channel:5>", Mention{Type: MentionChannel, ID: "5"}, true},
		{"6", Mention{ID: "6"}, true},
		{"<@abc>", Mention{}, false},
		{"<guild:7>", Mention{}, false},
		{"<>", Mention{}, false},
		{"", Mention{}, false},
		{"123456789012345678901", Mention{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseMention(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestMention_Render(t *testing.T) {
	u := Mention{Type: MentionUser, ID: "1"}
	r := Mention{Type: MentionRole, ID: "2"}
	c := Mention{Type: MentionChannel, ID: "3"}

	assert.Equal(t, "<@1>", u.String())
	assert.Equal(t, "<@&2>", r.String())
	assert.Equal(t, "<#3>", c.String())
	assert.Equal(t, "<role:2>", r.Canonical())

	back, ok := ParseMention(r.Canonical())
	require.True(t, ok)
	assert.Equal(t, r, back)
}

func TestValues_TypedAccessors(t *testing.T) {
	args := []*Argument{
		NewArgument("text"),
		NewArgument("count").SetValueType(KindInteger),
		NewArgument("ratio").SetValueType(KindNumber),
		NewArgument("loud").SetValueType(KindBoolean),
		NewArgument("who").SetValueType(KindUser),
		NewArgument("quiet").SetValueType(KindBoolean),
	}
	v, err := Decode(args, []RawOption{
		{Name: "text", Value: "hi"},
		{Name: "count", Value: "3"},
		{Name: "ratio", Value: "0.5"},
		{Name: "loud", Value: "false"},
		{Name: "who", Value: "<@42>"},
	})
	require.NoError(t, err)

	s, ok := v.StringValue("text")
	assert.True(t, ok)
	assert.Equal(t, "hi", s)

	n, ok := v.IntValue("count")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	f, ok := v.FloatValue("ratio")
	assert.True(t, ok)
	assert.Equal(t, 0.5, f)

	b, ok := v.BoolValue("loud")
	assert.True(t, ok, "false is present, not absent")
	assert.False(t, b)

	m, ok := v.MentionValue("who")
	assert.True(t, ok)
	assert.Equal(t, Mention{Type: MentionUser, ID: "42"}, m)

	_, ok = v.BoolValue("quiet")
	assert.False(t, ok, "absent optional")
	_, ok = v.FloatValue("count")
	assert.False(t, ok, "integer is not read as a float")
	_, ok = v.BoolValue("text")
	assert.False(t, ok)
}
