package console

import (
	"reflect"
	"testing"
)

func TestParseLiteralScalars(t *testing.T) {
	cases := map[string]any{
		`42`:           int64(42),
		`-7`:           int64(-7),
		`+5`:           int64(5),
		`0x1f`:         int64(31),
		`1_000`:        int64(1000),
		`0`:            int64(0),
		`3.5`:          3.5,
		`-.25`:         -0.25,
		`1e3`:          1000.0,
		`'text'`:       "text",
		`"say \"hi\""`: `say "hi"`,
		`True`:         true,
		`False`:        false,
		`None`:         nil,
		`  12  `:       int64(12),
	}
	for in, want := range cases {
		v, err := ParseLiteral(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := v.Native(); !reflect.DeepEqual(got, want) {
			t.Fatalf("%q: got %#v want %#v", in, got, want)
		}
	}
}

func TestParseLiteralContainers(t *testing.T) {
	v, err := ParseLiteral(`{"b": [1, 'two', 3.0], "a": {"x": None}, 7: (True,)}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Kind != KindMap || len(v.Pairs) != 3 {
		t.Fatalf("unexpected value %#v", v)
	}
	var keys []string
	for _, p := range v.Pairs {
		keys = append(keys, p.Key.keyString())
	}
	if !reflect.DeepEqual(keys, []string{"b", "a", "7"}) {
		t.Fatalf("mapping order not preserved: %v", keys)
	}
	want := map[string]any{
		"b": []any{int64(1), "two", 3.0},
		"a": map[string]any{"x": nil},
		"7": []any{true},
	}
	if got := v.Native(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}

	v, _ = ParseLiteral(`{"k": 1, "k": 2}`)
	if len(v.Pairs) != 1 || v.Pairs[0].Value.Int != 2 {
		t.Fatalf("repeated key should keep the last value: %#v", v.Pairs)
	}
}

func TestParseLiteralRejects(t *testing.T) {
	for _, in := range []string{``, `hello`, `017`, `1.2.3`, `[1, 2`, `{"a" 1}`, `{[1]: 2}`, `'open`, `1 2`, `12abc`, `-`} {
		if _, err := ParseLiteral(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestCoerceIsTotal(t *testing.T) {
	if v := Coerce("San Francisco"); v.Kind != KindString || v.Str != "San Francisco" {
		t.Fatalf("expected text fallback, got %#v", v)
	}
	if v := Coerce("[1, 2]"); v.Kind != KindList || len(v.List) != 2 {
		t.Fatalf("expected list, got %#v", v)
	}
	if v := Coerce("017"); v.Kind != KindString || v.Str != "017" {
		t.Fatalf("expected text for leading zero, got %#v", v)
	}
}
