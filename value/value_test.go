package value

import (
	"encoding/json"
	"testing"
)

func mustFromJSON(t *testing.T, s string) Value {
	t.Helper()
	var x any
	if err := json.Unmarshal([]byte(s), &x); err != nil {
		t.Fatalf("invalid test JSON %q: %s", s, err)
	}
	v, err := FromGo(x)
	if err != nil {
		t.Fatalf("FromGo: %s", err)
	}
	return v
}

func TestObjectKeepsInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", Number("1"))
	obj.Set("a", Number("2"))
	obj.Set("b", Number("3"))

	keys := obj.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	v, ok := obj.Get("b")
	if !ok || v != Number("3") {
		t.Fatalf("expected b = 3, got %v", v)
	}
	if s := obj.String(); s != `{"b": 3, "a": 2}` {
		t.Errorf("got %s", s)
	}
}

func TestCloneIsolatesFromMutation(t *testing.T) {
	root := NewObject()
	list := NewArray()
	root.Set("list", list)
	list.Append(Number("1"))

	snapshot := Clone(root)
	list.Append(Number("2"))
	root.Set("extra", Bool(true))

	want := mustFromJSON(t, `{"list": [1]}`)
	if !Equal(snapshot, want) {
		t.Errorf("clone changed: got %s", snapshot)
	}
	if Equal(root, snapshot) {
		t.Errorf("original should have diverged")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"nil nil", nil, nil, true},
		{"nil null", nil, Null{}, false},
		{"numbers numerically", Number("1.0"), Number("1"), true},
		{"exponent", Number("1e2"), Number("100"), true},
		{"different numbers", Number("1"), Number("2"), false},
		{"string vs number", String("1"), Number("1"), false},
		{"bools", Bool(true), Bool(true), true},
		{"objects ignore order", mustFromJSON(t, `{"a":1,"b":2}`), mustFromJSON(t, `{"b":2,"a":1}`), true},
		{"arrays keep order", mustFromJSON(t, `[1,2]`), mustFromJSON(t, `[2,1]`), false},
		{"nested", mustFromJSON(t, `{"a":[{"b":null}]}`), mustFromJSON(t, `{"a":[{"b":null}]}`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.equal {
				t.Errorf("Equal(%v, %v) = %t", tt.a, tt.b, got)
			}
		})
	}
}

func TestToGo(t *testing.T) {
	v := mustFromJSON(t, `{"n":1.5,"s":"x","b":false,"z":null,"l":[1,"two"]}`)
	got := ToGo(v).(map[string]any)
	if got["n"] != 1.5 || got["s"] != "x" || got["b"] != false || got["z"] != nil {
		t.Errorf("unexpected scalars: %v", got)
	}
	l := got["l"].([]any)
	if len(l) != 2 || l[0] != 1.0 || l[1] != "two" {
		t.Errorf("unexpected list: %v", l)
	}
}

func TestNumberConversions(t *testing.T) {
	if f, err := Number("-1.25e2").Float64(); err != nil || f != -125 {
		t.Errorf("Float64: got %v, %v", f, err)
	}
	if n, err := Number("42").Int64(); err != nil || n != 42 {
		t.Errorf("Int64: got %v, %v", n, err)
	}
	if _, err := Number("4.2").Int64(); err == nil {
		t.Errorf("Int64 should fail on a fraction")
	}
}

func TestStringIsJSONLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"tab\tnl\ncr\r", `"tab\tnl\ncr\r"`},
		{"\x01\x1f", `"\u0001\u001f"`},
		{`café`, `"café"`},
		{`caf\u00e9 \uD83D\uDE00`, `"caf\u00e9 \uD83D\uDE00"`},
		{`back\slash`, `"back\\slash"`},
		{`short \u12`, `"short \\u12"`},
		{"héllo 世界", `"héllo 世界"`},
	}
	for _, tt := range tests {
		if got := String(tt.in).String(); got != tt.want {
			t.Errorf("String(%q).String() = %s, want %s", tt.in, got, tt.want)
		}
	}
	// Keys are quoted the same way
	obj := NewObject()
	obj.Set("a\x02", Null{})
	if s := obj.String(); s != `{"a\u0002": null}` {
		t.Errorf("unexpected object %s", s)
	}
}
