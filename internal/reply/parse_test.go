package reply

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesStructure(t *testing.T) {
	got, err := Parse([]byte(`{"b":[1,"two",null,true],"a":{"x":"é"},"c":false}`))
	require.NoError(t, err)

	want := Object(
		Field{Name: "b", Value: Array(Number(1), String("two"), Null(), Bool(true))},
		Field{Name: "a", Value: Object(Field{Name: "x", Value: String("é")})},
		Field{Name: "c", Value: Bool(false)},
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	got, err := Parse([]byte(`{"k":"old","other":1,"k":"new"}`))
	require.NoError(t, err)

	want := Object(
		Field{Name: "k", Value: String("new")},
		Field{Name: "other", Value: Number(1)},
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Scalars(t *testing.T) {
	cases := map[string]Kind{
		`null`:    KindNull,
		`  "s"  `: KindString,
		`-1.5e3`:  KindNumber,
		`false`:   KindBool,
		`[]`:      KindArray,
		`{}`:      KindObject,
	}
	for raw, kind := range cases {
		v, err := Parse([]byte(raw))
		require.NoError(t, err, "raw=%q", raw)
		require.Equal(t, kind, v.Kind, "raw=%q", raw)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{``, `{`, `not-json`, `{"a":1,}`} {
		_, err := Parse([]byte(raw))
		require.ErrorIs(t, err, ErrInvalidJSON, "raw=%q", raw)
	}
}

func TestValue_Field(t *testing.T) {
	v := Object(Field{Name: "reply", Value: String("hi")})

	got, ok := v.Field("reply")
	require.True(t, ok)
	require.Equal(t, "hi", got.Str)

	_, ok = v.Field("missing")
	require.False(t, ok)

	_, ok = Array(String("reply")).Field("reply")
	require.False(t, ok)
}
