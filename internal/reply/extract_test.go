package reply

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustText(t *testing.T, raw string) string {
	t.Helper()
	s, err := Text([]byte(raw))
	require.NoError(t, err)
	return s
}

func TestExtractText_Shapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "null", raw: `null`, want: ""},
		{name: "empty object", raw: `{}`, want: ""},
		{name: "empty array", raw: `[]`, want: ""},
		{name: "string", raw: `"hello there"`, want: "hello there"},
		{name: "string kept untrimmed", raw: `"  padded  "`, want: "  padded  "},
		{name: "number", raw: `42`, want: ""},
		{name: "bool", raw: `true`, want: ""},
		{name: "reply", raw: `{"reply":"hi"}`, want: "hi"},
		{name: "reply wins over output", raw: `{"output":"hi","reply":"bye"}`, want: "bye"},
		{name: "output", raw: `{"output":"from workflow"}`, want: "from workflow"},
		{name: "empty reply still wins", raw: `{"reply":"","message":"ignored"}`, want: ""},
		{name: "non-string reply is skipped", raw: `{"reply":{"text":"nested"},"message":"msg"}`, want: "msg"},
		{name: "array of outputs", raw: `[{"output":"a"},{"output":""},{"output":"b"}]`, want: "a\n\nb"},
		{name: "array drops blank entries", raw: `["one","   ",null,2,"two"]`, want: "one\n\ntwo"},
		{name: "array of blanks falls back to first non-empty", raw: `["", "  "]`, want: "  "},
		{name: "preferred key recursion", raw: `{"message":{"text":"deep"}}`, want: "deep"},
		{name: "preferred key order", raw: `{"value":"v","text":"t","message":""}`, want: "t"},
		{name: "preferred key empty falls through", raw: `{"data":{},"content":"c"}`, want: "c"},
		{name: "fallback scan", raw: `{"a":1,"b":"hello"}`, want: "hello"},
		{name: "fallback scan nested", raw: `{"foo":{"message":"deep"}}`, want: "deep"},
		{name: "fallback scan keeps document order", raw: `{"z":"first","a":"second"}`, want: "first"},
		{name: "index keys scanned first", raw: `{"b":"x","1":"y"}`, want: "y"},
		{name: "index keys ascending", raw: `{"10":"ten","2":"two","a":"letter"}`, want: "two"},
		{name: "leading zero is not an index", raw: `{"b":"x","01":"y"}`, want: "x"},
		{name: "signed key is not an index", raw: `{"b":"x","-1":"y"}`, want: "x"},
		{name: "key beyond index range", raw: `{"b":"x","4294967295":"y"}`, want: "x"},
		{name: "numbers only", raw: `{"a":1,"b":[2,3],"c":false}`, want: ""},
		{name: "n8n item list", raw: `[{"json":{"output":"workflow says hi"}}]`, want: "workflow says hi"},
		{name: "nested arrays", raw: `[["a","b"],["c"]]`, want: "a\n\nb\n\nc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, mustText(t, tc.raw))
		})
	}
}

func TestExtractText_DeepNesting(t *testing.T) {
	v := String("bottom")
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			v = Object(Field{Name: "data", Value: v})
		} else {
			v = Array(v)
		}
	}
	require.Equal(t, "bottom", ExtractText(v))
}

func TestExtractText_ZeroValue(t *testing.T) {
	require.Equal(t, "", ExtractText(Value{}))
}

func TestText_InvalidJSON(t *testing.T) {
	_, err := Text([]byte(`{"reply":`))
	require.ErrorIs(t, err, ErrInvalidJSON)

	_, err = Text(nil)
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func TestArrayIndex(t *testing.T) {
	cases := map[string]bool{
		"0": true, "7": true, "4294967294": true,
		"": false, "00": false, "01": false, "-1": false, "1.5": false, "+1": false,
		"4294967295": false, "99999999999": false, "a1": false,
	}
	for name, want := range cases {
		_, ok := arrayIndex(name)
		require.Equal(t, want, ok, "name=%q", name)
	}
}
