package wire

import (
	"math"
	"testing"
	"time"

	kolo "github.com/kolo/xmlrpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCall_Scalars(t *testing.T) {
	doc := `<?xml version="1.0"?>
<methodCall>
  <methodName> add </methodName>
  <params>
    <param><value><i4>3</i4></value></param>
    <param><value><int>-4</int></value></param>
    <param><value>untyped text</value></param>
    <param><value><boolean>1</boolean></value></param>
    <param><value><double>2.5</double></value></param>
    <param><value><dateTime.iso8601>19980717T14:08:55</dateTime.iso8601></value></param>
    <param><value><base64>aGVs
bG8=</base64></value></param>
    <param><value><nil/></value></param>
    <param><value><string></string></value></param>
  </params>
</methodCall>`

	call, err := ParseCall([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "add", call.MethodName)
	require.Len(t, call.Params, 9)

	i, ok := call.Params[0].AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)

	i, _ = call.Params[1].AsInt()
	assert.Equal(t, int64(-4), i)

	s, ok := call.Params[2].AsString()
	assert.True(t, ok)
	assert.Equal(t, "untyped text", s)

	b, ok := call.Params[3].AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	f, ok := call.Params[4].AsDouble()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	ts, ok := call.Params[5].AsDateTime()
	assert.True(t, ok)
	assert.True(t, ts.Equal(time.Date(1998, 7, 17, 14, 8, 55, 0, time.UTC)))

	data, ok := call.Params[6].AsData()
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	assert.True(t, call.Params[7].IsNull())

	s, ok = call.Params[8].AsString()
	assert.True(t, ok)
	assert.Equal(t, "", s)
}

func TestParseCall_Nested(t *testing.T) {
	doc := `<methodCall><methodName>nested</methodName><params><param><value>
<struct>
  <member><name>list</name><value><array><data>
    <value><int>1</int></value><value><string>two</string></value>
  </data></array></value></member>
  <member><name>inner</name><value><struct>
    <member><name>ok</name><value><boolean>0</boolean></value></member>
  </struct></value></member>
</struct></value></param></params></methodCall>`

	call, err := ParseCall([]byte(doc))
	require.NoError(t, err)
	require.Len(t, call.Params, 1)

	want := Dictionary(map[string]Value{
		"list":  Array(Int(1), String("two")),
		"inner": Dictionary(map[string]Value{"ok": Bool(false)}),
	})
	assert.True(t, want.Equal(call.Params[0]), "got %s", call.Params[0])
}

func TestParseCall_NoParams(t *testing.T) {
	call, err := ParseCall([]byte(`<methodCall><methodName>system.listMethods</methodName></methodCall>`))
	require.NoError(t, err)
	assert.Equal(t, "system.listMethods", call.MethodName)
	assert.Empty(t, call.Params)
}

func TestParseCall_Malformed(t *testing.T) {
	cases := map[string]string{
		"not xml":         `this is not xml`,
		"wrong root":      `<methodResponse><params/></methodResponse>`,
		"no method name":  `<methodCall><params/></methodCall>`,
		"empty name":      `<methodCall><methodName>  </methodName></methodCall>`,
		"truncated":       `<methodCall><methodName>x</methodName><params><param>`,
		"bad int":         `<methodCall><methodName>x</methodName><params><param><value><int>abc</int></value></param></params></methodCall>`,
		"bad boolean":     `<methodCall><methodName>x</methodName><params><param><value><boolean>yes</boolean></value></param></params></methodCall>`,
		"unknown type":    `<methodCall><methodName>x</methodName><params><param><value><float>1</float></value></param></params></methodCall>`,
		"two types":       `<methodCall><methodName>x</methodName><params><param><value><int>1</int><int>2</int></value></param></params></methodCall>`,
		"member no value": `<methodCall><methodName>x</methodName><params><param><value><struct><member><name>a</name></member></struct></value></param></params></methodCall>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			call, err := ParseCall([]byte(doc))
			assert.Nil(t, call)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "error %v should wrap ErrMalformed", err)
		})
	}
}

func TestParseCall_Latin1(t *testing.T) {
	doc := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><methodCall><methodName>echo</methodName><params><param><value><string>caf`),
		0xe9)
	doc = append(doc, []byte(`</string></value></param></params></methodCall>`)...)

	call, err := ParseCall(doc)
	require.NoError(t, err)
	s, _ := call.Params[0].AsString()
	assert.Equal(t, "café", s)
}

func TestResponse_RoundTrip(t *testing.T) {
	when := time.Date(2020, 2, 29, 23, 59, 1, 0, time.UTC)
	responses := []Response{
		ValueResponse(Int(7)),
		ValueResponse(Int(1<<40)),
		ValueResponse(String("a < b & c")),
		ValueResponse(Bool(false)),
		ValueResponse(Double(-0.125)),
		ValueResponse(DateTime(when)),
		ValueResponse(DateTime(time.Date(2024, 1, 2, 10, 0, 0, 0, time.FixedZone("EST", -5*3600)))),
		ValueResponse(Array(DateTime(time.Date(2024, 6, 1, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))))),
		ValueResponse(Data([]byte{0, 1, 2, 255})),
		ValueResponse(Null()),
		ValueResponse(Array()),
		ValueResponse(Array(String("x"), Array(Int(1)), Dictionary(nil))),
		ValueResponse(Dictionary(map[string]Value{"b": Int(2), "a": String("1")})),
		FaultResponse(400, "Invalid parameters"),
		FaultResponse(500, "Call to XML-RPC function failed."),
	}
	for _, want := range responses {
		got, err := ParseResponse(want.XML())
		require.NoError(t, err, "response %s", want)
		assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
	}
}

func TestDateTime_EncodedAsUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	xml := string(ValueResponse(DateTime(time.Date(2024, 1, 2, 10, 0, 0, 0, est))).XML())
	assert.Contains(t, xml, "<dateTime.iso8601>20240102T15:00:00</dateTime.iso8601>")
}

func TestCall_RoundTrip(t *testing.T) {
	want := &Call{MethodName: "x.y", Params: []Value{String("é"), Int(-1), Array(Bool(true))}}
	got, err := ParseCall(want.XML())
	require.NoError(t, err)
	assert.Equal(t, want.MethodName, got.MethodName)
	require.Len(t, got.Params, len(want.Params))
	for i := range want.Params {
		assert.True(t, want.Params[i].Equal(got.Params[i]))
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, doc := range []string{
		`<methodResponse></methodResponse>`,
		`<methodResponse><params></params></methodResponse>`,
		`<methodResponse><fault><value><string>x</string></value></fault></methodResponse>`,
		`<methodCall><methodName>x</methodName></methodCall>`,
	} {
		_, err := ParseResponse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestStructMembersSorted(t *testing.T) {
	xml := string(ValueResponse(Dictionary(map[string]Value{
		"zeta": Int(1), "alpha": Int(2), "mid": Int(3),
	})).XML())
	assert.Regexp(t, `alpha.*mid.*zeta`, xml)
}

func TestValueType_Names(t *testing.T) {
	for _, vt := range []ValueType{TypeNull, TypeString, TypeBool, TypeInt, TypeDouble,
		TypeDateTime, TypeData, TypeArray, TypeDictionary} {
		back, ok := ParseValueType(vt.String())
		assert.True(t, ok, vt.String())
		assert.Equal(t, vt, back)
	}
	vt, ok := ParseValueType("i4")
	assert.True(t, ok)
	assert.Equal(t, TypeInt, vt)
	_, ok = ParseValueType("float")
	assert.False(t, ok)
}

type celsius float64

func (c celsius) XMLRPCValue() (Value, error) {
	return Dictionary(map[string]Value{"celsius": Double(float64(c))}), nil
}

func TestValueOf(t *testing.T) {
	when := time.Unix(0, 0).UTC()
	cases := []struct {
		in   any
		want Value
	}{
		{nil, Null()},
		{"s", String("s")},
		{true, Bool(true)},
		{int8(-3), Int(-3)},
		{uint32(9), Int(9)},
		{float32(0.5), Double(0.5)},
		{when, DateTime(when)},
		{[]byte("x"), Data([]byte("x"))},
		{[]string{"a", "b"}, Array(String("a"), String("b"))},
		{[]int{1, 2}, Array(Int(1), Int(2))},
		{[]any{1, "x", nil}, Array(Int(1), String("x"), Null())},
		{map[string]any{"n": 1, "l": []bool{true}}, Dictionary(map[string]Value{
			"n": Int(1), "l": Array(Bool(true)),
		})},
		{map[string]string{"k": "v"}, Dictionary(map[string]Value{"k": String("v")})},
		{celsius(21.5), Dictionary(map[string]Value{"celsius": Double(21.5)})},
		{Int(4), Int(4)},
	}
	for _, c := range cases {
		got, err := ValueOf(c.in)
		require.NoError(t, err, "%T", c.in)
		assert.True(t, c.want.Equal(got), "%T: want %s, got %s", c.in, c.want, got)
	}

	_, err := ValueOf(struct{}{})
	assert.Error(t, err)
	_, err = ValueOf([]any{1, make(chan int)})
	assert.Error(t, err)
	_, err = ValueOf(uint64(1<<63))
	assert.Error(t, err)
}

func TestValueOf_NonFiniteDoubles(t *testing.T) {
	for _, in := range []any{
		math.NaN(),
		math.Inf(1),
		float32(math.Inf(-1)),
		[]float64{1, math.NaN()},
		map[string]any{"x": []any{math.Inf(1)}},
		Array(Double(math.NaN())),
		Dictionary(map[string]Value{"y": Double(math.Inf(-1))}),
	} {
		_, err := ValueOf(in)
		assert.Error(t, err, "%v", in)
	}

	v, err := ValueOf([]float64{math.MaxFloat64, -0.5})
	require.NoError(t, err)
	assert.True(t, Array(Double(math.MaxFloat64), Double(-0.5)).Equal(v))
}

func TestAsFault(t *testing.T) {
	f, ok := AsFault(Fault{Code: 4, Reason: "four"})
	assert.True(t, ok)
	assert.Equal(t, 4, f.Code)

	f, ok = AsFault(errors.Wrap(&Fault{Code: 5, Reason: "five"}, "context"))
	assert.True(t, ok)
	assert.Equal(t, "five", f.Reason)

	_, ok = AsFault(errors.New("plain"))
	assert.False(t, ok)
}

// The responses we emit must be readable by an independent client codec.
func TestInterop_KoloDecodesResponses(t *testing.T) {
	var sum int
	require.NoError(t, kolo.Response(ValueResponse(Int(7)).XML()).Unmarshal(&sum))
	assert.Equal(t, 7, sum)

	var names []string
	resp := ValueResponse(Array(String("system.listMethods"), String("add")))
	require.NoError(t, kolo.Response(resp.XML()).Unmarshal(&names))
	assert.Equal(t, []string{"system.listMethods", "add"}, names)

	var members map[string]interface{}
	resp = ValueResponse(Dictionary(map[string]Value{"specVersion": Int(1), "specURL": String("u")}))
	require.NoError(t, kolo.Response(resp.XML()).Unmarshal(&members))
	assert.EqualValues(t, 1, members["specVersion"])
	assert.Equal(t, "u", members["specURL"])

	err := kolo.Response(FaultResponse(404, "Unknown method 'x'.").XML()).Err()
	require.Error(t, err)
	var fe kolo.FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.Code)
	assert.Equal(t, "Unknown method 'x'.", fe.String)
}

// Calls produced by an independent client codec must parse.
func TestInterop_KoloEncodedCalls(t *testing.T) {
	body, err := kolo.EncodeMethodCall("add", 3, 4, "x", true, 1.5, []string{"a"}, map[string]interface{}{"k": 1})
	require.NoError(t, err)

	call, err := ParseCall(body)
	require.NoError(t, err)
	assert.Equal(t, "add", call.MethodName)
	require.Len(t, call.Params, 7)
	assert.Equal(t, TypeInt, call.Params[0].Type())
	assert.Equal(t, TypeInt, call.Params[1].Type())
	assert.Equal(t, TypeString, call.Params[2].Type())
	assert.Equal(t, TypeBool, call.Params[3].Type())
	assert.Equal(t, TypeDouble, call.Params[4].Type())
	assert.True(t, Array(String("a")).Equal(call.Params[5]))
	assert.True(t, Dictionary(map[string]Value{"k": Int(1)}).Equal(call.Params[6]))
}
