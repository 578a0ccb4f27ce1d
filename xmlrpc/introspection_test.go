package xmlrpc

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

func introspect(reg *Registry, method string, params ...wire.Value) Outcome {
	cc, _ := newCallContext(reg, method, params...)
	return Introspection().Serve(cc)
}

func stringsOf(t *testing.T, v wire.Value) []string {
	t.Helper()
	elems, ok := v.AsArray()
	require.True(t, ok, "not an array: %s", v)
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i], ok = e.AsString()
		require.True(t, ok, "not a string: %s", e)
	}
	return out
}

func TestListMethods_SelfRegistersReserved(t *testing.T) {
	reg := NewRegistry()
	reg.Register("add")

	for i := 0; i < 3; i++ {
		resp := requireResponse(t, introspect(reg, MethodListMethods))
		assert.Equal(t, []string{
			"add",
			"getCapabilities",
			"system.listMethods",
			"system.methodExist",
			"system.methodHelp",
			"system.methodSignature",
		}, stringsOf(t, resp.Value()))
	}
}

func TestMethodSignature_Reserved(t *testing.T) {
	reg := NewRegistry()
	resp := requireResponse(t, introspect(reg, MethodSignature, wire.String(MethodHelp)))
	want := wire.Array(wire.Array(wire.String("string")))
	assert.True(t, want.Equal(resp.Value()), "got %s", resp.Value())

	// Repeated introspection never duplicates the implicit signatures.
	introspect(reg, MethodSignature, wire.String(MethodHelp))
	resp = requireResponse(t, introspect(reg, MethodSignature, wire.String(MethodHelp)))
	assert.True(t, want.Equal(resp.Value()), "got %s", resp.Value())

	resp = requireResponse(t, introspect(reg, MethodSignature, wire.String(MethodListMethods)))
	assert.True(t, wire.Array(wire.Array()).Equal(resp.Value()), "got %s", resp.Value())
}

func TestMethodSignature_Declared(t *testing.T) {
	reg := NewRegistry()
	reg.AddSignature("add", []wire.ValueType{wire.TypeInt, wire.TypeInt})
	reg.AddSignature("add", []wire.ValueType{wire.TypeDouble, wire.TypeDictionary})

	resp := requireResponse(t, introspect(reg, MethodSignature, wire.String("add")))
	want := wire.Array(
		wire.Array(wire.String("int"), wire.String("int")),
		wire.Array(wire.String("double"), wire.String("struct")),
	)
	assert.True(t, want.Equal(resp.Value()), "got %s", resp.Value())
}

func TestMethodSignature_KnownButUnsigned(t *testing.T) {
	reg := NewRegistry()
	reg.Register("legacy")

	out := introspect(reg, MethodSignature, wire.String("legacy"))
	require.Equal(t, OutcomeFailed, out.Kind())
	var se *StatusError
	require.True(t, errors.As(out.Err(), &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestMethodSignature_Unknown(t *testing.T) {
	reg := NewRegistry()
	cc, hook := newCallContext(reg, MethodSignature, wire.String("totallyUnknownMethod"))
	requireFault(t, Introspection().Serve(cc), 404, "Unknown method 'totallyUnknownMethod'.")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestIntrospection_MissingName(t *testing.T) {
	for _, method := range []string{MethodSignature, MethodHelp, MethodExist} {
		t.Run(method, func(t *testing.T) {
			cc, hook := newCallContext(NewRegistry(), method)
			requireFault(t, Introspection().Serve(cc), 400, "Missing method name parameter!")
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, "XML-RPC introspection call was missing a name!", hook.LastEntry().Message)

			requireFault(t, introspect(NewRegistry(), method, wire.Int(5)), 400, "Missing method name parameter!")
		})
	}
}

func TestMethodHelp(t *testing.T) {
	reg := NewRegistry()
	reg.AddHelp("documented", "Adds things.")
	reg.AddSignature("documented", []wire.ValueType{wire.TypeInt})
	reg.AddSignature("add", []wire.ValueType{wire.TypeInt, wire.TypeInt})
	reg.AddSignature("add", []wire.ValueType{wire.TypeDouble, wire.TypeDouble})
	reg.Register("bare")

	requireValue(t, introspect(reg, MethodHelp, wire.String("documented")), wire.String("Adds things."))
	requireValue(t, introspect(reg, MethodHelp, wire.String("add")), wire.String(
		"The method 'add' can be called with the following signatures:\n\n"+
			"    add(int, int)\n"+
			"    add(double, double)"))
	requireValue(t, introspect(reg, MethodHelp, wire.String("bare")), wire.String(
		"The method 'bare' exists, but no documentation is available."))
	requireFault(t, introspect(reg, MethodHelp, wire.String("nope")), 404, "Unknown method 'nope'.")
}

func TestMethodExist(t *testing.T) {
	reg := NewRegistry()
	reg.AddSignature("add", []wire.ValueType{wire.TypeInt})
	for _, name := range append([]string{"add"}, reservedMethods...) {
		requireValue(t, introspect(reg, MethodExist, wire.String(name)), wire.Bool(true))
	}
	requireValue(t, introspect(reg, MethodExist, wire.String("sub")), wire.Bool(false))
}

func TestGetCapabilities(t *testing.T) {
	resp := requireResponse(t, introspect(NewRegistry(), MethodCapabilities))
	members, ok := resp.Value().AsDictionary()
	require.True(t, ok)
	intro, ok := members["introspection"].AsDictionary()
	require.True(t, ok)
	url, _ := intro["specURL"].AsString()
	assert.Equal(t, "http://xmlrpc-c.sourceforge.net/xmlrpc-c/introspection.html", url)
	version, _ := intro["specVersion"].AsInt()
	assert.Equal(t, int64(1), version)
}

func TestIntrospection_DeclinesOtherMethods(t *testing.T) {
	assert.Equal(t, OutcomeDeclined, introspect(NewRegistry(), "add", wire.Int(1)).Kind())

	cc, _ := newCallContext(NewRegistry(), MethodListMethods)
	cc.HTTPMethod = http.MethodGet
	assert.Equal(t, OutcomeDeclined, Introspection().Serve(cc).Kind())
}
